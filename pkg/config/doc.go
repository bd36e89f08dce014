// Package config loads typed configuration structs from environment
// variables (github.com/caarlos0/env) with optional .env support for local
// development (github.com/joho/godotenv).
//
// Each configuration type is parsed exactly once per process and cached, so
// independently constructed components reading the same config type always
// agree on its values:
//
//	type QueueConfig struct {
//		PollInterval time.Duration `env:"QUEUE_POLL_INTERVAL" envDefault:"5s"`
//	}
//
//	var cfg QueueConfig
//	config.MustLoad(&cfg)
package config
