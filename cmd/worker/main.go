package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/lakeclub/clubnotify/notify"
	"github.com/lakeclub/clubnotify/pkg/config"
	"github.com/lakeclub/clubnotify/pkg/email"
	"github.com/lakeclub/clubnotify/pkg/logger"
	"github.com/lakeclub/clubnotify/pkg/pg"
	"github.com/lakeclub/clubnotify/pkg/queue"
	"github.com/lakeclub/clubnotify/pkg/redis"
)

type appConfig struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	DevMailDir  string `env:"DEV_MAIL_DIR" envDefault:"tmp/mail"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var appCfg appConfig
	config.MustLoad(&appCfg)

	log := logger.New(logger.WithEnvironment(appCfg.Environment, "notify-worker"))
	logger.SetAsDefault(log)

	if err := run(ctx, appCfg, log); err != nil {
		log.Error("worker exited with error", logger.Error(err))
		os.Exit(1)
	}
	log.Info("worker stopped")
}

func run(ctx context.Context, appCfg appConfig, log *slog.Logger) error {
	var pgCfg pg.Config
	config.MustLoad(&pgCfg)
	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		return err
	}

	var redisCfg redis.Config
	config.MustLoad(&redisCfg)
	redisClient, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	var emailCfg email.Config
	config.MustLoad(&emailCfg)
	var sender email.EmailSender
	if emailCfg.PostmarkServerToken != "" {
		sender, err = email.NewPostmarkClient(emailCfg)
		if err != nil {
			return err
		}
	} else {
		log.Warn("no postmark token configured, writing mail to disk",
			logger.Component("email"))
		sender = email.NewDevSender(appCfg.DevMailDir)
	}

	storage, err := queue.NewPgStorage(pool)
	if err != nil {
		return err
	}
	enqueuer, err := queue.NewEnqueuer(storage)
	if err != nil {
		return err
	}

	subs, err := notify.NewPgSubscriptionStore(pool)
	if err != nil {
		return err
	}
	directory, err := notify.NewPgDirectory(pool)
	if err != nil {
		return err
	}
	dispatcher, err := notify.NewDispatcher(subs, directory, log)
	if err != nil {
		return err
	}
	dedup, err := notify.NewRedisDedupStore(redisClient)
	if err != nil {
		return err
	}
	engine, err := notify.NewEngine(subs, dispatcher, directory, sender, enqueuer,
		notify.WithLogger(log),
		notify.WithDedup(dedup, 0),
	)
	if err != nil {
		return err
	}

	var queueCfg queue.Config
	config.MustLoad(&queueCfg)
	worker, err := queue.NewWorker(storage,
		queue.WithPullInterval(queueCfg.PollInterval),
		queue.WithLockTimeout(queueCfg.LockTimeout),
		queue.WithMaxConcurrentTasks(queueCfg.MaxConcurrentTasks),
		queue.WithWorkerLogger(log),
	)
	if err != nil {
		return err
	}
	worker.RegisterHandlers(engine.TaskHandler())

	log.Info("worker started", logger.Component("worker"))
	g, ctx := errgroup.WithContext(ctx)
	g.Go(worker.Run(ctx))
	return g.Wait()
}
