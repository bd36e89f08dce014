// Package notify delivers the club's email notifications.
//
// The host application reports domain saves to an Emitter with before and
// after snapshots. The emitter applies the significance rules for each
// record type and turns notable saves into Notice values. An Engine routes
// each notice: it resolves the audience through a Dispatcher, filters it by
// per-user subscription preferences, and sends email inline or through the
// background task queue depending on the notice's category. Delivery is
// at-least-once; a Redis-backed DedupStore suppresses most duplicates when
// tasks are retried.
//
// Subscriptions are fail-closed. A user with no stored preference for a
// category receives nothing for it until a preference row is created.
package notify
