// Package redis wraps the go-redis client with env-driven configuration,
// a retrying Connect helper, and a readiness probe.
//
// It exists so the optional Redis-backed verification token store can share
// the same connect-with-retry and healthcheck conventions as the Postgres
// layer.
//
// Usage:
//
//	cfg := config.MustLoad[redis.Config]()
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
// Errors are joined with sentinel values (ErrRedisNotReady and friends) so
// callers can match them with errors.Is.
package redis
