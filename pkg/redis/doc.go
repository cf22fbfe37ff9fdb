// Package redis connects to Redis with retries and provides a readiness probe.
// The smoke service uses it for the shared bearer token cache.
//
//	cfg := redis.DefaultConfig()
//	cfg.ConnectionURL = "redis://localhost:6379/0"
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//	store := bearer.NewRedisStore(client, "")
package redis
