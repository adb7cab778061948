package config

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// OpenRedis connects to the Redis instance named by REDIS_ADDR/REDIS_DB.
// Returns nil when REDIS_ADDR is unset so callers can fall back to the
// in-process broker.
func OpenRedis() (*redis.Client, error) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return nil, nil
	}
	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))

	r := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return r, nil
}
