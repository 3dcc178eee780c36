package cache

import (
	"context"
	"strconv"

	"trend-finder/infrastructure/logger"

	"github.com/redis/go-redis/v9"
)

// NewCache connects to redis and pings it once
func NewCache(ctx context.Context, addr, username, password, database string) (*redis.Client, error) {
	db := 0
	if database != "" {
		if n, err := strconv.Atoi(database); err == nil {
			db = n
		}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		logger.GetLogger().WithField("addr", addr).WithField("error", err).Warn("Redis ping failed")
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
