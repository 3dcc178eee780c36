package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"trend-finder/domain/model"

	"github.com/redis/go-redis/v9"
)

const (
	channelKeyPrefix = "yt:channel:"
	videoKeyPrefix   = "yt:video:"
)

// YouTubeCache stores channel and video statistics in redis as JSON.
// A nil client turns every call into a miss / no-op.
type YouTubeCache struct {
	client *redis.Client
}

func NewYouTubeCache(client *redis.Client) *YouTubeCache {
	return &YouTubeCache{client: client}
}

func (c *YouTubeCache) GetChannel(ctx context.Context, channelID string) (*model.ChannelStatistics, error) {
	var stats model.ChannelStatistics
	ok, err := c.get(ctx, channelKeyPrefix+channelID, &stats)
	if err != nil || !ok {
		return nil, err
	}
	return &stats, nil
}

func (c *YouTubeCache) SetChannel(ctx context.Context, stats *model.ChannelStatistics, ttl time.Duration) error {
	return c.set(ctx, channelKeyPrefix+stats.ChannelID, stats, ttl)
}

func (c *YouTubeCache) GetVideo(ctx context.Context, videoID string) (*model.VideoStatistics, error) {
	var stats model.VideoStatistics
	ok, err := c.get(ctx, videoKeyPrefix+videoID, &stats)
	if err != nil || !ok {
		return nil, err
	}
	return &stats, nil
}

func (c *YouTubeCache) SetVideo(ctx context.Context, stats *model.VideoStatistics, ttl time.Duration) error {
	return c.set(ctx, videoKeyPrefix+stats.VideoID, stats, ttl)
}

func (c *YouTubeCache) get(ctx context.Context, key string, out interface{}) (bool, error) {
	if c == nil || c.client == nil {
		return false, nil
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, err
	}
	return true, nil
}

func (c *YouTubeCache) set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c == nil || c.client == nil || ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, ttl).Err()
}
