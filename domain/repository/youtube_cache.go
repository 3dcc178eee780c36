package repository

import (
	"context"
	"time"

	"trend-finder/domain/model"
)

// IYouTubeCache defines a cache for YouTube statistics shared across requests.
// A miss is reported as (nil, nil).
type IYouTubeCache interface {
	GetChannel(ctx context.Context, channelID string) (*model.ChannelStatistics, error)
	SetChannel(ctx context.Context, stats *model.ChannelStatistics, ttl time.Duration) error
	GetVideo(ctx context.Context, videoID string) (*model.VideoStatistics, error)
	SetVideo(ctx context.Context, stats *model.VideoStatistics, ttl time.Duration) error
}
