package persistence

import (
	"context"
	"time"

	"trend-finder/domain/dto"
	"trend-finder/domain/model"
	"trend-finder/domain/repository"
	"trend-finder/infrastructure/logger"
)

// YouTubeRepository implements repository.IYouTube on top of the API client with a
// cache-aside layer for statistics. Search results are never cached.
type YouTubeRepository struct {
	CacheRepo        repository.IYouTubeCache
	YouTubeAPIClient repository.IYouTube
	ChannelTTL       time.Duration
	VideoTTL         time.Duration
}

// NewYouTubeRepository wraps client with cache. Channel statistics move slowly and keep
// channelTTL; view counts are kept for at most ten minutes.
func NewYouTubeRepository(client repository.IYouTube, cache repository.IYouTubeCache, channelTTL time.Duration) *YouTubeRepository {
	videoTTL := 10 * time.Minute
	if channelTTL < videoTTL {
		videoTTL = channelTTL
	}
	return &YouTubeRepository{
		CacheRepo:        cache,
		YouTubeAPIClient: client,
		ChannelTTL:       channelTTL,
		VideoTTL:         videoTTL,
	}
}

func (r *YouTubeRepository) SearchVideos(ctx context.Context, req *dto.YouTubeSearchRequest) ([]model.SearchItem, error) {
	return r.YouTubeAPIClient.SearchVideos(ctx, req)
}

func (r *YouTubeRepository) GetVideoStatistics(ctx context.Context, videoID string) (*model.VideoStatistics, error) {
	if r.CacheRepo != nil {
		if v, err := r.CacheRepo.GetVideo(ctx, videoID); err == nil && v != nil {
			return v, nil
		} else if err != nil {
			logger.GetLogger().WithField("video_id", videoID).WithField("error", err).Warn("video cache read failed")
		}
	}

	stats, err := r.YouTubeAPIClient.GetVideoStatistics(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if r.CacheRepo != nil {
		if err := r.CacheRepo.SetVideo(ctx, stats, r.VideoTTL); err != nil {
			logger.GetLogger().WithField("video_id", videoID).WithField("error", err).Warn("video cache write failed")
		}
	}
	return stats, nil
}

func (r *YouTubeRepository) GetChannelStatistics(ctx context.Context, channelID string) (*model.ChannelStatistics, error) {
	if r.CacheRepo != nil {
		if c, err := r.CacheRepo.GetChannel(ctx, channelID); err == nil && c != nil {
			return c, nil
		} else if err != nil {
			logger.GetLogger().WithField("channel_id", channelID).WithField("error", err).Warn("channel cache read failed")
		}
	}

	stats, err := r.YouTubeAPIClient.GetChannelStatistics(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if r.CacheRepo != nil {
		if err := r.CacheRepo.SetChannel(ctx, stats, r.ChannelTTL); err != nil {
			logger.GetLogger().WithField("channel_id", channelID).WithField("error", err).Warn("channel cache write failed")
		}
	}
	return stats, nil
}
