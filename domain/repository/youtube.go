package repository

import (
	"context"

	"trend-finder/domain/dto"
	"trend-finder/domain/model"
)

// IYouTube defines the read operations the research pipeline needs from the YouTube Data API
type IYouTube interface {
	// SearchVideos returns video stubs for a single keyword, ranked by the API
	SearchVideos(ctx context.Context, req *dto.YouTubeSearchRequest) ([]model.SearchItem, error)
	// GetVideoStatistics returns view count and duration of a video
	GetVideoStatistics(ctx context.Context, videoID string) (*model.VideoStatistics, error)
	// GetChannelStatistics returns subscriber count and creation date of a channel
	GetChannelStatistics(ctx context.Context, channelID string) (*model.ChannelStatistics, error)
}
