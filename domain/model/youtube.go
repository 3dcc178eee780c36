package model

import "time"

// VideoType selects which videos a research run keeps
type VideoType string

const (
	VideoTypeAll    VideoType = "All"
	VideoTypeShorts VideoType = "Shorts"
	VideoTypeLong   VideoType = "Long"
)

// ShortMaxSeconds is the longest duration still classified as a Short
const ShortMaxSeconds = 60

// SearchItem is a video stub returned by the search endpoint
type SearchItem struct {
	VideoID      string    `json:"video_id"`
	ChannelID    string    `json:"channel_id"`
	ChannelTitle string    `json:"channel_title"`
	Title        string    `json:"title"`
	ThumbnailURL string    `json:"thumbnail_url"`
	PublishedAt  time.Time `json:"published_at"`
}

// VideoStatistics holds the per-video numbers the pipeline needs
type VideoStatistics struct {
	VideoID   string `json:"video_id"`
	ViewCount int64  `json:"view_count"`
	Duration  string `json:"duration"` // ISO-8601, e.g. PT4M13S
}

// ChannelStatistics holds the per-channel numbers the pipeline needs
type ChannelStatistics struct {
	ChannelID             string    `json:"channel_id"`
	SubscriberCount       int64     `json:"subscriber_count"`
	HiddenSubscriberCount bool      `json:"hidden_subscriber_count"`
	PublishedAt           time.Time `json:"published_at"`
}

// VideoCandidate is a video that passed the research filters
type VideoCandidate struct {
	Title            string    `json:"title"`
	VideoID          string    `json:"video_id"`
	ChannelID        string    `json:"channel_id"`
	ChannelName      string    `json:"channel_name"`
	ThumbnailURL     string    `json:"thumbnail_url"`
	ViewCount        int64     `json:"view_count"`
	SubscriberCount  int64     `json:"subscriber_count"`
	PublishedAt      time.Time `json:"published_at"`
	ChannelCreatedAt time.Time `json:"channel_created_at"`
	Duration         string    `json:"duration"`
	DurationSeconds  int64     `json:"duration_seconds"`
	IsShort          bool      `json:"is_short"`
	Keyword          string    `json:"keyword"`
}

// URL returns the watch page of the video
func (v VideoCandidate) URL() string {
	return "https://youtube.com/watch?v=" + v.VideoID
}

// VideoType returns Shorts or Long depending on the classification
func (v VideoCandidate) VideoType() VideoType {
	if v.IsShort {
		return VideoTypeShorts
	}
	return VideoTypeLong
}
