package model

import (
	"strings"
	"time"
)

// Preset is a saved research configuration
type Preset struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Name           string    `json:"name" gorm:"size:120;uniqueIndex;not null"`
	Keywords       string    `json:"keywords" gorm:"type:text;not null"` // comma separated
	WindowDays     int       `json:"window_days"`
	MinSubscribers int64     `json:"min_subscribers"`
	MaxSubscribers int64     `json:"max_subscribers"`
	MinViews       int64     `json:"min_views"`
	ResultLimit    int64     `json:"result_limit"`
	VideoType      VideoType `json:"video_type" gorm:"size:16"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// KeywordList splits the stored keywords, dropping blanks
func (p *Preset) KeywordList() []string {
	parts := strings.Split(p.Keywords, ",")
	out := make([]string, 0, len(parts))
	for _, k := range parts {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

// Query builds the search query of the preset with the window ending at now
func (p *Preset) Query(now time.Time) SearchQuery {
	return SearchQuery{
		Keywords:        p.KeywordList(),
		PublishedAfter:  now.AddDate(0, 0, -p.WindowDays),
		PublishedBefore: now,
		MinSubscribers:  p.MinSubscribers,
		MaxSubscribers:  p.MaxSubscribers,
		MinViews:        p.MinViews,
		ResultLimit:     p.ResultLimit,
		VideoType:       p.VideoType,
		FailurePolicy:   FailurePolicySkip,
	}
}
