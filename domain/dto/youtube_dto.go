package dto

import (
	"fmt"
	"strings"
	"time"

	"trend-finder/domain/model"
)

// DateLayout is the layout of the date inputs of the research form
const DateLayout = "2006-01-02"

// ResearchRequest represents the research form / query string.
// Empty fields fall back to the configured defaults.
type ResearchRequest struct {
	Keywords       string `form:"keywords" json:"keywords" url:"keywords"` // comma separated
	StartDate      string `form:"start_date" json:"start_date,omitempty" url:"start_date,omitempty"`
	EndDate        string `form:"end_date" json:"end_date,omitempty" url:"end_date,omitempty"`
	MinSubscribers *int64 `form:"min_subs" json:"min_subs,omitempty" url:"min_subs,omitempty"`
	MaxSubscribers *int64 `form:"max_subs" json:"max_subs,omitempty" url:"max_subs,omitempty"`
	MinViews       *int64 `form:"min_views" json:"min_views,omitempty" url:"min_views,omitempty"`
	ResultLimit    *int64 `form:"limit" json:"limit,omitempty" url:"limit,omitempty"`
	VideoType      string `form:"video_type" json:"video_type,omitempty" url:"video_type,omitempty"`
	OnFailure      string `form:"on_failure" json:"on_failure,omitempty" url:"on_failure,omitempty"`
}

// SplitKeywords splits a comma separated keyword list, trimming and dropping blanks
func SplitKeywords(raw string) []string {
	parts := strings.Split(raw, ",")
	keywords := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			keywords = append(keywords, p)
		}
	}
	return keywords
}

// ToQuery merges the request over defaults. Dates are whole days: the end date is inclusive.
func (r *ResearchRequest) ToQuery(defaults model.SearchQuery) (model.SearchQuery, error) {
	q := defaults
	q.Keywords = SplitKeywords(r.Keywords)

	if r.StartDate != "" {
		start, err := time.Parse(DateLayout, r.StartDate)
		if err != nil {
			return q, fmt.Errorf("%w: invalid start date %q", model.ErrValidation, r.StartDate)
		}
		q.PublishedAfter = start.UTC()
	}
	if r.EndDate != "" {
		end, err := time.Parse(DateLayout, r.EndDate)
		if err != nil {
			return q, fmt.Errorf("%w: invalid end date %q", model.ErrValidation, r.EndDate)
		}
		q.PublishedBefore = end.UTC().Add(24*time.Hour - time.Second)
	}
	if r.MinSubscribers != nil {
		q.MinSubscribers = *r.MinSubscribers
	}
	if r.MaxSubscribers != nil {
		q.MaxSubscribers = *r.MaxSubscribers
	}
	if r.MinViews != nil {
		q.MinViews = *r.MinViews
	}
	if r.ResultLimit != nil {
		q.ResultLimit = *r.ResultLimit
	}
	if r.VideoType != "" {
		q.VideoType = model.VideoType(r.VideoType)
	}
	if r.OnFailure != "" {
		q.FailurePolicy = model.FailurePolicy(r.OnFailure)
	}
	return q, nil
}

// FromQuery fills a request from a query so forms can be pre-populated
func FromQuery(q model.SearchQuery) ResearchRequest {
	minSubs, maxSubs, minViews, limit := q.MinSubscribers, q.MaxSubscribers, q.MinViews, q.ResultLimit
	req := ResearchRequest{
		Keywords:       strings.Join(q.Keywords, ", "),
		MinSubscribers: &minSubs,
		MaxSubscribers: &maxSubs,
		MinViews:       &minViews,
		ResultLimit:    &limit,
		VideoType:      string(q.VideoType),
		OnFailure:      string(q.FailurePolicy),
	}
	if !q.PublishedAfter.IsZero() {
		req.StartDate = q.PublishedAfter.UTC().Format(DateLayout)
	}
	if !q.PublishedBefore.IsZero() {
		req.EndDate = q.PublishedBefore.UTC().Format(DateLayout)
	}
	return req
}

// YouTubeSearchRequest represents a single keyword search against the API
type YouTubeSearchRequest struct {
	Q               string    `json:"q"`
	MaxResults      int64     `json:"max_results,omitempty"`
	Order           string    `json:"order,omitempty"` // date, rating, relevance, title, viewCount
	PublishedAfter  time.Time `json:"published_after"`
	PublishedBefore time.Time `json:"published_before"`
}

// PresetRequest represents the body of POST /api/presets
type PresetRequest struct {
	Name           string `json:"name" binding:"required,max=120"`
	Keywords       string `json:"keywords" binding:"required"`
	WindowDays     int    `json:"window_days" binding:"gte=0,lte=365"`
	MinSubscribers int64  `json:"min_subscribers" binding:"gte=0"`
	MaxSubscribers int64  `json:"max_subscribers" binding:"gte=0"`
	MinViews       int64  `json:"min_views" binding:"gte=0"`
	ResultLimit    int64  `json:"result_limit"`
	VideoType      string `json:"video_type"`
}

// ToModel converts the request into a preset
func (r *PresetRequest) ToModel() *model.Preset {
	return &model.Preset{
		Name:           strings.TrimSpace(r.Name),
		Keywords:       strings.Join(SplitKeywords(r.Keywords), ","),
		WindowDays:     r.WindowDays,
		MinSubscribers: r.MinSubscribers,
		MaxSubscribers: r.MaxSubscribers,
		MinViews:       r.MinViews,
		ResultLimit:    r.ResultLimit,
		VideoType:      model.VideoType(r.VideoType),
	}
}
