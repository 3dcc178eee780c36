package model

import (
	"strings"
	"time"
)

// FailurePolicy decides what happens when a keyword cannot be fetched
type FailurePolicy string

const (
	// FailurePolicySkip drops the failed keyword and reports it next to the candidates
	FailurePolicySkip FailurePolicy = "skip"
	// FailurePolicyAbort fails the whole research run
	FailurePolicyAbort FailurePolicy = "abort"
)

// SearchQuery is the request scoped input of a research run
type SearchQuery struct {
	Keywords        []string      `json:"keywords" validate:"required,min=1,dive,required"`
	PublishedAfter  time.Time     `json:"published_after" validate:"required"`
	PublishedBefore time.Time     `json:"published_before" validate:"required,gtfield=PublishedAfter"`
	MinSubscribers  int64         `json:"min_subscribers" validate:"gte=0"`
	MaxSubscribers  int64         `json:"max_subscribers" validate:"gtefield=MinSubscribers"`
	MinViews        int64         `json:"min_views" validate:"gte=0"`
	ResultLimit     int64         `json:"result_limit" validate:"gte=1,lte=50"`
	VideoType       VideoType     `json:"video_type" validate:"oneof=All Shorts Long"`
	FailurePolicy   FailurePolicy `json:"failure_policy" validate:"oneof=skip abort"`
}

// KeywordFailure reports a keyword whose contribution was dropped
type KeywordFailure struct {
	Keyword string `json:"keyword"`
	Error   string `json:"error"`
}

// ResearchResult is the output of a research run
type ResearchResult struct {
	Query      SearchQuery      `json:"query"`
	Candidates []VideoCandidate `json:"candidates"`
	Failures   []KeywordFailure `json:"failures"`
	Scanned    int              `json:"scanned"`
	StartedAt  time.Time        `json:"started_at"`
	Elapsed    time.Duration    `json:"elapsed"`
}

// Empty reports a run that finished without any matching video
func (r *ResearchResult) Empty() bool {
	return r == nil || len(r.Candidates) == 0
}

// PartialFailure reports a run where at least one keyword was dropped
func (r *ResearchResult) PartialFailure() bool {
	return r != nil && len(r.Failures) > 0
}

// ResearchRecord is a stored summary of a finished research run
type ResearchRecord struct {
	ID             int64         `json:"id"`
	Keywords       []string      `json:"keywords"`
	Query          SearchQuery   `json:"query"`
	CandidateCount int           `json:"candidate_count"`
	FailureCount   int           `json:"failure_count"`
	TopVideoID     string        `json:"top_video_id,omitempty"`
	Elapsed        time.Duration `json:"elapsed"`
	CreatedAt      time.Time     `json:"created_at"`
}

// NewResearchRecord summarises a result for the history store
func NewResearchRecord(res *ResearchResult) *ResearchRecord {
	rec := &ResearchRecord{
		Keywords:       res.Query.Keywords,
		Query:          res.Query,
		CandidateCount: len(res.Candidates),
		FailureCount:   len(res.Failures),
		Elapsed:        res.Elapsed,
		CreatedAt:      res.StartedAt.UTC(),
	}
	if len(res.Candidates) > 0 {
		rec.TopVideoID = res.Candidates[0].VideoID
	}
	return rec
}

// ResearchEvent is published after a research run completes
type ResearchEvent struct {
	Type           string    `json:"type"`
	Keywords       string    `json:"keywords"`
	CandidateCount int       `json:"candidate_count"`
	FailureCount   int       `json:"failure_count"`
	TopVideoIDs    []string  `json:"top_video_ids"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// NewResearchEvent builds the completion event, keeping at most five top videos
func NewResearchEvent(res *ResearchResult) *ResearchEvent {
	evt := &ResearchEvent{
		Type:           "research_completed",
		Keywords:       strings.Join(res.Query.Keywords, ","),
		CandidateCount: len(res.Candidates),
		FailureCount:   len(res.Failures),
		TopVideoIDs:    make([]string, 0, 5),
		OccurredAt:     res.StartedAt.Add(res.Elapsed).UTC(),
	}
	for i := 0; i < len(res.Candidates) && i < 5; i++ {
		evt.TopVideoIDs = append(evt.TopVideoIDs, res.Candidates[i].VideoID)
	}
	return evt
}
