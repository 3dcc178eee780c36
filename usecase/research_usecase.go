package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"trend-finder/domain/dto"
	"trend-finder/domain/model"
	"trend-finder/domain/repository"
	"trend-finder/infrastructure/logger"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const defaultWorkers = 8

// IResearchUsecase runs the keyword research pipeline
type IResearchUsecase interface {
	Research(ctx context.Context, query model.SearchQuery) (*model.ResearchResult, error)
}

// ResearchUsecase searches every keyword, enriches the results with video and channel
// statistics and keeps the videos that pass the query filters.
type ResearchUsecase struct {
	youtubeRepo repository.IYouTube
	history     repository.IResearchHistory  // optional
	publishers  []repository.IResearchEvents // optional
	workers     int
	now         func() time.Time
}

// NewResearchUsecase creates the pipeline. workers bounds the per keyword fan-out.
func NewResearchUsecase(youtubeRepo repository.IYouTube, workers int) *ResearchUsecase {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &ResearchUsecase{
		youtubeRepo: youtubeRepo,
		workers:     workers,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithHistory records every successful run (fluent)
func (u *ResearchUsecase) WithHistory(history repository.IResearchHistory) *ResearchUsecase {
	u.history = history
	return u
}

// WithPublishers announces every successful run (fluent)
func (u *ResearchUsecase) WithPublishers(publishers ...repository.IResearchEvents) *ResearchUsecase {
	for _, p := range publishers {
		if p != nil {
			u.publishers = append(u.publishers, p)
		}
	}
	return u
}

// Research validates the query and runs it. Keywords are processed in order; with the skip
// policy a failing keyword is reported in the result, with abort it fails the run.
func (u *ResearchUsecase) Research(ctx context.Context, query model.SearchQuery) (*model.ResearchResult, error) {
	q, err := NormalizeQuery(query)
	if err != nil {
		return nil, err
	}

	result := &model.ResearchResult{
		Query:      q,
		Candidates: make([]model.VideoCandidate, 0),
		Failures:   make([]model.KeywordFailure, 0),
		StartedAt:  u.now(),
	}
	channels := newChannelMemo(u.youtubeRepo)
	seen := make(map[string]struct{})

	for _, keyword := range q.Keywords {
		candidates, scanned, err := u.researchKeyword(ctx, q, keyword, channels)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("research canceled at keyword %q: %w", keyword, ctxErr)
			}
			if q.FailurePolicy == model.FailurePolicyAbort {
				return nil, fmt.Errorf("keyword %q: %w", keyword, err)
			}
			logger.GetLogger().
				WithField("keyword", keyword).
				WithField("error", err).
				Warn("Keyword skipped")
			result.Failures = append(result.Failures, model.KeywordFailure{Keyword: keyword, Error: err.Error()})
			continue
		}

		result.Scanned += scanned
		for _, c := range candidates {
			if _, dup := seen[c.VideoID]; dup {
				continue
			}
			seen[c.VideoID] = struct{}{}
			result.Candidates = append(result.Candidates, c)
		}
	}

	sort.SliceStable(result.Candidates, func(i, j int) bool {
		return result.Candidates[i].ViewCount > result.Candidates[j].ViewCount
	})
	result.Elapsed = u.now().Sub(result.StartedAt)

	logger.GetLogger().
		WithField("keywords", q.Keywords).
		WithField("candidates", len(result.Candidates)).
		WithField("failures", len(result.Failures)).
		WithField("elapsed", result.Elapsed.String()).
		Info("Research finished")

	u.record(ctx, result)
	return result, nil
}

// researchKeyword returns the matching candidates of one keyword in search order and the
// number of videos looked at.
func (u *ResearchUsecase) researchKeyword(ctx context.Context, q model.SearchQuery, keyword string, channels *channelMemo) ([]model.VideoCandidate, int, error) {
	items, err := u.youtubeRepo.SearchVideos(ctx, &dto.YouTubeSearchRequest{
		Q:               keyword,
		MaxResults:      q.ResultLimit,
		Order:           "viewCount",
		PublishedAfter:  q.PublishedAfter,
		PublishedBefore: q.PublishedBefore,
	})
	if err != nil {
		return nil, 0, err
	}
	if int64(len(items)) > q.ResultLimit {
		items = items[:q.ResultLimit]
	}

	built := make([]*model.VideoCandidate, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.workers)
	for i, item := range items {
		g.Go(func() error {
			c, err := u.buildCandidate(gctx, keyword, item, channels)
			if err != nil {
				return fmt.Errorf("video %s: %w", item.VideoID, err)
			}
			built[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	out := make([]model.VideoCandidate, 0, len(built))
	for _, c := range built {
		if c != nil && Matches(q, c) {
			out = append(out, *c)
		}
	}
	return out, len(items), nil
}

// buildCandidate fetches the statistics of one search item. Channels hiding their subscriber
// count give a nil candidate since the count cannot be filtered on.
func (u *ResearchUsecase) buildCandidate(ctx context.Context, keyword string, item model.SearchItem, channels *channelMemo) (*model.VideoCandidate, error) {
	video, err := u.youtubeRepo.GetVideoStatistics(ctx, item.VideoID)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, fmt.Errorf("%w: %w", model.ErrService, model.ErrEmptyResponse)
	}
	seconds, err := DurationSeconds(video.Duration)
	if err != nil {
		return nil, err
	}
	channel, err := channels.get(ctx, item.ChannelID)
	if err != nil {
		return nil, err
	}
	if channel.HiddenSubscriberCount {
		logger.GetLogger().WithField("channel_id", item.ChannelID).Debug("Subscriber count hidden; video excluded")
		return nil, nil
	}

	return &model.VideoCandidate{
		Title:            item.Title,
		VideoID:          item.VideoID,
		ChannelID:        item.ChannelID,
		ChannelName:      item.ChannelTitle,
		ThumbnailURL:     item.ThumbnailURL,
		ViewCount:        video.ViewCount,
		SubscriberCount:  channel.SubscriberCount,
		PublishedAt:      item.PublishedAt,
		ChannelCreatedAt: channel.PublishedAt,
		Duration:         video.Duration,
		DurationSeconds:  seconds,
		IsShort:          IsShort(seconds),
		Keyword:          keyword,
	}, nil
}

// record stores and announces a finished run. Failures are only logged.
func (u *ResearchUsecase) record(ctx context.Context, result *model.ResearchResult) {
	if u.history != nil {
		if err := u.history.Save(ctx, model.NewResearchRecord(result)); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while saving research history")
		}
	}
	if len(u.publishers) == 0 {
		return
	}
	evt := model.NewResearchEvent(result)
	for _, p := range u.publishers {
		if err := p.Publish(ctx, evt); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while publishing research event")
		}
	}
}

// channelMemo shares channel lookups between the videos of one run
type channelMemo struct {
	repo  repository.IYouTube
	group singleflight.Group

	mu    sync.Mutex
	stats map[string]*model.ChannelStatistics
}

func newChannelMemo(repo repository.IYouTube) *channelMemo {
	return &channelMemo{repo: repo, stats: make(map[string]*model.ChannelStatistics)}
}

func (m *channelMemo) get(ctx context.Context, channelID string) (*model.ChannelStatistics, error) {
	m.mu.Lock()
	if s, ok := m.stats[channelID]; ok {
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	v, err, _ := m.group.Do(channelID, func() (interface{}, error) {
		s, err := m.repo.GetChannelStatistics(ctx, channelID)
		if err != nil {
			return nil, err
		}
		if s == nil {
			return nil, fmt.Errorf("channel %s: %w: %w", channelID, model.ErrService, model.ErrEmptyResponse)
		}
		m.mu.Lock()
		m.stats[channelID] = s
		m.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.ChannelStatistics), nil
}
