package youtube

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"trend-finder/domain/dto"
	"trend-finder/domain/model"
	"trend-finder/infrastructure/logger"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const maxSearchResults = 50

// Client represents YouTube API client
type Client struct {
	service *youtube.Service
	limiter *rate.Limiter
	timeout time.Duration
}

// Config represents YouTube API configuration. It is passed explicitly so tests
// can point BaseURL at a local server.
type Config struct {
	APIKey         string        `json:"api_key"`
	BaseURL        string        `json:"base_url"`
	ClientID       string        `json:"client_id"`
	ClientSecret   string        `json:"client_secret"`
	RedirectURL    string        `json:"redirect_url"`
	AccessToken    string        `json:"access_token"`
	RefreshToken   string        `json:"refresh_token"`
	RequestTimeout time.Duration `json:"request_timeout"`
	RateLimit      float64       `json:"rate_limit"` // requests per second, 0 = unlimited
}

// NewYouTubeClient creates a new YouTube API client. Without OAuth tokens the
// API key is used (read-only), which is all the research pipeline needs.
func NewYouTubeClient(ctx context.Context, config *Config) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: youtube client config is required", model.ErrConfiguration)
	}

	var opts []option.ClientOption
	if config.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(config.BaseURL))
	}

	switch {
	case config.AccessToken != "" && config.RefreshToken != "" && config.ClientID != "":
		oauth2Config := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  config.RedirectURL,
			Scopes:       []string{youtube.YoutubeReadonlyScope},
			Endpoint:     google.Endpoint,
		}
		token := &oauth2.Token{
			AccessToken:  config.AccessToken,
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
			Expiry:       time.Now().Add(-1 * time.Minute), // Force refresh on first use
		}
		// The token source refreshes transparently on every expired call
		opts = append(opts, option.WithHTTPClient(oauth2Config.Client(ctx, token)))
		logger.GetLogger().Info("YouTube client using OAuth2 credentials")
	case config.APIKey != "":
		opts = append(opts, option.WithAPIKey(config.APIKey))
		logger.GetLogger().Info("YouTube client using API key")
	default:
		return nil, fmt.Errorf("%w: API key or OAuth tokens required", model.ErrConfiguration)
	}

	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create YouTube service: %v", model.ErrConfiguration, err)
	}

	timeout := config.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		service: service,
		limiter: newLimiter(config.RateLimit),
		timeout: timeout,
	}, nil
}

func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := int(math.Ceil(rps))
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// begin waits for the rate limiter and applies the per-call timeout
func (c *Client) begin(ctx context.Context) (context.Context, context.CancelFunc, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, nil, err
	}
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	return callCtx, cancel, nil
}

// SearchVideos searches for videos matching a single keyword
func (c *Client) SearchVideos(ctx context.Context, req *dto.YouTubeSearchRequest) ([]model.SearchItem, error) {
	if req == nil || req.Q == "" {
		return nil, fmt.Errorf("%w: search query is required", model.ErrValidation)
	}
	maxResults := req.MaxResults
	if maxResults <= 0 || maxResults > maxSearchResults {
		maxResults = maxSearchResults
	}
	order := req.Order
	if order == "" {
		order = "viewCount"
	}

	call := c.service.Search.List([]string{"id", "snippet"}).
		Q(req.Q).
		Type("video").
		Order(order).
		MaxResults(maxResults)
	if !req.PublishedAfter.IsZero() {
		call = call.PublishedAfter(req.PublishedAfter.UTC().Format(time.RFC3339))
	}
	if !req.PublishedBefore.IsZero() {
		call = call.PublishedBefore(req.PublishedBefore.UTC().Format(time.RFC3339))
	}

	callCtx, cancel, err := c.begin(ctx)
	if err != nil {
		return nil, classify("search videos", err)
	}
	defer cancel()

	response, err := call.Context(callCtx).Do()
	if err != nil {
		return nil, classify("search videos", err)
	}

	items := make([]model.SearchItem, 0, len(response.Items))
	for _, item := range response.Items {
		if int64(len(items)) == maxResults {
			break
		}
		if item.Id == nil || item.Id.VideoId == "" || item.Snippet == nil {
			return nil, fmt.Errorf("search videos: %w: result without video id or snippet", model.ErrService)
		}
		publishedAt, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt)
		if err != nil {
			return nil, fmt.Errorf("search videos: %w: bad publishedAt %q for %s", model.ErrService, item.Snippet.PublishedAt, item.Id.VideoId)
		}
		items = append(items, model.SearchItem{
			VideoID:      item.Id.VideoId,
			ChannelID:    item.Snippet.ChannelId,
			ChannelTitle: item.Snippet.ChannelTitle,
			Title:        item.Snippet.Title,
			ThumbnailURL: bestThumbnail(item.Snippet.Thumbnails),
			PublishedAt:  publishedAt,
		})
	}
	return items, nil
}

// GetVideoStatistics retrieves the view count and duration of a video
func (c *Client) GetVideoStatistics(ctx context.Context, videoID string) (*model.VideoStatistics, error) {
	callCtx, cancel, err := c.begin(ctx)
	if err != nil {
		return nil, classify("get video statistics", err)
	}
	defer cancel()

	response, err := c.service.Videos.List([]string{"statistics", "contentDetails"}).
		Id(videoID).
		Context(callCtx).
		Do()
	if err != nil {
		return nil, classify("get video statistics", err)
	}
	if len(response.Items) == 0 {
		return nil, fmt.Errorf("get video statistics %s: %w: %w", videoID, model.ErrService, model.ErrEmptyResponse)
	}

	video := response.Items[0]
	if video.Statistics == nil || video.ContentDetails == nil {
		return nil, fmt.Errorf("get video statistics %s: %w: missing statistics or contentDetails", videoID, model.ErrService)
	}
	return &model.VideoStatistics{
		VideoID:   videoID,
		ViewCount: int64(video.Statistics.ViewCount),
		Duration:  video.ContentDetails.Duration,
	}, nil
}

// GetChannelStatistics retrieves subscriber count and creation date of a channel
func (c *Client) GetChannelStatistics(ctx context.Context, channelID string) (*model.ChannelStatistics, error) {
	callCtx, cancel, err := c.begin(ctx)
	if err != nil {
		return nil, classify("get channel statistics", err)
	}
	defer cancel()

	response, err := c.service.Channels.List([]string{"statistics", "snippet"}).
		Id(channelID).
		Context(callCtx).
		Do()
	if err != nil {
		return nil, classify("get channel statistics", err)
	}
	if len(response.Items) == 0 {
		return nil, fmt.Errorf("get channel statistics %s: %w: %w", channelID, model.ErrService, model.ErrEmptyResponse)
	}

	channel := response.Items[0]
	if channel.Statistics == nil || channel.Snippet == nil {
		return nil, fmt.Errorf("get channel statistics %s: %w: missing statistics or snippet", channelID, model.ErrService)
	}
	publishedAt, err := time.Parse(time.RFC3339, channel.Snippet.PublishedAt)
	if err != nil {
		return nil, fmt.Errorf("get channel statistics %s: %w: bad publishedAt %q", channelID, model.ErrService, channel.Snippet.PublishedAt)
	}
	return &model.ChannelStatistics{
		ChannelID:             channelID,
		SubscriberCount:       int64(channel.Statistics.SubscriberCount),
		HiddenSubscriberCount: channel.Statistics.HiddenSubscriberCount,
		PublishedAt:           publishedAt,
	}, nil
}

func bestThumbnail(t *youtube.ThumbnailDetails) string {
	if t == nil {
		return ""
	}
	for _, th := range []*youtube.Thumbnail{t.High, t.Medium, t.Default} {
		if th != nil && th.Url != "" {
			return th.Url
		}
	}
	return ""
}

// classify wraps every failure in model.ErrService, adding model.ErrQuotaExceeded for quota rejections
func classify(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if isQuotaError(gerr) {
			return fmt.Errorf("%s: %w: %w: %s", op, model.ErrService, model.ErrQuotaExceeded, gerr.Message)
		}
		return fmt.Errorf("%s: %w: HTTP %d: %s", op, model.ErrService, gerr.Code, gerr.Message)
	}
	return fmt.Errorf("%s: %w: %w", op, model.ErrService, err)
}

func isQuotaError(gerr *googleapi.Error) bool {
	if gerr.Code == http.StatusTooManyRequests {
		return true
	}
	if gerr.Code != http.StatusForbidden {
		return false
	}
	for _, item := range gerr.Errors {
		switch item.Reason {
		case "quotaExceeded", "rateLimitExceeded", "userRateLimitExceeded", "dailyLimitExceeded":
			return true
		}
	}
	return false
}
