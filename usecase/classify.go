package usecase

import (
	"fmt"
	"time"

	"trend-finder/domain/model"

	"github.com/sosodev/duration"
)

// DurationSeconds parses an ISO-8601 duration such as PT4M13S
func DurationSeconds(iso string) (int64, error) {
	d, err := duration.Parse(iso)
	if err != nil {
		return 0, fmt.Errorf("%w: unparseable duration %q: %v", model.ErrService, iso, err)
	}
	return int64(d.ToTimeDuration().Round(time.Second) / time.Second), nil
}

// IsShort classifies a video of the given length
func IsShort(seconds int64) bool {
	return seconds <= model.ShortMaxSeconds
}

// Matches reports whether c passes the subscriber, view and video type filters of q
func Matches(q model.SearchQuery, c *model.VideoCandidate) bool {
	if c.SubscriberCount < q.MinSubscribers || c.SubscriberCount > q.MaxSubscribers {
		return false
	}
	if c.ViewCount < q.MinViews {
		return false
	}
	switch q.VideoType {
	case model.VideoTypeShorts:
		return c.IsShort
	case model.VideoTypeLong:
		return !c.IsShort
	}
	return true
}
