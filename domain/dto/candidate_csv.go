package dto

import (
	"strconv"
	"time"

	"trend-finder/domain/model"
)

// CandidateCSVHeader is the column row of research exports
var CandidateCSVHeader = []string{"title", "url", "channel", "views", "subscribers", "published_at", "channel_created_at", "duration", "type", "keyword"}

// CandidateCSVRow renders a candidate in CandidateCSVHeader order
func CandidateCSVRow(c model.VideoCandidate) []string {
	return []string{
		c.Title,
		c.URL(),
		c.ChannelName,
		strconv.FormatInt(c.ViewCount, 10),
		strconv.FormatInt(c.SubscriberCount, 10),
		c.PublishedAt.UTC().Format(time.RFC3339),
		c.ChannelCreatedAt.UTC().Format(time.RFC3339),
		c.Duration,
		string(c.VideoType()),
		c.Keyword,
	}
}
