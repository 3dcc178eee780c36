package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"trend-finder/domain/dto"
	"trend-finder/domain/model"
	"trend-finder/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *model.ResearchResult {
	return &model.ResearchResult{
		Candidates: []model.VideoCandidate{{
			Title:           "Chess traps every beginner falls for",
			VideoID:         "vid1",
			ChannelName:     "Small Chess",
			ViewCount:       50000,
			SubscriberCount: 5000,
			PublishedAt:     time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
			Duration:        "PT45S",
			DurationSeconds: 45,
			IsShort:         true,
			Keyword:         "chess",
		}},
		Failures: []model.KeywordFailure{{Keyword: "go", Error: "youtube service error"}},
		Scanned:  3,
		Elapsed:  1500 * time.Millisecond,
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeResult(&buf, "table", sampleResult()))

	out := buf.String()
	assert.Contains(t, out, `skipped "go": youtube service error`)
	assert.Contains(t, out, "50,000")
	assert.Contains(t, out, "5,000")
	assert.Contains(t, out, "Shorts")
	assert.Contains(t, out, "2024-05-01")
	assert.Contains(t, out, "https://youtube.com/watch?v=vid1")
	assert.Contains(t, out, "1 of 3 videos matched in 1.5s")
}

func TestWriteTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeResult(&buf, "table", &model.ResearchResult{}))
	assert.Equal(t, "No videos matched the filters.\n", buf.String())
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeResult(&buf, "csv", sampleResult()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, dto.CandidateCSVHeader, rows[0])
	assert.Equal(t, "Shorts", rows[1][8])
}

func TestRunResearch_UnknownOutput(t *testing.T) {
	err := runResearch(context.Background(), &bytes.Buffer{}, &researchOptions{output: "xml"})
	assert.True(t, errors.Is(err, model.ErrValidation))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}

func fakeYouTube(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/search"):
		fmt.Fprint(w, `{"items": [{"id": {"kind": "youtube#video", "videoId": "vid1"},
			"snippet": {"publishedAt": "2024-05-01T10:00:00Z", "channelId": "ch1", "title": "Chess, openings & traps", "channelTitle": "Small Chess"}}]}`)
	case strings.HasSuffix(r.URL.Path, "/videos"):
		fmt.Fprint(w, `{"items": [{"id": "vid1", "statistics": {"viewCount": "50000"}, "contentDetails": {"duration": "PT4M13S"}}]}`)
	case strings.HasSuffix(r.URL.Path, "/channels"):
		fmt.Fprint(w, `{"items": [{"id": "ch1", "snippet": {"publishedAt": "2019-03-04T00:00:00Z"}, "statistics": {"subscriberCount": "5000"}}]}`)
	default:
		http.NotFound(w, r)
	}
}

func TestResearchCommand_StdoutCarriesOnlyResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(fakeYouTube))
	t.Cleanup(srv.Close)
	t.Setenv("YOUTUBE_API_KEY", "test-key")
	t.Setenv("YOUTUBE_BASE_URL", srv.URL+"/")
	t.Setenv("YOUTUBE_ACCESS_TOKEN", "")
	t.Setenv("YOUTUBE_REFRESH_TOKEN", "")
	t.Chdir(t.TempDir())
	t.Cleanup(func() { logger.SetOutput(os.Stdout) })

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"research", "chess", "--output", "csv", "--no-cache", "--verbose"})
	require.NoError(t, cmd.Execute())

	rows, err := csv.NewReader(strings.NewReader(stdout.String())).ReadAll()
	require.NoError(t, err, stdout.String())
	require.Len(t, rows, 2)
	assert.Equal(t, dto.CandidateCSVHeader, rows[0])
	assert.Equal(t, "https://youtube.com/watch?v=vid1", rows[1][1])
	assert.Equal(t, "50000", rows[1][3])

	assert.Contains(t, stderr.String(), "Research finished")
}

func TestConfigureLogging_QuietByDefault(t *testing.T) {
	var buf bytes.Buffer
	t.Cleanup(func() { logger.SetOutput(os.Stdout) })

	configureLogging(&buf, false)
	logger.GetLogger().Info("progress")
	assert.Empty(t, buf.String())

	logger.GetLogger().Warn("attention")
	assert.Contains(t, buf.String(), "attention")
}
