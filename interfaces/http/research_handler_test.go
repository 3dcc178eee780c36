package http

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"trend-finder/domain/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockResearchUsecase struct {
	mock.Mock
}

func (m *MockResearchUsecase) Research(ctx context.Context, query model.SearchQuery) (*model.ResearchResult, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ResearchResult), args.Error(1)
}

type MockPresetUsecase struct {
	mock.Mock
}

func (m *MockPresetUsecase) List(ctx context.Context) ([]model.Preset, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Preset), args.Error(1)
}

func (m *MockPresetUsecase) Get(ctx context.Context, id uint) (*model.Preset, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Preset), args.Error(1)
}

func (m *MockPresetUsecase) Create(ctx context.Context, preset *model.Preset) (*model.Preset, error) {
	args := m.Called(ctx, preset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Preset), args.Error(1)
}

func (m *MockPresetUsecase) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func testDefaults(now time.Time) model.SearchQuery {
	return model.SearchQuery{
		PublishedAfter:  now.AddDate(0, 0, -7),
		PublishedBefore: now,
		MaxSubscribers:  99999,
		MinViews:        10001,
		ResultLimit:     20,
		VideoType:       model.VideoTypeAll,
		FailurePolicy:   model.FailurePolicySkip,
	}
}

func sampleResult() *model.ResearchResult {
	return &model.ResearchResult{
		Query: model.SearchQuery{Keywords: []string{"chess"}},
		Candidates: []model.VideoCandidate{{
			Title:            "Chess, openings & traps",
			VideoID:          "vid1",
			ChannelName:      "Small Chess",
			ViewCount:        50000,
			SubscriberCount:  5000,
			PublishedAt:      time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
			ChannelCreatedAt: time.Date(2019, 3, 4, 0, 0, 0, 0, time.UTC),
			Duration:         "PT4M13S",
			DurationSeconds:  253,
			Keyword:          "chess",
		}},
		Failures:  []model.KeywordFailure{},
		Scanned:   2,
		StartedAt: time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC),
	}
}

func newResearchRouter(t *testing.T, research *MockResearchUsecase, presets *MockPresetUsecase) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	require.NoError(t, LoadTemplates(router))

	h := NewResearchHandler(research, presets, testDefaults, time.Second)
	router.GET("/", h.Index)
	router.GET("/research", h.ResearchPage)
	router.GET("/api/research", h.ResearchJSON)
	router.GET("/api/research.csv", h.ResearchCSV)
	return router
}

func get(router *gin.Engine, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func noPresets() *MockPresetUsecase {
	presets := new(MockPresetUsecase)
	presets.On("List", mock.Anything).Return([]model.Preset{}, nil)
	return presets
}

func TestResearchJSON(t *testing.T) {
	research := new(MockResearchUsecase)
	research.On("Research", mock.Anything, mock.MatchedBy(func(q model.SearchQuery) bool {
		return len(q.Keywords) == 2 && q.Keywords[0] == "chess" && q.Keywords[1] == "go" &&
			q.MinSubscribers == 10 && q.MaxSubscribers == 5000 && q.MinViews == 10001 &&
			q.ResultLimit == 5 && q.VideoType == model.VideoTypeShorts &&
			q.PublishedAfter.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)) &&
			q.PublishedBefore.Equal(time.Date(2024, 5, 7, 23, 59, 59, 0, time.UTC))
	})).Return(sampleResult(), nil).Once()

	router := newResearchRouter(t, research, noPresets())
	w := get(router, "/api/research?keywords=chess,%20go&start_date=2024-05-01&end_date=2024-05-07&min_subs=10&max_subs=5000&limit=5&video_type=Shorts")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body struct {
		Success bool                 `json:"success"`
		Empty   bool                 `json:"empty"`
		Data    model.ResearchResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.False(t, body.Empty)
	require.Len(t, body.Data.Candidates, 1)
	assert.Equal(t, "vid1", body.Data.Candidates[0].VideoID)
	research.AssertExpectations(t)
}

func TestResearchJSON_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", model.ErrValidation, http.StatusBadRequest},
		{"quota", errors.Join(model.ErrService, model.ErrQuotaExceeded), http.StatusTooManyRequests},
		{"service", model.ErrService, http.StatusBadGateway},
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			research := new(MockResearchUsecase)
			research.On("Research", mock.Anything, mock.Anything).Return(nil, tt.err)

			w := get(newResearchRouter(t, research, noPresets()), "/api/research?keywords=chess")
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestResearchJSON_BadDateIsRejectedBeforeResearch(t *testing.T) {
	research := new(MockResearchUsecase)

	w := get(newResearchRouter(t, research, noPresets()), "/api/research?keywords=chess&start_date=yesterday")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	research.AssertNotCalled(t, "Research", mock.Anything, mock.Anything)

	w = get(newResearchRouter(t, research, noPresets()), "/api/research?keywords=chess&min_subs=many")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	research.AssertNotCalled(t, "Research", mock.Anything, mock.Anything)
}

func TestResearchCSV(t *testing.T) {
	research := new(MockResearchUsecase)
	research.On("Research", mock.Anything, mock.Anything).Return(sampleResult(), nil)

	w := get(newResearchRouter(t, research, noPresets()), "/api/research.csv?keywords=chess")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "research-20240510-120000.csv")

	rows, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{
		"Chess, openings & traps", "https://youtube.com/watch?v=vid1", "Small Chess", "50000", "5000",
		"2024-05-01T10:00:00Z", "2019-03-04T00:00:00Z", "PT4M13S", "Long", "chess",
	}, rows[1])
}

func TestIndexRendersDefaults(t *testing.T) {
	presets := new(MockPresetUsecase)
	presets.On("List", mock.Anything).Return([]model.Preset{{
		ID: 1, Name: "Chess weekly", Keywords: "chess", WindowDays: 7, MaxSubscribers: 99999, MinViews: 10001, ResultLimit: 20, VideoType: model.VideoTypeAll,
	}}, nil)

	w := get(newResearchRouter(t, new(MockResearchUsecase), presets), "/")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `name="max_subs" min="0" value="99999"`)
	assert.Contains(t, body, `name="min_views" min="0" value="10001"`)
	assert.Contains(t, body, "Chess weekly")
	assert.Contains(t, body, "/research?")
}

func TestResearchPage(t *testing.T) {
	t.Run("renders candidates", func(t *testing.T) {
		research := new(MockResearchUsecase)
		result := sampleResult()
		result.Failures = []model.KeywordFailure{{Keyword: "broken", Error: "youtube service error"}}
		research.On("Research", mock.Anything, mock.Anything).Return(result, nil)

		w := get(newResearchRouter(t, research, noPresets()), "/research?keywords=chess,broken")
		require.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "https://youtube.com/watch?v=vid1")
		assert.Contains(t, body, "50,000")
		assert.Contains(t, body, "5,000")
		assert.Contains(t, body, "2019-03-04")
		assert.Contains(t, body, "Long")
		assert.Contains(t, body, `Keyword "broken" was skipped`)
	})

	t.Run("no matches notice", func(t *testing.T) {
		research := new(MockResearchUsecase)
		research.On("Research", mock.Anything, mock.Anything).Return(&model.ResearchResult{}, nil)

		w := get(newResearchRouter(t, research, noPresets()), "/research?keywords=nothing")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "No videos matched the filters.")
	})

	t.Run("validation banner", func(t *testing.T) {
		research := new(MockResearchUsecase)
		research.On("Research", mock.Anything, mock.Anything).
			Return(nil, errors.Join(model.ErrValidation, errors.New("keywords is required")))

		w := get(newResearchRouter(t, research, noPresets()), "/research?keywords=")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `class="banner error"`)
		assert.Contains(t, w.Body.String(), "keywords is required")
	})
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(model.ErrNotFound))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(model.ErrUnavailable))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
}
