package http

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"time"

	"trend-finder/domain/dto"
	"trend-finder/domain/model"
	"trend-finder/infrastructure/logger"
	"trend-finder/usecase"

	"github.com/gin-gonic/gin"
)

// IResearchHandler defines the research pages and API
type IResearchHandler interface {
	Index(ctx *gin.Context)
	ResearchPage(ctx *gin.Context)
	ResearchJSON(ctx *gin.Context)
	ResearchCSV(ctx *gin.Context)
}

// DefaultsFunc returns the default query with the window ending at now
type DefaultsFunc func(now time.Time) model.SearchQuery

type ResearchHandler struct {
	researchUsecase usecase.IResearchUsecase
	presetUsecase   usecase.IPresetUsecase
	defaults        DefaultsFunc
	timeout         time.Duration
}

func NewResearchHandler(
	researchUsecase usecase.IResearchUsecase,
	presetUsecase usecase.IPresetUsecase,
	defaults DefaultsFunc,
	timeout time.Duration,
) IResearchHandler {
	return &ResearchHandler{
		researchUsecase: researchUsecase,
		presetUsecase:   presetUsecase,
		defaults:        defaults,
		timeout:         timeout,
	}
}

type formView struct {
	Keywords       string
	StartDate      string
	EndDate        string
	MinSubscribers int64
	MaxSubscribers int64
	MinViews       int64
	ResultLimit    int64
	VideoType      string
	OnFailure      string
}

type pageData struct {
	Form       formView
	Result     *model.ResearchResult
	Error      string
	Presets    []presetView
	VideoTypes []model.VideoType
}

func newFormView(q model.SearchQuery, keywords string) formView {
	req := dto.FromQuery(q)
	if keywords != "" {
		req.Keywords = keywords
	}
	return formView{
		Keywords:       req.Keywords,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		MinSubscribers: q.MinSubscribers,
		MaxSubscribers: q.MaxSubscribers,
		MinViews:       q.MinViews,
		ResultLimit:    q.ResultLimit,
		VideoType:      string(q.VideoType),
		OnFailure:      string(q.FailurePolicy),
	}
}

func (h *ResearchHandler) page(ctx *gin.Context, form formView) pageData {
	data := pageData{
		Form:       form,
		VideoTypes: []model.VideoType{model.VideoTypeAll, model.VideoTypeShorts, model.VideoTypeLong},
	}
	if h.presetUsecase != nil {
		presets, err := h.presetUsecase.List(ctx.Request.Context())
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("Error while listing presets")
		}
		data.Presets = presetViews(presets, time.Now().UTC())
	}
	return data
}

// Index handles GET / and renders the form with the configured defaults
func (h *ResearchHandler) Index(ctx *gin.Context) {
	defaults := h.defaults(time.Now().UTC())
	ctx.HTML(http.StatusOK, "index.tmpl", h.page(ctx, newFormView(defaults, "")))
}

// ResearchPage handles GET /research and renders the results
func (h *ResearchHandler) ResearchPage(ctx *gin.Context) {
	query, raw, err := h.bindQuery(ctx)
	var result *model.ResearchResult
	if err == nil {
		result, err = h.run(ctx, query)
	}

	data := h.page(ctx, newFormView(query, raw.Keywords))
	data.Result = result
	if err != nil {
		data.Error = userMessage(err)
		ctx.HTML(statusFor(err), "results.tmpl", data)
		return
	}
	ctx.HTML(http.StatusOK, "results.tmpl", data)
}

// ResearchJSON handles GET /api/research
func (h *ResearchHandler) ResearchJSON(ctx *gin.Context) {
	query, _, err := h.bindQuery(ctx)
	if err != nil {
		ctx.JSON(statusFor(err), gin.H{"error": "Invalid research query", "message": err.Error()})
		return
	}
	result, err := h.run(ctx, query)
	if err != nil {
		ctx.JSON(statusFor(err), gin.H{"error": "Research failed", "message": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"empty":   result.Empty(),
		"data":    result,
	})
}

var csvHeader = dto.CandidateCSVHeader

// ResearchCSV handles GET /api/research.csv
func (h *ResearchHandler) ResearchCSV(ctx *gin.Context) {
	query, _, err := h.bindQuery(ctx)
	if err != nil {
		ctx.JSON(statusFor(err), gin.H{"error": "Invalid research query", "message": err.Error()})
		return
	}
	result, err := h.run(ctx, query)
	if err != nil {
		ctx.JSON(statusFor(err), gin.H{"error": "Research failed", "message": err.Error()})
		return
	}

	filename := fmt.Sprintf("research-%s.csv", result.StartedAt.Format("20060102-150405"))
	ctx.Header("Content-Type", "text/csv; charset=utf-8")
	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	ctx.Status(http.StatusOK)

	w := csv.NewWriter(ctx.Writer)
	_ = w.Write(csvHeader)
	for _, c := range result.Candidates {
		_ = w.Write(dto.CandidateCSVRow(c))
	}
	w.Flush()
	if err := w.Error(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while writing csv")
	}
}

// bindQuery merges the query string over the defaults
func (h *ResearchHandler) bindQuery(ctx *gin.Context) (model.SearchQuery, dto.ResearchRequest, error) {
	var req dto.ResearchRequest
	defaults := h.defaults(time.Now().UTC())
	if err := ctx.ShouldBindQuery(&req); err != nil {
		return defaults, req, fmt.Errorf("%w: %v", model.ErrValidation, err)
	}
	query, err := req.ToQuery(defaults)
	if err != nil {
		return defaults, req, err
	}
	return query, req, nil
}

func (h *ResearchHandler) run(ctx *gin.Context, query model.SearchQuery) (*model.ResearchResult, error) {
	runCtx := ctx.Request.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, h.timeout)
		defer cancel()
	}
	result, err := h.researchUsecase.Research(runCtx, query)
	if err != nil && !errors.Is(err, model.ErrValidation) {
		logger.GetLogger().WithField("error", err).WithField("keywords", query.Keywords).Error("Research failed")
	}
	return result, err
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, model.ErrQuotaExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, model.ErrService):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, model.ErrQuotaExceeded):
		return "The YouTube API quota is exhausted. Try again later."
	case errors.Is(err, context.DeadlineExceeded):
		return "The research took too long. Try fewer keywords or a smaller result count."
	}
	return err.Error()
}
