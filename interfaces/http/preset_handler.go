package http

import (
	"net/http"
	"strconv"
	"time"

	"trend-finder/domain/dto"
	"trend-finder/domain/model"
	"trend-finder/infrastructure/logger"
	"trend-finder/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/go-querystring/query"
)

// IPresetHandler defines the preset API
type IPresetHandler interface {
	List(ctx *gin.Context)
	Get(ctx *gin.Context)
	Create(ctx *gin.Context)
	Delete(ctx *gin.Context)
}

type PresetHandler struct {
	presetUsecase usecase.IPresetUsecase
}

func NewPresetHandler(presetUsecase usecase.IPresetUsecase) IPresetHandler {
	return &PresetHandler{presetUsecase: presetUsecase}
}

type presetView struct {
	model.Preset
	RunURL string `json:"run_url"`
}

// runURL links to the results page of the preset with the window ending at now
func runURL(p model.Preset, now time.Time) string {
	v, err := query.Values(dto.FromQuery(p.Query(now)))
	if err != nil {
		logger.GetLogger().WithField("error", err).WithField("preset", p.Name).Warn("Error while encoding preset link")
		return "/research"
	}
	return "/research?" + v.Encode()
}

func presetViews(presets []model.Preset, now time.Time) []presetView {
	views := make([]presetView, 0, len(presets))
	for _, p := range presets {
		views = append(views, presetView{Preset: p, RunURL: runURL(p, now)})
	}
	return views
}

// List handles GET /api/presets
func (h *PresetHandler) List(ctx *gin.Context) {
	presets, err := h.presetUsecase.List(ctx.Request.Context())
	if err != nil {
		ctx.JSON(statusFor(err), gin.H{"error": "Failed to list presets", "message": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": presetViews(presets, time.Now().UTC())})
}

// Get handles GET /api/presets/:id
func (h *PresetHandler) Get(ctx *gin.Context) {
	id, ok := presetID(ctx)
	if !ok {
		return
	}
	preset, err := h.presetUsecase.Get(ctx.Request.Context(), id)
	if err != nil {
		ctx.JSON(statusFor(err), gin.H{"error": "Failed to get preset", "message": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": presetView{Preset: *preset, RunURL: runURL(*preset, time.Now().UTC())}})
}

// Create handles POST /api/presets
func (h *PresetHandler) Create(ctx *gin.Context) {
	var req dto.PresetRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid preset", "message": err.Error()})
		return
	}
	preset, err := h.presetUsecase.Create(ctx.Request.Context(), req.ToModel())
	if err != nil {
		ctx.JSON(statusFor(err), gin.H{"error": "Failed to create preset", "message": err.Error()})
		return
	}
	logger.GetLogger().WithField("subject", ctx.GetString("subject")).WithField("preset", preset.Name).Info("Preset saved")
	ctx.JSON(http.StatusCreated, gin.H{"success": true, "data": presetView{Preset: *preset, RunURL: runURL(*preset, time.Now().UTC())}})
}

// Delete handles DELETE /api/presets/:id
func (h *PresetHandler) Delete(ctx *gin.Context) {
	id, ok := presetID(ctx)
	if !ok {
		return
	}
	if err := h.presetUsecase.Delete(ctx.Request.Context(), id); err != nil {
		ctx.JSON(statusFor(err), gin.H{"error": "Failed to delete preset", "message": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

func presetID(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil || id == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Preset ID must be a positive number"})
		return 0, false
	}
	return uint(id), true
}
