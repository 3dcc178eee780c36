package http

import (
	"net/http"
	"strconv"

	"trend-finder/usecase"

	"github.com/gin-gonic/gin"
)

type IHistoryHandler interface {
	Recent(ctx *gin.Context)
}

type HistoryHandler struct {
	historyUsecase usecase.IHistoryUsecase
}

func NewHistoryHandler(historyUsecase usecase.IHistoryUsecase) IHistoryHandler {
	return &HistoryHandler{historyUsecase: historyUsecase}
}

// Recent handles GET /api/history?limit=20
func (h *HistoryHandler) Recent(ctx *gin.Context) {
	limit := 20
	if raw := ctx.Query("limit"); raw != "" {
		val, err := strconv.Atoi(raw)
		if err != nil || val <= 0 {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive number"})
			return
		}
		limit = val
	}
	records, err := h.historyUsecase.Recent(ctx.Request.Context(), limit)
	if err != nil {
		ctx.JSON(statusFor(err), gin.H{"error": "Failed to get history", "message": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": records})
}
