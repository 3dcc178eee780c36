package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	httpHandler "trend-finder/interfaces/http"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResearch struct{}

func (stubResearch) Index(ctx *gin.Context)        { ctx.String(http.StatusOK, "index") }
func (stubResearch) ResearchPage(ctx *gin.Context) { ctx.String(http.StatusOK, "page") }
func (stubResearch) ResearchJSON(ctx *gin.Context) { ctx.String(http.StatusOK, "json") }
func (stubResearch) ResearchCSV(ctx *gin.Context)  { ctx.String(http.StatusOK, "csv") }

type stubPresets struct{}

func (stubPresets) List(ctx *gin.Context)   { ctx.String(http.StatusOK, "list") }
func (stubPresets) Get(ctx *gin.Context)    { ctx.String(http.StatusOK, "get") }
func (stubPresets) Create(ctx *gin.Context) { ctx.String(http.StatusCreated, "create") }
func (stubPresets) Delete(ctx *gin.Context) { ctx.String(http.StatusOK, "delete") }

type stubHistory struct{}

func (stubHistory) Recent(ctx *gin.Context) { ctx.String(http.StatusOK, "history") }

func TestInitiateRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router, err := InitiateRouter(stubResearch{}, stubPresets{}, stubHistory{}, httpHandler.NewHealthHandler("test"), "secret")
	require.NoError(t, err)

	tests := []struct {
		method string
		target string
		status int
		body   string
	}{
		{http.MethodGet, "/", http.StatusOK, "index"},
		{http.MethodGet, "/research?keywords=chess", http.StatusOK, "page"},
		{http.MethodGet, "/api/research?keywords=chess", http.StatusOK, "json"},
		{http.MethodGet, "/api/research.csv?keywords=chess", http.StatusOK, "csv"},
		{http.MethodGet, "/api/history", http.StatusOK, "history"},
		{http.MethodGet, "/api/presets", http.StatusOK, "list"},
		{http.MethodGet, "/api/presets/1", http.StatusOK, "get"},
		{http.MethodPost, "/api/presets", http.StatusUnauthorized, ""},
		{http.MethodDelete, "/api/presets/1", http.StatusUnauthorized, ""},
		{http.MethodGet, "/healthz", http.StatusOK, ""},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.target, nil))
		assert.Equal(t, tt.status, w.Code, tt.method+" "+tt.target)
		if tt.body != "" {
			assert.Equal(t, tt.body, w.Body.String())
		}
	}
}
