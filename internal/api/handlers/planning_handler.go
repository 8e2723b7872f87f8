package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/demandplan/internal/domain"
	"github.com/andresuchdata/demandplan/internal/service"
)

type PlanningHandler struct {
	service *service.PlanningService
}

func NewPlanningHandler(service *service.PlanningService) *PlanningHandler {
	return &PlanningHandler{service: service}
}

func (h *PlanningHandler) Analyze(c *gin.Context) {
	req, ok := bindAnalysisRequest(c)
	if !ok {
		return
	}

	result, err := h.service.Analyze(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "failed to run analysis")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *PlanningHandler) AnalyzeBySKU(c *gin.Context) {
	req, ok := bindAnalysisRequest(c)
	if !ok {
		return
	}

	results, err := h.service.AnalyzeBySKU(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "failed to run per-sku analysis")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": results})
}

func (h *PlanningHandler) Forecast(c *gin.Context) {
	var req domain.ForecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid forecast request"})
		return
	}

	points, err := h.service.Forecast(req)
	if err != nil {
		respondError(c, err, "failed to build forecast")
		return
	}
	c.JSON(http.StatusOK, gin.H{"points": points})
}

func (h *PlanningHandler) Backtest(c *gin.Context) {
	var req domain.BacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid backtest request"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"methods": h.service.Backtest(req)})
}

func (h *PlanningHandler) Pareto(c *gin.Context) {
	var items []domain.ParetoItem
	if err := c.ShouldBindJSON(&items); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expected an array of {sku,total_volume}"})
		return
	}
	c.JSON(http.StatusOK, h.service.Pareto(items))
}

func (h *PlanningHandler) Export(c *gin.Context) {
	req, ok := bindAnalysisRequest(c)
	if !ok {
		return
	}

	payload, err := h.service.Export(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "failed to export decision points")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="decision_points.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", payload)
}

func (h *PlanningHandler) ClearCache(c *gin.Context) {
	if err := h.service.InvalidateCache(c.Request.Context()); err != nil {
		respondError(c, err, "failed to clear analysis cache")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

func bindAnalysisRequest(c *gin.Context) (domain.AnalysisRequest, bool) {
	var req domain.AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Debug().Err(err).Msg("planning: bind analysis request failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid analysis request"})
		return req, false
	}

	for i := range req.Scenarios {
		if strings.TrimSpace(req.Scenarios[i].ID) == "" {
			req.Scenarios[i].ID = uuid.NewString()
		}
	}
	return req, true
}

func respondError(c *gin.Context, err error, fallback string) {
	if errors.Is(err, domain.ErrUnknownMethod) || errors.Is(err, domain.ErrInvalidScenario) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	log.Error().Err(err).Str("path", c.FullPath()).Msg(fallback)
	c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
}
