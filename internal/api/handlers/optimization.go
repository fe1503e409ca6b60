package handlers

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nickbutler25/FPLOptimizer/internal/cache"
	"github.com/nickbutler25/FPLOptimizer/internal/config"
	"github.com/nickbutler25/FPLOptimizer/internal/fpl"
	"github.com/nickbutler25/FPLOptimizer/internal/logger"
	"github.com/nickbutler25/FPLOptimizer/internal/optimizer"
	"github.com/nickbutler25/FPLOptimizer/internal/types"
	"github.com/nickbutler25/FPLOptimizer/internal/validator"
	"github.com/nickbutler25/FPLOptimizer/internal/ws"
)

// OptimizationHandler serves the squad-selection endpoints.
type OptimizationHandler struct {
	fpl    *fpl.Client
	cache  *cache.Cache
	wsHub  *ws.Hub
	config *config.Config
	log    *logrus.Logger
}

func NewOptimizationHandler(fplClient *fpl.Client, c *cache.Cache, wsHub *ws.Hub, cfg *config.Config) *OptimizationHandler {
	return &OptimizationHandler{
		fpl:    fplClient,
		cache:  c,
		wsHub:  wsHub,
		config: cfg,
		log:    logger.Get(),
	}
}

// simpleRequest is the basic optimization body: budget plus optional
// formation and gameweek, everything else defaulted.
type simpleRequest struct {
	Budget    float64 `json:"budget"`
	Formation string  `json:"formation,omitempty"`
	Gameweek  int     `json:"gameweek,omitempty"`
}

// Optimize handles POST /optimize.
func (h *OptimizationHandler) Optimize(c *gin.Context) {
	var req simpleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "Invalid request format",
			Code:    "INVALID_REQUEST",
			Details: map[string]string{"validation_error": err.Error()},
		})
		return
	}
	h.run(c, types.OptimizationRequest{
		Budget:    req.Budget,
		Formation: req.Formation,
		Gameweek:  req.Gameweek,
	})
}

// OptimizeAdvanced handles POST /optimize/advanced with the full
// constraint and preference surface.
func (h *OptimizationHandler) OptimizeAdvanced(c *gin.Context) {
	var req types.OptimizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "Invalid request format",
			Code:    "INVALID_REQUEST",
			Details: map[string]string{"validation_error": err.Error()},
		})
		return
	}
	h.run(c, req)
}

func (h *OptimizationHandler) run(c *gin.Context, req types.OptimizationRequest) {
	if errs := validator.ValidateOptimization(req); len(errs) > 0 {
		details := make(map[string]string, len(errs))
		for _, e := range errs {
			details[e.Field] = e.Message
		}
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "Request validation failed",
			Code:    "VALIDATION_FAILED",
			Details: details,
		})
		return
	}

	cacheKey := requestCacheKey("optimize", req)
	var cached types.OptimizationResult
	if h.cache.Get(c.Request.Context(), cacheKey, &cached) == nil {
		h.log.Debug("Returning cached optimization result")
		c.JSON(http.StatusOK, cached)
		return
	}

	jobID := uuid.New().String()
	c.Header("X-Job-ID", jobID)
	h.wsHub.PublishProgress(jobID, 0, "fetching", "Loading player data")

	pool, err := h.fpl.GetPlayers(c.Request.Context())
	if err != nil {
		h.log.WithError(err).Error("Failed to load player pool")
		c.JSON(http.StatusBadGateway, types.ErrorResponse{
			Error: "Upstream FPL data unavailable",
			Code:  "UPSTREAM_UNAVAILABLE",
		})
		return
	}

	h.wsHub.PublishProgress(jobID, 0.3, "optimizing", "Searching squads")
	timeout := time.Duration(h.config.OptimizationTimeout) * time.Second
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	opt := optimizer.New(optimizer.SearchConfig{
		PopulationSize: h.config.SearchPopulation,
		Generations:    h.config.SearchGenerations,
	})
	result := opt.Optimize(ctx, pool, req)

	h.wsHub.PublishProgress(jobID, 1, "done", "Optimization complete")

	if result.Status == types.StatusSuccess {
		h.cache.Set(c.Request.Context(), cacheKey, result, cache.ResultTTL)
	}
	c.JSON(http.StatusOK, result)
}

// requestCacheKey hashes the full request so distinct constraint sets
// never collide.
func requestCacheKey(prefix string, req interface{}) []string {
	data, err := json.Marshal(req)
	if err != nil {
		return []string{prefix, "unkeyed"}
	}
	return []string{prefix, fmt.Sprintf("%x", md5.Sum(data))}
}
