package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/nickbutler25/FPLOptimizer/internal/cache"
	"github.com/nickbutler25/FPLOptimizer/internal/config"
	"github.com/nickbutler25/FPLOptimizer/internal/fpl"
	"github.com/nickbutler25/FPLOptimizer/internal/logger"
	"github.com/nickbutler25/FPLOptimizer/internal/planner"
	"github.com/nickbutler25/FPLOptimizer/internal/types"
	"github.com/nickbutler25/FPLOptimizer/internal/validator"
)

// TransferHandler serves multi-gameweek transfer planning.
type TransferHandler struct {
	fpl    *fpl.Client
	cache  *cache.Cache
	config *config.Config
	log    *logrus.Logger
}

func NewTransferHandler(fplClient *fpl.Client, c *cache.Cache, cfg *config.Config) *TransferHandler {
	return &TransferHandler{
		fpl:    fplClient,
		cache:  c,
		config: cfg,
		log:    logger.Get(),
	}
}

// transferPlanRequest accepts either an explicit roster or an FPL
// entry id to load the squad from.
type transferPlanRequest struct {
	EntryID         int                 `json:"entry_id,omitempty"`
	Roster          []types.RosterEntry `json:"roster,omitempty"`
	Bank            float64             `json:"bank"`
	CurrentGameweek int                 `json:"current_gameweek,omitempty"`
	NumGameweeks    int                 `json:"num_gameweeks"`
	FreeTransfers   int                 `json:"free_transfers"`
	DiscountFactor  float64             `json:"discount_factor,omitempty"`
}

// PlanTransfers handles POST /transfer-plan.
func (h *TransferHandler) PlanTransfers(c *gin.Context) {
	var req transferPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "Invalid request format",
			Code:    "INVALID_REQUEST",
			Details: map[string]string{"validation_error": err.Error()},
		})
		return
	}
	if req.DiscountFactor == 0 {
		req.DiscountFactor = 1
	}
	if errs := validator.ValidateTransferPlan(req.NumGameweeks, req.FreeTransfers, req.DiscountFactor); len(errs) > 0 {
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
	if len(req.Roster) == 0 && req.EntryID == 0 {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error: "Either roster or entry_id is required",
			Code:  "MISSING_ROSTER",
		})
		return
	}

	pool, err := h.fpl.GetPlayers(c.Request.Context())
	if err != nil {
		h.log.WithError(err).Error("Failed to load player pool")
		c.JSON(http.StatusBadGateway, types.ErrorResponse{
			Error: "Upstream FPL data unavailable",
			Code:  "UPSTREAM_UNAVAILABLE",
		})
		return
	}

	roster := req.Roster
	bank := req.Bank
	gameweek := req.CurrentGameweek
	if len(roster) == 0 {
		if gameweek == 0 {
			gameweek, err = h.fpl.CurrentGameweek(c.Request.Context())
			if err != nil {
				c.JSON(http.StatusBadGateway, types.ErrorResponse{
					Error: "Upstream FPL data unavailable",
					Code:  "UPSTREAM_UNAVAILABLE",
				})
				return
			}
		}
		roster, bank, err = h.fpl.GetSquad(c.Request.Context(), req.EntryID, gameweek)
		if err != nil {
			h.log.WithError(err).WithField("entry_id", req.EntryID).Error("Failed to load squad")
			c.JSON(http.StatusBadGateway, types.ErrorResponse{
				Error: "Could not load squad for entry",
				Code:  "SQUAD_UNAVAILABLE",
			})
			return
		}
	}

	timeout := time.Duration(h.config.OptimizationTimeout) * time.Second
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	p := planner.New(planner.Config{
		BeamWidth:             h.config.PlannerBeamWidth,
		MaxTransfersPerWeek:   h.config.PlannerMaxTransfers,
		CandidatesPerPosition: h.config.PlannerCandidates,
	})
	plan := p.Plan(ctx, pool, planner.Request{
		Roster:          roster,
		Bank:            bank,
		CurrentGameweek: gameweek,
		NumGameweeks:    req.NumGameweeks,
		FreeTransfers:   req.FreeTransfers,
		DiscountFactor:  req.DiscountFactor,
	})
	c.JSON(http.StatusOK, plan)
}
