package handlers

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/nickbutler25/FPLOptimizer/internal/fpl"
	"github.com/nickbutler25/FPLOptimizer/internal/logger"
	"github.com/nickbutler25/FPLOptimizer/internal/types"
)

// PlayerHandler serves the candidate-pool endpoints.
type PlayerHandler struct {
	fpl *fpl.Client
	log *logrus.Logger
}

func NewPlayerHandler(fplClient *fpl.Client) *PlayerHandler {
	return &PlayerHandler{fpl: fplClient, log: logger.Get()}
}

// ListPlayers handles GET /players with optional position, team,
// max_cost and available filters. Results are sorted by expected
// points for the next gameweek.
func (h *PlayerHandler) ListPlayers(c *gin.Context) {
	pool, err := h.fpl.GetPlayers(c.Request.Context())
	if err != nil {
		h.log.WithError(err).Error("Failed to load player pool")
		c.JSON(http.StatusBadGateway, types.ErrorResponse{
			Error: "Upstream FPL data unavailable",
			Code:  "UPSTREAM_UNAVAILABLE",
		})
		return
	}

	position := types.Position(c.Query("position"))
	team := c.Query("team")
	maxCost := 0.0
	if raw := c.Query("max_cost"); raw != "" {
		maxCost, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, types.ErrorResponse{
				Error: "max_cost must be a number",
				Code:  "INVALID_QUERY",
			})
			return
		}
	}
	availableOnly := c.Query("available") == "true"

	filtered := make([]types.Player, 0, len(pool))
	for _, p := range pool {
		if position != "" && p.Position != position {
			continue
		}
		if team != "" && p.Team != team {
			continue
		}
		if maxCost > 0 && p.Cost > maxCost {
			continue
		}
		if availableOnly && !p.Available() {
			continue
		}
		filtered = append(filtered, p)
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		pi, pj := filtered[i].ExpectedPointsAt(0), filtered[j].ExpectedPointsAt(0)
		if pi != pj {
			return pi > pj
		}
		return filtered[i].ID < filtered[j].ID
	})

	c.JSON(http.StatusOK, gin.H{
		"players": filtered,
		"count":   len(filtered),
	})
}
