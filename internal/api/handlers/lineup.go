package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/nickbutler25/FPLOptimizer/internal/logger"
	"github.com/nickbutler25/FPLOptimizer/internal/optimizer"
	"github.com/nickbutler25/FPLOptimizer/internal/types"
)

// LineupHandler serves starting-eleven selection for an existing roster.
type LineupHandler struct {
	log *logrus.Logger
}

func NewLineupHandler() *LineupHandler {
	return &LineupHandler{log: logger.Get()}
}

type lineupRequest struct {
	Roster   []types.RosterEntry `json:"roster"`
	Gameweek int                 `json:"gameweek,omitempty"`
}

// SelectLineup handles POST /lineup: best formation, starting XI and
// captaincy for a roster of 11 to 15 players.
func (h *LineupHandler) SelectLineup(c *gin.Context) {
	var req lineupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "Invalid request format",
			Code:    "INVALID_REQUEST",
			Details: map[string]string{"validation_error": err.Error()},
		})
		return
	}

	squad, err := optimizer.SelectStartingXI(req.Roster, req.Gameweek)
	if err != nil {
		c.JSON(http.StatusOK, types.OptimizationResult{
			Status: types.StatusError,
			Error:  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, types.OptimizationResult{
		Status:          types.StatusSuccess,
		Squad:           squad,
		TotalCost:       squad.TotalCost,
		TotalPoints:     squad.TotalPoints,
		ConfidenceScore: 1.0,
	})
}
