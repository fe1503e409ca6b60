package types

import "time"

// ResultStatus is the engine's explicit outcome flag. Every public
// entry point returns one; the engine never surfaces a bare panic.
type ResultStatus string

const (
	StatusSuccess ResultStatus = "success"
	StatusError   ResultStatus = "error"
	StatusPartial ResultStatus = "partial"
)

// Severity grades validation errors and risk warnings.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// ValidationError is one field-scoped problem with a request. The
// validator collects all of them rather than failing on the first.
type ValidationError struct {
	Field    string   `json:"field"`
	Message  string   `json:"message"`
	Code     string   `json:"code"`
	Severity Severity `json:"severity"`
}

// WarningType classifies the risk flags attached to a result.
type WarningType string

const (
	WarningInjuryRisk        WarningType = "injury_risk"
	WarningRotationRisk      WarningType = "rotation_risk"
	WarningFixtureDifficulty WarningType = "fixture_difficulty"
	WarningFormDecline       WarningType = "form_decline"
	WarningPriceRise         WarningType = "price_rise"
	WarningLowOwnership      WarningType = "low_ownership"
)

// Warning is a risk flag on a selected player.
type Warning struct {
	Type     WarningType `json:"type"`
	PlayerID int         `json:"player_id,omitempty"`
	Message  string      `json:"message"`
	Severity Severity    `json:"severity"`
}

// ConstraintImpact reports an applied constraint and how strongly it
// shaped the search (0 = no effect, 1 = dominant).
type ConstraintImpact struct {
	Name   string  `json:"name"`
	Impact float64 `json:"impact"`
}

// OptimizationResult is the structured outcome of squad selection.
// Squad is absent on failure; Error names the binding constraint.
type OptimizationResult struct {
	Status             ResultStatus       `json:"status"`
	Squad              *Squad             `json:"squad,omitempty"`
	TotalCost          float64            `json:"total_cost"`
	TotalPoints        float64            `json:"total_points"`
	ConfidenceScore    float64            `json:"confidence_score"`
	AlgorithmUsed      Algorithm          `json:"algorithm_used"`
	ConstraintsApplied []ConstraintImpact `json:"constraints_applied,omitempty"`
	Warnings           []Warning          `json:"warnings,omitempty"`
	Error              string             `json:"error,omitempty"`
}

// TransferredPlayer identifies one side of a transfer pair on the wire.
type TransferredPlayer struct {
	PlayerID   int      `json:"player_id"`
	PlayerName string   `json:"player_name"`
	Position   Position `json:"position"`
	Cost       float64  `json:"cost,omitempty"`
}

// WeeklySolution is the planned activity for one gameweek.
type WeeklySolution struct {
	Gameweek               int                 `json:"gameweek"`
	TransfersIn            []TransferredPlayer `json:"transfers_in"`
	TransfersOut           []TransferredPlayer `json:"transfers_out"`
	ExpectedPoints         float64             `json:"expected_points"`
	TransferCost           int                 `json:"transfer_cost"`
	FreeTransfersUsed      int                 `json:"free_transfers_used"`
	FreeTransfersRemaining int                 `json:"free_transfers_remaining"`
}

// TransferPlan is the multi-gameweek plan. TotalExpectedPoints is the
// discounted horizon total net of transfer costs; CurrentExpectedPoints
// is the discounted no-transfer baseline; Improvement is net minus that.
type TransferPlan struct {
	Status                ResultStatus     `json:"status"`
	Partial               bool             `json:"partial,omitempty"`
	CurrentGameweek       int              `json:"current_gameweek"`
	WeeklySolutions       []WeeklySolution `json:"weekly_solutions"`
	TotalExpectedPoints   float64          `json:"total_expected_points"`
	TotalTransferCost     int              `json:"total_transfer_cost"`
	CurrentExpectedPoints float64          `json:"current_expected_points"`
	Improvement           float64          `json:"improvement"`
	Error                 string           `json:"error,omitempty"`
}

// ErrorResponse is the HTTP error envelope.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details,omitempty"`
}

// HealthStatus is the health-endpoint payload.
type HealthStatus struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ProgressUpdate is streamed over the progress WebSocket during long
// searches.
type ProgressUpdate struct {
	Type        string    `json:"type"`
	Progress    float64   `json:"progress"`
	Message     string    `json:"message"`
	CurrentStep string    `json:"current_step"`
	Timestamp   time.Time `json:"timestamp"`
}
