package handlers

import (
	"net/http"

	"github.com/bobmcallan/finplan-portal/internal/auth"
	"github.com/bobmcallan/finplan-portal/internal/common"
	"github.com/bobmcallan/finplan-portal/internal/finance/goal"
	"github.com/bobmcallan/finplan-portal/internal/planning"
)

// GoalHandler evaluates savings goals against the user's portfolio.
type GoalHandler struct {
	logger   *common.Logger
	provider auth.Provider
	planner  *planning.Service
}

// NewGoalHandler creates a new goal handler.
func NewGoalHandler(logger *common.Logger, provider auth.Provider, planner *planning.Service) *GoalHandler {
	return &GoalHandler{logger: logger, provider: provider, planner: planner}
}

// HandleGoal handles POST /api/goal. The current fund value always comes
// from the stored ledger.
func (h *GoalHandler) HandleGoal(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	user, ok := requireUser(w, r, h.provider)
	if !ok {
		return
	}

	var in goal.Input
	if !decodeJSON(w, r, &in) {
		return
	}

	v, err := h.planner.EvaluateGoal(r.Context(), user.Email, in)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, v)
}
