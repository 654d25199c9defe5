package handlers

import (
	"net/http"

	"github.com/bobmcallan/finplan-portal/internal/auth"
	"github.com/bobmcallan/finplan-portal/internal/common"
	"github.com/bobmcallan/finplan-portal/internal/planning"
)

// DashboardHandler serves the dashboard and market panels.
type DashboardHandler struct {
	logger   *common.Logger
	provider auth.Provider
	planner  *planning.Service
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(logger *common.Logger, provider auth.Provider, planner *planning.Service) *DashboardHandler {
	return &DashboardHandler{logger: logger, provider: provider, planner: planner}
}

// HandleDashboard handles GET /api/dashboard.
func (h *DashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	user, ok := requireUser(w, r, h.provider)
	if !ok {
		return
	}

	d, err := h.planner.Dashboard(r.Context(), user.Email)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, d)
}

// HandleMarket handles GET /api/market.
func (h *DashboardHandler) HandleMarket(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"market":      planning.MarketToday(),
		"fund_series": h.planner.FundSeries(),
	})
}
