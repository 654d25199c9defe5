package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/bobmcallan/finplan-portal/internal/auth"
	"github.com/bobmcallan/finplan-portal/internal/common"
	"github.com/bobmcallan/finplan-portal/internal/finance/ledger"
	"github.com/bobmcallan/finplan-portal/internal/finance/risk"
	"github.com/bobmcallan/finplan-portal/internal/planning"
	"github.com/bobmcallan/finplan-portal/internal/session"
	"github.com/bobmcallan/finplan-portal/internal/validator"
)

// ProjectionRowsPath prefixes what-if row routes; the asset key follows it.
const ProjectionRowsPath = "/api/projections/rows/"

// ProjectionsHandler serves the risk-profile projections and the what-if
// allocation table.
type ProjectionsHandler struct {
	logger   *common.Logger
	provider auth.Provider
	planner  *planning.Service
	whatifs  *session.Registry[*session.WhatIf]
}

// NewProjectionsHandler creates a new projections handler.
func NewProjectionsHandler(logger *common.Logger, provider auth.Provider, planner *planning.Service, whatifs *session.Registry[*session.WhatIf]) *ProjectionsHandler {
	return &ProjectionsHandler{
		logger:   logger,
		provider: provider,
		planner:  planner,
		whatifs:  whatifs,
	}
}

type rowEditRequest struct {
	CurrentAmount *float64 `json:"current_amount"`
}

// HandleProjections handles GET /api/projections?risk=N[&reload=1].
//
// With no working copy, or with reload set, the ledger is read and a new
// working copy is built. Otherwise the existing copy is rebuilt for the
// requested level from its snapshot, discarding what-if edits. Either way
// the projection is rerun.
func (h *ProjectionsHandler) HandleProjections(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	user, ok := requireUser(w, r, h.provider)
	if !ok {
		return
	}

	level := 0
	if s := r.URL.Query().Get("risk"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || !risk.ValidLevel(n) {
			WriteValidationError(w, &validator.ValidationError{Fields: map[string]string{
				"risk": "Risk level must be 1 (Low), 2 (Medium) or 3 (High)",
			}})
			return
		}
		level = n
	}

	reload := r.URL.Query().Get("reload") == "1" || r.URL.Query().Get("reload") == "true"
	if wi, ok := h.whatifs.Get(user.Email); ok && !reload {
		if level == 0 {
			level = wi.View().Level
		}
		if err := wi.SetLevel(level); err != nil {
			writeServiceError(w, r, h.logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, wi.View())
		return
	}

	ticket := h.whatifs.Begin(user.Email)
	wi, err := h.planner.NewWhatIf(r.Context(), user.Email, level)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	if !h.whatifs.Commit(ticket, wi) {
		h.logger.Debug().Str("email", user.Email).Msg("discarding superseded projections load")
		WriteError(w, http.StatusConflict, "superseded by a newer load")
		return
	}
	WriteJSON(w, http.StatusOK, wi.View())
}

// whatIfFor returns the caller's working copy, writing a 409 when none is
// loaded.
func (h *ProjectionsHandler) whatIfFor(w http.ResponseWriter, email string) (*session.WhatIf, bool) {
	wi, ok := h.whatifs.Get(email)
	if !ok {
		WriteError(w, http.StatusConflict, "no projections loaded; load projections first")
		return nil, false
	}
	return wi, true
}

// HandleRow handles PUT /api/projections/rows/{key}. The table is
// renormalised but not reprojected.
func (h *ProjectionsHandler) HandleRow(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPut) {
		return
	}
	user, ok := requireUser(w, r, h.provider)
	if !ok {
		return
	}
	wi, ok := h.whatIfFor(w, user.Email)
	if !ok {
		return
	}

	var req rowEditRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	v := validator.New()
	v.Check(req.CurrentAmount != nil, "current_amount", "Please Input Current Amount!")
	if req.CurrentAmount != nil {
		v.Check(*req.CurrentAmount >= 0, "current_amount", "Current amount cannot be negative")
	}
	if err := v.Err(); err != nil {
		WriteValidationError(w, err)
		return
	}

	key := ledger.AssetKey(strings.Trim(strings.TrimPrefix(r.URL.Path, ProjectionRowsPath), "/"))
	if err := wi.SetAmount(key, *req.CurrentAmount); err != nil {
		if errors.Is(err, risk.ErrUnknownAssetKey) {
			WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		writeServiceError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, wi.View())
}

// HandleRun handles POST /api/projections/run.
func (h *ProjectionsHandler) HandleRun(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	user, ok := requireUser(w, r, h.provider)
	if !ok {
		return
	}
	wi, ok := h.whatIfFor(w, user.Email)
	if !ok {
		return
	}

	if err := wi.Run(); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, wi.View())
}
