package handlers

import (
	"net/http"

	"github.com/bobmcallan/finplan-portal/internal/auth"
	"github.com/bobmcallan/finplan-portal/internal/common"
	"github.com/bobmcallan/finplan-portal/internal/finance/profile"
	"github.com/bobmcallan/finplan-portal/internal/planning"
)

// ProfileHandler serves the personal details record.
type ProfileHandler struct {
	logger   *common.Logger
	provider auth.Provider
	planner  *planning.Service
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(logger *common.Logger, provider auth.Provider, planner *planning.Service) *ProfileHandler {
	return &ProfileHandler{logger: logger, provider: provider, planner: planner}
}

type profileOptions struct {
	Genders         []string `json:"genders"`
	Occupations     []string `json:"occupations"`
	MaritalStatuses []string `json:"marital_statuses"`
	DependantCounts []string `json:"dependant_counts"`
}

type profileResponse struct {
	*planning.ProfileView
	Options profileOptions `json:"options"`
}

func withOptions(v *planning.ProfileView) profileResponse {
	return profileResponse{
		ProfileView: v,
		Options: profileOptions{
			Genders:         profile.Genders,
			Occupations:     profile.Occupations,
			MaritalStatuses: profile.MaritalStatuses,
			DependantCounts: profile.DependantCounts,
		},
	}
}

// HandleProfile handles GET and PUT /api/profile.
func (h *ProfileHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		h.handleGet(w, r)
	case http.MethodPut:
		h.handlePut(w, r)
	default:
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *ProfileHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r, h.provider)
	if !ok {
		return
	}

	v, err := h.planner.Profile(r.Context(), user.Email)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, withOptions(v))
}

func (h *ProfileHandler) handlePut(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r, h.provider)
	if !ok {
		return
	}

	var d profile.Details
	if !decodeJSON(w, r, &d) {
		return
	}

	v, err := h.planner.SaveProfile(r.Context(), user.Email, d)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, withOptions(v))
}
