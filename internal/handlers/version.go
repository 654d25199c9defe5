package handlers

import (
	"net/http"

	"github.com/bobmcallan/finplan-portal/internal/common"
)

// VersionHandler serves the build information.
type VersionHandler struct {
	logger *common.Logger
}

func NewVersionHandler(logger *common.Logger) *VersionHandler {
	return &VersionHandler{logger: logger}
}

// ServeHTTP handles GET /api/version.
func (h *VersionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	WriteJSON(w, http.StatusOK, common.CurrentBuild())
}
