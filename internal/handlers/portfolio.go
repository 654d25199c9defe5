package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bobmcallan/finplan-portal/internal/auth"
	"github.com/bobmcallan/finplan-portal/internal/common"
	"github.com/bobmcallan/finplan-portal/internal/finance/editor"
	"github.com/bobmcallan/finplan-portal/internal/planning"
	"github.com/bobmcallan/finplan-portal/internal/session"
	"github.com/bobmcallan/finplan-portal/internal/validator"
)

// PortfolioItemsPath prefixes item routes; the item id follows it.
const PortfolioItemsPath = "/api/portfolio/items/"

// PortfolioHandler serves the portfolio editor. Each user edits a working
// copy loaded from the store; edits reach the store only on save.
type PortfolioHandler struct {
	logger   *common.Logger
	provider auth.Provider
	planner  *planning.Service
	editors  *session.Registry[*editor.Session]
}

// NewPortfolioHandler creates a new portfolio handler.
func NewPortfolioHandler(logger *common.Logger, provider auth.Provider, planner *planning.Service, editors *session.Registry[*editor.Session]) *PortfolioHandler {
	return &PortfolioHandler{
		logger:   logger,
		provider: provider,
		planner:  planner,
		editors:  editors,
	}
}

type addItemRequest struct {
	Category string `json:"category"`
	Type     string `json:"type"`
}

// HandleLoad handles GET /api/portfolio. It starts a new editing session
// from the stored ledger, replacing any previous one. A load overtaken by a
// newer load for the same user gets a 409 and installs nothing.
func (h *PortfolioHandler) HandleLoad(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	user, ok := requireUser(w, r, h.provider)
	if !ok {
		return
	}

	ticket := h.editors.Begin(user.Email)
	l, err := h.planner.LoadLedger(r.Context(), user.Email)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	s := editor.NewSession(l)
	if !h.editors.Commit(ticket, s) {
		h.logger.Debug().Str("email", user.Email).Msg("discarding superseded portfolio load")
		WriteError(w, http.StatusConflict, "superseded by a newer load")
		return
	}
	WriteJSON(w, http.StatusOK, s.Tree())
}

// editorFor returns the caller's editing session, writing a 409 when none
// is loaded.
func (h *PortfolioHandler) editorFor(w http.ResponseWriter, email string) (*editor.Session, bool) {
	s, ok := h.editors.Get(email)
	if !ok {
		WriteError(w, http.StatusConflict, "no portfolio loaded; load the portfolio first")
		return nil, false
	}
	return s, true
}

// HandleAddItem handles POST /api/portfolio/items.
func (h *PortfolioHandler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	user, ok := requireUser(w, r, h.provider)
	if !ok {
		return
	}
	s, ok := h.editorFor(w, user.Email)
	if !ok {
		return
	}

	var req addItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	item, err := s.Add(req.Category, req.Type)
	if errors.Is(err, editor.ErrGroupNotFound) {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	WriteJSON(w, http.StatusCreated, item)
}

// HandleUpdateItem handles PUT /api/portfolio/items/{id}.
func (h *PortfolioHandler) HandleUpdateItem(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPut) {
		return
	}
	user, ok := requireUser(w, r, h.provider)
	if !ok {
		return
	}
	s, ok := h.editorFor(w, user.Email)
	if !ok {
		return
	}

	var e editor.Edit
	if !decodeJSON(w, r, &e) {
		return
	}

	item, err := s.Update(itemID(r), e)
	switch {
	case err == nil:
		WriteJSON(w, http.StatusOK, item)
	case validator.IsValidationError(err):
		WriteValidationError(w, err)
	case errors.Is(err, editor.ErrItemNotFound):
		WriteError(w, http.StatusNotFound, err.Error())
	default:
		writeServiceError(w, r, h.logger, err)
	}
}

// HandleDeleteItem handles DELETE /api/portfolio/items/{id}.
func (h *PortfolioHandler) HandleDeleteItem(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}
	user, ok := requireUser(w, r, h.provider)
	if !ok {
		return
	}
	s, ok := h.editorFor(w, user.Email)
	if !ok {
		return
	}

	if err := s.Delete(itemID(r)); errors.Is(err, editor.ErrItemNotFound) {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleSave handles POST /api/portfolio/save. The whole ledger is written;
// the last writer wins.
func (h *PortfolioHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	user, ok := requireUser(w, r, h.provider)
	if !ok {
		return
	}
	s, ok := h.editorFor(w, user.Email)
	if !ok {
		return
	}

	l := s.Ledger()
	if err := h.planner.SaveLedger(r.Context(), user.Email, l); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"items":  l.ItemCount(),
	})
}

func itemID(r *http.Request) string {
	return strings.Trim(strings.TrimPrefix(r.URL.Path, PortfolioItemsPath), "/")
}
