package mcp

import (
	"encoding/json"
	"net/http"
	"strings"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/finplan-portal/internal/auth"
	"github.com/bobmcallan/finplan-portal/internal/common"
	"github.com/bobmcallan/finplan-portal/internal/planning"
)

// ServerName is reported to MCP clients during initialization.
const ServerName = common.ServiceName

// Handler is the HTTP handler for the MCP endpoint.
// It wraps mcp-go's StreamableHTTPServer and delegates to it.
type Handler struct {
	streamable    *mcpserver.StreamableHTTPServer
	logger        *common.Logger
	provider      auth.Provider
	sessionCookie string
}

// NewHandler creates an MCP handler exposing the planning tools. Callers
// authenticate with the same session token the JSON API issues, either as a
// bearer token or the named session cookie.
func NewHandler(logger *common.Logger, provider auth.Provider, planner *planning.Service, sessionCookie string) *Handler {
	mcpSrv := mcpserver.NewMCPServer(
		ServerName,
		common.Version,
		mcpserver.WithToolCapabilities(true),
	)
	count := RegisterTools(mcpSrv, logger, planner)

	streamable := mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithStateLess(true),
	)

	logger.Info().
		Int("tools", count).
		Msg("MCP handler initialized")

	return &Handler{
		streamable:    streamable,
		logger:        logger,
		provider:      provider,
		sessionCookie: sessionCookie,
	}
}

// ServeHTTP attaches the caller's identity and delegates to the mcp-go
// StreamableHTTPServer. Requests without a live session get a 401.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r = h.withUserContext(r)

	if _, ok := GetUserContext(r.Context()); !ok {
		w.Header().Set("WWW-Authenticate", `Bearer realm="`+ServerName+`"`)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{
			"error":             "unauthorized",
			"error_description": "Authentication required to access MCP endpoint",
		})
		return
	}

	h.streamable.ServeHTTP(w, r)
}

// withUserContext resolves the session token from the Authorization header
// or, failing that, the session cookie. The bearer token takes priority. If
// the token does not name a live session the request is returned unchanged.
func (h *Handler) withUserContext(r *http.Request) *http.Request {
	var token string
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		token = strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	} else if cookie, err := r.Cookie(h.sessionCookie); err == nil {
		token = cookie.Value
	}
	if token == "" {
		return r
	}

	user, err := h.provider.CurrentUser(r.Context(), token)
	if err != nil {
		h.logger.Debug().Err(err).Msg("mcp: rejected session token")
		return r
	}
	return r.WithContext(WithUserContext(r.Context(), UserContext{Email: user.Email}))
}
