package server

import (
	"net/http"

	"github.com/bobmcallan/finplan-portal/internal/handlers"
)

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()
	a := s.app

	// MCP endpoint (JSON-RPC over HTTP)
	if a.MCPHandler != nil {
		mux.Handle("/mcp", a.MCPHandler)
	}

	mux.HandleFunc("/api/health", a.HealthHandler.ServeHTTP)
	mux.HandleFunc("/api/version", a.VersionHandler.ServeHTTP)

	mux.HandleFunc("/api/auth/register", a.AuthHandler.HandleRegister)
	mux.HandleFunc("/api/auth/login", a.AuthHandler.HandleLogin)
	mux.HandleFunc("/api/auth/logout", a.AuthHandler.HandleLogout)
	mux.HandleFunc("/api/auth/me", a.AuthHandler.HandleMe)

	mux.HandleFunc("/api/dashboard", a.DashboardHandler.HandleDashboard)
	mux.HandleFunc("/api/market", a.DashboardHandler.HandleMarket)
	mux.HandleFunc("/api/goal", a.GoalHandler.HandleGoal)
	mux.HandleFunc("/api/profile", a.ProfileHandler.HandleProfile)

	mux.HandleFunc("/api/portfolio", a.PortfolioHandler.HandleLoad)
	mux.HandleFunc("/api/portfolio/save", a.PortfolioHandler.HandleSave)
	addItem := methods{http.MethodPost: a.PortfolioHandler.HandleAddItem}
	mux.Handle("/api/portfolio/items", addItem)
	mux.Handle(handlers.PortfolioItemsPath, subtree(handlers.PortfolioItemsPath, addItem, methods{
		http.MethodPut:    a.PortfolioHandler.HandleUpdateItem,
		http.MethodDelete: a.PortfolioHandler.HandleDeleteItem,
	}))

	mux.HandleFunc("/api/projections", a.ProjectionsHandler.HandleProjections)
	mux.HandleFunc("/api/projections/run", a.ProjectionsHandler.HandleRun)
	mux.Handle(handlers.ProjectionRowsPath, methods{http.MethodPut: a.ProjectionsHandler.HandleRow})

	// 404 handler for everything else
	mux.HandleFunc("/", s.handleNotFound)

	return mux
}

// handleNotFound answers unmatched paths with the standard error envelope.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	handlers.WriteError(w, http.StatusNotFound, "Not Found: "+r.URL.Path)
}
