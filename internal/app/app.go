// Package app wires the planning portal's components together.
package app

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bobmcallan/finplan-portal/internal/auth"
	"github.com/bobmcallan/finplan-portal/internal/common"
	"github.com/bobmcallan/finplan-portal/internal/config"
	"github.com/bobmcallan/finplan-portal/internal/finance/editor"
	"github.com/bobmcallan/finplan-portal/internal/handlers"
	"github.com/bobmcallan/finplan-portal/internal/interfaces"
	"github.com/bobmcallan/finplan-portal/internal/mcp"
	"github.com/bobmcallan/finplan-portal/internal/planning"
	"github.com/bobmcallan/finplan-portal/internal/seed"
	"github.com/bobmcallan/finplan-portal/internal/session"
	"github.com/bobmcallan/finplan-portal/internal/storage"
)

// cleanupInterval is how often expired sessions and working copies are swept.
const cleanupInterval = time.Minute

// App holds all application components and dependencies.
type App struct {
	Config *config.Config
	Logger *common.Logger

	Store   interfaces.UserStore
	Auth    *auth.LocalProvider
	Planner *planning.Service
	Editors *session.Registry[*editor.Session]
	WhatIfs *session.Registry[*session.WhatIf]

	// HTTP handlers
	HealthHandler      *handlers.HealthHandler
	VersionHandler     *handlers.VersionHandler
	AuthHandler        *handlers.AuthHandler
	DashboardHandler   *handlers.DashboardHandler
	GoalHandler        *handlers.GoalHandler
	PortfolioHandler   *handlers.PortfolioHandler
	ProjectionsHandler *handlers.ProjectionsHandler
	ProfileHandler     *handlers.ProfileHandler
	MCPHandler         *mcp.Handler

	stop      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New initializes the application with all dependencies.
func New(cfg *config.Config, logger *common.Logger) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
		stop:   make(chan struct{}),
	}

	env := strings.ToLower(strings.TrimSpace(cfg.Environment))
	if !cfg.IsProduction() {
		logger.Warn().Str("environment", env).Msg("running with development settings, do not use in production")
	}

	store, err := storage.NewUserStore(logger, cfg)
	if err != nil {
		return nil, err
	}
	a.Store = store

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		secret, err = randomSecret()
		if err != nil {
			store.Close()
			return nil, err
		}
		logger.Warn().Msg("auth.jwt_secret not set, using a random secret; sessions end on restart")
	}

	ttl := cfg.SessionTTL()
	a.Auth = auth.NewLocalProvider(logger, store, secret, ttl)
	a.seedUsers()

	a.Planner = planning.NewService(logger, store, planning.Options{
		AssumedRate:      cfg.Planning.AssumedRate,
		Currency:         strings.ToUpper(cfg.Planning.Currency),
		DefaultRiskLevel: cfg.Planning.DefaultRiskLevel,
	})
	a.Editors = session.NewRegistry[*editor.Session](ttl)
	a.WhatIfs = session.NewRegistry[*session.WhatIf](ttl)

	a.initHandlers()
	a.startCleanup()

	logger.Info().Msg("application initialization complete")

	return a, nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// seedUsers registers the configured and import-file users.
func (a *App) seedUsers() {
	seed.DevUsers(a.Logger, a.Auth, a.Store, a.Config.Auth.Users)
}

// initHandlers initializes all HTTP handlers.
func (a *App) initHandlers() {
	ttl := a.Config.SessionTTL()

	a.HealthHandler = handlers.NewHealthHandler(a.Logger, a.Config.Store.Backend)
	a.VersionHandler = handlers.NewVersionHandler(a.Logger)

	a.AuthHandler = handlers.NewAuthHandler(a.Logger, a.Auth, ttl, a.Config.Auth.CookieSecure)
	a.AuthHandler.SetLogoutHook(func(email string) {
		// Another device may still be editing.
		if a.Auth.SignedIn(email) {
			return
		}
		a.Editors.Drop(email)
		a.WhatIfs.Drop(email)
	})

	a.DashboardHandler = handlers.NewDashboardHandler(a.Logger, a.Auth, a.Planner)
	a.GoalHandler = handlers.NewGoalHandler(a.Logger, a.Auth, a.Planner)
	a.PortfolioHandler = handlers.NewPortfolioHandler(a.Logger, a.Auth, a.Planner, a.Editors)
	a.ProjectionsHandler = handlers.NewProjectionsHandler(a.Logger, a.Auth, a.Planner, a.WhatIfs)
	a.ProfileHandler = handlers.NewProfileHandler(a.Logger, a.Auth, a.Planner)

	a.MCPHandler = mcp.NewHandler(a.Logger, a.Auth, a.Planner, handlers.SessionCookie)

	a.Logger.Debug().Msg("HTTP handlers initialized")
}

// startCleanup sweeps expired login sessions and idle working copies until
// Close is called.
func (a *App) startCleanup() {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-a.stop:
				return
			case <-ticker.C:
				a.sweep()
			}
		}
	}()
}

func (a *App) sweep() {
	sessions := a.Auth.Cleanup()
	editors := a.Editors.Cleanup()
	whatifs := a.WhatIfs.Cleanup()
	if sessions+editors+whatifs > 0 {
		a.Logger.Debug().
			Int("sessions", sessions).
			Int("editors", editors).
			Int("whatifs", whatifs).
			Msg("expired sessions and working copies removed")
	}

	if cs, ok := a.Store.(*storage.CachedStore); ok {
		purged, st := cs.Sweep()
		a.Logger.Debug().
			Int("purged", purged).
			Int("entries", st.Entries).
			Int64("hits", int64(st.Hits)).
			Int64("misses", int64(st.Misses)).
			Msg("ledger cache swept")
	}
}

// Close stops background work and closes the store.
func (a *App) Close() error {
	var err error
	a.closeOnce.Do(func() {
		close(a.stop)
		a.wg.Wait()
		err = a.Store.Close()
	})
	return err
}
