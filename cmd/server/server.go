// cmd/server/server.go
package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/cors"

	"github.com/codr1/leaguedesk/internal/api"
	"github.com/codr1/leaguedesk/internal/api/apiutil"
	"github.com/codr1/leaguedesk/internal/api/auth"
	"github.com/codr1/leaguedesk/internal/api/authz"
	fixtureapi "github.com/codr1/leaguedesk/internal/api/fixtures"
	leagueapi "github.com/codr1/leaguedesk/internal/api/leagues"
	resultapi "github.com/codr1/leaguedesk/internal/api/results"
	userapi "github.com/codr1/leaguedesk/internal/api/users"
	venueapi "github.com/codr1/leaguedesk/internal/api/venues"
	"github.com/codr1/leaguedesk/internal/config"
	"github.com/codr1/leaguedesk/internal/db"
	"github.com/codr1/leaguedesk/internal/fixtures"
	"github.com/codr1/leaguedesk/internal/leagues"
	"github.com/codr1/leaguedesk/internal/ratelimit"
	"github.com/codr1/leaguedesk/internal/results"
	"github.com/codr1/leaguedesk/internal/scheduler"
	"github.com/codr1/leaguedesk/internal/store"
	"github.com/codr1/leaguedesk/internal/users"
	"github.com/codr1/leaguedesk/internal/venues"
)

const requestTimeout = 10 * time.Second

// application holds the wired services behind the HTTP handler.
type application struct {
	handler   http.Handler
	fixtures  *fixtures.Service
	limiter   *ratelimit.Limiter
	scheduler *scheduler.Service
}

func newApplication(cfg *config.Config, database *db.DB, clock clockwork.Clock) (*application, error) {
	apiutil.ExposeInternalErrors = !cfg.IsProduction()

	repos := store.New(database)

	userService, err := users.NewService(repos, cfg.App.DefaultRegion)
	if err != nil {
		return nil, fmt.Errorf("user service: %w", err)
	}
	leagueService, err := leagues.NewService(repos)
	if err != nil {
		return nil, fmt.Errorf("league service: %w", err)
	}
	venueService, err := venues.NewService(repos)
	if err != nil {
		return nil, fmt.Errorf("venue service: %w", err)
	}
	fixtureService, err := fixtures.NewService(repos)
	if err != nil {
		return nil, fmt.Errorf("fixture service: %w", err)
	}
	resultService, err := results.NewService(repos)
	if err != nil {
		return nil, fmt.Errorf("result service: %w", err)
	}

	limiter := ratelimit.New(&ratelimit.Config{
		LoginMaxAttempts:  cfg.RateLimit.LoginMaxAttempts,
		LoginLockout:      cfg.RateLimit.LoginLockout,
		LoginMaxIPPerHour: cfg.RateLimit.LoginMaxIPPerHour,
		Clock:             clock,
	})
	tokens := auth.NewTokenManager(cfg.App.SecretKey, cfg.Auth.Issuer, cfg.Auth.TokenTTL, clock)

	auth.InitHandlers(cfg, userService, tokens, limiter)
	userapi.InitHandlers(userService)
	leagueapi.InitHandlers(leagueService)
	venueapi.InitHandlers(venueService)
	fixtureapi.InitHandlers(fixtureService)
	resultapi.InitHandlers(resultService)

	router := http.NewServeMux()
	registerRoutes(router)

	handler := api.ChainMiddleware(
		router,
		api.WithTimeout(requestTimeout),
		api.WithLogging,
		api.WithRecovery(!cfg.IsProduction()),
		api.WithRequestID,
	)
	handler = cors.New(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-Request-ID", "Retry-After"},
	}).Handler(handler)

	return &application{
		handler:  handler,
		fixtures: fixtureService,
		limiter:  limiter,
	}, nil
}

// startScheduler registers background jobs and starts them.
func (a *application) startScheduler(cfg *config.Config, clock clockwork.Clock) error {
	if !cfg.Scheduler.Enabled {
		return nil
	}
	sched, err := scheduler.New(clock)
	if err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}
	if err := scheduler.RegisterOverdueFixturesJob(sched, a.fixtures, cfg.Scheduler.OverdueFixtureCron, cfg.Scheduler.OverdueGrace); err != nil {
		_ = sched.Stop()
		return fmt.Errorf("register overdue fixtures job: %w", err)
	}
	sched.Start()
	a.scheduler = sched
	return nil
}

func (a *application) Close() error {
	a.limiter.Close()
	if a.scheduler != nil {
		return a.scheduler.Stop()
	}
	return nil
}

func registerRoutes(mux *http.ServeMux) {
	const (
		public = authz.ActionPublic
		authed = authz.ActionAuthenticated
		admin  = authz.ActionAdmin
		self   = authz.ActionSelfOrAdmin
	)
	route := func(pattern string, action authz.Action, h http.HandlerFunc) {
		mux.HandleFunc(pattern, api.Protect(action, h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Auth
	route("POST /api/v1/auth/register", public, auth.HandleRegister)
	route("POST /api/v1/auth/login", public, auth.HandleLogin)
	route("GET /api/v1/auth/me", authed, auth.HandleMe)

	// Users
	route("GET /api/v1/users", admin, userapi.HandleList)
	route("POST /api/v1/users", admin, userapi.HandleCreate)
	route("GET /api/v1/users/{id}", self, userapi.HandleGet)
	route("PUT /api/v1/users/{id}", self, userapi.HandleUpdate)
	route("DELETE /api/v1/users/{id}", self, userapi.HandleDelete)

	// Leagues
	route("GET /api/v1/leagues", authed, leagueapi.HandleList)
	route("POST /api/v1/leagues", admin, leagueapi.HandleCreate)
	route("GET /api/v1/leagues/{id}", authed, leagueapi.HandleGet)
	route("PUT /api/v1/leagues/{id}", admin, leagueapi.HandleUpdate)
	route("DELETE /api/v1/leagues/{id}", admin, leagueapi.HandleDelete)
	route("GET /api/v1/leagues/{id}/teams", authed, leagueapi.HandleListLeagueTeams)
	route("GET /api/v1/leagues/{id}/standings", authed, leagueapi.HandleStandings)
	route("POST /api/v1/leagues/{id}/schedule", admin, leagueapi.HandleGenerateSchedule)
	route("GET /api/v1/leagues/{id}/fixtures", authed, fixtureapi.HandleListByLeague)
	route("GET /api/v1/leagues/{id}/results", authed, resultapi.HandleListByLeague)

	// Teams
	route("GET /api/v1/teams", authed, leagueapi.HandleListTeams)
	route("POST /api/v1/teams", admin, leagueapi.HandleCreateTeam)
	route("GET /api/v1/teams/{id}", authed, leagueapi.HandleGetTeam)
	route("PUT /api/v1/teams/{id}", admin, leagueapi.HandleUpdateTeam)
	route("DELETE /api/v1/teams/{id}", admin, leagueapi.HandleDeleteTeam)
	route("GET /api/v1/teams/{id}/fixtures", authed, fixtureapi.HandleListByTeam)
	route("GET /api/v1/teams/{id}/results", authed, resultapi.HandleListByTeam)

	// Venues
	route("GET /api/v1/venues", authed, venueapi.HandleList)
	route("POST /api/v1/venues", admin, venueapi.HandleCreate)
	route("GET /api/v1/venues/{id}", authed, venueapi.HandleGet)
	route("PUT /api/v1/venues/{id}", admin, venueapi.HandleUpdate)
	route("DELETE /api/v1/venues/{id}", admin, venueapi.HandleDelete)

	// Fixtures
	route("GET /api/v1/fixtures", authed, fixtureapi.HandleList)
	route("POST /api/v1/fixtures", admin, fixtureapi.HandleCreate)
	route("GET /api/v1/fixtures/date-range", authed, fixtureapi.HandleListByDateRange)
	route("GET /api/v1/fixtures/{id}", authed, fixtureapi.HandleGet)
	route("PUT /api/v1/fixtures/{id}", admin, fixtureapi.HandleUpdate)
	route("DELETE /api/v1/fixtures/{id}", admin, fixtureapi.HandleDelete)
	route("PATCH /api/v1/fixtures/{id}/status", admin, fixtureapi.HandleUpdateStatus)
	route("GET /api/v1/fixtures/{id}/result", authed, resultapi.HandleGetByFixture)
	route("POST /api/v1/fixtures/{id}/result", admin, resultapi.HandleCreateForFixture)
	route("PUT /api/v1/fixtures/{id}/result", admin, resultapi.HandleUpdateByFixture)
	route("DELETE /api/v1/fixtures/{id}/result", admin, resultapi.HandleDeleteByFixture)

	// Results
	route("GET /api/v1/results", authed, resultapi.HandleList)
	route("POST /api/v1/results", admin, resultapi.HandleCreate)
	route("GET /api/v1/results/{id}", authed, resultapi.HandleGet)
	route("PUT /api/v1/results/{id}", admin, resultapi.HandleUpdate)
	route("DELETE /api/v1/results/{id}", admin, resultapi.HandleDelete)

	// Unmatched API paths get the JSON envelope instead of the mux's plain text.
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusNotFound, Message: "Route not found"})
	})
}
