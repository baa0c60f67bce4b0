package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"wordarcade/internal/game"
	"wordarcade/internal/security"
	"wordarcade/internal/service"
)

// Deps are the services the HTTP API is built from
type Deps struct {
	Scores        *service.ScoreService
	Leaderboards  *service.LeaderboardService
	Sessions      *game.Manager
	Identity      *security.Identity
	SubmitLimiter *security.RateLimiter
	Startup       *Startup
	DB            Pinger
	Logger        *slog.Logger
}

// NewRouter wires the API routes
func NewRouter(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Startup == nil {
		d.Startup = NewStartup()
		d.Startup.MarkReady()
	}

	mw := NewMiddleware(d.Identity)
	scores := NewScoreHandler(d.Scores)
	leaderboards := NewLeaderboardHandler(d.Leaderboards)
	sessions := NewSessionHandler(d.Sessions)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(Logging(d.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", d.Startup.Health(d.DB))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))

		r.Get("/leaderboards/{game}/{bucket}", leaderboards.GetTopN)

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireUser)

			r.Get("/me/wallet", scores.GetWallet)
			r.Get("/me/bests", scores.ListPersonalBests)

			r.Group(func(r chi.Router) {
				if d.SubmitLimiter != nil {
					r.Use(d.SubmitLimiter.Middleware(userKey))
				}
				r.Post("/scores", scores.SubmitScore)
			})

			r.Route("/sessions", func(r chi.Router) {
				r.Post("/", sessions.StartSession)
				r.Get("/{id}", sessions.GetSession)
				r.Post("/{id}/input", sessions.SubmitInput)
				r.Post("/{id}/skip", sessions.Skip)
				r.Post("/{id}/pause", sessions.Pause)
				r.Post("/{id}/resume", sessions.Resume)
				r.Post("/{id}/quit", sessions.Quit)
			})
		})
	})

	return r
}
