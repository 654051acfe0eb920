package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/schoolsports/tournament-engine/handlers"
	"github.com/schoolsports/tournament-engine/metrics"
	"github.com/schoolsports/tournament-engine/middleware"
)

type Handlers struct {
	Tournaments *handlers.TournamentHandler
	Fixtures    *handlers.FixtureHandler
	Schools     *handlers.SchoolHandler
	Events      *handlers.EventHandler
	Websockets  *handlers.WebsocketHandler
}

func InitRoutes(h Handlers, auth *middleware.Authenticator, allowedOrigins []string) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(metrics.Middleware)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	router.Method(http.MethodGet, "/metrics", metrics.Handler())

	// Live streams carry no mutations and stay public, like the read
	// endpoints below.
	router.Get("/ws/fixtures/{fixtureID}", h.Websockets.FixtureStream)

	router.Route("/schools", func(r chi.Router) {
		r.Get("/", h.Schools.List)
		r.Get("/{schoolID}", h.Schools.Get)
		r.Get("/{schoolID}/tournaments", h.Tournaments.ListBySchool)
		r.Get("/{schoolID}/events", h.Events.ListBySchool)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(middleware.RequireCoach)
			r.Post("/", h.Schools.Create)
		})
	})

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/{tournamentID}", h.Tournaments.Get)
		r.Get("/{tournamentID}/bracket", h.Tournaments.Bracket)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Post("/", h.Tournaments.Create)
			r.Patch("/{tournamentID}", h.Tournaments.Restructure)
			r.Delete("/{tournamentID}", h.Tournaments.Delete)
		})
	})

	router.Route("/fixtures", func(r chi.Router) {
		r.Get("/{fixtureID}", h.Fixtures.MatchDetails)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Post("/{fixtureID}/start", h.Fixtures.Start)
			r.Post("/{fixtureID}/end", h.Fixtures.End)
			r.Post("/{fixtureID}/swap", h.Fixtures.SwapTeams)
			r.Post("/{fixtureID}/events", h.Fixtures.LogEvent)
			r.Patch("/{fixtureID}", h.Fixtures.Edit)
			r.Delete("/{fixtureID}", h.Fixtures.Delete)
		})
	})

	router.Route("/events", func(r chi.Router) {
		r.Use(auth.Authenticate)
		r.Use(middleware.RequireCoach)
		r.Post("/", h.Events.Create)
		r.Patch("/{eventID}", h.Events.Edit)
		r.Delete("/{eventID}", h.Events.Delete)
	})

	return router
}
