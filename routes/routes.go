package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/myckhel/turfHub-sub002/handlers"
	"github.com/myckhel/turfHub-sub002/middleware"
	"github.com/myckhel/turfHub-sub002/models"
)

type RouterDeps struct {
	Auth       *handlers.AuthHandler
	Tournament *handlers.TournamentHandler
	Stage      *handlers.StageHandler
	Fixture    *handlers.FixtureHandler
	Promotion  *handlers.PromotionHandler
	Team       *handlers.TeamHandler
	Live       *handlers.LiveHandler

	JWTSecret      string
	AllowedOrigins []string
}

// SetupRoutes mounts the full API surface. Reads are public, mutations
// require an organizer or admin token.
func SetupRoutes(router *chi.Mux, deps RouterDeps) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(deps.JWTSecret)
	organizerOnly := middleware.Authorize(models.RoleOrganizer, models.RoleAdmin)

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", deps.Auth.RegisterHandler)
		r.Post("/login", deps.Auth.LoginHandler)
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/me", deps.Auth.MeHandler)
		})
	})

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", deps.Tournament.ListHandler)
		r.Get("/{tournamentID}", deps.Tournament.GetByIDHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(organizerOnly)
			r.Post("/", deps.Tournament.CreateHandler)
			r.Patch("/{tournamentID}/status", deps.Tournament.UpdateStatusHandler)
			r.Post("/{tournamentID}/logo", deps.Tournament.UploadLogoHandler)
			r.Post("/{tournamentID}/stages", deps.Tournament.AddStageHandler)
		})
	})

	router.Route("/stages", func(r chi.Router) {
		r.Get("/{stageID}", deps.Stage.GetDetailHandler)
		r.Get("/{stageID}/fixtures", deps.Stage.ListFixturesHandler)
		r.Get("/{stageID}/rankings", deps.Stage.ListRankingsHandler)
		r.Get("/{stageID}/promotion", deps.Promotion.GetConfigurationHandler)
		r.Get("/{stageID}/promotion/history", deps.Promotion.HistoryHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(organizerOnly)
			r.Delete("/{stageID}", deps.Tournament.DeleteStageHandler)
			r.Put("/{stageID}/teams", deps.Tournament.AssignTeamsHandler)
			r.Delete("/{stageID}/teams/{teamID}", deps.Tournament.RemoveTeamHandler)

			r.Post("/{stageID}/start", deps.Stage.StartHandler)
			r.Post("/{stageID}/complete", deps.Stage.CompleteHandler)
			r.Post("/{stageID}/cancel", deps.Stage.CancelHandler)
			r.Post("/{stageID}/fixtures", deps.Fixture.CreateHandler)
			r.Post("/{stageID}/fixtures/generate", deps.Stage.GenerateFixturesHandler)
			r.Post("/{stageID}/rankings/compute", deps.Stage.ComputeRankingsHandler)

			r.Post("/{stageID}/promotion", deps.Promotion.ConfigureHandler)
			r.Delete("/{stageID}/promotion", deps.Promotion.RemoveConfigurationHandler)
			r.Post("/{stageID}/promotion/simulate", deps.Promotion.SimulateHandler)
			r.Post("/{stageID}/promotion/execute", deps.Promotion.ExecuteHandler)
		})
	})

	router.Route("/fixtures", func(r chi.Router) {
		r.Get("/{fixtureID}", deps.Fixture.GetByIDHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(organizerOnly)
			r.Post("/{fixtureID}/result", deps.Fixture.SubmitResultHandler)
			r.Patch("/{fixtureID}/status", deps.Fixture.UpdateStatusHandler)
		})
	})

	router.Route("/teams", func(r chi.Router) {
		r.Get("/", deps.Team.ListHandler)
		r.Get("/{teamID}", deps.Team.GetByIDHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(organizerOnly)
			r.Post("/", deps.Team.CreateHandler)
			r.Post("/{teamID}/badge", deps.Team.UploadBadgeHandler)
			r.Delete("/{teamID}/badge", deps.Team.RemoveBadgeHandler)
		})
	})

	router.Get("/ws/stages/{stageID}", deps.Live.ServeWs)
}
