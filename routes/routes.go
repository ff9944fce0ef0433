package routes

import (
	"github.com/Dosada05/kabaddi-league/handlers"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func SetupRoutes(
	router *chi.Mux,
	teamHandler *handlers.TeamHandler,
	playerHandler *handlers.PlayerHandler,
	matchHandler *handlers.MatchHandler,
	scoreHandler *handlers.ScoreHandler,
	leaderboardHandler *handlers.LeaderboardHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	router.Route("/teams", func(r chi.Router) {
		r.Post("/", teamHandler.CreateTeamHandler)
		r.Get("/", teamHandler.ListTeamsHandler)
		r.Get("/{teamID}", teamHandler.GetTeamHandler)
		r.Delete("/{teamID}", teamHandler.DeleteTeamHandler)
		r.Get("/{teamID}/players", playerHandler.ListPlayersByTeamHandler)
	})

	router.Route("/players", func(r chi.Router) {
		r.Post("/", playerHandler.CreatePlayerHandler)
		r.Post("/bulk", playerHandler.BulkCreatePlayersHandler)
		r.Get("/", playerHandler.ListPlayersHandler)
		r.Get("/{playerID}", playerHandler.GetPlayerHandler)
		r.Delete("/{playerID}", playerHandler.DeletePlayerHandler)
		r.Put("/{playerID}/profile-pic", playerHandler.SetProfilePicHandler)
	})

	router.Route("/matches", func(r chi.Router) {
		r.Post("/", matchHandler.CreateMatchHandler)
		r.Get("/", matchHandler.ListMatchesHandler)
		r.Get("/{matchID}", matchHandler.GetMatchHandler)
		r.Patch("/{matchID}/status", matchHandler.UpdateStatusHandler)
		r.Patch("/{matchID}/halftime", matchHandler.SetHalfTimeHandler)
		r.Patch("/{matchID}/mat", matchHandler.SetMatHandler)
		r.Post("/{matchID}/roster", matchHandler.AddPlayerToRosterHandler)

		// Операции леджера очков
		r.Post("/{matchID}/points", scoreHandler.AddPointsHandler)
		r.Delete("/{matchID}/points", scoreHandler.PopPointsHandler)
		r.Post("/{matchID}/team-points", scoreHandler.AddTeamPointsHandler)
		r.Delete("/{matchID}/team-points", scoreHandler.RemoveTeamPointsHandler)
	})

	router.Route("/leaderboard", func(r chi.Router) {
		r.Get("/raiders", leaderboardHandler.TopRaidersHandler)
		r.Get("/defenders", leaderboardHandler.TopDefendersHandler)
	})

	router.Get("/ws/matches/{matchID}", webSocketHandler.ServeWs)
}
