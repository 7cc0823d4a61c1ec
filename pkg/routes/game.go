package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/DedS3t/monopoly-engine/app/controllers"
)

func GameRoutes(a *fiber.App, games *controllers.GameController) {
	route := a.Group("/game")
	route.Post("/create", games.CreateGame)
	route.Get("/verify", games.VerifyGame)
	route.Get("/all", games.GetAllAvailGames)
	route.Get("/find", games.FindAvailGame)
	route.Get("/:id/state", games.GetState)
	route.Get("/:id/logs", games.GetLogs)
}
