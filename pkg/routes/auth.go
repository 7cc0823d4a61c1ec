package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/DedS3t/monopoly-engine/app/controllers"
)

func AuthRoutes(a *fiber.App, auth *controllers.AuthController) {
	route := a.Group("/user")
	route.Post("/create", auth.CreateUser)
	route.Post("/login", auth.Login)
}
