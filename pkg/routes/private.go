package routes

import (
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"

	"github.com/DedS3t/monopoly-engine/app/controllers"
)

// PrivateRoutes registers everything behind the jwt middleware. Call it
// after the public routes.
func PrivateRoutes(a *fiber.App, secret string, auth *controllers.AuthController, games *controllers.GameController) {
	a.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(secret),
	}))

	a.Get("/user/cur", auth.Cur)
	a.Post("/game/:id/pause", games.Pause)
	a.Post("/game/:id/resume", games.Resume)
}
