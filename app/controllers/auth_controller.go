package controllers

import (
	"context"
	"errors"

	jwt "github.com/form3tech-oss/jwt-go"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/pkg"
	"github.com/DedS3t/monopoly-engine/platform/queries"
)

// Accounts stores users. *queries.Postgres implements it.
type Accounts interface {
	CreateUser(ctx context.Context, email, passwordHash string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
}

type AuthController struct {
	users  Accounts
	secret []byte
}

func NewAuthController(users Accounts, secret string) *AuthController {
	return &AuthController{users: users, secret: []byte(secret)}
}

func (a *AuthController) CreateUser(c *fiber.Ctx) error {
	userDto := new(models.UserDto)
	if err := c.BodyParser(userDto); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if userDto.Email == "" || userDto.Pass == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email and pass are required")
	}

	_, err := a.users.GetUserByEmail(c.Context(), userDto.Email)
	if err == nil {
		return fiber.NewError(fiber.StatusConflict, "email already registered")
	}
	if !errors.Is(err, queries.ErrUserNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(userDto.Pass), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user, err := a.users.CreateUser(c.Context(), userDto.Email, string(hash))
	if err != nil {
		return err
	}
	log.WithField("user_id", user.Id).Info("user created")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": user.Id})
}

func (a *AuthController) Login(c *fiber.Ctx) error {
	userDto := new(models.UserDto)
	if err := c.BodyParser(userDto); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	user, err := a.users.GetUserByEmail(c.Context(), userDto.Email)
	if errors.Is(err, queries.ErrUserNotFound) {
		return fiber.ErrUnauthorized
	}
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(userDto.Pass)) != nil {
		return fiber.ErrUnauthorized
	}

	t, err := pkg.NewToken(a.secret, user.Id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"access_token": t})
}

// Cur echoes the user id of the authenticated caller.
func (a *AuthController) Cur(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	return c.SendString(userID)
}

// currentUser reads the token the jwt middleware stored in locals.
func currentUser(c *fiber.Ctx) (string, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return "", fiber.ErrUnauthorized
	}
	userID, err := pkg.UserID(token)
	if err != nil {
		return "", fiber.ErrUnauthorized
	}
	return userID, nil
}
