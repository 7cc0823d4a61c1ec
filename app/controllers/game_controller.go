package controllers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/pkg"
	"github.com/DedS3t/monopoly-engine/platform/engine"
	"github.com/DedS3t/monopoly-engine/platform/queries"
	"github.com/DedS3t/monopoly-engine/platform/store"
)

const codeLength = 8

// Games is the lobby listing. *queries.Postgres implements it.
type Games interface {
	CreateGame(ctx context.Context, game *models.Game) error
	AvailableGames(ctx context.Context) ([]models.Game, error)
	VerifyGame(ctx context.Context, id string) bool
}

// Sessions reads and steers games in progress. *queries.GameService
// implements it.
type Sessions interface {
	State(ctx context.Context, gameID string) (models.GameState, error)
	Logs(ctx context.Context, gameID string) ([]models.LogEntry, error)
	Pause(ctx context.Context, gameID, userID string) (queries.Outcome, error)
	Resume(ctx context.Context, gameID, userID string) (queries.Outcome, error)
}

type GameController struct {
	games    Games
	sessions Sessions
}

func NewGameController(games Games, sessions Sessions) *GameController {
	return &GameController{games: games, sessions: sessions}
}

func (g *GameController) CreateGame(c *fiber.Ctx) error {
	gameCreateDto := new(models.GameCreateDto)
	if err := c.BodyParser(gameCreateDto); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	game := &models.Game{
		Id:     pkg.RandString(codeLength),
		Name:   gameCreateDto.Name,
		Type:   gameCreateDto.Type,
		Status: models.StatusLobby,
	}
	if err := g.games.CreateGame(c.Context(), game); err != nil {
		return err
	}
	log.WithField("game_id", game.Id).Info("game created")
	return c.JSON(fiber.Map{"id": game.Id})
}

func (g *GameController) GetAllAvailGames(c *fiber.Ctx) error {
	games, err := g.games.AvailableGames(c.Context())
	if err != nil {
		return err
	}
	if games == nil {
		games = []models.Game{}
	}
	return c.JSON(games)
}

func (g *GameController) VerifyGame(c *fiber.Ctx) error {
	verifyGameDto := new(models.VerifyGameDto)
	if err := c.QueryParser(verifyGameDto); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(fiber.Map{"status": g.games.VerifyGame(c.Context(), verifyGameDto.Code)})
}

// FindAvailGame returns the newest game still waiting for players.
func (g *GameController) FindAvailGame(c *fiber.Ctx) error {
	games, err := g.games.AvailableGames(c.Context())
	if err != nil {
		return err
	}
	if len(games) == 0 {
		return fiber.NewError(fiber.StatusNotFound, "no open games")
	}
	return c.JSON(fiber.Map{"id": games[0].Id})
}

func (g *GameController) GetState(c *fiber.Ctx) error {
	s, err := g.sessions.State(c.Context(), c.Params("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(s)
}

func (g *GameController) GetLogs(c *fiber.Ctx) error {
	logs, err := g.sessions.Logs(c.Context(), c.Params("id"))
	if err != nil {
		return httpError(err)
	}
	if logs == nil {
		logs = []models.LogEntry{}
	}
	return c.JSON(logs)
}

func (g *GameController) Pause(c *fiber.Ctx) error {
	return g.steer(c, g.sessions.Pause)
}

func (g *GameController) Resume(c *fiber.Ctx) error {
	return g.steer(c, g.sessions.Resume)
}

func (g *GameController) steer(c *fiber.Ctx, op func(context.Context, string, string) (queries.Outcome, error)) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	out, err := op(c.Context(), c.Params("id"), userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(fiber.Map{"version": out.Version})
}

var (
	notFound = []error{store.ErrGameNotFound, queries.ErrUserNotFound, queries.ErrTradeNotFound, engine.ErrPlayerNotFound}
	conflict = []error{store.ErrVersionConflict, store.ErrGameExists}
	rejected = []error{
		queries.ErrInvalidStatus, queries.ErrNotTradeParty, queries.ErrTradeClosed, queries.ErrNotSeated,
		engine.ErrNotPlayersTurn, engine.ErrPlayerBankrupt, engine.ErrGameNotRunning,
	}
)

// httpError maps service errors onto status codes. Unknown errors pass
// through to the default handler as 500s.
func httpError(err error) error {
	for _, status := range []struct {
		code int
		errs []error
	}{
		{fiber.StatusNotFound, notFound},
		{fiber.StatusConflict, conflict},
		{fiber.StatusBadRequest, rejected},
	} {
		for _, target := range status.errs {
			if errors.Is(err, target) {
				return fiber.NewError(status.code, err.Error())
			}
		}
	}
	return err
}
