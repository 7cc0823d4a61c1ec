package queries

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-pg/pg/v10"
	uuid "github.com/satori/go.uuid"

	"github.com/DedS3t/monopoly-engine/app/models"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrTradeNotFound = errors.New("trade not found")
)

// Postgres holds the lobby side of the system: users, games waiting for
// players, seats, archived logs and trade offers.
type Postgres struct {
	db *pg.DB
}

func NewPostgres(db *pg.DB) *Postgres {
	return &Postgres{db: db}
}

func (q *Postgres) CreateUser(ctx context.Context, email, passwordHash string) (models.User, error) {
	user := models.User{
		Id:       uuid.NewV4().String(),
		Email:    email,
		Password: passwordHash,
	}
	_, err := q.db.ModelContext(ctx, &user).Insert()
	return user, err
}

func (q *Postgres) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := q.db.ModelContext(ctx, &user).Where("email = ?", email).Select()
	if errors.Is(err, pg.ErrNoRows) {
		return user, ErrUserNotFound
	}
	return user, err
}

func (q *Postgres) GetUserData(ctx context.Context, id string) (models.User, error) {
	user := models.User{Id: id}
	err := q.db.ModelContext(ctx, &user).WherePK().Select()
	if errors.Is(err, pg.ErrNoRows) {
		return user, ErrUserNotFound
	}
	return user, err
}

func (q *Postgres) CreateGame(ctx context.Context, game *models.Game) error {
	_, err := q.db.ModelContext(ctx, game).Insert()
	return err
}

func (q *Postgres) VerifyGame(ctx context.Context, id string) bool {
	game := &models.Game{Id: id}
	return q.db.ModelContext(ctx, game).WherePK().Select() == nil
}

func (q *Postgres) AvailableGames(ctx context.Context) ([]models.Game, error) {
	var games []models.Game
	err := q.db.ModelContext(ctx, &games).
		Where("status = ?", models.StatusLobby).
		Order("created_at DESC").
		Select()
	return games, err
}

func (q *Postgres) SetGameStatus(ctx context.Context, id string, status models.GameStatus) error {
	game := &models.Game{Id: id}
	_, err := q.db.ModelContext(ctx, game).WherePK().Set("status = ?", status).Update()
	return err
}

// DeleteGame removes the game and its seats.
func (q *Postgres) DeleteGame(ctx context.Context, id string) error {
	return q.db.RunInTransaction(ctx, func(tx *pg.Tx) error {
		if _, err := tx.ModelContext(ctx, (*models.Player)(nil)).Where("game_id = ?", id).Delete(); err != nil {
			return err
		}
		_, err := tx.ModelContext(ctx, (*models.Game)(nil)).Where("id = ?", id).Delete()
		return err
	})
}

func (q *Postgres) CreatePlayer(ctx context.Context, player models.Player) error {
	_, err := q.db.ModelContext(ctx, &player).Insert()
	return err
}

func (q *Postgres) DeletePlayer(ctx context.Context, gameID, userID string) error {
	_, err := q.db.ModelContext(ctx, (*models.Player)(nil)).
		Where("user_id = ? AND game_id = ?", userID, gameID).
		Delete()
	return err
}

// GamePlayers returns the seats of a game in join order.
func (q *Postgres) GamePlayers(ctx context.Context, gameID string) ([]models.Player, error) {
	var players []models.Player
	err := q.db.ModelContext(ctx, &players).Where("game_id = ?", gameID).Order("joined_at ASC").Select()
	return players, err
}

func (q *Postgres) ArchiveLogs(ctx context.Context, gameID string, version int, entries []models.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]models.GameLog, len(entries))
	for i, e := range entries {
		rows[i] = models.GameLog{
			GameId:  gameID,
			Version: version,
			Type:    e.Type,
			ActorId: e.ActorID,
			Payload: e.Payload,
		}
	}
	_, err := q.db.ModelContext(ctx, &rows).Insert()
	return err
}

func (q *Postgres) SaveTrade(ctx context.Context, tr *models.Trade) error {
	if tr.Id == "" {
		tr.Id = uuid.NewV4().String()
		_, err := q.db.ModelContext(ctx, tr).Insert()
		return err
	}
	_, err := q.db.ModelContext(ctx, tr).WherePK().Update()
	return err
}

func (q *Postgres) GetTrade(ctx context.Context, id string) (models.Trade, error) {
	tr := models.Trade{Id: id}
	err := q.db.ModelContext(ctx, &tr).WherePK().Select()
	if errors.Is(err, pg.ErrNoRows) {
		return tr, fmt.Errorf("%w: %s", ErrTradeNotFound, id)
	}
	return tr, err
}
