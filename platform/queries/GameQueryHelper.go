package queries

import (
	"context"

	"github.com/DedS3t/monopoly-engine/app/models"
)

// Lobby is the relational side the service needs. *Postgres implements it.
type Lobby interface {
	GamePlayers(ctx context.Context, gameID string) ([]models.Player, error)
	CreatePlayer(ctx context.Context, player models.Player) error
	DeletePlayer(ctx context.Context, gameID, userID string) error
	SetGameStatus(ctx context.Context, gameID string, status models.GameStatus) error
	DeleteGame(ctx context.Context, gameID string) error
	ArchiveLogs(ctx context.Context, gameID string, version int, entries []models.LogEntry) error
	SaveTrade(ctx context.Context, tr *models.Trade) error
	GetTrade(ctx context.Context, id string) (models.Trade, error)
}

var _ Lobby = (*Postgres)(nil)

// Broadcaster pushes an event to everyone in a game's room.
type Broadcaster interface {
	Broadcast(gameID, event string, payload interface{})
}

func IsUserTurn(s models.GameState, userID string) bool {
	cur, ok := s.CurrentPlayer()
	return ok && cur.ID == userID
}

// CheckWhoOwns returns the owner of a tile, "" for the bank.
func CheckWhoOwns(s models.GameState, tile int) string {
	for _, p := range s.Properties {
		if p.TileIndex == tile {
			return p.OwnerID
		}
	}
	return ""
}

// Standings lists every player with their holdings, in seat order.
func Standings(s models.GameState) []models.PlayerDto {
	out := make([]models.PlayerDto, len(s.Players))
	for i, p := range s.Players {
		out[i] = models.NewPlayerDto(p, s.Properties)
	}
	return out
}
