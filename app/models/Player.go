package models

import "time"

// Player is a seat in a lobby game. The user id doubles as the player id
// inside the game state.
type Player struct {
	User_id  string `pg:",pk"`
	Game_id  string `pg:",pk"`
	Username string
	Color    string
	Active   bool      `pg:",use_zero"`
	JoinedAt time.Time `pg:"default:now()"`
}

type PlayerDto struct {
	Username   string
	Balance    int
	Pos        int
	Color      string
	Properties []int
	Jail       bool
	Bankrupt   bool
}

// NewPlayerDto summarises a player for lobby listings.
func NewPlayerDto(p PlayerState, properties []PropertyState) PlayerDto {
	dto := PlayerDto{
		Username: p.Name,
		Balance:  p.Cash,
		Pos:      p.Position,
		Color:    p.Color,
		Jail:     p.InJail,
		Bankrupt: p.Bankrupt,
	}
	for _, prop := range properties {
		if prop.OwnerID == p.ID {
			dto.Properties = append(dto.Properties, prop.TileIndex)
		}
	}
	return dto
}
