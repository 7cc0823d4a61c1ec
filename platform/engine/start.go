package engine

import (
	"fmt"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/platform/board"
	"github.com/DedS3t/monopoly-engine/platform/patch"
)

// StartGame lays out a fresh game for players in the given order: every
// player starts on GO with the starting cash, every purchasable tile is
// unowned, and both decks are shuffled.
func (e *Engine) StartGame(gameID string, players []models.PlayerState, settings models.Settings) ([]patch.Patch, error) {
	if len(players) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrNotEnoughPlayers, len(players))
	}
	seated := make([]models.PlayerState, len(players))
	names := make([]string, len(players))
	for i, p := range players {
		seated[i] = models.PlayerState{
			ID:          p.ID,
			UserID:      p.UserID,
			Name:        p.Name,
			Color:       p.Color,
			IsConnected: p.IsConnected,
			Cash:        settings.StartingCash,
			Order:       i,
		}
		names[i] = p.Name
	}

	tiles := e.board.Tiles()
	var props []models.PropertyState
	for _, tile := range tiles {
		if tile.Purchasable() {
			props = append(props, models.PropertyState{TileIndex: tile.Index})
		}
	}

	status := models.StatusRunning
	chance := board.Shuffle(e.board.Cards(models.DeckChance), e.shuffle)
	chest := board.Shuffle(e.board.Cards(models.DeckChest), e.shuffle)
	empty := []models.Card{}

	t := e.begin(models.GameState{ID: gameID})
	t.emit(patch.GameUpdate{Fields: patch.GameFields{
		Status:         &status,
		CurrentTurn:    patch.Int(0),
		FreeParkingPot: patch.Int(0),
		Settings:       &settings,
		Tiles:          &tiles,
		Players:        &seated,
		Properties:     &props,
		ChanceDeck:     &chance,
		ChanceDiscard:  &empty,
		ChestDeck:      &chest,
		ChestDiscard:   &empty,
	}})
	t.log("game_start", "", map[string]interface{}{"players": names})
	return t.patches, nil
}
