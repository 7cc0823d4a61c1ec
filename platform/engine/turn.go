package engine

import (
	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/platform/patch"
)

// EndTurn passes the turn to the next player who is still in the game.
func (e *Engine) EndTurn(playerID string, s models.GameState) ([]patch.Patch, error) {
	t := e.begin(s)
	p, err := t.onTurn(playerID)
	if err != nil {
		return nil, err
	}
	if s.Settings.ManualEndTurn && !p.HasRolled {
		return nil, ErrMustRoll
	}
	t.endTurn(playerID)
	return t.patches, nil
}

// nextTurn walks forward from the current pointer, skipping bankrupt
// players. With nobody bankrupt this is (current+1) mod n.
func (t *tx) nextTurn() int {
	n := len(t.s.Players)
	for step := 1; step <= n; step++ {
		i := (t.s.CurrentTurn + step) % n
		if !t.s.Players[i].Bankrupt {
			return i
		}
	}
	return t.s.CurrentTurn
}

func (t *tx) endTurn(playerID string) {
	if t.finished() || len(t.s.Players) == 0 {
		return
	}
	p := t.mustPlayer(playerID)
	var reset patch.PlayerFields
	dirty := false
	if p.HasRolled {
		reset.HasRolled, dirty = patch.Bool(false), true
	}
	if p.DoublesInRow != 0 && !p.Bankrupt {
		reset.DoublesInRow, dirty = patch.Int(0), true
	}
	if dirty {
		t.updatePlayer(playerID, reset)
	}
	next := t.nextTurn()
	t.emit(patch.GameUpdate{Fields: patch.GameFields{CurrentTurn: patch.Int(next)}})
	t.log("turn_end", playerID, map[string]interface{}{
		"nextPlayer":   t.s.Players[next].Name,
		"nextPlayerId": t.s.Players[next].ID,
	})
}

// finishRoll closes a roll sequence. In manual mode the player keeps the
// turn until EndTurn; a bankrupt player passes it at once.
func (t *tx) finishRoll(playerID string) {
	if t.finished() {
		return
	}
	p := t.mustPlayer(playerID)
	if t.s.Settings.ManualEndTurn && !p.Bankrupt {
		if !p.HasRolled {
			t.updatePlayer(playerID, patch.PlayerFields{HasRolled: patch.Bool(true)})
		}
		return
	}
	t.endTurn(playerID)
}
