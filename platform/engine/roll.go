package engine

import (
	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/platform/board"
	"github.com/DedS3t/monopoly-engine/platform/patch"
)

type RollResult struct {
	Dice    models.DiceRoll
	Cards   []models.Card
	Patches []patch.Patch
}

type MoveResult struct {
	NewPosition int
	PassedGo    bool
	LandedOnGo  bool
}

// RollDice rolls for the player holding the turn and plays out the result:
// movement, the landed tile, jail attempts and the turn hand-off.
func (e *Engine) RollDice(playerID string, s models.GameState) (RollResult, error) {
	t := e.begin(s)
	p, err := t.onTurn(playerID)
	if err != nil {
		return RollResult{}, err
	}
	if s.ActiveAuction != nil {
		return RollResult{}, ErrAuctionInProgress
	}
	if s.Settings.ManualEndTurn && p.HasRolled {
		return RollResult{}, ErrAlreadyRolled
	}

	roll := e.dice.Roll()
	t.roll = &roll
	doubles := 0
	if roll.IsDouble {
		doubles = p.DoublesInRow + 1
	}
	t.updatePlayer(playerID, patch.PlayerFields{DoublesInRow: patch.Int(doubles)})
	t.log("dice_rolled", playerID, map[string]interface{}{"d1": roll.D1, "d2": roll.D2, "total": roll.Total})

	switch {
	case roll.IsDouble && doubles >= 3:
		t.sendToJail(playerID, "three_doubles")
	case !p.InJail:
		t.advance(playerID, roll.Total)
		if err := t.resolveLanding(playerID); err != nil {
			return RollResult{}, err
		}
	default:
		t.jailRoll(playerID, roll)
	}

	after := t.mustPlayer(playerID)
	if !roll.IsDouble || t.jailed[playerID] || after.Bankrupt {
		t.finishRoll(playerID)
	}
	return RollResult{Dice: roll, Cards: t.cards, Patches: t.patches}, nil
}

// MovePlayer reports where a forward move would end without changing anything.
func (e *Engine) MovePlayer(playerID string, spaces int, s models.GameState) (MoveResult, error) {
	t := e.begin(s)
	p, err := t.player(playerID)
	if err != nil {
		return MoveResult{}, err
	}
	return move(p.Position, spaces), nil
}

func move(from, spaces int) MoveResult {
	to := board.NextPosition(from, spaces)
	return MoveResult{
		NewPosition: to,
		PassedGo:    spaces > 0 && to < from && to != board.GoIndex,
		LandedOnGo:  to == board.GoIndex,
	}
}

// advance moves the player forward and pays the GO salary for passing it.
// Landing on GO is paid by the tile itself.
func (t *tx) advance(playerID string, spaces int) MoveResult {
	p := t.mustPlayer(playerID)
	m := move(p.Position, spaces)
	t.updatePlayer(playerID, patch.PlayerFields{Position: patch.Int(m.NewPosition)})
	if m.PassedGo {
		t.addCash(playerID, board.GoSalary)
		t.log("pass_go", playerID, map[string]interface{}{"amount": board.GoSalary})
	}
	return m
}

// advanceTo moves forward to an absolute index, wrapping past GO if needed.
func (t *tx) advanceTo(playerID string, target int) MoveResult {
	p := t.mustPlayer(playerID)
	spaces := target - p.Position
	if spaces <= 0 {
		spaces += board.Size
	}
	return t.advance(playerID, spaces)
}
