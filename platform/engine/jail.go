package engine

import (
	"fmt"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/platform/patch"
)

type JailAction string

const (
	JailPay  JailAction = "pay"
	JailCard JailAction = "card"
	JailRoll JailAction = "roll"
)

// maxJailRolls is the number of failed rolls after which the fine is forced.
const maxJailRolls = 3

type JailResult struct {
	Dice    *models.DiceRoll
	Patches []patch.Patch
}

// HandleJail runs one way out of jail for the player holding the turn.
// A roll that misses the double ends the turn.
func (e *Engine) HandleJail(playerID string, action JailAction, s models.GameState) (JailResult, error) {
	t := e.begin(s)
	p, err := t.onTurn(playerID)
	if err != nil {
		return JailResult{}, err
	}
	if !p.InJail {
		return JailResult{}, fmt.Errorf("%w: %s is not in jail", ErrInvalidJailAction, p.Name)
	}

	switch action {
	case JailPay:
		fine := t.jailFine()
		if p.Cash < fine {
			return JailResult{}, fmt.Errorf("%w: fine is %d", ErrInsufficientFunds, fine)
		}
		t.payFine(playerID, fine)
		t.release(playerID)
		t.log("jail_paid", playerID, map[string]interface{}{"amount": fine})
	case JailCard:
		if p.GetOutOfJailCards < 1 {
			return JailResult{}, fmt.Errorf("%w: no get out of jail card", ErrInvalidCardState)
		}
		t.updatePlayer(playerID, patch.PlayerFields{GetOutOfJailCards: patch.Int(p.GetOutOfJailCards - 1)})
		t.release(playerID)
		t.log("jail_card_used", playerID, nil)
	case JailRoll:
		if s.Settings.ManualEndTurn && p.HasRolled {
			return JailResult{}, ErrAlreadyRolled
		}
		roll := e.dice.Roll()
		t.roll = &roll
		t.log("dice_rolled", playerID, map[string]interface{}{"d1": roll.D1, "d2": roll.D2, "total": roll.Total})
		t.jailRoll(playerID, roll)
		if !roll.IsDouble {
			t.finishRoll(playerID)
		}
		return JailResult{Dice: &roll, Patches: t.patches}, nil
	default:
		return JailResult{}, fmt.Errorf("%w: %q", ErrInvalidJailAction, action)
	}
	return JailResult{Patches: t.patches}, nil
}

func (t *tx) release(playerID string) {
	t.updatePlayer(playerID, patch.PlayerFields{InJail: patch.Bool(false), JailTurns: patch.Int(0)})
}

// jailRoll settles a roll made from jail. A double frees the player but
// does not move them; the third miss forces the fine.
func (t *tx) jailRoll(playerID string, roll models.DiceRoll) {
	if roll.IsDouble {
		t.release(playerID)
		t.log("jail_doubles", playerID, nil)
		return
	}
	p := t.mustPlayer(playerID)
	turns := p.JailTurns + 1
	if turns < maxJailRolls {
		t.updatePlayer(playerID, patch.PlayerFields{JailTurns: patch.Int(turns)})
		t.log("jail_roll_failed", playerID, map[string]interface{}{"attempt": turns})
		return
	}
	fine := t.jailFine()
	if p.Cash >= fine {
		t.payFine(playerID, fine)
		t.release(playerID)
		t.log("jail_fine_forced", playerID, map[string]interface{}{"amount": fine})
		return
	}
	t.updatePlayer(playerID, patch.PlayerFields{JailTurns: patch.Int(turns)})
	t.bankrupt(playerID)
}
