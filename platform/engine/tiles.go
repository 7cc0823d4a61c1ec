package engine

import (
	"fmt"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/platform/board"
	"github.com/DedS3t/monopoly-engine/platform/patch"
)

// TileEffect is what landing on a tile asks for. The set is closed.
type TileEffect interface {
	tileEffect()
}

type GoBonus struct{ Amount int }

// RentDue is raised for every purchasable tile; whether anything is owed
// depends on the owner when it is handled.
type RentDue struct{ TileIndex int }

type TaxDue struct{ Amount int }

type CardDraw struct{ Deck models.DeckName }

type JustVisiting struct{}

type SendToJail struct{}

type FreeParking struct{}

func (GoBonus) tileEffect()      {}
func (RentDue) tileEffect()      {}
func (TaxDue) tileEffect()       {}
func (CardDraw) tileEffect()     {}
func (JustVisiting) tileEffect() {}
func (SendToJail) tileEffect()   {}
func (FreeParking) tileEffect()  {}

// ApplyTileEffect maps a tile to the effect landing on it has.
func (e *Engine) ApplyTileEffect(playerID string, tileIndex int, s models.GameState) (TileEffect, error) {
	t := e.begin(s)
	if _, err := t.player(playerID); err != nil {
		return nil, err
	}
	return e.tileEffect(tileIndex)
}

func (e *Engine) tileEffect(tileIndex int) (TileEffect, error) {
	tile, err := e.board.Tile(tileIndex)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTile, err)
	}
	switch tile.Type {
	case models.TileGo:
		return GoBonus{Amount: board.GoSalary}, nil
	case models.TileProperty, models.TileRailroad, models.TileUtility:
		return RentDue{TileIndex: tileIndex}, nil
	case models.TileTax:
		return TaxDue{Amount: e.board.TaxAmount(tileIndex)}, nil
	case models.TileChance:
		return CardDraw{Deck: models.DeckChance}, nil
	case models.TileChest:
		return CardDraw{Deck: models.DeckChest}, nil
	case models.TileJail:
		return JustVisiting{}, nil
	case models.TileGoToJail:
		return SendToJail{}, nil
	case models.TileFreeParking:
		return FreeParking{}, nil
	}
	return nil, fmt.Errorf("%w: unknown type %s", ErrInvalidTile, tile.Type)
}

func (t *tx) resolveLanding(playerID string) error {
	effect, err := t.e.tileEffect(t.mustPlayer(playerID).Position)
	if err != nil {
		return err
	}
	return t.handleEffect(playerID, effect)
}

func (t *tx) handleEffect(playerID string, effect TileEffect) error {
	switch eff := effect.(type) {
	case GoBonus:
		t.addCash(playerID, eff.Amount)
		t.log("land_on_go", playerID, map[string]interface{}{"amount": eff.Amount})
	case RentDue:
		t.payRent(playerID, eff.TileIndex)
	case TaxDue:
		t.addCash(playerID, -eff.Amount)
		if t.s.Settings.FreeParkingRule != models.FreeParkingNone {
			t.addToPot(eff.Amount)
		}
		t.log("pay_tax", playerID, map[string]interface{}{"amount": eff.Amount})
	case CardDraw:
		if t.depth >= maxCardChain {
			return nil
		}
		_, err := t.draw(playerID, eff.Deck)
		return err
	case SendToJail:
		t.sendToJail(playerID, "go_to_jail_tile")
	case FreeParking:
		pot := t.s.FreeParkingPot
		if t.s.Settings.FreeParkingRule == models.FreeParkingNone || pot <= 0 {
			return nil
		}
		t.addCash(playerID, pot)
		t.emit(patch.GameUpdate{Fields: patch.GameFields{FreeParkingPot: patch.Int(0)}})
		t.log("free_parking", playerID, map[string]interface{}{"amount": pot})
	case JustVisiting:
	}
	return nil
}

func (t *tx) sendToJail(playerID, reason string) {
	t.updatePlayer(playerID, patch.PlayerFields{
		Position:     patch.Int(board.JailIndex),
		InJail:       patch.Bool(true),
		JailTurns:    patch.Int(0),
		DoublesInRow: patch.Int(0),
	})
	t.jailed[playerID] = true
	t.log("go_to_jail", playerID, map[string]interface{}{"reason": reason})
}

// payRent charges the lander whatever the owner of tileIndex is due.
// The lander's cash may go negative; bankruptcy is settled separately.
func (t *tx) payRent(playerID string, tileIndex int) {
	prop, err := t.property(tileIndex)
	if err != nil || prop.OwnerID == "" || prop.OwnerID == playerID || prop.Mortgaged {
		return
	}
	owner, err := t.player(prop.OwnerID)
	if err != nil || owner.Bankrupt {
		return
	}
	total := 0
	if t.e.board.IsUtilityTile(tileIndex) {
		if t.roll == nil {
			r := t.e.dice.Roll()
			t.roll = &r
		}
		total = t.roll.Total
	}
	rent := t.rent(tileIndex, total)
	if rent == 0 {
		return
	}
	t.addCash(playerID, -rent)
	t.addCash(owner.ID, rent)
	t.log("pay_rent", playerID, map[string]interface{}{
		"tileIndex": tileIndex,
		"ownerId":   owner.ID,
		"amount":    rent,
	})
}
