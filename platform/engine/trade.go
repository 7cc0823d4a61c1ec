package engine

import (
	"fmt"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/platform/patch"
)

// ValidateTrade checks that both sides of an offer can deliver what it
// names right now.
func (e *Engine) ValidateTrade(tr models.Trade, s models.GameState) error {
	return e.begin(s).checkTrade(tr)
}

// ExecuteTrade swaps the cash and properties of an accepted offer.
// Mortgaged properties change hands mortgaged.
func (e *Engine) ExecuteTrade(tr models.Trade, s models.GameState) ([]patch.Patch, error) {
	t := e.begin(s)
	if err := t.checkTrade(tr); err != nil {
		return nil, err
	}
	for _, idx := range tr.FromProperties {
		t.updateProperty(idx, patch.PropertyFields{OwnerID: patch.String(tr.ToID)})
	}
	for _, idx := range tr.ToProperties {
		t.updateProperty(idx, patch.PropertyFields{OwnerID: patch.String(tr.FromID)})
	}
	t.addCash(tr.FromID, tr.CashTo-tr.CashFrom)
	t.addCash(tr.ToID, tr.CashFrom-tr.CashTo)
	t.log("trade_accepted", tr.FromID, map[string]interface{}{
		"tradeId":        tr.Id,
		"toId":           tr.ToID,
		"cashFrom":       tr.CashFrom,
		"cashTo":         tr.CashTo,
		"fromProperties": tr.FromProperties,
		"toProperties":   tr.ToProperties,
	})
	return t.patches, nil
}

func (t *tx) checkTrade(tr models.Trade) error {
	if tr.FromID == tr.ToID {
		return fmt.Errorf("%w: cannot trade with yourself", ErrInvalidTrade)
	}
	from, err := t.active(tr.FromID)
	if err != nil {
		return err
	}
	to, err := t.active(tr.ToID)
	if err != nil {
		return err
	}
	if tr.CashFrom < 0 || tr.CashTo < 0 {
		return fmt.Errorf("%w: negative cash", ErrInvalidTrade)
	}
	if tr.CashFrom == 0 && tr.CashTo == 0 && len(tr.FromProperties) == 0 && len(tr.ToProperties) == 0 {
		return fmt.Errorf("%w: empty offer", ErrInvalidTrade)
	}
	if from.Cash < tr.CashFrom {
		return fmt.Errorf("%w: %s cannot pay %d", ErrInsufficientFunds, from.Name, tr.CashFrom)
	}
	if to.Cash < tr.CashTo {
		return fmt.Errorf("%w: %s cannot pay %d", ErrInsufficientFunds, to.Name, tr.CashTo)
	}

	seen := map[int]bool{}
	sides := []struct {
		owner string
		tiles []int
	}{{tr.FromID, tr.FromProperties}, {tr.ToID, tr.ToProperties}}
	for _, side := range sides {
		for _, idx := range side.tiles {
			if seen[idx] {
				return fmt.Errorf("%w: tile %d listed twice", ErrInvalidTrade, idx)
			}
			seen[idx] = true
			if err := t.tradeable(side.owner, idx); err != nil {
				return err
			}
		}
	}
	return nil
}

// tradeable requires the owner to hold the tile and nothing to stand on
// its color group.
func (t *tx) tradeable(owner string, tileIndex int) error {
	tile, err := t.e.board.Tile(tileIndex)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTile, err)
	}
	prop, err := t.property(tileIndex)
	if err != nil {
		return err
	}
	if prop.OwnerID != owner {
		return fmt.Errorf("%w: %s", ErrNotOwner, tile.Name)
	}
	for _, g := range t.group(tile.Color) {
		if g.Level() > 0 {
			return fmt.Errorf("%w: %s group", ErrPropertyHasBuildings, tile.Color)
		}
	}
	return nil
}
