package engine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/platform/patch"
)

// MortgageValue is half the tile's face price, rounded down.
func (e *Engine) MortgageValue(tileIndex int) int {
	tile, err := e.board.Tile(tileIndex)
	if err != nil {
		return 0
	}
	return tile.Price / 2
}

// UnmortgageCost is the mortgage value plus interest, rounded down.
func (e *Engine) UnmortgageCost(tileIndex int, s models.GameState) int {
	return unmortgageCost(e.MortgageValue(tileIndex), s.Settings.MortgageInterest)
}

func unmortgageCost(value int, interest float64) int {
	rate := decimal.NewFromInt(1).Add(decimal.NewFromFloat(interest))
	return int(decimal.NewFromInt(int64(value)).Mul(rate).Floor().IntPart())
}

func (t *tx) owned(playerID string, tileIndex int) (models.Tile, models.PropertyState, error) {
	if _, err := t.active(playerID); err != nil {
		return models.Tile{}, models.PropertyState{}, err
	}
	tile, err := t.e.board.Tile(tileIndex)
	if err != nil {
		return tile, models.PropertyState{}, fmt.Errorf("%w: %v", ErrInvalidTile, err)
	}
	prop, err := t.property(tileIndex)
	if err != nil {
		return tile, prop, err
	}
	if prop.OwnerID != playerID {
		return tile, prop, fmt.Errorf("%w: %s", ErrNotOwner, tile.Name)
	}
	return tile, prop, nil
}

func (e *Engine) MortgageProperty(playerID string, tileIndex int, s models.GameState) ([]patch.Patch, error) {
	t := e.begin(s)
	tile, prop, err := t.owned(playerID, tileIndex)
	if err != nil {
		return nil, err
	}
	if prop.Mortgaged {
		return nil, fmt.Errorf("%w: %s", ErrPropertyMortgaged, tile.Name)
	}
	if prop.Houses > 0 || prop.Hotel {
		return nil, fmt.Errorf("%w: %s", ErrPropertyHasBuildings, tile.Name)
	}
	value := tile.Price / 2
	t.updateProperty(tileIndex, patch.PropertyFields{Mortgaged: patch.Bool(true)})
	t.addCash(playerID, value)
	t.log("mortgage", playerID, map[string]interface{}{"tileIndex": tileIndex, "amount": value})
	return t.patches, nil
}

func (e *Engine) UnmortgageProperty(playerID string, tileIndex int, s models.GameState) ([]patch.Patch, error) {
	t := e.begin(s)
	tile, prop, err := t.owned(playerID, tileIndex)
	if err != nil {
		return nil, err
	}
	if !prop.Mortgaged {
		return nil, fmt.Errorf("%w: %s", ErrPropertyNotMortgaged, tile.Name)
	}
	cost := unmortgageCost(tile.Price/2, s.Settings.MortgageInterest)
	if t.mustPlayer(playerID).Cash < cost {
		return nil, fmt.Errorf("%w: unmortgaging %s costs %d", ErrInsufficientFunds, tile.Name, cost)
	}
	t.updateProperty(tileIndex, patch.PropertyFields{Mortgaged: patch.Bool(false)})
	t.addCash(playerID, -cost)
	t.log("unmortgage", playerID, map[string]interface{}{"tileIndex": tileIndex, "amount": cost})
	return t.patches, nil
}
