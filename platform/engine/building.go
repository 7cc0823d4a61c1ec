package engine

import (
	"fmt"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/platform/patch"
)

// houseCostTiers maps a face-price ceiling to the cost of one building.
var houseCostTiers = []struct{ maxPrice, cost int }{
	{100, 50},
	{140, 50},
	{180, 100},
	{220, 100},
	{260, 150},
	{300, 150},
	{350, 200},
}

const topHouseCost = 200

// HouseCost is the price of one house on the tile. A hotel costs the same.
func (e *Engine) HouseCost(tileIndex int) int {
	tile, err := e.board.Tile(tileIndex)
	if err != nil {
		return 0
	}
	return houseCost(tile.Price)
}

func houseCost(price int) int {
	for _, tier := range houseCostTiers {
		if price <= tier.maxPrice {
			return tier.cost
		}
	}
	return topHouseCost
}

// street loads a street the player may sell buildings from: they own the
// whole color group.
func (t *tx) street(playerID string, tileIndex int) (models.Tile, models.PropertyState, []models.PropertyState, error) {
	var prop models.PropertyState
	if _, err := t.active(playerID); err != nil {
		return models.Tile{}, prop, nil, err
	}
	tile, err := t.e.board.Tile(tileIndex)
	if err != nil {
		return tile, prop, nil, fmt.Errorf("%w: %v", ErrInvalidTile, err)
	}
	if tile.Type != models.TileProperty {
		return tile, prop, nil, fmt.Errorf("%w: cannot build on %s", ErrInvalidTile, tile.Name)
	}
	if prop, err = t.property(tileIndex); err != nil {
		return tile, prop, nil, err
	}
	if prop.OwnerID != playerID {
		return tile, prop, nil, fmt.Errorf("%w: %s", ErrNotOwner, tile.Name)
	}
	if !t.ownsGroup(playerID, tile.Color, false) {
		return tile, prop, nil, fmt.Errorf("%w: %s group is not complete", ErrNotOwner, tile.Color)
	}
	return tile, prop, t.group(tile.Color), nil
}

// buildable is street plus nothing in the group mortgaged.
func (t *tx) buildable(playerID string, tileIndex int) (models.Tile, models.PropertyState, []models.PropertyState, error) {
	tile, prop, group, err := t.street(playerID, tileIndex)
	if err != nil {
		return tile, prop, nil, err
	}
	for _, g := range group {
		if g.Mortgaged {
			return tile, prop, nil, fmt.Errorf("%w: tile %d in the %s group", ErrPropertyMortgaged, g.TileIndex, tile.Color)
		}
	}
	return tile, prop, group, nil
}

func levels(group []models.PropertyState) (lo, hi int) {
	lo, hi = 5, 0
	for _, g := range group {
		lo, hi = min(lo, g.Level()), max(hi, g.Level())
	}
	return lo, hi
}

// supply counts the houses and hotels standing on the board.
func (t *tx) supply() (houses, hotels int) {
	for _, p := range t.s.Properties {
		if p.Hotel {
			hotels++
		} else {
			houses += p.Houses
		}
	}
	return houses, hotels
}

func limitReached(inPlay, add, limit int) bool {
	return limit > 0 && inPlay+add > limit
}

func (t *tx) checkHouse(playerID string, tileIndex int) (int, error) {
	tile, prop, group, err := t.buildable(playerID, tileIndex)
	if err != nil {
		return 0, err
	}
	if prop.Hotel || prop.Houses >= 4 {
		return 0, fmt.Errorf("%w: %s is fully built", ErrInvalidBuildOrder, tile.Name)
	}
	if lo, _ := levels(group); prop.Level() > lo {
		return 0, fmt.Errorf("%w: build evenly across the %s group", ErrInvalidBuildOrder, tile.Color)
	}
	if houses, _ := t.supply(); limitReached(houses, 1, t.s.Settings.HouseLimit) {
		return 0, fmt.Errorf("%w: houses", ErrBuildingSupply)
	}
	cost := houseCost(tile.Price)
	if t.mustPlayer(playerID).Cash < cost {
		return 0, fmt.Errorf("%w: a house costs %d", ErrInsufficientFunds, cost)
	}
	return cost, nil
}

func (t *tx) checkHotel(playerID string, tileIndex int) (int, error) {
	tile, prop, group, err := t.buildable(playerID, tileIndex)
	if err != nil {
		return 0, err
	}
	if prop.Hotel || prop.Houses != 4 {
		return 0, fmt.Errorf("%w: a hotel needs 4 houses on %s", ErrInvalidBuildOrder, tile.Name)
	}
	if lo, _ := levels(group); lo < 4 {
		return 0, fmt.Errorf("%w: build evenly across the %s group", ErrInvalidBuildOrder, tile.Color)
	}
	if _, hotels := t.supply(); limitReached(hotels, 1, t.s.Settings.HotelLimit) {
		return 0, fmt.Errorf("%w: hotels", ErrBuildingSupply)
	}
	cost := houseCost(tile.Price)
	if t.mustPlayer(playerID).Cash < cost {
		return 0, fmt.Errorf("%w: a hotel costs %d", ErrInsufficientFunds, cost)
	}
	return cost, nil
}

func (e *Engine) CanBuildHouse(playerID string, tileIndex int, s models.GameState) bool {
	_, err := e.begin(s).checkHouse(playerID, tileIndex)
	return err == nil
}

func (e *Engine) BuildHouse(playerID string, tileIndex int, s models.GameState) ([]patch.Patch, error) {
	t := e.begin(s)
	cost, err := t.checkHouse(playerID, tileIndex)
	if err != nil {
		return nil, err
	}
	prop, _ := t.property(tileIndex)
	t.updateProperty(tileIndex, patch.PropertyFields{Houses: patch.Int(prop.Houses + 1)})
	t.addCash(playerID, -cost)
	t.log("build_house", playerID, map[string]interface{}{"tileIndex": tileIndex, "houses": prop.Houses + 1, "cost": cost})
	return t.patches, nil
}

func (e *Engine) CanBuildHotel(playerID string, tileIndex int, s models.GameState) bool {
	_, err := e.begin(s).checkHotel(playerID, tileIndex)
	return err == nil
}

// BuildHotel replaces four houses with a hotel; the houses go back to the bank.
func (e *Engine) BuildHotel(playerID string, tileIndex int, s models.GameState) ([]patch.Patch, error) {
	t := e.begin(s)
	cost, err := t.checkHotel(playerID, tileIndex)
	if err != nil {
		return nil, err
	}
	t.updateProperty(tileIndex, patch.PropertyFields{Houses: patch.Int(0), Hotel: patch.Bool(true)})
	t.addCash(playerID, -cost)
	t.log("build_hotel", playerID, map[string]interface{}{"tileIndex": tileIndex, "cost": cost})
	return t.patches, nil
}

// SellHouse returns one house for half its cost. Selling follows the
// even-building rule in reverse.
func (e *Engine) SellHouse(playerID string, tileIndex int, s models.GameState) ([]patch.Patch, error) {
	t := e.begin(s)
	tile, prop, group, err := t.street(playerID, tileIndex)
	if err != nil {
		return nil, err
	}
	if prop.Hotel || prop.Houses == 0 {
		return nil, fmt.Errorf("%w: no house to sell on %s", ErrInvalidBuildOrder, tile.Name)
	}
	if _, hi := levels(group); prop.Level() < hi {
		return nil, fmt.Errorf("%w: sell evenly across the %s group", ErrInvalidBuildOrder, tile.Color)
	}
	refund := houseCost(tile.Price) / 2
	t.updateProperty(tileIndex, patch.PropertyFields{Houses: patch.Int(prop.Houses - 1)})
	t.addCash(playerID, refund)
	t.log("sell_house", playerID, map[string]interface{}{"tileIndex": tileIndex, "houses": prop.Houses - 1, "refund": refund})
	return t.patches, nil
}

// SellHotel trades a hotel back for four houses and half the hotel cost.
// It needs four houses left in the bank.
func (e *Engine) SellHotel(playerID string, tileIndex int, s models.GameState) ([]patch.Patch, error) {
	t := e.begin(s)
	tile, prop, _, err := t.street(playerID, tileIndex)
	if err != nil {
		return nil, err
	}
	if !prop.Hotel {
		return nil, fmt.Errorf("%w: no hotel on %s", ErrInvalidBuildOrder, tile.Name)
	}
	if houses, _ := t.supply(); limitReached(houses, 4, t.s.Settings.HouseLimit) {
		return nil, fmt.Errorf("%w: houses", ErrBuildingSupply)
	}
	refund := houseCost(tile.Price) / 2
	t.updateProperty(tileIndex, patch.PropertyFields{Houses: patch.Int(4), Hotel: patch.Bool(false)})
	t.addCash(playerID, refund)
	t.log("sell_hotel", playerID, map[string]interface{}{"tileIndex": tileIndex, "refund": refund})
	return t.patches, nil
}
