package engine

import "github.com/DedS3t/monopoly-engine/app/models"

const railroadRent = 25

var houseMultiplier = [...]int{1, 2, 3, 4, 5}

// CalculateRent is what landing on tileIndex costs right now. diceTotal
// only matters for utilities. Unowned and mortgaged tiles cost nothing.
func (e *Engine) CalculateRent(tileIndex, diceTotal int, s models.GameState) int {
	return e.begin(s).rent(tileIndex, diceTotal)
}

func (t *tx) rent(tileIndex, diceTotal int) int {
	tile, err := t.e.board.Tile(tileIndex)
	if err != nil {
		return 0
	}
	prop, err := t.property(tileIndex)
	if err != nil || prop.OwnerID == "" || prop.Mortgaged {
		return 0
	}
	if _, err := t.player(prop.OwnerID); err != nil {
		return 0
	}

	switch tile.Type {
	case models.TileProperty:
		switch {
		case prop.Hotel:
			return tile.BaseRent * 5
		case prop.Houses > 0:
			return tile.BaseRent * houseMultiplier[min(prop.Houses, 4)]
		case t.ownsGroup(prop.OwnerID, tile.Color, true):
			return tile.BaseRent * 2
		}
		return tile.BaseRent
	case models.TileRailroad:
		return railroadRent * t.ownedOfType(prop.OwnerID, models.TileRailroad)
	case models.TileUtility:
		switch t.ownedOfType(prop.OwnerID, models.TileUtility) {
		case 1:
			return 4 * diceTotal
		case 2:
			return 10 * diceTotal
		}
	}
	return 0
}

func (t *tx) ownedOfType(owner string, typ models.TileType) int {
	n := 0
	for _, tile := range t.e.board.TilesByType(typ) {
		if p, err := t.property(tile.Index); err == nil && p.OwnerID == owner {
			n++
		}
	}
	return n
}

// ownsGroup reports whether owner holds every tile of a color group, and
// with unmortgaged set, whether none of them is mortgaged.
func (t *tx) ownsGroup(owner, color string, unmortgaged bool) bool {
	group := t.e.board.TilesByColor(color)
	if color == "" || len(group) == 0 {
		return false
	}
	for _, tile := range group {
		p, err := t.property(tile.Index)
		if err != nil || p.OwnerID != owner || (unmortgaged && p.Mortgaged) {
			return false
		}
	}
	return true
}

// group returns the property records of a color group in board order.
func (t *tx) group(color string) []models.PropertyState {
	var out []models.PropertyState
	for _, tile := range t.e.board.TilesByColor(color) {
		if p, err := t.property(tile.Index); err == nil {
			out = append(out, p)
		}
	}
	return out
}
