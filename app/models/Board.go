package models

type TileType string

const (
	TileGo          TileType = "GO"
	TileProperty    TileType = "PROPERTY"
	TileRailroad    TileType = "RAILROAD"
	TileUtility     TileType = "UTILITY"
	TileTax         TileType = "TAX"
	TileChance      TileType = "CHANCE"
	TileChest       TileType = "CHEST"
	TileJail        TileType = "JAIL"
	TileGoToJail    TileType = "GO_TO_JAIL"
	TileFreeParking TileType = "FREE_PARKING"
)

// Tile is one of the 40 board spaces. Price and BaseRent are zero for
// tiles that cannot be bought.
type Tile struct {
	Index         int      `json:"index"`
	Type          TileType `json:"type"`
	Name          string   `json:"name"`
	Color         string   `json:"color,omitempty"`
	Price         int      `json:"price,omitempty"`
	BaseRent      int      `json:"baseRent,omitempty"`
	GroupKey      string   `json:"groupKey,omitempty"`
	RailroadGroup string   `json:"railroadGroup,omitempty"`
	UtilityGroup  string   `json:"utilityGroup,omitempty"`
}

// Purchasable reports whether the tile carries a property record.
func (t Tile) Purchasable() bool {
	return t.Type == TileProperty || t.Type == TileRailroad || t.Type == TileUtility
}

type DeckName string

const (
	DeckChance DeckName = "chance"
	DeckChest  DeckName = "chest"
)

type NearestKind string

const (
	NearestRailroad NearestKind = "railroad"
	NearestUtility  NearestKind = "utility"
)
