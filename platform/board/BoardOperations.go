package board

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/DedS3t/monopoly-engine/app/models"
)

const (
	Size        = 40
	GoIndex     = 0
	JailIndex   = 10
	GoToJailIdx = 30
	GoSalary    = 200
)

var ErrTileNotFound = errors.New("tile not found")

//go:embed board.json
var boardData []byte

type data struct {
	Tiles       []models.Tile `json:"tiles"`
	ChanceCards []models.Card `json:"chanceCards"`
	ChestCards  []models.Card `json:"chestCards"`
}

// Source is the randomness a shuffle consumes. *rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
}

// Board holds the static layout and the original card sets. A Board is
// never mutated after New returns, so one value may back many games.
type Board struct {
	tiles   []models.Tile
	byColor map[string][]models.Tile
	byType  map[models.TileType][]models.Tile
	chance  []models.Card
	chest   []models.Card
}

// New parses the embedded board data set.
func New() (*Board, error) {
	return Load(boardData)
}

// Load builds a Board from a JSON data set with exactly Size tiles.
func Load(raw []byte) (*Board, error) {
	var d data
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("parse board: %w", err)
	}
	if len(d.Tiles) != Size {
		return nil, fmt.Errorf("parse board: want %d tiles, got %d", Size, len(d.Tiles))
	}
	b := &Board{
		tiles:   make([]models.Tile, Size),
		byColor: make(map[string][]models.Tile),
		byType:  make(map[models.TileType][]models.Tile),
		chance:  d.ChanceCards,
		chest:   d.ChestCards,
	}
	for _, t := range d.Tiles {
		if t.Index < 0 || t.Index >= Size {
			return nil, fmt.Errorf("parse board: tile index %d out of range", t.Index)
		}
		b.tiles[t.Index] = t
	}
	for _, t := range b.tiles {
		if t.Color != "" {
			b.byColor[t.Color] = append(b.byColor[t.Color], t)
		}
		b.byType[t.Type] = append(b.byType[t.Type], t)
	}
	return b, nil
}

// MustNew is New for package-level wiring where the embedded data is known good.
func MustNew() *Board {
	b, err := New()
	if err != nil {
		panic(err)
	}
	return b
}

func (b *Board) Tile(index int) (models.Tile, error) {
	if index < 0 || index >= len(b.tiles) {
		return models.Tile{}, fmt.Errorf("%w: %d", ErrTileNotFound, index)
	}
	return b.tiles[index], nil
}

func (b *Board) Tiles() []models.Tile {
	return append([]models.Tile(nil), b.tiles...)
}

func (b *Board) TilesByColor(color string) []models.Tile {
	return append([]models.Tile(nil), b.byColor[color]...)
}

func (b *Board) TilesByType(t models.TileType) []models.Tile {
	return append([]models.Tile(nil), b.byType[t]...)
}

func (b *Board) Railroads() []models.Tile { return b.TilesByType(models.TileRailroad) }

func (b *Board) Utilities() []models.Tile { return b.TilesByType(models.TileUtility) }

// Cards returns a fresh copy of the original, unshuffled deck.
func (b *Board) Cards(deck models.DeckName) []models.Card {
	if deck == models.DeckChance {
		return append([]models.Card(nil), b.chance...)
	}
	return append([]models.Card(nil), b.chest...)
}

// Shuffle returns a uniformly random permutation of cards (Fisher-Yates).
// The input slice is left untouched.
func Shuffle(cards []models.Card, src Source) []models.Card {
	out := append([]models.Card(nil), cards...)
	for i := len(out) - 1; i > 0; i-- {
		j := src.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func NextPosition(position, spaces int) int {
	return ((position+spaces)%Size + Size) % Size
}

func DistanceToGo(position int) int {
	if position == GoIndex {
		return 0
	}
	return Size - position
}

// forwardDistance is how far a token travels going forward from a to b.
// Staying put counts as a full lap.
func forwardDistance(a, b int) int {
	if b > a {
		return b - a
	}
	return (Size - a) + b
}

// NearestTile picks the railroad or utility reached first moving forward.
func (b *Board) NearestTile(from int, kind models.NearestKind) int {
	candidates := b.Railroads()
	if kind == models.NearestUtility {
		candidates = b.Utilities()
	}
	best, bestDist := -1, Size+1
	for _, t := range candidates {
		if d := forwardDistance(from, t.Index); d < bestDist {
			best, bestDist = t.Index, d
		}
	}
	return best
}

func (b *Board) TaxAmount(position int) int {
	t, err := b.Tile(position)
	if err != nil || t.Type != models.TileTax {
		return 0
	}
	switch t.Name {
	case "Income Tax":
		return 200
	case "Luxury Tax":
		return 100
	}
	return 0
}

func (b *Board) is(position int, t models.TileType) bool {
	tile, err := b.Tile(position)
	return err == nil && tile.Type == t
}

func (b *Board) IsGoTile(position int) bool       { return b.is(position, models.TileGo) }
func (b *Board) IsJailTile(position int) bool     { return b.is(position, models.TileJail) }
func (b *Board) IsGoToJailTile(position int) bool { return b.is(position, models.TileGoToJail) }
func (b *Board) IsChanceTile(position int) bool   { return b.is(position, models.TileChance) }
func (b *Board) IsChestTile(position int) bool    { return b.is(position, models.TileChest) }
func (b *Board) IsTaxTile(position int) bool      { return b.is(position, models.TileTax) }
func (b *Board) IsPropertyTile(position int) bool { return b.is(position, models.TileProperty) }
func (b *Board) IsRailroadTile(position int) bool { return b.is(position, models.TileRailroad) }
func (b *Board) IsUtilityTile(position int) bool  { return b.is(position, models.TileUtility) }
