// Package patch describes state changes emitted by the engine. A patch is
// applied later by whoever owns the game state.
package patch

import (
	"encoding/json"
	"fmt"

	"github.com/DedS3t/monopoly-engine/app/models"
)

type Kind string

const (
	KindPlayerUpdate   Kind = "player_update"
	KindPropertyUpdate Kind = "property_update"
	KindGameUpdate     Kind = "game_update"
	KindLogAppend      Kind = "log_add"
	KindAuctionStart   Kind = "auction_start"
	KindAuctionEnd     Kind = "auction_end"
)

// Patch is a closed set: PlayerUpdate, PropertyUpdate, GameUpdate,
// LogAppend, AuctionStart and AuctionEnd.
type Patch interface {
	Kind() Kind
}

// PlayerFields holds the player columns to overwrite; nil means unchanged.
type PlayerFields struct {
	Cash              *int  `json:"cash,omitempty"`
	Position          *int  `json:"position,omitempty"`
	InJail            *bool `json:"inJail,omitempty"`
	JailTurns         *int  `json:"jailTurns,omitempty"`
	DoublesInRow      *int  `json:"doublesInRow,omitempty"`
	Bankrupt          *bool `json:"bankrupt,omitempty"`
	GetOutOfJailCards *int  `json:"getOutOfJailCards,omitempty"`
	HasRolled         *bool `json:"hasRolled,omitempty"`
}

type PropertyFields struct {
	OwnerID   *string `json:"ownerId,omitempty"`
	Mortgaged *bool   `json:"mortgaged,omitempty"`
	Houses    *int    `json:"houses,omitempty"`
	Hotel     *bool   `json:"hotel,omitempty"`
}

type GameFields struct {
	Status         *models.GameStatus      `json:"status,omitempty"`
	CurrentTurn    *int                    `json:"currentTurn,omitempty"`
	FreeParkingPot *int                    `json:"freeParkingPot,omitempty"`
	Settings       *models.Settings        `json:"settings,omitempty"`
	Tiles          *[]models.Tile          `json:"tiles,omitempty"`
	Players        *[]models.PlayerState   `json:"players,omitempty"`
	Properties     *[]models.PropertyState `json:"properties,omitempty"`
	ChanceDeck     *[]models.Card          `json:"chanceDeck,omitempty"`
	ChanceDiscard  *[]models.Card          `json:"chanceDiscard,omitempty"`
	ChestDeck      *[]models.Card          `json:"chestDeck,omitempty"`
	ChestDiscard   *[]models.Card          `json:"chestDiscard,omitempty"`
}

type PlayerUpdate struct {
	PlayerID string       `json:"playerId"`
	Fields   PlayerFields `json:"data"`
}

// PropertyUpdate addresses a property record by its tile index.
type PropertyUpdate struct {
	TileIndex int            `json:"propertyId"`
	Fields    PropertyFields `json:"data"`
}

type GameUpdate struct {
	Fields GameFields `json:"data"`
}

type LogAppend struct {
	Entry models.LogEntry `json:"data"`
}

// AuctionStart opens an auction or replaces the open one's bid state.
type AuctionStart struct {
	Auction models.AuctionState `json:"data"`
}

type AuctionEnd struct{}

func (PlayerUpdate) Kind() Kind   { return KindPlayerUpdate }
func (PropertyUpdate) Kind() Kind { return KindPropertyUpdate }
func (GameUpdate) Kind() Kind     { return KindGameUpdate }
func (LogAppend) Kind() Kind      { return KindLogAppend }
func (AuctionStart) Kind() Kind   { return KindAuctionStart }
func (AuctionEnd) Kind() Kind     { return KindAuctionEnd }

// Int, Bool and String build the pointer fields above.
func Int(v int) *int          { return &v }
func Bool(v bool) *bool       { return &v }
func String(v string) *string { return &v }

// Marshal encodes patches as a JSON array of objects tagged with "type".
func Marshal(patches []Patch) ([]byte, error) {
	out := make([]map[string]interface{}, 0, len(patches))
	for _, p := range patches {
		raw, err := json.Marshal(p)
		if err != nil {
			return nil, err
		}
		m := map[string]interface{}{}
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		m["type"] = p.Kind()
		out = append(out, m)
	}
	return json.Marshal(out)
}

// Unmarshal decodes what Marshal produced.
func Unmarshal(data []byte) ([]Patch, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, err
	}
	out := make([]Patch, 0, len(raws))
	for _, raw := range raws {
		var tag struct {
			Type Kind `json:"type"`
		}
		if err := json.Unmarshal(raw, &tag); err != nil {
			return nil, err
		}
		var (
			p   Patch
			err error
		)
		switch tag.Type {
		case KindPlayerUpdate:
			p, err = decode[PlayerUpdate](raw)
		case KindPropertyUpdate:
			p, err = decode[PropertyUpdate](raw)
		case KindGameUpdate:
			p, err = decode[GameUpdate](raw)
		case KindLogAppend:
			p, err = decode[LogAppend](raw)
		case KindAuctionStart:
			p, err = decode[AuctionStart](raw)
		case KindAuctionEnd:
			p = AuctionEnd{}
		default:
			err = fmt.Errorf("unknown patch type %q", tag.Type)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func decode[T Patch](raw []byte) (Patch, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Logs extracts the log entries in order.
func Logs(patches []Patch) []models.LogEntry {
	var out []models.LogEntry
	for _, p := range patches {
		if l, ok := p.(LogAppend); ok {
			out = append(out, l.Entry)
		}
	}
	return out
}
