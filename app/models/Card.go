package models

import (
	"encoding/json"
	"fmt"
)

// Card is a Chance or Community Chest card. Effect is one of the
// CardEffect variants below.
type Card struct {
	ID          string
	Description string
	Effect      CardEffect
}

// CardEffect is a closed set; only types in this package implement it.
type CardEffect interface {
	cardEffect()
}

// AdvanceTo moves the player forward to an absolute board index.
type AdvanceTo struct {
	Target int
}

// AdvanceToNearest moves the player forward to the closest railroad or utility.
type AdvanceToNearest struct {
	Kind NearestKind
}

// Money credits (positive) or debits (negative) the player.
type Money struct {
	Amount int
}

type GetOutOfJail struct{}

type GoToJail struct{}

// MoveBy moves the player a relative number of spaces; negative goes back.
type MoveBy struct {
	Spaces int
}

// Repairs charges per house and per hotel the player owns.
type Repairs struct {
	PerHouse int
	PerHotel int
}

// PayEachPlayer pays Amount to every other active player. A negative
// Amount collects from them instead.
type PayEachPlayer struct {
	Amount int
}

func (AdvanceTo) cardEffect()        {}
func (AdvanceToNearest) cardEffect() {}
func (Money) cardEffect()            {}
func (GetOutOfJail) cardEffect()     {}
func (GoToJail) cardEffect()         {}
func (MoveBy) cardEffect()           {}
func (Repairs) cardEffect()          {}
func (PayEachPlayer) cardEffect()    {}

const (
	cardAdvance        = "advance"
	cardAdvanceNearest = "advance_nearest"
	cardMoney          = "money"
	cardGetOutOfJail   = "get_out_of_jail"
	cardGoToJail       = "go_to_jail"
	cardMove           = "move"
	cardRepairs        = "repairs"
	cardPayAll         = "pay_all"
)

// cardJSON is the wire and board-data shape of a card.
type cardJSON struct {
	ID          string      `json:"id"`
	Type        string      `json:"type"`
	Description string      `json:"description"`
	Target      *int        `json:"target,omitempty"`
	Nearest     NearestKind `json:"nearest,omitempty"`
	Amount      int         `json:"amount,omitempty"`
	Spaces      int         `json:"spaces,omitempty"`
	HouseCost   int         `json:"houseCost,omitempty"`
	HotelCost   int         `json:"hotelCost,omitempty"`
}

func (c Card) MarshalJSON() ([]byte, error) {
	out := cardJSON{ID: c.ID, Description: c.Description}
	switch e := c.Effect.(type) {
	case AdvanceTo:
		target := e.Target
		out.Type, out.Target = cardAdvance, &target
	case AdvanceToNearest:
		out.Type, out.Nearest = cardAdvanceNearest, e.Kind
	case Money:
		out.Type, out.Amount = cardMoney, e.Amount
	case GetOutOfJail:
		out.Type = cardGetOutOfJail
	case GoToJail:
		out.Type = cardGoToJail
	case MoveBy:
		out.Type, out.Spaces = cardMove, e.Spaces
	case Repairs:
		out.Type, out.HouseCost, out.HotelCost = cardRepairs, e.PerHouse, e.PerHotel
	case PayEachPlayer:
		out.Type, out.Amount = cardPayAll, e.Amount
	default:
		return nil, fmt.Errorf("card %s: unknown effect %T", c.ID, c.Effect)
	}
	return json.Marshal(out)
}

func (c *Card) UnmarshalJSON(data []byte) error {
	var in cardJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	c.ID, c.Description = in.ID, in.Description
	switch in.Type {
	case cardAdvance:
		if in.Target == nil {
			return fmt.Errorf("card %s: advance without target", in.ID)
		}
		c.Effect = AdvanceTo{Target: *in.Target}
	case cardAdvanceNearest:
		if in.Nearest != NearestRailroad && in.Nearest != NearestUtility {
			return fmt.Errorf("card %s: bad nearest kind %q", in.ID, in.Nearest)
		}
		c.Effect = AdvanceToNearest{Kind: in.Nearest}
	case cardMoney:
		c.Effect = Money{Amount: in.Amount}
	case cardGetOutOfJail:
		c.Effect = GetOutOfJail{}
	case cardGoToJail:
		c.Effect = GoToJail{}
	case cardMove:
		c.Effect = MoveBy{Spaces: in.Spaces}
	case cardRepairs:
		c.Effect = Repairs{PerHouse: in.HouseCost, PerHotel: in.HotelCost}
	case cardPayAll:
		c.Effect = PayEachPlayer{Amount: in.Amount}
	default:
		return fmt.Errorf("card %s: unknown type %q", in.ID, in.Type)
	}
	return nil
}
