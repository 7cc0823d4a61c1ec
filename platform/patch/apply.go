package patch

import (
	"errors"
	"fmt"

	"github.com/DedS3t/monopoly-engine/app/models"
)

var ErrUnknownTarget = errors.New("patch target not found")

// Apply returns the state that results from applying patches in order to
// s, with Version advanced by one. s itself is not modified. Log entries
// are not part of the snapshot and are skipped; stores archive them.
func Apply(s models.GameState, patches []Patch) (models.GameState, error) {
	next := s.Clone()
	for i, p := range patches {
		if err := ApplyTo(&next, p); err != nil {
			return s, fmt.Errorf("patch %d (%s): %w", i, p.Kind(), err)
		}
	}
	next.Version = s.Version + 1
	return next, nil
}

// ApplyTo applies a single patch to s in place. Slices carried by the
// patch are copied, never aliased.
func ApplyTo(s *models.GameState, p Patch) error {
	switch v := p.(type) {
	case PlayerUpdate:
		for i := range s.Players {
			if s.Players[i].ID == v.PlayerID {
				applyPlayer(&s.Players[i], v.Fields)
				return nil
			}
		}
		return fmt.Errorf("%w: player %s", ErrUnknownTarget, v.PlayerID)
	case PropertyUpdate:
		for i := range s.Properties {
			if s.Properties[i].TileIndex == v.TileIndex {
				applyProperty(&s.Properties[i], v.Fields)
				return nil
			}
		}
		return fmt.Errorf("%w: property %d", ErrUnknownTarget, v.TileIndex)
	case GameUpdate:
		applyGame(s, v.Fields)
	case AuctionStart:
		a := v.Auction
		a.Bidders = append([]string(nil), v.Auction.Bidders...)
		s.ActiveAuction = &a
	case AuctionEnd:
		s.ActiveAuction = nil
	case LogAppend:
	default:
		return fmt.Errorf("unsupported patch %T", p)
	}
	return nil
}

func applyPlayer(p *models.PlayerState, f PlayerFields) {
	if f.Cash != nil {
		p.Cash = *f.Cash
	}
	if f.Position != nil {
		p.Position = *f.Position
	}
	if f.InJail != nil {
		p.InJail = *f.InJail
	}
	if f.JailTurns != nil {
		p.JailTurns = *f.JailTurns
	}
	if f.DoublesInRow != nil {
		p.DoublesInRow = *f.DoublesInRow
	}
	if f.Bankrupt != nil {
		p.Bankrupt = *f.Bankrupt
	}
	if f.GetOutOfJailCards != nil {
		p.GetOutOfJailCards = *f.GetOutOfJailCards
	}
	if f.HasRolled != nil {
		p.HasRolled = *f.HasRolled
	}
}

func applyProperty(p *models.PropertyState, f PropertyFields) {
	if f.OwnerID != nil {
		p.OwnerID = *f.OwnerID
	}
	if f.Mortgaged != nil {
		p.Mortgaged = *f.Mortgaged
	}
	if f.Houses != nil {
		p.Houses = *f.Houses
	}
	if f.Hotel != nil {
		p.Hotel = *f.Hotel
	}
}

func applyGame(s *models.GameState, f GameFields) {
	if f.Status != nil {
		s.Status = *f.Status
	}
	if f.CurrentTurn != nil {
		s.CurrentTurn = *f.CurrentTurn
	}
	if f.FreeParkingPot != nil {
		s.FreeParkingPot = *f.FreeParkingPot
	}
	if f.Settings != nil {
		s.Settings = *f.Settings
	}
	if f.Tiles != nil {
		s.Tiles = append([]models.Tile(nil), (*f.Tiles)...)
	}
	if f.Players != nil {
		s.Players = append([]models.PlayerState(nil), (*f.Players)...)
	}
	if f.Properties != nil {
		s.Properties = append([]models.PropertyState(nil), (*f.Properties)...)
	}
	if f.ChanceDeck != nil {
		s.ChanceDeck = append([]models.Card(nil), (*f.ChanceDeck)...)
	}
	if f.ChanceDiscard != nil {
		s.ChanceDiscard = append([]models.Card(nil), (*f.ChanceDiscard)...)
	}
	if f.ChestDeck != nil {
		s.ChestDeck = append([]models.Card(nil), (*f.ChestDeck)...)
	}
	if f.ChestDiscard != nil {
		s.ChestDiscard = append([]models.Card(nil), (*f.ChestDiscard)...)
	}
}
