package engine

import (
	"fmt"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/platform/board"
	"github.com/DedS3t/monopoly-engine/platform/patch"
)

type DrawResult struct {
	Card    models.Card
	Patches []patch.Patch
}

// DrawCard draws from the named deck for the player holding the turn and
// plays the card out, including any tile the card moves the player onto.
func (e *Engine) DrawCard(playerID string, deck models.DeckName, s models.GameState) (DrawResult, error) {
	t := e.begin(s)
	if _, err := t.onTurn(playerID); err != nil {
		return DrawResult{}, err
	}
	card, err := t.draw(playerID, deck)
	if err != nil {
		return DrawResult{}, err
	}
	return DrawResult{Card: card, Patches: t.patches}, nil
}

// deck returns the draw pile and discard pile of a deck.
func (t *tx) deck(name models.DeckName) ([]models.Card, []models.Card, error) {
	switch name {
	case models.DeckChance:
		return t.s.ChanceDeck, t.s.ChanceDiscard, nil
	case models.DeckChest:
		return t.s.ChestDeck, t.s.ChestDiscard, nil
	}
	return nil, nil, fmt.Errorf("%w: unknown deck %q", ErrInvalidCardState, name)
}

func (t *tx) setDeck(name models.DeckName, pile, discard []models.Card) {
	var f patch.GameFields
	if name == models.DeckChance {
		f.ChanceDeck, f.ChanceDiscard = &pile, &discard
	} else {
		f.ChestDeck, f.ChestDiscard = &pile, &discard
	}
	t.emit(patch.GameUpdate{Fields: f})
}

// draw pops the top card onto the discard pile. An empty deck is refilled
// from its shuffled discard pile before drawing.
func (t *tx) draw(playerID string, name models.DeckName) (models.Card, error) {
	pile, discard, err := t.deck(name)
	if err != nil {
		return models.Card{}, err
	}
	if len(pile) == 0 {
		if len(discard) == 0 {
			return models.Card{}, fmt.Errorf("%w: %s deck and discard are empty", ErrInvalidCardState, name)
		}
		pile, discard = board.Shuffle(discard, t.e.shuffle), nil
		t.log("deck_reshuffled", "", map[string]interface{}{"deck": string(name)})
	}
	card := pile[0]
	nextPile := append([]models.Card{}, pile[1:]...)
	nextDiscard := append(append([]models.Card{}, discard...), card)
	t.setDeck(name, nextPile, nextDiscard)
	t.log("card_drawn", playerID, map[string]interface{}{
		"deck":        string(name),
		"cardId":      card.ID,
		"description": card.Description,
	})
	t.cards = append(t.cards, card)
	t.depth++
	return card, t.applyCard(playerID, card)
}

func (t *tx) applyCard(playerID string, card models.Card) error {
	switch eff := card.Effect.(type) {
	case models.AdvanceTo:
		if _, err := t.e.board.Tile(eff.Target); err != nil {
			return fmt.Errorf("%w: card %s: %v", ErrInvalidCardState, card.ID, err)
		}
		t.advanceTo(playerID, eff.Target)
		return t.resolveLanding(playerID)
	case models.AdvanceToNearest:
		target := t.e.board.NearestTile(t.mustPlayer(playerID).Position, eff.Kind)
		if target < 0 {
			return fmt.Errorf("%w: card %s: no %s on board", ErrInvalidCardState, card.ID, eff.Kind)
		}
		t.advanceTo(playerID, target)
		return t.resolveLanding(playerID)
	case models.Money:
		if eff.Amount < 0 {
			t.payFine(playerID, -eff.Amount)
		} else {
			t.addCash(playerID, eff.Amount)
		}
	case models.GetOutOfJail:
		p := t.mustPlayer(playerID)
		t.updatePlayer(playerID, patch.PlayerFields{GetOutOfJailCards: patch.Int(p.GetOutOfJailCards + 1)})
	case models.GoToJail:
		t.sendToJail(playerID, "card")
	case models.MoveBy:
		if eff.Spaces < 0 {
			// Backward moves never collect the GO salary.
			p := t.mustPlayer(playerID)
			t.updatePlayer(playerID, patch.PlayerFields{Position: patch.Int(board.NextPosition(p.Position, eff.Spaces))})
		} else {
			t.advance(playerID, eff.Spaces)
		}
		return t.resolveLanding(playerID)
	case models.Repairs:
		cost := 0
		for _, prop := range t.s.Properties {
			if prop.OwnerID != playerID {
				continue
			}
			if prop.Hotel {
				cost += eff.PerHotel
			} else {
				cost += prop.Houses * eff.PerHouse
			}
		}
		if cost > 0 {
			t.payFine(playerID, cost)
		}
	case models.PayEachPlayer:
		for _, other := range t.s.Players {
			if other.ID == playerID || other.Bankrupt {
				continue
			}
			t.addCash(playerID, -eff.Amount)
			t.addCash(other.ID, eff.Amount)
		}
	default:
		return fmt.Errorf("%w: card %s has unknown effect %T", ErrInvalidCardState, card.ID, card.Effect)
	}
	return nil
}
