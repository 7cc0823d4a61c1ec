package engine

import (
	"fmt"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/platform/patch"
)

// StartAuction opens bidding on an unowned tile. The auction runs for
// AuctionDuration; closing it is up to the caller via EndAuction.
func (e *Engine) StartAuction(tileIndex int, s models.GameState) ([]patch.Patch, error) {
	t := e.begin(s)
	if err := t.requireRunning(); err != nil {
		return nil, err
	}
	if err := t.startAuction(tileIndex); err != nil {
		return nil, err
	}
	return t.patches, nil
}

func (t *tx) startAuction(tileIndex int) error {
	if t.s.ActiveAuction != nil {
		return ErrAuctionInProgress
	}
	tile, _, err := t.purchasable(tileIndex)
	if err != nil {
		return err
	}
	t.emit(patch.AuctionStart{Auction: models.AuctionState{
		TileIndex: tileIndex,
		Bidders:   []string{},
		EndsAt:    t.e.now().Add(AuctionDuration),
	}})
	t.log("auction_start", "", map[string]interface{}{"tileIndex": tileIndex, "tileName": tile.Name})
	return nil
}

func (e *Engine) BidOnAuction(playerID string, amount int, s models.GameState) ([]patch.Patch, error) {
	t := e.begin(s)
	a := s.ActiveAuction
	if a == nil {
		return nil, ErrNoActiveAuction
	}
	p, err := t.active(playerID)
	if err != nil {
		return nil, err
	}
	if amount <= a.CurrentBid {
		return nil, fmt.Errorf("%w: must beat %d", ErrBidTooLow, a.CurrentBid)
	}
	if p.Cash < amount {
		return nil, fmt.Errorf("%w: bid %d with %d", ErrInsufficientFunds, amount, p.Cash)
	}
	next := *a
	next.CurrentBid = amount
	next.CurrentBidder = playerID
	next.Bidders = append([]string(nil), a.Bidders...)
	if !contains(next.Bidders, playerID) {
		next.Bidders = append(next.Bidders, playerID)
	}
	t.emit(patch.AuctionStart{Auction: next})
	t.log("auction_bid", playerID, map[string]interface{}{"amount": amount})
	return t.patches, nil
}

// EndAuction settles the open auction: the high bidder pays and takes the
// tile. The auction is cancelled when nobody bid or the high bidder went
// bankrupt or can no longer cover the bid.
func (e *Engine) EndAuction(s models.GameState) ([]patch.Patch, error) {
	t := e.begin(s)
	a := s.ActiveAuction
	if a == nil {
		return nil, ErrNoActiveAuction
	}
	winner, err := t.player(a.CurrentBidder)
	switch {
	case a.CurrentBidder == "" || err != nil || winner.Bankrupt:
		t.log("auction_cancelled", "", map[string]interface{}{"tileIndex": a.TileIndex})
	case winner.Cash < a.CurrentBid:
		t.log("auction_cancelled", winner.ID, map[string]interface{}{
			"tileIndex": a.TileIndex,
			"amount":    a.CurrentBid,
			"reason":    "insufficient_funds",
		})
	default:
		tile, _ := e.board.Tile(a.TileIndex)
		t.updateProperty(a.TileIndex, patch.PropertyFields{OwnerID: patch.String(winner.ID)})
		t.addCash(winner.ID, -a.CurrentBid)
		t.log("auction_won", winner.ID, map[string]interface{}{
			"tileIndex": a.TileIndex,
			"tileName":  tile.Name,
			"amount":    a.CurrentBid,
		})
	}
	t.emit(patch.AuctionEnd{})
	return t.patches, nil
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
