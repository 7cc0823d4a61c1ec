package engine

import (
	"fmt"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/platform/patch"
)

// purchasable loads an unowned, purchasable tile and its record.
func (t *tx) purchasable(tileIndex int) (models.Tile, models.PropertyState, error) {
	tile, err := t.e.board.Tile(tileIndex)
	if err != nil {
		return tile, models.PropertyState{}, fmt.Errorf("%w: %v", ErrInvalidTile, err)
	}
	if !tile.Purchasable() {
		return tile, models.PropertyState{}, fmt.Errorf("%w: %s cannot be bought", ErrInvalidTile, tile.Name)
	}
	prop, err := t.property(tileIndex)
	if err != nil {
		return tile, prop, err
	}
	if prop.OwnerID != "" {
		return tile, prop, fmt.Errorf("%w: %s", ErrPropertyAlreadyOwned, tile.Name)
	}
	return tile, prop, nil
}

func (t *tx) checkBuy(playerID string, tileIndex int) (models.Tile, error) {
	p, err := t.onTurn(playerID)
	if err != nil {
		return models.Tile{}, err
	}
	tile, _, err := t.purchasable(tileIndex)
	if err != nil {
		return tile, err
	}
	if a := t.s.ActiveAuction; a != nil && a.TileIndex == tileIndex {
		return tile, ErrAuctionInProgress
	}
	if p.Cash < tile.Price {
		return tile, fmt.Errorf("%w: %s costs %d", ErrInsufficientFunds, tile.Name, tile.Price)
	}
	return tile, nil
}

func (e *Engine) CanBuyProperty(playerID string, tileIndex int, s models.GameState) bool {
	_, err := e.begin(s).checkBuy(playerID, tileIndex)
	return err == nil
}

func (e *Engine) BuyProperty(playerID string, tileIndex int, s models.GameState) ([]patch.Patch, error) {
	t := e.begin(s)
	tile, err := t.checkBuy(playerID, tileIndex)
	if err != nil {
		return nil, err
	}
	t.updateProperty(tileIndex, patch.PropertyFields{OwnerID: patch.String(playerID)})
	t.addCash(playerID, -tile.Price)
	t.log("buy_property", playerID, map[string]interface{}{
		"tileIndex": tileIndex,
		"tileName":  tile.Name,
		"price":     tile.Price,
	})
	return t.patches, nil
}

// DeclinePurchase passes on the unowned tile the player stands on. When
// the game auctions unsold property the auction opens immediately.
func (e *Engine) DeclinePurchase(playerID string, s models.GameState) ([]patch.Patch, error) {
	t := e.begin(s)
	p, err := t.onTurn(playerID)
	if err != nil {
		return nil, err
	}
	tile, _, err := t.purchasable(p.Position)
	if err != nil {
		return nil, err
	}
	t.log("purchase_declined", playerID, map[string]interface{}{"tileIndex": tile.Index, "tileName": tile.Name})
	if s.Settings.AuctionOnNoBuy {
		if err := t.startAuction(tile.Index); err != nil {
			return nil, err
		}
	}
	return t.patches, nil
}
