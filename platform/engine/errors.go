package engine

import "errors"

var (
	ErrNotPlayersTurn       = errors.New("not your turn")
	ErrPlayerNotFound       = errors.New("player not found")
	ErrPlayerBankrupt       = errors.New("player is bankrupt")
	ErrGameNotRunning       = errors.New("game is not running")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrPropertyAlreadyOwned = errors.New("property already owned")
	ErrPropertyHasBuildings = errors.New("property has buildings")
	ErrInvalidBuildOrder    = errors.New("invalid build order")
	ErrNoActiveAuction      = errors.New("no active auction")
	ErrBidTooLow            = errors.New("bid too low")
	ErrInvalidJailAction    = errors.New("invalid jail action")
	ErrInvalidCardState     = errors.New("invalid card state")

	ErrInvalidTile          = errors.New("invalid tile")
	ErrNotOwner             = errors.New("property not owned by player")
	ErrPropertyMortgaged    = errors.New("property is mortgaged")
	ErrPropertyNotMortgaged = errors.New("property is not mortgaged")
	ErrAuctionInProgress    = errors.New("auction in progress")
	ErrNotEnoughPlayers     = errors.New("need at least 2 players")
	ErrInvalidTrade         = errors.New("invalid trade")
	ErrBuildingSupply       = errors.New("bank has no buildings left")
	ErrAlreadyRolled        = errors.New("dice already rolled this turn")
	ErrMustRoll             = errors.New("roll the dice before ending the turn")
)
