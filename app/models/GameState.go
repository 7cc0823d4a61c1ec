package models

import "time"

type GameStatus string

const (
	StatusLobby    GameStatus = "LOBBY"
	StatusRunning  GameStatus = "RUNNING"
	StatusPaused   GameStatus = "PAUSED"
	StatusFinished GameStatus = "FINISHED"
)

type FreeParkingRule string

const (
	FreeParkingNone  FreeParkingRule = "none"
	FreeParkingTaxes FreeParkingRule = "taxes"
	FreeParkingFines FreeParkingRule = "fines"
)

type Settings struct {
	StartingCash     int             `json:"startingCash"`
	HouseLimit       int             `json:"houseLimit"`
	HotelLimit       int             `json:"hotelLimit"`
	FreeParkingRule  FreeParkingRule `json:"freeParkingRule"`
	AuctionOnNoBuy   bool            `json:"auctionOnNoBuy"`
	JailFine         int             `json:"jailFine"`
	MortgageInterest float64         `json:"mortgageInterest"`
	// ManualEndTurn leaves the turn open after a roll until EndTurn is called.
	ManualEndTurn bool `json:"manualEndTurn"`
}

func DefaultSettings() Settings {
	return Settings{
		StartingCash:     1500,
		HouseLimit:       32,
		HotelLimit:       12,
		FreeParkingRule:  FreeParkingTaxes,
		AuctionOnNoBuy:   true,
		JailFine:         50,
		MortgageInterest: 0.1,
	}
}

type PlayerState struct {
	ID                string `json:"id"`
	UserID            string `json:"userId,omitempty"`
	Name              string `json:"name"`
	Cash              int    `json:"cash"`
	Position          int    `json:"position"`
	InJail            bool   `json:"inJail"`
	JailTurns         int    `json:"jailTurns"`
	DoublesInRow      int    `json:"doublesInRow"`
	Bankrupt          bool   `json:"bankrupt"`
	Order             int    `json:"order"`
	Color             string `json:"color,omitempty"`
	IsConnected       bool   `json:"isConnected"`
	GetOutOfJailCards int    `json:"getOutOfJailCards"`
	HasRolled         bool   `json:"hasRolled"`
}

// PropertyState is keyed by the index of the tile it belongs to. An empty
// OwnerID means the bank holds it.
type PropertyState struct {
	TileIndex int    `json:"tileIndex"`
	OwnerID   string `json:"ownerId,omitempty"`
	Mortgaged bool   `json:"mortgaged"`
	Houses    int    `json:"houses"`
	Hotel     bool   `json:"hotel"`
}

// Level counts a hotel as a fifth house.
func (p PropertyState) Level() int {
	if p.Hotel {
		return 5
	}
	return p.Houses
}

type AuctionState struct {
	TileIndex     int       `json:"tileIndex"`
	CurrentBid    int       `json:"currentBid"`
	CurrentBidder string    `json:"currentBidder,omitempty"`
	Bidders       []string  `json:"bidders"`
	EndsAt        time.Time `json:"endsAt"`
}

type DiceRoll struct {
	D1       int  `json:"d1"`
	D2       int  `json:"d2"`
	Total    int  `json:"total"`
	IsDouble bool `json:"isDouble"`
}

type LogEntry struct {
	Type    string                 `json:"type"`
	ActorID string                 `json:"actorId,omitempty"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// GameState is the snapshot every engine operation reads. Callers own it;
// the engine never writes to it.
type GameState struct {
	ID             string          `json:"id"`
	Status         GameStatus      `json:"status"`
	CurrentTurn    int             `json:"currentTurn"`
	Players        []PlayerState   `json:"players"`
	Tiles          []Tile          `json:"tiles"`
	Properties     []PropertyState `json:"properties"`
	Settings       Settings        `json:"settings"`
	Version        int             `json:"version"`
	FreeParkingPot int             `json:"freeParkingPot"`
	ChanceDeck     []Card          `json:"chanceDeck"`
	ChanceDiscard  []Card          `json:"chanceDiscard"`
	ChestDeck      []Card          `json:"chestDeck"`
	ChestDiscard   []Card          `json:"chestDiscard"`
	ActiveAuction  *AuctionState   `json:"activeAuction,omitempty"`
}

// Clone returns a copy that shares no slices or pointers with s.
func (s GameState) Clone() GameState {
	c := s
	c.Players = append([]PlayerState(nil), s.Players...)
	c.Tiles = append([]Tile(nil), s.Tiles...)
	c.Properties = append([]PropertyState(nil), s.Properties...)
	c.ChanceDeck = append([]Card(nil), s.ChanceDeck...)
	c.ChanceDiscard = append([]Card(nil), s.ChanceDiscard...)
	c.ChestDeck = append([]Card(nil), s.ChestDeck...)
	c.ChestDiscard = append([]Card(nil), s.ChestDiscard...)
	if s.ActiveAuction != nil {
		a := *s.ActiveAuction
		a.Bidders = append([]string(nil), s.ActiveAuction.Bidders...)
		c.ActiveAuction = &a
	}
	return c
}

// CurrentPlayer returns the player holding the turn, if the pointer is valid.
func (s GameState) CurrentPlayer() (PlayerState, bool) {
	if s.CurrentTurn < 0 || s.CurrentTurn >= len(s.Players) {
		return PlayerState{}, false
	}
	return s.Players[s.CurrentTurn], true
}
