package engine

import (
	"errors"
	"testing"

	"github.com/DedS3t/monopoly-engine/app/models"
)

func TestBuyProperty(t *testing.T) {
	e, s := newGame(t)
	if !e.CanBuyProperty("p1", 1, s) {
		t.Fatal("p1 should be able to buy Mediterranean Avenue")
	}
	ps, err := e.BuyProperty("p1", 1, s)
	if err != nil {
		t.Fatal(err)
	}
	s = apply(t, s, ps)
	if prop(t, s, 1).OwnerID != "p1" || player(t, s, "p1").Cash != 1440 {
		t.Fatalf("owner %q cash %d", prop(t, s, 1).OwnerID, player(t, s, "p1").Cash)
	}
	if !hasLog(ps, "buy_property") {
		t.Fatal("no buy_property log")
	}

	tests := []struct {
		name string
		id   string
		tile int
		want error
	}{
		{"owned", "p1", 1, ErrPropertyAlreadyOwned},
		{"not for sale", "p1", 7, ErrInvalidTile},
		{"wrong turn", "p2", 3, ErrNotPlayersTurn},
	}
	for _, tt := range tests {
		if _, err := e.BuyProperty(tt.id, tt.tile, s); !errors.Is(err, tt.want) {
			t.Errorf("%s: err = %v, want %v", tt.name, err, tt.want)
		}
	}
	setPlayer(&s, "p1", func(p *models.PlayerState) { p.Cash = 399 })
	if e.CanBuyProperty("p1", 39, s) {
		t.Error("p1 cannot afford Boardwalk")
	}
}

func TestDeclineStartsAuction(t *testing.T) {
	e, s := newGame(t)
	setPlayer(&s, "p1", func(p *models.PlayerState) { p.Position = 39 })
	ps, err := e.DeclinePurchase("p1", s)
	if err != nil {
		t.Fatal(err)
	}
	s = apply(t, s, ps)
	a := s.ActiveAuction
	if a == nil || a.TileIndex != 39 || !a.EndsAt.Equal(testClock.Add(AuctionDuration)) {
		t.Fatalf("auction = %+v", a)
	}
	if _, err := e.RollDice("p1", s); !errors.Is(err, ErrAuctionInProgress) {
		t.Fatalf("roll during auction: %v", err)
	}

	s.Settings.AuctionOnNoBuy = false
	s.ActiveAuction = nil
	ps, err = e.DeclinePurchase("p1", s)
	if err != nil {
		t.Fatal(err)
	}
	if s = apply(t, s, ps); s.ActiveAuction != nil {
		t.Fatal("auction opened with auctions off")
	}
}

func TestAuctionLifecycle(t *testing.T) {
	e, s := newGame(t)
	ps, err := e.StartAuction(39, s)
	if err != nil {
		t.Fatal(err)
	}
	s = apply(t, s, ps)
	if _, err := e.StartAuction(37, s); !errors.Is(err, ErrAuctionInProgress) {
		t.Fatalf("second auction: %v", err)
	}

	bids := []struct {
		id     string
		amount int
		want   error
	}{
		{"p2", 100, nil},
		{"p3", 100, ErrBidTooLow},
		{"p3", 2000, ErrInsufficientFunds},
		{"p3", 150, nil},
		{"p2", 160, nil},
	}
	for _, b := range bids {
		ps, err := e.BidOnAuction(b.id, b.amount, s)
		if !errors.Is(err, b.want) {
			t.Fatalf("%s bids %d: err = %v, want %v", b.id, b.amount, err, b.want)
		}
		if err == nil {
			s = apply(t, s, ps)
		}
	}
	if a := s.ActiveAuction; a.CurrentBid != 160 || a.CurrentBidder != "p2" || len(a.Bidders) != 2 {
		t.Fatalf("auction = %+v", a)
	}

	ps, err = e.EndAuction(s)
	if err != nil {
		t.Fatal(err)
	}
	s = apply(t, s, ps)
	if s.ActiveAuction != nil || prop(t, s, 39).OwnerID != "p2" || player(t, s, "p2").Cash != 1340 {
		t.Fatalf("auction %v owner %q cash %d", s.ActiveAuction, prop(t, s, 39).OwnerID, player(t, s, "p2").Cash)
	}
	if _, err := e.EndAuction(s); !errors.Is(err, ErrNoActiveAuction) {
		t.Fatalf("end twice: %v", err)
	}
	if _, err := e.BidOnAuction("p1", 10, s); !errors.Is(err, ErrNoActiveAuction) {
		t.Fatalf("bid without auction: %v", err)
	}
}

func TestAuctionWithoutBidsIsCancelled(t *testing.T) {
	e, s := newGame(t)
	ps, err := e.StartAuction(39, s)
	if err != nil {
		t.Fatal(err)
	}
	s = apply(t, s, ps)
	ps, err = e.EndAuction(s)
	if err != nil {
		t.Fatal(err)
	}
	s = apply(t, s, ps)
	if s.ActiveAuction != nil || prop(t, s, 39).OwnerID != "" {
		t.Fatalf("auction %v owner %q", s.ActiveAuction, prop(t, s, 39).OwnerID)
	}
	if !hasLog(ps, "auction_cancelled") {
		t.Fatal("no auction_cancelled log")
	}
}

func TestAuctionWinnerCannotPay(t *testing.T) {
	e, s := newGame(t)
	ps, err := e.StartAuction(39, s)
	if err != nil {
		t.Fatal(err)
	}
	s = apply(t, s, ps)
	ps, err = e.BidOnAuction("p2", 300, s)
	if err != nil {
		t.Fatal(err)
	}
	s = apply(t, s, ps)
	setPlayer(&s, "p2", func(p *models.PlayerState) { p.Cash = 100 })

	ps, err = e.EndAuction(s)
	if err != nil {
		t.Fatal(err)
	}
	s = apply(t, s, ps)
	if s.ActiveAuction != nil || prop(t, s, 39).OwnerID != "" || player(t, s, "p2").Cash != 100 {
		t.Fatalf("auction %v owner %q cash %d", s.ActiveAuction, prop(t, s, 39).OwnerID, player(t, s, "p2").Cash)
	}
	if !hasLog(ps, "auction_cancelled") || hasLog(ps, "auction_won") {
		t.Fatal("want auction_cancelled only")
	}
}
