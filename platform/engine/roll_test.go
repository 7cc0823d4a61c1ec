package engine

import (
	"errors"
	"testing"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/platform/board"
)

func TestRollMovesAndEndsTurn(t *testing.T) {
	e, s := newGame(t, 2, 3)
	res, err := e.RollDice("p1", s)
	if err != nil {
		t.Fatal(err)
	}
	if res.Dice.Total != 5 || res.Dice.IsDouble {
		t.Fatalf("dice = %+v", res.Dice)
	}
	s = apply(t, s, res.Patches)
	if p := player(t, s, "p1"); p.Position != 5 || p.Cash != 1500 || p.DoublesInRow != 0 {
		t.Fatalf("p1 = %+v", p)
	}
	if s.CurrentTurn != 1 {
		t.Fatalf("turn = %d, want 1", s.CurrentTurn)
	}
}

func TestRollDoubleKeepsTurn(t *testing.T) {
	e, s := newGame(t, 2, 2)
	res, err := e.RollDice("p1", s)
	if err != nil {
		t.Fatal(err)
	}
	s = apply(t, s, res.Patches)
	p := player(t, s, "p1")
	// Income Tax
	if p.Position != 4 || p.Cash != 1300 || p.DoublesInRow != 1 {
		t.Fatalf("p1 = %+v", p)
	}
	if s.FreeParkingPot != 200 {
		t.Fatalf("pot = %d", s.FreeParkingPot)
	}
	if s.CurrentTurn != 0 {
		t.Fatalf("turn = %d, want 0", s.CurrentTurn)
	}
}

func TestThirdDoubleGoesToJail(t *testing.T) {
	for _, face := range []int{1, 3, 6} {
		e, s := newGame(t, face, face)
		setPlayer(&s, "p1", func(p *models.PlayerState) { p.DoublesInRow = 2; p.Position = 22 })
		res, err := e.RollDice("p1", s)
		if err != nil {
			t.Fatal(err)
		}
		s = apply(t, s, res.Patches)
		p := player(t, s, "p1")
		if !p.InJail || p.Position != board.JailIndex || p.DoublesInRow != 0 {
			t.Fatalf("face %d: p1 = %+v", face, p)
		}
		if s.CurrentTurn != 1 {
			t.Fatalf("face %d: turn = %d, want 1", face, s.CurrentTurn)
		}
	}
}

func TestPassAndLandOnGo(t *testing.T) {
	tests := []struct {
		name  string
		from  int
		faces []int
		pos   int
		cash  int
	}{
		{"pass", 36, []int{2, 3}, 1, 1700},
		{"land", 35, []int{2, 3}, 0, 1700},
		{"short", 0, []int{2, 3}, 5, 1500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, s := newGame(t, tt.faces...)
			setPlayer(&s, "p1", func(p *models.PlayerState) { p.Position = tt.from })
			res, err := e.RollDice("p1", s)
			if err != nil {
				t.Fatal(err)
			}
			s = apply(t, s, res.Patches)
			if p := player(t, s, "p1"); p.Position != tt.pos || p.Cash != tt.cash {
				t.Fatalf("p1 at %d with %d, want %d with %d", p.Position, p.Cash, tt.pos, tt.cash)
			}
		})
	}
}

func TestRollOnChanceScenario(t *testing.T) {
	e, s := newGame(t, 3, 4)
	s.ChanceDeck = []models.Card{{ID: "chance-dividend", Description: "dividend", Effect: models.Money{Amount: 50}}}
	s.ChanceDiscard = nil
	res, err := e.RollDice("p1", s)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Cards) != 1 || res.Cards[0].ID != "chance-dividend" {
		t.Fatalf("cards = %+v", res.Cards)
	}
	s = apply(t, s, res.Patches)
	p := player(t, s, "p1")
	if p.Position != 7 || p.Cash != 1550 || p.DoublesInRow != 0 {
		t.Fatalf("p1 = %+v", p)
	}
	if s.CurrentTurn != 1 {
		t.Fatalf("turn = %d, want 1", s.CurrentTurn)
	}
	if !hasLog(res.Patches, "card_drawn") {
		t.Fatal("no card_drawn log")
	}
}

func TestRollPaysRent(t *testing.T) {
	e, s := newGame(t, 2, 3)
	own(&s, "p2", 5)
	res, err := e.RollDice("p1", s)
	if err != nil {
		t.Fatal(err)
	}
	s = apply(t, s, res.Patches)
	if c := player(t, s, "p1").Cash; c != 1475 {
		t.Fatalf("p1 cash = %d", c)
	}
	if c := player(t, s, "p2").Cash; c != 1525 {
		t.Fatalf("p2 cash = %d", c)
	}
}

func TestLandingOnGoToJailEndsDouble(t *testing.T) {
	e, s := newGame(t, 2, 2)
	setPlayer(&s, "p1", func(p *models.PlayerState) { p.Position = 26 })
	res, err := e.RollDice("p1", s)
	if err != nil {
		t.Fatal(err)
	}
	s = apply(t, s, res.Patches)
	if p := player(t, s, "p1"); !p.InJail || p.Position != 10 {
		t.Fatalf("p1 = %+v", p)
	}
	if s.CurrentTurn != 1 {
		t.Fatalf("turn = %d", s.CurrentTurn)
	}
}

func TestRollPreconditions(t *testing.T) {
	e, s := newGame(t, 2, 3)
	if _, err := e.RollDice("p2", s); !errors.Is(err, ErrNotPlayersTurn) {
		t.Errorf("wrong turn: %v", err)
	}
	if _, err := e.RollDice("nobody", s); !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("unknown: %v", err)
	}
	paused := s.Clone()
	paused.Status = models.StatusPaused
	if _, err := e.RollDice("p1", paused); !errors.Is(err, ErrGameNotRunning) {
		t.Errorf("paused: %v", err)
	}
	broke := s.Clone()
	setPlayer(&broke, "p1", func(p *models.PlayerState) { p.Bankrupt = true })
	if _, err := e.RollDice("p1", broke); !errors.Is(err, ErrPlayerBankrupt) {
		t.Errorf("bankrupt: %v", err)
	}
}

func TestTurnWraps(t *testing.T) {
	e, s := newGame(t)
	s.CurrentTurn = 2
	ps, err := e.EndTurn("p3", s)
	if err != nil {
		t.Fatal(err)
	}
	if s = apply(t, s, ps); s.CurrentTurn != 0 {
		t.Fatalf("turn = %d, want 0", s.CurrentTurn)
	}
	if !hasLog(ps, "turn_end") {
		t.Fatal("no turn_end log")
	}
}

func TestTurnSkipsBankrupt(t *testing.T) {
	e, s := newGame(t)
	setPlayer(&s, "p2", func(p *models.PlayerState) { p.Bankrupt = true })
	ps, err := e.EndTurn("p1", s)
	if err != nil {
		t.Fatal(err)
	}
	if s = apply(t, s, ps); s.CurrentTurn != 2 {
		t.Fatalf("turn = %d, want 2", s.CurrentTurn)
	}
}

func TestManualEndTurn(t *testing.T) {
	e, s := newGame(t, 2, 3)
	s.Settings.ManualEndTurn = true

	if _, err := e.EndTurn("p1", s); !errors.Is(err, ErrMustRoll) {
		t.Fatalf("end before roll: %v", err)
	}
	res, err := e.RollDice("p1", s)
	if err != nil {
		t.Fatal(err)
	}
	s = apply(t, s, res.Patches)
	if s.CurrentTurn != 0 || !player(t, s, "p1").HasRolled {
		t.Fatalf("turn %d hasRolled %v", s.CurrentTurn, player(t, s, "p1").HasRolled)
	}
	if _, err := e.RollDice("p1", s); !errors.Is(err, ErrAlreadyRolled) {
		t.Fatalf("second roll: %v", err)
	}
	ps, err := e.EndTurn("p1", s)
	if err != nil {
		t.Fatal(err)
	}
	s = apply(t, s, ps)
	if s.CurrentTurn != 1 || player(t, s, "p1").HasRolled {
		t.Fatalf("turn %d hasRolled %v", s.CurrentTurn, player(t, s, "p1").HasRolled)
	}
}

func TestMovePlayer(t *testing.T) {
	e, s := newGame(t)
	setPlayer(&s, "p1", func(p *models.PlayerState) { p.Position = 38 })
	m, err := e.MovePlayer("p1", 4, s)
	if err != nil {
		t.Fatal(err)
	}
	if m.NewPosition != 2 || !m.PassedGo || m.LandedOnGo {
		t.Fatalf("move = %+v", m)
	}
	m, _ = e.MovePlayer("p1", 2, s)
	if m.NewPosition != 0 || m.PassedGo || !m.LandedOnGo {
		t.Fatalf("move = %+v", m)
	}
}
