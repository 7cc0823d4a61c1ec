package queries

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/platform/board"
	"github.com/DedS3t/monopoly-engine/platform/dice"
	"github.com/DedS3t/monopoly-engine/platform/engine"
	"github.com/DedS3t/monopoly-engine/platform/store"
)

const baltic = 3

type fakeLobby struct {
	mu       sync.Mutex
	players  map[string][]models.Player
	status   map[string]models.GameStatus
	trades   map[string]models.Trade
	archived map[string][]models.LogEntry
	deleted  []string
}

func newFakeLobby() *fakeLobby {
	return &fakeLobby{
		players:  map[string][]models.Player{},
		status:   map[string]models.GameStatus{},
		trades:   map[string]models.Trade{},
		archived: map[string][]models.LogEntry{},
	}
}

func (l *fakeLobby) GamePlayers(_ context.Context, gameID string) ([]models.Player, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.Player(nil), l.players[gameID]...), nil
}

func (l *fakeLobby) CreatePlayer(_ context.Context, p models.Player) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.players[p.Game_id] = append(l.players[p.Game_id], p)
	return nil
}

func (l *fakeLobby) DeletePlayer(_ context.Context, gameID, userID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	kept := l.players[gameID][:0]
	for _, p := range l.players[gameID] {
		if p.User_id != userID {
			kept = append(kept, p)
		}
	}
	l.players[gameID] = kept
	return nil
}

func (l *fakeLobby) SetGameStatus(_ context.Context, gameID string, status models.GameStatus) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.status[gameID] = status
	return nil
}

func (l *fakeLobby) DeleteGame(_ context.Context, gameID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.deleted = append(l.deleted, gameID)
	return nil
}

func (l *fakeLobby) ArchiveLogs(_ context.Context, gameID string, _ int, entries []models.LogEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.archived[gameID] = append(l.archived[gameID], entries...)
	return nil
}

func (l *fakeLobby) SaveTrade(_ context.Context, tr *models.Trade) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if tr.Id == "" {
		tr.Id = "t" + string(rune('0'+len(l.trades)+1))
	}
	l.trades[tr.Id] = *tr
	return nil
}

func (l *fakeLobby) GetTrade(_ context.Context, id string) (models.Trade, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	tr, ok := l.trades[id]
	if !ok {
		return tr, ErrTradeNotFound
	}
	return tr, nil
}

func (l *fakeLobby) gameStatus(gameID string) models.GameStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status[gameID]
}

type event struct {
	name    string
	payload interface{}
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []event
}

func (b *fakeBroadcaster) Broadcast(_, name string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event{name, payload})
}

func (b *fakeBroadcaster) last(name string) (interface{}, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.events) - 1; i >= 0; i-- {
		if b.events[i].name == name {
			return b.events[i].payload, true
		}
	}
	return nil, false
}

type harness struct {
	svc   *GameService
	lobby *fakeLobby
	bcast *fakeBroadcaster
}

// newService seats p1 and p2 in game g1 with dice that replay faces.
func newService(t *testing.T, now func() time.Time, faces ...int) harness {
	t.Helper()
	st, err := store.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	settings := models.DefaultSettings()
	settings.ManualEndTurn = true
	h := harness{lobby: newFakeLobby(), bcast: &fakeBroadcaster{}}
	h.svc = NewGameService(st, h.lobby, h.bcast, board.MustNew(), settings,
		WithSource(func() dice.Source { return dice.NewFixed(faces...) }),
		WithShuffle(func() board.Source { return rand.New(rand.NewSource(7)) }),
		WithClock(now))

	ctx := context.Background()
	for _, id := range []string{"p1", "p2"} {
		if err := h.svc.Join(ctx, "g1", id, "user-"+id, "red"); err != nil {
			t.Fatalf("Join %s: %v", id, err)
		}
	}
	return h
}

func mustStart(t *testing.T, h harness) models.GameState {
	t.Helper()
	s, err := h.svc.Start(context.Background(), "g1", "p1")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	return s
}

func cashOf(s models.GameState, id string) int {
	for _, p := range s.Players {
		if p.ID == id {
			return p.Cash
		}
	}
	return -1
}

func TestServiceTurn(t *testing.T) {
	h := newService(t, time.Now, 1, 2)
	ctx := context.Background()

	s := mustStart(t, h)
	if s.Status != models.StatusRunning || s.Version != 1 {
		t.Fatalf("started game = %s v%d", s.Status, s.Version)
	}
	if got := h.lobby.gameStatus("g1"); got != models.StatusRunning {
		t.Errorf("lobby status = %s", got)
	}
	if _, ok := h.bcast.last("game-start"); !ok {
		t.Error("game-start not broadcast")
	}

	if _, err := h.svc.Roll(ctx, "g1", "p2"); !errors.Is(err, engine.ErrNotPlayersTurn) {
		t.Fatalf("out of turn roll: %v", err)
	}

	out, err := h.svc.Roll(ctx, "g1", "p1")
	if err != nil {
		t.Fatalf("Roll: %v", err)
	}
	if res := out.Result.(engine.RollResult); res.Dice.Total != 3 || res.Patches != nil {
		t.Errorf("roll result = %+v", res)
	}
	if out.Version != 2 {
		t.Errorf("version = %d, want 2", out.Version)
	}
	if _, ok := h.bcast.last("game-patch"); !ok {
		t.Error("game-patch not broadcast")
	}

	if _, err := h.svc.Buy(ctx, "g1", "p1"); err != nil {
		t.Fatalf("Buy: %v", err)
	}
	if _, err := h.svc.EndTurn(ctx, "g1", "p1"); err != nil {
		t.Fatalf("EndTurn: %v", err)
	}

	s, err = h.svc.State(ctx, "g1")
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if CheckWhoOwns(s, baltic) != "p1" || cashOf(s, "p1") != 1440 {
		t.Errorf("after buy: owner %q cash %d", CheckWhoOwns(s, baltic), cashOf(s, "p1"))
	}
	if !IsUserTurn(s, "p2") {
		t.Error("turn did not pass to p2")
	}
	if turn, _ := h.bcast.last("change-turn"); turn != "p2" {
		t.Errorf("change-turn = %v", turn)
	}

	logs, err := h.svc.Logs(ctx, "g1")
	if err != nil {
		t.Fatalf("Logs: %v", err)
	}
	var bought bool
	for _, l := range logs {
		bought = bought || l.Type == "buy_property"
	}
	if !bought {
		t.Errorf("buy_property missing from %d stored logs", len(logs))
	}
	if len(h.lobby.archived["g1"]) <= len(logs) {
		t.Errorf("archived %d entries, stored %d", len(h.lobby.archived["g1"]), len(logs))
	}
}

func TestServiceJoinAfterStart(t *testing.T) {
	h := newService(t, time.Now, 1, 2)
	mustStart(t, h)
	if err := h.svc.Join(context.Background(), "g1", "p3", "late", "blue"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("Join after start: %v", err)
	}
}

func TestServicePauseResume(t *testing.T) {
	h := newService(t, time.Now, 1, 2)
	ctx := context.Background()
	mustStart(t, h)

	tests := []struct {
		name string
		op   func() (Outcome, error)
		want error
	}{
		{"stranger cannot pause", func() (Outcome, error) { return h.svc.Pause(ctx, "g1", "p9") }, engine.ErrPlayerNotFound},
		{"resume running game", func() (Outcome, error) { return h.svc.Resume(ctx, "g1", "p1") }, ErrInvalidStatus},
		{"pause", func() (Outcome, error) { return h.svc.Pause(ctx, "g1", "p2") }, nil},
		{"roll while paused", func() (Outcome, error) { return h.svc.Roll(ctx, "g1", "p1") }, engine.ErrGameNotRunning},
		{"pause twice", func() (Outcome, error) { return h.svc.Pause(ctx, "g1", "p1") }, ErrInvalidStatus},
		{"resume", func() (Outcome, error) { return h.svc.Resume(ctx, "g1", "p1") }, nil},
		{"roll after resume", func() (Outcome, error) { return h.svc.Roll(ctx, "g1", "p1") }, nil},
	}
	for _, tt := range tests {
		_, err := tt.op()
		if tt.want == nil && err != nil || tt.want != nil && !errors.Is(err, tt.want) {
			t.Fatalf("%s: err = %v, want %v", tt.name, err, tt.want)
		}
	}
	if got := h.lobby.gameStatus("g1"); got != models.StatusRunning {
		t.Errorf("lobby status = %s", got)
	}
}

func TestServiceAuctionExpires(t *testing.T) {
	past := func() time.Time { return time.Now().Add(-time.Hour) }
	h := newService(t, past, 1, 2)
	ctx := context.Background()
	mustStart(t, h)

	if _, err := h.svc.Roll(ctx, "g1", "p1"); err != nil {
		t.Fatalf("Roll: %v", err)
	}
	if _, err := h.svc.Decline(ctx, "g1", "p1"); err != nil {
		t.Fatalf("Decline: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		s, err := h.svc.State(ctx, "g1")
		if err != nil {
			t.Fatalf("State: %v", err)
		}
		if s.ActiveAuction == nil {
			if CheckWhoOwns(s, baltic) != "" {
				t.Errorf("unbid auction sold the tile to %q", CheckWhoOwns(s, baltic))
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("auction never expired")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestServiceStartRequiresSeat(t *testing.T) {
	h := newService(t, time.Now, 1, 2)
	ctx := context.Background()
	if _, err := h.svc.Start(ctx, "g1", "stranger"); !errors.Is(err, ErrNotSeated) {
		t.Fatalf("Start by stranger: err = %v, want ErrNotSeated", err)
	}
	if _, err := h.svc.State(ctx, "g1"); !errors.Is(err, store.ErrGameNotFound) {
		t.Fatalf("State after refused start: err = %v", err)
	}
	if s := mustStart(t, h); s.Status != models.StatusRunning {
		t.Fatalf("status = %s", s.Status)
	}
}

func TestServiceForgetStopsAuction(t *testing.T) {
	h := newService(t, time.Now, 1, 2)
	ctx := context.Background()
	mustStart(t, h)
	if _, err := h.svc.Roll(ctx, "g1", "p1"); err != nil {
		t.Fatalf("Roll: %v", err)
	}
	if _, err := h.svc.Decline(ctx, "g1", "p1"); err != nil {
		t.Fatalf("Decline: %v", err)
	}

	ent := h.svc.entry("g1")
	ent.mu.Lock()
	timer := ent.auction
	ent.mu.Unlock()
	if timer == nil {
		t.Fatal("no auction timer scheduled")
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		h.svc.forget("g1")
	}()
	go func() {
		defer wg.Done()
		h.svc.Bid(ctx, "g1", "p2", 10)
	}()
	wg.Wait()

	ent.mu.Lock()
	defer ent.mu.Unlock()
	if ent.auction != nil {
		t.Error("auction timer kept after forget")
	}
	if timer.Stop() {
		t.Error("auction timer was still running")
	}
}

func TestServiceTrade(t *testing.T) {
	h := newService(t, time.Now, 1, 2)
	ctx := context.Background()
	mustStart(t, h)
	if _, err := h.svc.Roll(ctx, "g1", "p1"); err != nil {
		t.Fatalf("Roll: %v", err)
	}
	if _, err := h.svc.Buy(ctx, "g1", "p1"); err != nil {
		t.Fatalf("Buy: %v", err)
	}

	if _, err := h.svc.ProposeTrade(ctx, "g1", models.Trade{FromID: "p1", ToID: "p2", ToProperties: []int{baltic}}); !errors.Is(err, engine.ErrNotOwner) {
		t.Fatalf("trade for unowned tile: %v", err)
	}

	tr, err := h.svc.ProposeTrade(ctx, "g1", models.Trade{
		FromID:         "p1",
		ToID:           "p2",
		FromProperties: []int{baltic},
		CashTo:         100,
	})
	if err != nil {
		t.Fatalf("ProposeTrade: %v", err)
	}
	if tr.Status != models.TradePending || tr.Id == "" {
		t.Fatalf("proposed trade = %+v", tr)
	}

	if _, err := h.svc.RespondTrade(ctx, "g1", "p1", tr.Id, true); !errors.Is(err, ErrNotTradeParty) {
		t.Fatalf("proposer accepting: %v", err)
	}
	if _, err := h.svc.RespondTrade(ctx, "g1", "p2", tr.Id, true); err != nil {
		t.Fatalf("RespondTrade: %v", err)
	}

	s, _ := h.svc.State(ctx, "g1")
	if CheckWhoOwns(s, baltic) != "p2" || cashOf(s, "p1") != 1540 || cashOf(s, "p2") != 1400 {
		t.Errorf("after trade: owner %q p1 %d p2 %d", CheckWhoOwns(s, baltic), cashOf(s, "p1"), cashOf(s, "p2"))
	}
	if stored, _ := h.lobby.GetTrade(ctx, tr.Id); stored.Status != models.TradeAccepted {
		t.Errorf("stored status = %s", stored.Status)
	}
	if _, err := h.svc.CancelTrade(ctx, "g1", "p1", tr.Id); !errors.Is(err, ErrTradeClosed) {
		t.Errorf("cancel closed trade: %v", err)
	}
}

func TestServiceLeave(t *testing.T) {
	ctx := context.Background()

	t.Run("lobby empties", func(t *testing.T) {
		h := newService(t, time.Now, 1, 2)
		for _, id := range []string{"p1", "p2"} {
			if err := h.svc.Leave(ctx, "g1", id); err != nil {
				t.Fatalf("Leave %s: %v", id, err)
			}
		}
		if len(h.lobby.deleted) != 1 {
			t.Errorf("deleted games = %v", h.lobby.deleted)
		}
	})

	t.Run("forfeit ends the game", func(t *testing.T) {
		h := newService(t, time.Now, 1, 2)
		mustStart(t, h)
		if err := h.svc.Leave(ctx, "g1", "p2"); err != nil {
			t.Fatalf("Leave: %v", err)
		}
		s, _ := h.svc.State(ctx, "g1")
		if s.Status != models.StatusFinished {
			t.Errorf("status = %s", s.Status)
		}
		if got := h.lobby.gameStatus("g1"); got != models.StatusFinished {
			t.Errorf("lobby status = %s", got)
		}
		standings, ok := h.bcast.last("game-over")
		if !ok || len(standings.([]models.PlayerDto)) != 2 {
			t.Errorf("game-over = %v", standings)
		}
	})
}
