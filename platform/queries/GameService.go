package queries

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/platform/board"
	"github.com/DedS3t/monopoly-engine/platform/dice"
	"github.com/DedS3t/monopoly-engine/platform/engine"
	"github.com/DedS3t/monopoly-engine/platform/logging"
	"github.com/DedS3t/monopoly-engine/platform/patch"
	"github.com/DedS3t/monopoly-engine/platform/store"
)

const maxSaveAttempts = 3

var (
	ErrInvalidStatus = errors.New("game is not in a state that allows this")
	ErrNotTradeParty = errors.New("not a party to this trade")
	ErrTradeClosed   = errors.New("trade is no longer pending")
	ErrNotSeated     = errors.New("not seated at this game")
)

// Outcome is what a successful action produced. Result carries the
// action-specific value, such as the dice of a roll.
type Outcome struct {
	Version int           `json:"version"`
	Patches []patch.Patch `json:"-"`
	Result  interface{}   `json:"result,omitempty"`
}

// GameService runs player actions against stored snapshots. Actions on
// one game are serialized; the store's version check guards against other
// processes writing the same game.
type GameService struct {
	store    store.Store
	lobby    Lobby
	bcast    Broadcaster
	board    *board.Board
	settings models.Settings

	newSource  func() dice.Source
	newShuffle func() board.Source
	now        func() time.Time

	mu    sync.Mutex
	games map[string]*gameEntry
}

type gameEntry struct {
	mu      sync.Mutex
	eng     *engine.Engine
	auction *time.Timer
}

type Option func(*GameService)

// WithSource sets the randomness each new game's engine gets.
func WithSource(f func() dice.Source) Option {
	return func(g *GameService) { g.newSource = f }
}

// WithShuffle gives deck shuffling its own randomness, apart from the dice.
func WithShuffle(f func() board.Source) Option {
	return func(g *GameService) { g.newShuffle = f }
}

func WithClock(now func() time.Time) Option {
	return func(g *GameService) { g.now = now }
}

func NewGameService(st store.Store, lobby Lobby, bcast Broadcaster, b *board.Board, settings models.Settings, opts ...Option) *GameService {
	g := &GameService{
		store:    st,
		lobby:    lobby,
		bcast:    bcast,
		board:    b,
		settings: settings,
		newSource: func() dice.Source {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
		now:   time.Now,
		games: map[string]*gameEntry{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *GameService) entry(gameID string) *gameEntry {
	g.mu.Lock()
	defer g.mu.Unlock()
	ent, ok := g.games[gameID]
	if !ok {
		opts := []engine.Option{engine.WithClock(g.now)}
		if g.newShuffle != nil {
			opts = append(opts, engine.WithShuffleSource(g.newShuffle()))
		}
		ent = &gameEntry{eng: engine.New(g.board, g.newSource(), opts...)}
		g.games[gameID] = ent
	}
	return ent
}

func (g *GameService) forget(gameID string) {
	g.mu.Lock()
	ent, ok := g.games[gameID]
	delete(g.games, gameID)
	g.mu.Unlock()
	if !ok {
		return
	}

	ent.mu.Lock()
	defer ent.mu.Unlock()
	if ent.auction != nil {
		ent.auction.Stop()
		ent.auction = nil
	}
}

type action func(e *engine.Engine, s models.GameState) ([]patch.Patch, interface{}, error)

func (g *GameService) act(ctx context.Context, gameID, event, actor string, fn action) (Outcome, error) {
	ent := g.entry(gameID)
	ent.mu.Lock()
	defer ent.mu.Unlock()
	return g.actLocked(ctx, gameID, ent, event, actor, fn)
}

func (g *GameService) actLocked(ctx context.Context, gameID string, ent *gameEntry, event, actor string, fn action) (Outcome, error) {
	logger := logging.Game(gameID).WithFields(log.Fields{"event": event, "player_id": actor})
	for attempt := 1; ; attempt++ {
		s, err := g.store.Load(ctx, gameID)
		if err != nil {
			return Outcome{}, err
		}
		ps, result, err := fn(ent.eng, s)
		if err != nil {
			logger.WithError(err).Debug("action rejected")
			return Outcome{}, err
		}
		if len(ps) == 0 {
			return Outcome{Version: s.Version, Result: result}, nil
		}
		next, err := patch.Apply(s, ps)
		if err != nil {
			return Outcome{}, fmt.Errorf("apply %s: %w", event, err)
		}
		logs := patch.Logs(ps)
		err = g.store.Save(ctx, next, logs)
		if errors.Is(err, store.ErrVersionConflict) && attempt < maxSaveAttempts {
			logger.WithField("version", s.Version).Warn("stale snapshot, retrying")
			continue
		}
		if err != nil {
			return Outcome{}, err
		}
		logger.WithField("version", next.Version).Info("action applied")
		g.after(ctx, gameID, ent, s, next, ps, logs)
		return Outcome{Version: next.Version, Patches: ps, Result: result}, nil
	}
}

// after runs the side effects of a committed action: log archive,
// broadcasts, auction timers and the lobby status.
func (g *GameService) after(ctx context.Context, gameID string, ent *gameEntry, prev, next models.GameState, ps []patch.Patch, logs []models.LogEntry) {
	logger := logging.Game(gameID)
	if err := g.lobby.ArchiveLogs(ctx, gameID, next.Version, logs); err != nil {
		logger.WithError(err).Warn("archiving logs failed")
	}

	if data, err := patch.Marshal(ps); err != nil {
		logger.WithError(err).Error("encoding patches failed")
	} else {
		g.bcast.Broadcast(gameID, "game-patch", map[string]interface{}{
			"version": next.Version,
			"patches": json.RawMessage(data),
		})
	}
	if prev.CurrentTurn != next.CurrentTurn {
		if cur, ok := next.CurrentPlayer(); ok {
			g.bcast.Broadcast(gameID, "change-turn", cur.ID)
		}
	}

	if next.ActiveAuction != nil && prev.ActiveAuction == nil {
		g.scheduleAuction(gameID, ent, next.ActiveAuction.EndsAt)
	}
	if next.ActiveAuction == nil && ent.auction != nil {
		ent.auction.Stop()
		ent.auction = nil
	}

	if next.Status != prev.Status {
		if err := g.lobby.SetGameStatus(ctx, gameID, next.Status); err != nil {
			logger.WithError(err).Warn("updating lobby status failed")
		}
		if next.Status == models.StatusFinished {
			g.bcast.Broadcast(gameID, "game-over", Standings(next))
		}
	}
}

// scheduleAuction closes the auction once it expires. A timer that fires
// after the auction has already closed does nothing.
func (g *GameService) scheduleAuction(gameID string, ent *gameEntry, endsAt time.Time) {
	if ent.auction != nil {
		ent.auction.Stop()
	}
	ent.auction = time.AfterFunc(time.Until(endsAt), func() {
		_, err := g.act(context.Background(), gameID, "auction-expired", "", func(e *engine.Engine, s models.GameState) ([]patch.Patch, interface{}, error) {
			if s.ActiveAuction == nil || !s.ActiveAuction.EndsAt.Equal(endsAt) {
				return nil, nil, nil
			}
			ps, err := e.EndAuction(s)
			return ps, nil, err
		})
		if err != nil {
			logging.Game(gameID).WithError(err).Error("closing auction failed")
		}
	})
}

func playerOf(s models.GameState, userID string) (models.PlayerState, error) {
	for _, p := range s.Players {
		if p.ID == userID {
			return p, nil
		}
	}
	return models.PlayerState{}, fmt.Errorf("%w: %s", engine.ErrPlayerNotFound, userID)
}

func (g *GameService) Join(ctx context.Context, gameID, userID, username, color string) error {
	if _, err := g.store.Load(ctx, gameID); err == nil {
		return fmt.Errorf("%w: game already started", ErrInvalidStatus)
	} else if !errors.Is(err, store.ErrGameNotFound) {
		return err
	}
	err := g.lobby.CreatePlayer(ctx, models.Player{
		Game_id:  gameID,
		User_id:  userID,
		Username: username,
		Color:    color,
		Active:   true,
	})
	if err != nil {
		return err
	}
	g.bcast.Broadcast(gameID, "player-join", map[string]string{"user_id": userID, "username": username})
	return nil
}

// Leave gives up a seat. Leaving a game in progress forfeits it.
func (g *GameService) Leave(ctx context.Context, gameID, userID string) error {
	s, err := g.store.Load(ctx, gameID)
	switch {
	case errors.Is(err, store.ErrGameNotFound):
	case err != nil:
		return err
	case s.Status == models.StatusRunning:
		if p, perr := playerOf(s, userID); perr == nil && !p.Bankrupt {
			if _, err := g.DeclareBankruptcy(ctx, gameID, userID); err != nil {
				return err
			}
		}
	}

	if err := g.lobby.DeletePlayer(ctx, gameID, userID); err != nil {
		return err
	}
	g.bcast.Broadcast(gameID, "player-left", userID)

	players, err := g.lobby.GamePlayers(ctx, gameID)
	if err != nil {
		return err
	}
	if len(players) == 0 {
		g.forget(gameID)
		if err := g.store.Delete(ctx, gameID); err != nil {
			return err
		}
		return g.lobby.DeleteGame(ctx, gameID)
	}
	return nil
}

// Start seats the lobby players in join order and deals the opening state.
// Only a seated player may start the game.
func (g *GameService) Start(ctx context.Context, gameID, userID string) (models.GameState, error) {
	ent := g.entry(gameID)
	ent.mu.Lock()
	defer ent.mu.Unlock()

	seats, err := g.lobby.GamePlayers(ctx, gameID)
	if err != nil {
		return models.GameState{}, err
	}
	seated := false
	for _, seat := range seats {
		seated = seated || seat.User_id == userID
	}
	if !seated {
		return models.GameState{}, fmt.Errorf("%w: %s", ErrNotSeated, userID)
	}
	players := make([]models.PlayerState, len(seats))
	for i, seat := range seats {
		players[i] = models.PlayerState{
			ID:          seat.User_id,
			UserID:      seat.User_id,
			Name:        seat.Username,
			Color:       seat.Color,
			IsConnected: true,
		}
	}
	ps, err := ent.eng.StartGame(gameID, players, g.settings)
	if err != nil {
		return models.GameState{}, err
	}
	s, err := patch.Apply(models.GameState{ID: gameID}, ps)
	if err != nil {
		return models.GameState{}, err
	}
	if err := g.store.Create(ctx, s); err != nil {
		return models.GameState{}, err
	}

	logger := logging.Game(gameID).WithField("version", s.Version)
	if err := g.lobby.ArchiveLogs(ctx, gameID, s.Version, patch.Logs(ps)); err != nil {
		logger.WithError(err).Warn("archiving logs failed")
	}
	if err := g.lobby.SetGameStatus(ctx, gameID, s.Status); err != nil {
		logger.WithError(err).Warn("updating lobby status failed")
	}
	logger.WithField("players", len(players)).Info("game started")
	g.bcast.Broadcast(gameID, "game-start", s)
	if cur, ok := s.CurrentPlayer(); ok {
		g.bcast.Broadcast(gameID, "change-turn", cur.ID)
	}
	return s, nil
}

func (g *GameService) State(ctx context.Context, gameID string) (models.GameState, error) {
	return g.store.Load(ctx, gameID)
}

func (g *GameService) Logs(ctx context.Context, gameID string) ([]models.LogEntry, error) {
	return g.store.Logs(ctx, gameID)
}

func (g *GameService) Roll(ctx context.Context, gameID, userID string) (Outcome, error) {
	return g.act(ctx, gameID, "roll-dice", userID, func(e *engine.Engine, s models.GameState) ([]patch.Patch, interface{}, error) {
		res, err := e.RollDice(userID, s)
		if err != nil {
			return nil, nil, err
		}
		ps := res.Patches
		res.Patches = nil
		return ps, res, nil
	})
}

// Buy buys the tile the player is standing on.
func (g *GameService) Buy(ctx context.Context, gameID, userID string) (Outcome, error) {
	return g.act(ctx, gameID, "request-buy", userID, func(e *engine.Engine, s models.GameState) ([]patch.Patch, interface{}, error) {
		p, err := playerOf(s, userID)
		if err != nil {
			return nil, nil, err
		}
		ps, err := e.BuyProperty(userID, p.Position, s)
		return ps, nil, err
	})
}

func (g *GameService) Decline(ctx context.Context, gameID, userID string) (Outcome, error) {
	return g.act(ctx, gameID, "decline-buy", userID, func(e *engine.Engine, s models.GameState) ([]patch.Patch, interface{}, error) {
		ps, err := e.DeclinePurchase(userID, s)
		return ps, nil, err
	})
}

func (g *GameService) Bid(ctx context.Context, gameID, userID string, amount int) (Outcome, error) {
	return g.act(ctx, gameID, "bid", userID, func(e *engine.Engine, s models.GameState) ([]patch.Patch, interface{}, error) {
		ps, err := e.BidOnAuction(userID, amount, s)
		return ps, nil, err
	})
}

type tileOp func(e *engine.Engine, playerID string, tile int, s models.GameState) ([]patch.Patch, error)

func (g *GameService) onTile(ctx context.Context, gameID, userID, event string, tile int, op tileOp) (Outcome, error) {
	return g.act(ctx, gameID, event, userID, func(e *engine.Engine, s models.GameState) ([]patch.Patch, interface{}, error) {
		ps, err := op(e, userID, tile, s)
		return ps, nil, err
	})
}

func (g *GameService) BuildHouse(ctx context.Context, gameID, userID string, tile int) (Outcome, error) {
	return g.onTile(ctx, gameID, userID, "buy-house", tile, (*engine.Engine).BuildHouse)
}

func (g *GameService) BuildHotel(ctx context.Context, gameID, userID string, tile int) (Outcome, error) {
	return g.onTile(ctx, gameID, userID, "buy-hotel", tile, (*engine.Engine).BuildHotel)
}

func (g *GameService) SellHouse(ctx context.Context, gameID, userID string, tile int) (Outcome, error) {
	return g.onTile(ctx, gameID, userID, "sell-house", tile, (*engine.Engine).SellHouse)
}

func (g *GameService) SellHotel(ctx context.Context, gameID, userID string, tile int) (Outcome, error) {
	return g.onTile(ctx, gameID, userID, "sell-hotel", tile, (*engine.Engine).SellHotel)
}

func (g *GameService) Mortgage(ctx context.Context, gameID, userID string, tile int) (Outcome, error) {
	return g.onTile(ctx, gameID, userID, "mortgage", tile, (*engine.Engine).MortgageProperty)
}

func (g *GameService) Unmortgage(ctx context.Context, gameID, userID string, tile int) (Outcome, error) {
	return g.onTile(ctx, gameID, userID, "unmortgage", tile, (*engine.Engine).UnmortgageProperty)
}

func (g *GameService) Jail(ctx context.Context, gameID, userID string, a engine.JailAction) (Outcome, error) {
	return g.act(ctx, gameID, "jail", userID, func(e *engine.Engine, s models.GameState) ([]patch.Patch, interface{}, error) {
		res, err := e.HandleJail(userID, a, s)
		if err != nil {
			return nil, nil, err
		}
		return res.Patches, res.Dice, nil
	})
}

func (g *GameService) EndTurn(ctx context.Context, gameID, userID string) (Outcome, error) {
	return g.act(ctx, gameID, "end-turn", userID, func(e *engine.Engine, s models.GameState) ([]patch.Patch, interface{}, error) {
		ps, err := e.EndTurn(userID, s)
		return ps, nil, err
	})
}

func (g *GameService) DeclareBankruptcy(ctx context.Context, gameID, userID string) (Outcome, error) {
	return g.act(ctx, gameID, "bankrupt", userID, func(e *engine.Engine, s models.GameState) ([]patch.Patch, interface{}, error) {
		res, err := e.ProcessBankruptcy(userID, s)
		if err != nil {
			return nil, nil, err
		}
		ps, err := e.DeclareBankruptcy(userID, s)
		return ps, res, err
	})
}

func (g *GameService) setStatus(ctx context.Context, gameID, userID, event string, from, to models.GameStatus) (Outcome, error) {
	return g.act(ctx, gameID, event, userID, func(e *engine.Engine, s models.GameState) ([]patch.Patch, interface{}, error) {
		if s.Status != from {
			return nil, nil, fmt.Errorf("%w: game is %s", ErrInvalidStatus, s.Status)
		}
		if _, err := playerOf(s, userID); err != nil {
			return nil, nil, err
		}
		status := to
		return []patch.Patch{
			patch.GameUpdate{Fields: patch.GameFields{Status: &status}},
			patch.LogAppend{Entry: models.LogEntry{Type: event, ActorID: userID}},
		}, nil, nil
	})
}

func (g *GameService) Pause(ctx context.Context, gameID, userID string) (Outcome, error) {
	return g.setStatus(ctx, gameID, userID, "game_paused", models.StatusRunning, models.StatusPaused)
}

func (g *GameService) Resume(ctx context.Context, gameID, userID string) (Outcome, error) {
	return g.setStatus(ctx, gameID, userID, "game_resumed", models.StatusPaused, models.StatusRunning)
}

// ProposeTrade records an offer after checking both sides could honour it
// right now. It is checked again on acceptance.
func (g *GameService) ProposeTrade(ctx context.Context, gameID string, tr models.Trade) (models.Trade, error) {
	s, err := g.store.Load(ctx, gameID)
	if err != nil {
		return tr, err
	}
	if err := g.entry(gameID).eng.ValidateTrade(tr, s); err != nil {
		return tr, err
	}
	tr.Id = ""
	tr.GameId = gameID
	tr.Status = models.TradePending
	tr.UpdatedAt = g.now()
	if err := g.lobby.SaveTrade(ctx, &tr); err != nil {
		return tr, err
	}
	g.bcast.Broadcast(gameID, "trade-proposed", tr)
	return tr, nil
}

// RespondTrade lets the receiving player accept or reject a pending offer.
func (g *GameService) RespondTrade(ctx context.Context, gameID, userID, tradeID string, accept bool) (models.Trade, error) {
	tr, err := g.pendingTrade(ctx, gameID, tradeID)
	if err != nil {
		return tr, err
	}
	if tr.ToID != userID {
		return tr, ErrNotTradeParty
	}
	tr.Status = models.TradeRejected
	if accept {
		_, err := g.act(ctx, gameID, "trade-accept", userID, func(e *engine.Engine, s models.GameState) ([]patch.Patch, interface{}, error) {
			ps, err := e.ExecuteTrade(tr, s)
			return ps, nil, err
		})
		if err != nil {
			return tr, err
		}
		tr.Status = models.TradeAccepted
	}
	return tr, g.closeTrade(ctx, gameID, &tr)
}

func (g *GameService) CancelTrade(ctx context.Context, gameID, userID, tradeID string) (models.Trade, error) {
	tr, err := g.pendingTrade(ctx, gameID, tradeID)
	if err != nil {
		return tr, err
	}
	if tr.FromID != userID {
		return tr, ErrNotTradeParty
	}
	tr.Status = models.TradeCancelled
	return tr, g.closeTrade(ctx, gameID, &tr)
}

func (g *GameService) pendingTrade(ctx context.Context, gameID, tradeID string) (models.Trade, error) {
	tr, err := g.lobby.GetTrade(ctx, tradeID)
	if err != nil {
		return tr, err
	}
	if tr.GameId != gameID {
		return tr, fmt.Errorf("%w: %s", ErrTradeNotFound, tradeID)
	}
	if tr.Status != models.TradePending {
		return tr, fmt.Errorf("%w: %s", ErrTradeClosed, tr.Status)
	}
	return tr, nil
}

func (g *GameService) closeTrade(ctx context.Context, gameID string, tr *models.Trade) error {
	tr.UpdatedAt = g.now()
	if err := g.lobby.SaveTrade(ctx, tr); err != nil {
		return err
	}
	g.bcast.Broadcast(gameID, "trade-updated", tr)
	return nil
}
