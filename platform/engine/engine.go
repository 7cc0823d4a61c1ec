// Package engine holds the game rules. Every operation reads an immutable
// GameState snapshot and returns the patches that describe its outcome;
// nothing here performs I/O or mutates the snapshot.
package engine

import (
	"fmt"
	"time"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/platform/board"
	"github.com/DedS3t/monopoly-engine/platform/dice"
	"github.com/DedS3t/monopoly-engine/platform/patch"
)

const (
	AuctionDuration = 30 * time.Second
	defaultJailFine = 50
	// maxCardChain bounds card draws caused by card movement within one action.
	maxCardChain = 2
)

// Engine is not safe for concurrent use because its dice and shuffle
// sources are not; callers keep one Engine per game.
type Engine struct {
	board   *board.Board
	dice    *dice.Dice
	shuffle board.Source
	now     func() time.Time
}

type Option func(*Engine)

// WithShuffleSource separates deck shuffling randomness from dice rolls.
func WithShuffleSource(src board.Source) Option {
	return func(e *Engine) { e.shuffle = src }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func New(b *board.Board, src dice.Source, opts ...Option) *Engine {
	e := &Engine{
		board:   b,
		dice:    dice.New(src),
		shuffle: src,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Board() *board.Board { return e.board }

// tx accumulates patches against a private working copy of the snapshot so
// later rules in the same action observe earlier effects.
type tx struct {
	e       *Engine
	s       models.GameState
	players map[string]int
	props   map[int]int
	patches []patch.Patch

	roll   *models.DiceRoll
	cards  []models.Card
	depth  int
	jailed map[string]bool
}

func (e *Engine) begin(s models.GameState) *tx {
	t := &tx{
		e:       e,
		s:       s.Clone(),
		players: make(map[string]int, len(s.Players)),
		props:   make(map[int]int, len(s.Properties)),
		jailed:  map[string]bool{},
	}
	t.index()
	return t
}

func (t *tx) index() {
	for i, p := range t.s.Players {
		t.players[p.ID] = i
	}
	for i, p := range t.s.Properties {
		t.props[p.TileIndex] = i
	}
}

func (t *tx) emit(p patch.Patch) {
	if err := patch.ApplyTo(&t.s, p); err != nil {
		// emit only targets records looked up through this tx.
		panic(fmt.Sprintf("engine: %v", err))
	}
	if g, ok := p.(patch.GameUpdate); ok && (g.Fields.Players != nil || g.Fields.Properties != nil) {
		t.index()
	}
	t.patches = append(t.patches, p)
}

func (t *tx) log(kind, actor string, payload map[string]interface{}) {
	t.emit(patch.LogAppend{Entry: models.LogEntry{Type: kind, ActorID: actor, Payload: payload}})
}

func (t *tx) player(id string) (models.PlayerState, error) {
	i, ok := t.players[id]
	if !ok {
		return models.PlayerState{}, fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
	}
	return t.s.Players[i], nil
}

func (t *tx) mustPlayer(id string) models.PlayerState {
	p, err := t.player(id)
	if err != nil {
		panic(fmt.Sprintf("engine: %v", err))
	}
	return p
}

func (t *tx) property(tile int) (models.PropertyState, error) {
	i, ok := t.props[tile]
	if !ok {
		return models.PropertyState{}, fmt.Errorf("%w: no property on tile %d", ErrInvalidTile, tile)
	}
	return t.s.Properties[i], nil
}

func (t *tx) updatePlayer(id string, f patch.PlayerFields) {
	t.emit(patch.PlayerUpdate{PlayerID: id, Fields: f})
}

func (t *tx) updateProperty(tile int, f patch.PropertyFields) {
	t.emit(patch.PropertyUpdate{TileIndex: tile, Fields: f})
}

func (t *tx) addCash(id string, delta int) {
	if delta == 0 {
		return
	}
	t.updatePlayer(id, patch.PlayerFields{Cash: patch.Int(t.mustPlayer(id).Cash + delta)})
}

func (t *tx) addToPot(amount int) {
	if amount <= 0 {
		return
	}
	t.emit(patch.GameUpdate{Fields: patch.GameFields{FreeParkingPot: patch.Int(t.s.FreeParkingPot + amount)}})
}

// payFine moves money from a player to the bank. Under the fines rule it
// feeds the free-parking pot.
func (t *tx) payFine(id string, amount int) {
	t.addCash(id, -amount)
	if t.s.Settings.FreeParkingRule == models.FreeParkingFines {
		t.addToPot(amount)
	}
}

func (t *tx) jailFine() int {
	if t.s.Settings.JailFine > 0 {
		return t.s.Settings.JailFine
	}
	return defaultJailFine
}

func (t *tx) requireRunning() error {
	if t.s.Status != models.StatusRunning {
		return fmt.Errorf("%w: status %s", ErrGameNotRunning, t.s.Status)
	}
	return nil
}

// active loads a player that may act: present, solvent, game running.
func (t *tx) active(id string) (models.PlayerState, error) {
	p, err := t.player(id)
	if err != nil {
		return p, err
	}
	if p.Bankrupt {
		return p, fmt.Errorf("%w: %s", ErrPlayerBankrupt, id)
	}
	if err := t.requireRunning(); err != nil {
		return p, err
	}
	return p, nil
}

// onTurn is active plus holding the turn.
func (t *tx) onTurn(id string) (models.PlayerState, error) {
	p, err := t.active(id)
	if err != nil {
		return p, err
	}
	cur, ok := t.s.CurrentPlayer()
	if !ok || cur.ID != id {
		return p, ErrNotPlayersTurn
	}
	return p, nil
}

func (t *tx) finished() bool {
	return t.s.Status == models.StatusFinished
}
