// Package sim plays whole games with simple bots. It drives the engine the
// same way the game service does, applying every patch batch in order, and
// is used to soak-test the rules and to demo them from the command line.
package sim

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/platform/board"
	"github.com/DedS3t/monopoly-engine/platform/engine"
	"github.com/DedS3t/monopoly-engine/platform/patch"
)

var names = []string{"Ann", "Bob", "Cy", "Dee", "Eve", "Fay", "Gus", "Hal"}

const bidStep = 10

type Config struct {
	Players  int
	Turns    int
	Seed     int64
	Settings models.Settings
	// Reserve is the cash a bot keeps back when buying or bidding.
	Reserve int
}

type Report struct {
	Final   models.GameState
	Turns   int
	Actions int
	Logs    []models.LogEntry
}

type runner struct {
	e      *engine.Engine
	s      models.GameState
	cfg    Config
	report Report
}

// Run plays a game until one player is left or cfg.Turns turns have ended.
func Run(b *board.Board, cfg Config) (Report, error) {
	if cfg.Players < 2 || cfg.Players > len(names) {
		return Report{}, fmt.Errorf("players must be between 2 and %d", len(names))
	}
	// Bots buy between rolling and ending the turn.
	cfg.Settings.ManualEndTurn = true
	epoch := time.Unix(0, 0).UTC()
	r := &runner{
		e: engine.New(b, rand.New(rand.NewSource(cfg.Seed)),
			engine.WithShuffleSource(rand.New(rand.NewSource(cfg.Seed+1))),
			engine.WithClock(func() time.Time { return epoch })),
		s:   models.GameState{ID: fmt.Sprintf("sim-%d", cfg.Seed)},
		cfg: cfg,
	}

	players := make([]models.PlayerState, cfg.Players)
	for i := range players {
		players[i] = models.PlayerState{ID: fmt.Sprintf("bot%d", i+1), Name: names[i]}
	}
	if err := r.do(r.e.StartGame(r.s.ID, players, cfg.Settings)); err != nil {
		return Report{}, err
	}

	for r.report.Turns < cfg.Turns && r.s.Status == models.StatusRunning {
		if err := r.turn(); err != nil {
			return r.finish(), fmt.Errorf("turn %d: %w", r.report.Turns, err)
		}
		r.report.Turns++
	}
	return r.finish(), nil
}

func (r *runner) finish() Report {
	r.report.Final = r.s
	return r.report
}

func (r *runner) do(ps []patch.Patch, err error) error {
	if err != nil {
		return err
	}
	next, err := patch.Apply(r.s, ps)
	if err != nil {
		return err
	}
	r.s = next
	r.report.Actions++
	r.report.Logs = append(r.report.Logs, patch.Logs(ps)...)
	return nil
}

func (r *runner) player(id string) models.PlayerState {
	for _, p := range r.s.Players {
		if p.ID == id {
			return p
		}
	}
	return models.PlayerState{}
}

func (r *runner) owner(tile int) string {
	for _, p := range r.s.Properties {
		if p.TileIndex == tile {
			return p.OwnerID
		}
	}
	return ""
}

func (r *runner) holds(id string) bool {
	cur, ok := r.s.CurrentPlayer()
	return ok && cur.ID == id && r.s.Status == models.StatusRunning
}

func (r *runner) turn() error {
	cur, _ := r.s.CurrentPlayer()
	id := cur.ID
	for r.holds(id) && !r.player(id).HasRolled {
		p := r.player(id)
		if p.InJail {
			if err := r.leaveJail(p); err != nil {
				return err
			}
		} else {
			res, err := r.e.RollDice(id, r.s)
			if err != nil {
				return err
			}
			if err := r.do(res.Patches, nil); err != nil {
				return err
			}
			if err := r.land(id); err != nil {
				return err
			}
		}
		if err := r.settleDebts(); err != nil {
			return err
		}
	}
	if !r.holds(id) {
		return nil
	}
	if err := r.develop(id); err != nil {
		return err
	}
	return r.do(r.e.EndTurn(id, r.s))
}

func (r *runner) leaveJail(p models.PlayerState) error {
	action := engine.JailRoll
	switch {
	case p.GetOutOfJailCards > 0:
		action = engine.JailCard
	case p.Cash >= r.s.Settings.JailFine+r.cfg.Reserve:
		action = engine.JailPay
	}
	res, err := r.e.HandleJail(p.ID, action, r.s)
	if err != nil {
		return err
	}
	return r.do(res.Patches, nil)
}

// land buys the tile the player stopped on, or declines and lets the
// table bid for it.
func (r *runner) land(id string) error {
	p := r.player(id)
	if !r.holds(id) || p.InJail {
		return nil
	}
	tile, err := r.e.Board().Tile(p.Position)
	if err != nil {
		return err
	}
	if !tile.Purchasable() || r.owner(tile.Index) != "" {
		return nil
	}
	if r.e.CanBuyProperty(id, tile.Index, r.s) && p.Cash-tile.Price >= r.cfg.Reserve {
		return r.do(r.e.BuyProperty(id, tile.Index, r.s))
	}
	if err := r.do(r.e.DeclinePurchase(id, r.s)); err != nil {
		return err
	}
	if r.s.ActiveAuction != nil {
		return r.auction(tile)
	}
	return nil
}

func (r *runner) auction(tile models.Tile) error {
	for bid := true; bid; {
		bid = false
		for _, p := range r.s.Players {
			amount := r.s.ActiveAuction.CurrentBid + bidStep
			if p.Bankrupt || p.ID == r.s.ActiveAuction.CurrentBidder ||
				amount > tile.Price || p.Cash-amount < r.cfg.Reserve {
				continue
			}
			if err := r.do(r.e.BidOnAuction(p.ID, amount, r.s)); err != nil {
				return err
			}
			bid = true
		}
	}
	return r.do(r.e.EndAuction(r.s))
}

// settleDebts sells and mortgages for every player in the red, and
// declares bankruptcy for those who still cannot pay.
func (r *runner) settleDebts() error {
	for _, p := range r.s.Players {
		if p.Bankrupt || p.Cash >= 0 {
			continue
		}
		if err := r.raise(p.ID); err != nil {
			return err
		}
		if r.player(p.ID).Cash >= 0 {
			continue
		}
		log.WithFields(log.Fields{"player": p.Name, "cash": r.player(p.ID).Cash}).Debug("bot bankrupt")
		if err := r.do(r.e.DeclareBankruptcy(p.ID, r.s)); err != nil {
			return err
		}
		if r.s.Status != models.StatusRunning {
			return nil
		}
	}
	return nil
}

// raise liquidates buildings first and then mortgages, until the player
// is out of the red or has nothing left to sell.
func (r *runner) raise(id string) error {
	for progress := true; progress && r.player(id).Cash < 0; {
		progress = false
		for _, prop := range r.s.Properties {
			if prop.OwnerID != id || r.player(id).Cash >= 0 {
				continue
			}
			var ps []patch.Patch
			var err error
			switch {
			case prop.Hotel:
				ps, err = r.e.SellHotel(id, prop.TileIndex, r.s)
			case prop.Houses > 0:
				ps, err = r.e.SellHouse(id, prop.TileIndex, r.s)
			default:
				continue
			}
			if isRuleError(err) {
				continue
			}
			if err := r.do(ps, err); err != nil {
				return err
			}
			progress = true
		}
	}
	for _, prop := range r.s.Properties {
		if r.player(id).Cash >= 0 {
			break
		}
		if prop.OwnerID != id || prop.Mortgaged {
			continue
		}
		ps, err := r.e.MortgageProperty(id, prop.TileIndex, r.s)
		if isRuleError(err) {
			continue
		}
		if err := r.do(ps, err); err != nil {
			return err
		}
	}
	return nil
}

// develop lifts mortgages and builds while the player stays comfortably
// above the reserve.
func (r *runner) develop(id string) error {
	comfort := 2 * r.cfg.Reserve
	for _, prop := range r.s.Properties {
		if prop.OwnerID != id || !prop.Mortgaged {
			continue
		}
		if r.player(id).Cash-r.e.UnmortgageCost(prop.TileIndex, r.s) < comfort {
			continue
		}
		if err := r.do(r.e.UnmortgageProperty(id, prop.TileIndex, r.s)); err != nil {
			return err
		}
	}

	for built := true; built; {
		built = false
		for _, prop := range r.s.Properties {
			if prop.OwnerID != id || r.player(id).Cash-r.e.HouseCost(prop.TileIndex) < comfort {
				continue
			}
			switch {
			case r.e.CanBuildHotel(id, prop.TileIndex, r.s):
				if err := r.do(r.e.BuildHotel(id, prop.TileIndex, r.s)); err != nil {
					return err
				}
				built = true
			case r.e.CanBuildHouse(id, prop.TileIndex, r.s):
				if err := r.do(r.e.BuildHouse(id, prop.TileIndex, r.s)); err != nil {
					return err
				}
				built = true
			}
		}
	}
	return nil
}

// isRuleError reports a rejection by the rules, as opposed to a broken
// state. Bots try moves speculatively and skip the rejected ones.
func isRuleError(err error) bool {
	for _, target := range []error{
		engine.ErrInvalidBuildOrder,
		engine.ErrPropertyHasBuildings,
		engine.ErrPropertyMortgaged,
		engine.ErrBuildingSupply,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
