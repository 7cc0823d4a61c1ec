package engine

import (
	"sort"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/platform/patch"
)

// BankruptcyResult describes how a bankruptcy would settle. An empty
// CreditorID means the bank takes the assets.
type BankruptcyResult struct {
	PlayerID   string `json:"playerId"`
	CreditorID string `json:"creditorId,omitempty"`
	Debt       int    `json:"debt"`
	GameEnded  bool   `json:"gameEnded"`
}

// ProcessBankruptcy works out the creditor for a player's debt without
// changing anything. The creditor is the richest other solvent player who
// can cover the debt on their own.
func (e *Engine) ProcessBankruptcy(playerID string, s models.GameState) (BankruptcyResult, error) {
	t := e.begin(s)
	if _, err := t.player(playerID); err != nil {
		return BankruptcyResult{}, err
	}
	return t.assess(playerID), nil
}

// DeclareBankruptcy settles a player's bankruptcy and, when the game goes
// on and they held the turn, passes the turn along.
func (e *Engine) DeclareBankruptcy(playerID string, s models.GameState) ([]patch.Patch, error) {
	t := e.begin(s)
	if _, err := t.active(playerID); err != nil {
		return nil, err
	}
	t.bankrupt(playerID)
	if cur, ok := t.s.CurrentPlayer(); ok && cur.ID == playerID {
		t.endTurn(playerID)
	}
	return t.patches, nil
}

func (t *tx) assess(playerID string) BankruptcyResult {
	p := t.mustPlayer(playerID)
	res := BankruptcyResult{PlayerID: playerID, Debt: max(0, -p.Cash)}

	var creditors []models.PlayerState
	solvent := 0
	for _, o := range t.s.Players {
		if o.ID == playerID || o.Bankrupt {
			continue
		}
		solvent++
		if o.Cash >= res.Debt {
			creditors = append(creditors, o)
		}
	}
	sort.SliceStable(creditors, func(i, j int) bool { return creditors[i].Cash > creditors[j].Cash })
	if len(creditors) > 0 {
		res.CreditorID = creditors[0].ID
	}
	res.GameEnded = solvent <= 1
	return res
}

// bankrupt removes a player from the game and hands their holdings to the
// creditor or back to the bank. Buildings always return to the bank.
func (t *tx) bankrupt(playerID string) BankruptcyResult {
	res := t.assess(playerID)
	p := t.mustPlayer(playerID)

	var tiles []int
	for _, prop := range t.s.Properties {
		if prop.OwnerID != playerID {
			continue
		}
		tiles = append(tiles, prop.TileIndex)
		f := patch.PropertyFields{
			OwnerID: patch.String(res.CreditorID),
			Houses:  patch.Int(0),
			Hotel:   patch.Bool(false),
		}
		if res.CreditorID == "" {
			f.Mortgaged = patch.Bool(false)
		}
		t.updateProperty(prop.TileIndex, f)
	}

	if res.CreditorID != "" {
		c := t.mustPlayer(res.CreditorID)
		credit := patch.PlayerFields{}
		if p.Cash > 0 {
			credit.Cash = patch.Int(c.Cash + p.Cash)
		}
		if p.GetOutOfJailCards > 0 {
			credit.GetOutOfJailCards = patch.Int(c.GetOutOfJailCards + p.GetOutOfJailCards)
		}
		if credit.Cash != nil || credit.GetOutOfJailCards != nil {
			t.updatePlayer(res.CreditorID, credit)
		}
	}

	t.updatePlayer(playerID, patch.PlayerFields{
		Bankrupt:          patch.Bool(true),
		Cash:              patch.Int(0),
		InJail:            patch.Bool(false),
		JailTurns:         patch.Int(0),
		DoublesInRow:      patch.Int(0),
		GetOutOfJailCards: patch.Int(0),
	})

	if res.CreditorID != "" {
		t.log("bankruptcy_transfer", playerID, map[string]interface{}{
			"creditorId": res.CreditorID,
			"debt":       res.Debt,
			"properties": tiles,
		})
	} else {
		t.log("bankruptcy_bank", playerID, map[string]interface{}{
			"debt":       res.Debt,
			"properties": tiles,
		})
	}

	if res.GameEnded {
		status := models.StatusFinished
		winner, turn := "", t.s.CurrentTurn
		for i, o := range t.s.Players {
			if !o.Bankrupt {
				winner, turn = o.ID, i
			}
		}
		t.emit(patch.GameUpdate{Fields: patch.GameFields{Status: &status, CurrentTurn: &turn}})
		t.log("game_over", "", map[string]interface{}{"winnerId": winner})
	}
	return res
}
