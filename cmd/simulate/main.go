package main

import (
	"flag"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/platform/board"
	"github.com/DedS3t/monopoly-engine/platform/config"
	"github.com/DedS3t/monopoly-engine/platform/logging"
	"github.com/DedS3t/monopoly-engine/platform/sim"
)

func main() {
	players := flag.Int("players", 4, "number of bots")
	turns := flag.Int("turns", 500, "turn limit")
	seed := flag.Int64("seed", 1, "random seed")
	reserve := flag.Int("reserve", 150, "cash bots keep back")
	tail := flag.Int("log", 12, "log entries to show")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
	logging.Init(cfg.LogLevel, cfg.LogFormat)

	b, err := board.New()
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	spinner, _ := pterm.DefaultSpinner.Start("Playing...")
	rep, err := sim.Run(b, sim.Config{
		Players:  *players,
		Turns:    *turns,
		Seed:     *seed,
		Settings: cfg.Game.Settings(),
		Reserve:  *reserve,
	})
	if err != nil {
		spinner.Fail(err.Error())
		os.Exit(1)
	}
	spinner.Success("Done")

	pterm.DefaultSection.Println("Standings")
	printStandings(b, rep.Final)

	pterm.DefaultSection.Println("Last moves")
	printLog(rep.Logs, *tail)

	summary := pterm.Sprintfln("Turns: %d\nActions: %d\nStatus: %s\nFree parking pot: %d",
		rep.Turns, rep.Actions, rep.Final.Status, rep.Final.FreeParkingPot)
	pterm.DefaultBox.WithTitle(pterm.LightYellow("|GAME|")).WithTitleTopCenter().
		WithLeftPadding(4).WithRightPadding(4).Println(summary)
}

// worth is cash plus the mortgage value of everything owned.
func worth(b *board.Board, s models.GameState, p models.PlayerState) int {
	total := p.Cash
	for _, prop := range s.Properties {
		if prop.OwnerID != p.ID || prop.Mortgaged {
			continue
		}
		if tile, err := b.Tile(prop.TileIndex); err == nil {
			total += tile.Price / 2
		}
	}
	return total
}

func printStandings(b *board.Board, s models.GameState) {
	ranked := append([]models.PlayerState(nil), s.Players...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return worth(b, s, ranked[i]) > worth(b, s, ranked[j])
	})

	data := pterm.TableData{{"Player", "Cash", "Worth", "Position", "Properties", "Status"}}
	for _, p := range ranked {
		var owned []string
		for _, prop := range s.Properties {
			if prop.OwnerID == p.ID {
				tile, _ := b.Tile(prop.TileIndex)
				owned = append(owned, label(tile, prop))
			}
		}
		status := pterm.LightGreen("Playing")
		switch {
		case p.Bankrupt:
			status = pterm.LightRed("Bankrupt")
		case p.InJail:
			status = pterm.FgYellow.Sprint("In jail")
		}
		data = append(data, []string{
			pterm.LightCyan(p.Name),
			strconv.Itoa(p.Cash),
			strconv.Itoa(worth(b, s, p)),
			strconv.Itoa(p.Position),
			strings.Join(owned, ", "),
			status,
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func label(tile models.Tile, prop models.PropertyState) string {
	name := tile.Name
	switch {
	case prop.Hotel:
		name += " (H)"
	case prop.Houses > 0:
		name += " (" + strconv.Itoa(prop.Houses) + ")"
	}
	if prop.Mortgaged {
		name = pterm.FgGray.Sprint(name)
	}
	return name
}

func printLog(logs []models.LogEntry, n int) {
	if n > len(logs) {
		n = len(logs)
	}
	for _, l := range logs[len(logs)-n:] {
		pterm.Info.Printfln("%-20s %-6s %v", l.Type, l.ActorID, l.Payload)
	}
}
