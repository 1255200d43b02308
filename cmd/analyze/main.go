// Command analyze runs seeded random playouts of every preset in the configs
// directory and prints how long races last, how often the deck runs out and
// which turtles win. Cards and colors are picked uniformly at random; the
// numbers describe the rules, not a strategy.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/turtle-race-game/game/config"
	"github.com/wricardo/turtle-race-game/game/engine"
)

// Outcome is the result of one playout
type Outcome struct {
	Winner    engine.Color
	Plays     int
	Deferred  int // plays that needed a color choice
	Exhausted bool
}

// Stats aggregates the outcomes of many playouts of one preset
type Stats struct {
	Config    string
	Games     int
	Wins      map[engine.Color]int
	Exhausted int
	WinPlays  int // total plays over games that produced a winner
	MinPlays  int
	MaxPlays  int
	Deferred  int
}

// AveragePlaysToWin is the mean number of plays in games with a winner
func (s Stats) AveragePlaysToWin() float64 {
	won := s.Games - s.Exhausted
	if won == 0 {
		return 0
	}
	return float64(s.WinPlays) / float64(won)
}

// ExhaustionRate is the share of games that ended without a winner
func (s Stats) ExhaustionRate() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.Exhausted) / float64(s.Games)
}

// choiceSeedMask separates the choice stream from the engine's shuffle
// stream, which also starts from the playout seed.
const choiceSeedMask = 0x5eed

// playout plays one game to the end with uniformly random choices. The
// engine shuffle and the choices both derive from seed.
func playout(cfg *engine.GameConfig, seed int64) (Outcome, error) {
	var out Outcome

	eng, err := engine.NewEngine(cfg, engine.WithSeed(seed))
	if err != nil {
		return out, err
	}
	hand, err := eng.DealHand(eng.GetConfig().HandSize)
	if err != nil {
		return out, err
	}

	rng := newChoiceRand(seed)
	for !eng.IsGameOver() {
		cards := hand.Cards()
		if len(cards) == 0 {
			break
		}
		card := cards[rng.Intn(len(cards))]

		result, err := eng.PlayCard(hand, card.ID)
		if err == nil && result == nil {
			pending := eng.Pending()
			if pending == nil || len(pending.Candidates) == 0 {
				return out, fmt.Errorf("card %s deferred without candidates", card.ID)
			}
			out.Deferred++
			result, err = eng.ResolveColor(pending.Candidates[rng.Intn(len(pending.Candidates))])
		}
		if err != nil && !errors.Is(err, engine.ErrEmptyDeck) {
			return out, err
		}
		if result != nil {
			out.Plays++
		}
	}

	out.Winner = eng.Winner()
	out.Exhausted = eng.Phase() == engine.PhaseExhausted
	return out, nil
}

func newChoiceRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed ^ choiceSeedMask))
}

// analyze runs games playouts seeded baseSeed, baseSeed+1, ...
func analyze(cfg *engine.GameConfig, games int, baseSeed int64) (Stats, error) {
	stats := Stats{
		Config: cfg.Name,
		Wins:   make(map[engine.Color]int),
	}

	for i := 0; i < games; i++ {
		out, err := playout(cfg, baseSeed+int64(i))
		if err != nil {
			return stats, fmt.Errorf("game %d: %w", i, err)
		}

		stats.Games++
		stats.Deferred += out.Deferred
		if stats.Games == 1 || out.Plays < stats.MinPlays {
			stats.MinPlays = out.Plays
		}
		if out.Plays > stats.MaxPlays {
			stats.MaxPlays = out.Plays
		}

		if out.Exhausted {
			stats.Exhausted++
			continue
		}
		stats.Wins[out.Winner]++
		stats.WinPlays += out.Plays
	}

	return stats, nil
}

func printStats(w io.Writer, s Stats) {
	fmt.Fprintf(w, "\n=== %s (%d games) ===\n", s.Config, s.Games)
	fmt.Fprintf(w, "Average plays to a winner: %.1f\n", s.AveragePlaysToWin())
	fmt.Fprintf(w, "Plays per game: min %d, max %d\n", s.MinPlays, s.MaxPlays)
	fmt.Fprintf(w, "Deck exhausted: %d (%.1f%%)\n", s.Exhausted, 100*s.ExhaustionRate())
	fmt.Fprintf(w, "Color choices: %d\n", s.Deferred)

	colors := engine.AllColors()
	sort.SliceStable(colors, func(i, j int) bool {
		return s.Wins[colors[i]] > s.Wins[colors[j]]
	})

	parts := make([]string, 0, len(colors))
	for _, c := range colors {
		share := 0.0
		if s.Games > 0 {
			share = 100 * float64(s.Wins[c]) / float64(s.Games)
		}
		parts = append(parts, fmt.Sprintf("%s %d (%.1f%%)", c, s.Wins[c], share))
	}
	fmt.Fprintf(w, "Winners: %s\n", strings.Join(parts, ", "))
}

// run analyzes every preset found in configDir
func run(w io.Writer, configDir string, games int, seed int64) error {
	manager, err := config.NewManager(configDir)
	if err != nil {
		return err
	}

	presets, err := manager.ListConfigs()
	if err != nil {
		return err
	}
	if len(presets) == 0 {
		return fmt.Errorf("no presets found in %s", configDir)
	}

	for _, preset := range presets {
		cfg, err := manager.LoadConfig(preset.ConfigID)
		if err != nil {
			return err
		}
		stats, err := analyze(cfg, games, seed)
		if err != nil {
			return fmt.Errorf("%s: %w", preset.ConfigID, err)
		}
		printStats(w, stats)
	}
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "analyze",
		Usage: "Random playout statistics for every game preset",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "Directory containing game configurations"},
			&cli.IntFlag{Name: "games", Value: 1000, Usage: "Playouts per preset"},
			&cli.IntFlag{Name: "seed", Value: 1, Usage: "Seed of the first playout"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			games := cmd.Int("games")
			if games <= 0 {
				return fmt.Errorf("games must be positive, got %d", games)
			}
			return run(os.Stdout, cmd.String("config-dir"), games, int64(cmd.Int("seed")))
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "analyze: %v\n", err)
		os.Exit(1)
	}
}
