package main

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/turtle-race-game/game/config"
	"github.com/wricardo/turtle-race-game/game/engine"
)

func TestPlayout_EndsAndIsDeterministic(t *testing.T) {
	cfg := engine.DefaultGameConfig()

	first, err := playout(cfg, 42)
	require.NoError(t, err)
	second, err := playout(cfg, 42)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Positive(t, first.Plays)
	if first.Exhausted {
		assert.Equal(t, engine.ColorNone, first.Winner)
	} else {
		assert.True(t, first.Winner.IsTurtle())
	}
}

func TestPlayout_PlaysBoundedByDeck(t *testing.T) {
	cfg := engine.DefaultGameConfig()
	cfg.PathLength = engine.MaxPathLength

	for seed := int64(0); seed < 20; seed++ {
		out, err := playout(cfg, seed)
		require.NoError(t, err)
		assert.LessOrEqual(t, out.Plays, engine.DeckSize-cfg.HandSize+1)
	}
}

func TestAnalyze_Totals(t *testing.T) {
	cfg := engine.DefaultGameConfig()

	stats, err := analyze(cfg, 50, 1)
	require.NoError(t, err)

	assert.Equal(t, "classic", stats.Config)
	assert.Equal(t, 50, stats.Games)

	wins := 0
	for _, n := range stats.Wins {
		wins += n
	}
	assert.Equal(t, 50, wins+stats.Exhausted)
	assert.LessOrEqual(t, stats.MinPlays, stats.MaxPlays)
	assert.InDelta(t, float64(stats.Exhausted)/50, stats.ExhaustionRate(), 1e-9)
}

func TestAnalyze_ShortPathAlwaysWins(t *testing.T) {
	cfg := engine.DefaultGameConfig()
	cfg.Name = "one-tile"
	cfg.PathLength = engine.MinPathLength

	stats, err := analyze(cfg, 20, 7)
	require.NoError(t, err)

	assert.Zero(t, stats.Exhausted)
	assert.Greater(t, stats.AveragePlaysToWin(), 0.0)
}

func TestStats_EmptyRates(t *testing.T) {
	var s Stats
	assert.Zero(t, s.AveragePlaysToWin())
	assert.Zero(t, s.ExhaustionRate())
}

func TestPrintStats(t *testing.T) {
	stats := Stats{
		Config:    "sprint",
		Games:     4,
		Wins:      map[engine.Color]int{engine.Green: 3},
		Exhausted: 1,
		WinPlays:  30,
		MinPlays:  8,
		MaxPlays:  12,
	}

	var buf bytes.Buffer
	printStats(&buf, stats)
	out := buf.String()

	assert.Contains(t, out, "=== sprint (4 games) ===")
	assert.Contains(t, out, "Average plays to a winner: 10.0")
	assert.Contains(t, out, "Deck exhausted: 1 (25.0%)")
	assert.Contains(t, out, "Winners: green 3 (75.0%)")
}

func TestRun_AllPresets(t *testing.T) {
	dir := t.TempDir()
	manager, err := config.NewManager(dir)
	require.NoError(t, err)

	sprint := engine.DefaultGameConfig()
	sprint.Name = "sprint"
	sprint.PathLength = 4
	require.NoError(t, manager.SaveConfig("sprint", sprint))
	require.NoError(t, manager.SaveConfig("classic", engine.DefaultGameConfig()))

	var buf bytes.Buffer
	require.NoError(t, run(&buf, dir, 5, 1))

	assert.Contains(t, buf.String(), "=== sprint (5 games) ===")
	assert.Contains(t, buf.String(), "=== classic (5 games) ===")
}

func TestRun_MissingDir(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, run(&buf, "/non/existent/path", 1, 1))
}

func TestNewChoiceRand_IndependentOfShuffle(t *testing.T) {
	for _, seed := range []int64{0, 1, 42, 20240601} {
		shuffle := rand.New(rand.NewSource(seed))
		choices := newChoiceRand(seed)

		same := true
		for i := 0; i < 8; i++ {
			if shuffle.Int63() != choices.Int63() {
				same = false
			}
		}
		assert.False(t, same, "seed %d: choices replay the shuffle stream", seed)
	}

	a, b := newChoiceRand(7), newChoiceRand(7)
	assert.Equal(t, a.Int63(), b.Int63(), "choices stay reproducible")
}
