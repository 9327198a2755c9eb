package tournament

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/kingdomforge/kingdom-server-go/internal/game"
)

const (
	abc = "always-buy-copper"
	gfd = "greedy-for-duchies"
	bm  = "big-money"
	bms = "big-money-smithy"
)

type failingRunner struct {
	err   error
	calls int
}

func (r *failingRunner) Run(context.Context, game.Setup) (*game.Simulation, error) {
	r.calls++
	return nil, r.err
}

type pair struct{ a, b string }

func TestRoundRobinPairsEveryoneOnce(t *testing.T) {
	tests := []struct {
		name       string
		strategies []string
		rounds     int
		byes       bool
	}{
		{"two", []string{abc, gfd}, 1, false},
		{"three", []string{abc, gfd, bm}, 3, true},
		{"four", []string{abc, gfd, bm, bms}, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tour := NewTournament(tt.name, Options{})
			for _, s := range tt.strategies {
				require.NoError(t, tour.AddEntrant(s))
			}
			require.NoError(t, tour.Start())
			require.Len(t, tour.Rounds, tt.rounds)

			seen := make(map[pair]int)
			for _, round := range tour.Rounds {
				inRound := make(map[string]bool)
				for _, p := range round.Pairings {
					assert.False(t, inRound[p.Player1])
					assert.False(t, inRound[p.Player2])
					inRound[p.Player1], inRound[p.Player2] = true, true
					if p.Player1 < p.Player2 {
						seen[pair{p.Player1, p.Player2}]++
					} else {
						seen[pair{p.Player2, p.Player1}]++
					}
				}
				if tt.byes {
					assert.NotEmpty(t, round.Bye)
					assert.False(t, inRound[round.Bye])
				} else {
					assert.Empty(t, round.Bye)
				}
			}

			n := len(tt.strategies)
			assert.Len(t, seen, n*(n-1)/2)
			for p, count := range seen {
				assert.Equal(t, 1, count, "%s vs %s", p.a, p.b)
			}
		})
	}
}

func TestAddEntrantValidation(t *testing.T) {
	tour := NewTournament("t", Options{})
	assert.EqualError(t, tour.AddEntrant("hoarder"), `unknown strategy: "hoarder"`)

	require.NoError(t, tour.AddEntrant(abc))
	assert.EqualError(t, tour.AddEntrant(abc), "strategy always-buy-copper already entered")
	assert.EqualError(t, tour.Start(), "not enough entrants")

	require.NoError(t, tour.AddEntrant(gfd))
	require.NoError(t, tour.RemoveEntrant(gfd))
	assert.EqualError(t, tour.RemoveEntrant(gfd), "entrant not found")
	assert.Equal(t, 1, tour.GetEntrantCount())

	require.NoError(t, tour.AddEntrant(gfd))
	require.NoError(t, tour.Start())
	assert.EqualError(t, tour.AddEntrant(bm), "tournament already started")
	assert.EqualError(t, tour.Start(), "tournament already started")
}

func TestRecordGameResult(t *testing.T) {
	tour := NewTournament("t", Options{GamesPerPairing: 3})
	require.NoError(t, tour.AddEntrant(abc))
	require.NoError(t, tour.AddEntrant(gfd))
	require.NoError(t, tour.Start())

	p := tour.Rounds[0].Pairings[0]
	win := game.PlayerResults{{Name: p.Player1, Score: 9}, {Name: p.Player2, Score: 3}}
	tie := game.PlayerResults{{Name: p.Player1, Score: 3}, {Name: p.Player2, Score: 3}}

	require.NoError(t, tour.RecordGameResult(1, p.Player1, p.Player2, "g1", win))
	require.NoError(t, tour.RecordGameResult(1, p.Player1, p.Player2, "g2", tie))
	assert.EqualError(t, tour.RecordGameResult(2, p.Player1, p.Player2, "g3", tie), "invalid round number")
	assert.EqualError(t, tour.RecordGameResult(1, p.Player1, "nobody", "g3", tie), "pairing not found")

	snap := tour.Snapshot()
	got := snap.Rounds[0].Pairings[0]
	assert.Equal(t, []string{"g1", "g2"}, got.GameIDs)
	assert.Equal(t, 1, got.Player1Wins)
	assert.Equal(t, 1, got.Draws)
	assert.Equal(t, p.Player1, got.Winner)

	first := tour.Entrants[p.Player1]
	assert.Equal(t, PointsWin+PointsDraw, first.Points)
	assert.Equal(t, 12, first.Score)
	second := tour.Entrants[p.Player2]
	assert.Equal(t, PointsDraw, second.Points)
	assert.Equal(t, 1, second.Losses)
}

func TestTournamentRunPlaysAllGames(t *testing.T) {
	registry := game.NewRegistry(nil, 0)
	m := NewManager(registry, zaptest.NewLogger(t))

	tour, err := m.CreateTournament("duchies", []string{abc, gfd}, Options{GamesPerPairing: 2, Seed: 1234})
	require.NoError(t, err)
	assert.Equal(t, 1, m.GetActiveTournamentCount())

	snap, err := m.Run(context.Background(), tour.ID)
	require.NoError(t, err)
	assert.Equal(t, TournamentStateFinished, snap.State)
	require.NotNil(t, snap.EndTime)
	assert.Equal(t, 0, m.GetActiveTournamentCount())

	require.Len(t, snap.Rounds, 1)
	assert.True(t, snap.Rounds[0].Finished)
	pairing := snap.Rounds[0].Pairings[0]
	require.Len(t, pairing.GameIDs, 2)
	assert.Equal(t, gfd, pairing.Winner)

	for _, id := range pairing.GameIDs {
		sim, ok := registry.Get(id)
		require.True(t, ok)
		assert.True(t, sim.Finished())
	}

	standings := tour.Standings()
	assert.Equal(t, gfd, standings[0].Name)
	assert.Equal(t, 2*PointsWin, standings[0].Points)
	assert.Equal(t, 2, standings[1].Losses)
	assert.Equal(t, 6, standings[1].Score)
}

func TestTournamentAlternatesSeats(t *testing.T) {
	tour := NewTournament("t", Options{MaxTurns: 12})
	p := &Pairing{Player1: abc, Player2: gfd}

	even := tour.setupFor(p, 0, 7)
	odd := tour.setupFor(p, 1, 8)
	assert.Equal(t, abc, even.Players[0].Name)
	assert.Equal(t, gfd, odd.Players[0].Name)
	assert.Equal(t, 12, odd.MaxTurns)
	assert.Equal(t, uint64(8), odd.Seed)
	assert.NotEqual(t, even.ID, odd.ID)
}

func TestTournamentRunnerFailure(t *testing.T) {
	runner := &failingRunner{err: errors.New("boom")}
	m := NewManager(runner, nil)

	tour, err := m.CreateTournament("t", []string{abc, gfd}, Options{GamesPerPairing: 4})
	require.NoError(t, err)

	snap, err := m.Run(context.Background(), tour.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, 1, runner.calls)
	assert.Equal(t, TournamentStateFailed, snap.State)
	assert.Contains(t, snap.Error, "boom")
	assert.ErrorIs(t, tour.Err(), runner.err)
}

func TestTournamentStopsOnCancelledContext(t *testing.T) {
	runner := &failingRunner{}
	tour := NewTournament("t", Options{})
	require.NoError(t, tour.AddEntrant(abc))
	require.NoError(t, tour.AddEntrant(gfd))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, tour.Run(ctx, runner), context.Canceled)
	assert.Equal(t, 0, runner.calls)
	assert.Equal(t, TournamentStateFailed, tour.GetState())
}

func TestManagerLookup(t *testing.T) {
	m := NewManager(nil, nil)
	_, err := m.CreateTournament("bad", []string{"hoarder"}, Options{})
	assert.Error(t, err)

	a, err := m.CreateTournament("a", []string{abc, gfd}, Options{})
	require.NoError(t, err)
	b, err := m.CreateTournament("b", []string{bm, bms}, Options{})
	require.NoError(t, err)

	got, ok := m.GetTournament(a.ID)
	require.True(t, ok)
	assert.Same(t, a, got)
	assert.Len(t, m.GetAllTournaments(), 2)

	m.RemoveTournament(b.ID)
	_, ok = m.GetTournament(b.ID)
	assert.False(t, ok)

	_, err = m.Run(context.Background(), "missing")
	assert.EqualError(t, err, "tournament missing not found")
}

func TestTournamentStateString(t *testing.T) {
	assert.Equal(t, "FINISHED", TournamentStateFinished.String())
	assert.Equal(t, "UNKNOWN", TournamentState(42).String())
}
