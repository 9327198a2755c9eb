package tournament

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kingdomforge/kingdom-server-go/internal/game"
	"github.com/kingdomforge/kingdom-server-go/internal/game/agents"
	"github.com/kingdomforge/kingdom-server-go/internal/game/cards"
)

// TournamentState represents the state of a tournament
type TournamentState int

const (
	TournamentStateWaiting TournamentState = iota
	TournamentStateInProgress
	TournamentStateFinished
	TournamentStateFailed
)

func (s TournamentState) String() string {
	switch s {
	case TournamentStateWaiting:
		return "WAITING"
	case TournamentStateInProgress:
		return "IN_PROGRESS"
	case TournamentStateFinished:
		return "FINISHED"
	case TournamentStateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Points awarded per game.
const (
	PointsWin  = 3
	PointsDraw = 1
)

// Runner plays one game to the end. game.Registry implements it.
type Runner interface {
	Run(ctx context.Context, setup game.Setup) (*game.Simulation, error)
}

// Entrant is a strategy taking part in a tournament.
type Entrant struct {
	Name   string
	Points int
	Wins   int
	Losses int
	Draws  int
	Score  int // victory points over all games
}

// Pairing is one round-robin match: GamesPerPairing games between two
// entrants, alternating who sits first.
type Pairing struct {
	Player1     string
	Player2     string
	GameIDs     []string
	Winner      string
	Player1Wins int
	Player2Wins int
	Draws       int
}

// Round is a set of pairings in which every entrant plays at most once.
type Round struct {
	Number   int
	Pairings []*Pairing
	Bye      string
	Started  bool
	Finished bool
}

// EntrantSnapshot captures entrant data for external use.
type EntrantSnapshot struct {
	Name   string
	Points int
	Wins   int
	Losses int
	Draws  int
	Score  int
}

// PairingSnapshot captures pairing data for external use.
type PairingSnapshot struct {
	Player1     string
	Player2     string
	GameIDs     []string
	Winner      string
	Player1Wins int
	Player2Wins int
	Draws       int
}

// RoundSnapshot captures round data for external use.
type RoundSnapshot struct {
	Number   int
	Bye      string
	Started  bool
	Finished bool
	Pairings []PairingSnapshot
}

// TournamentSnapshot captures a consistent view of a tournament.
type TournamentSnapshot struct {
	ID              string
	Name            string
	State           TournamentState
	Entrants        []EntrantSnapshot
	Rounds          []RoundSnapshot
	GamesPerPairing int
	MaxTurns        int
	Seed            uint64
	Kingdom         []cards.Name
	CreateTime      time.Time
	StartTime       *time.Time
	EndTime         *time.Time
	Error           string
}

// Options configures the games of a tournament.
type Options struct {
	GamesPerPairing int
	MaxTurns        int
	Seed            uint64
	Kingdom         []cards.Name
}

// Tournament is a round robin between agent strategies.
type Tournament struct {
	ID              string
	Name            string
	State           TournamentState
	Entrants        map[string]*Entrant
	EntrantOrder    []string
	Rounds          []*Round
	GamesPerPairing int
	MaxTurns        int
	Seed            uint64
	Kingdom         []cards.Name
	CreateTime      time.Time
	StartTime       *time.Time
	EndTime         *time.Time
	err             error
	mu              sync.RWMutex
}

// NewTournament creates a tournament with no entrants.
func NewTournament(name string, opts Options) *Tournament {
	games := opts.GamesPerPairing
	if games <= 0 {
		games = 1
	}
	return &Tournament{
		ID:              uuid.New().String(),
		Name:            name,
		State:           TournamentStateWaiting,
		Entrants:        make(map[string]*Entrant),
		EntrantOrder:    make([]string, 0),
		Rounds:          make([]*Round, 0),
		GamesPerPairing: games,
		MaxTurns:        opts.MaxTurns,
		Seed:            opts.Seed,
		Kingdom:         append([]cards.Name(nil), opts.Kingdom...),
		CreateTime:      time.Now(),
	}
}

// AddEntrant enters a preset strategy.
func (t *Tournament) AddEntrant(strategy string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.State != TournamentStateWaiting {
		return fmt.Errorf("tournament already started")
	}
	if _, err := agents.New(strategy); err != nil {
		return err
	}
	if _, exists := t.Entrants[strategy]; exists {
		return fmt.Errorf("strategy %s already entered", strategy)
	}

	t.Entrants[strategy] = &Entrant{Name: strategy}
	t.EntrantOrder = append(t.EntrantOrder, strategy)
	return nil
}

// RemoveEntrant withdraws a strategy before the start.
func (t *Tournament) RemoveEntrant(strategy string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.State != TournamentStateWaiting {
		return fmt.Errorf("tournament already started")
	}
	if _, exists := t.Entrants[strategy]; !exists {
		return fmt.Errorf("entrant not found")
	}

	delete(t.Entrants, strategy)
	for i, name := range t.EntrantOrder {
		if name == strategy {
			t.EntrantOrder = append(t.EntrantOrder[:i], t.EntrantOrder[i+1:]...)
			break
		}
	}
	return nil
}

// GetEntrantCount returns the number of entrants
func (t *Tournament) GetEntrantCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.Entrants)
}

// GetState returns the current tournament state
func (t *Tournament) GetState() TournamentState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.State
}

// Err returns the failure that stopped the tournament, if any.
func (t *Tournament) Err() error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.err
}

// Start schedules every round and moves the tournament into progress.
func (t *Tournament) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.State != TournamentStateWaiting {
		return fmt.Errorf("tournament already started")
	}
	if len(t.Entrants) < 2 {
		return fmt.Errorf("not enough entrants")
	}

	now := time.Now()
	t.StartTime = &now
	t.State = TournamentStateInProgress
	t.Rounds = t.generateRounds()
	return nil
}

// generateRounds uses the circle method: the first entrant stays put while
// the others rotate, so every pair meets exactly once. An odd field gets a
// placeholder and whoever meets it sits the round out.
func (t *Tournament) generateRounds() []*Round {
	names := append([]string(nil), t.EntrantOrder...)
	if len(names)%2 == 1 {
		names = append(names, "")
	}
	n := len(names)

	rounds := make([]*Round, 0, n-1)
	for r := 0; r < n-1; r++ {
		round := &Round{Number: r + 1}
		for i := 0; i < n/2; i++ {
			a, b := names[i], names[n-1-i]
			switch {
			case a == "":
				round.Bye = b
			case b == "":
				round.Bye = a
			default:
				round.Pairings = append(round.Pairings, &Pairing{Player1: a, Player2: b})
			}
		}
		rounds = append(rounds, round)

		last := names[n-1]
		copy(names[2:], names[1:n-1])
		names[1] = last
	}
	return rounds
}

// setupFor builds the game for one pairing. Odd games swap the seats so
// neither strategy always moves first; each game gets its own seed.
func (t *Tournament) setupFor(p *Pairing, gameIndex int, seed uint64) game.Setup {
	first, second := p.Player1, p.Player2
	if gameIndex%2 == 1 {
		first, second = second, first
	}
	return game.Setup{
		ID: fmt.Sprintf("%s-%s-%s-%d", t.ID, p.Player1, p.Player2, gameIndex+1),
		Players: []game.PlayerSpec{
			{Name: first, Strategy: first},
			{Name: second, Strategy: second},
		},
		Kingdom:  t.Kingdom,
		MaxTurns: t.MaxTurns,
		Seed:     seed,
	}
}

// RecordGameResult credits one finished game of a pairing.
func (t *Tournament) RecordGameResult(roundNum int, player1, player2, gameID string, results game.PlayerResults) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if roundNum <= 0 || roundNum > len(t.Rounds) {
		return fmt.Errorf("invalid round number")
	}

	var pairing *Pairing
	for _, p := range t.Rounds[roundNum-1].Pairings {
		if p.Player1 == player1 && p.Player2 == player2 {
			pairing = p
			break
		}
	}
	if pairing == nil {
		return fmt.Errorf("pairing not found")
	}

	pairing.GameIDs = append(pairing.GameIDs, gameID)
	for _, r := range results {
		if e, ok := t.Entrants[r.Name]; ok {
			e.Score += r.Score
		}
	}

	p1, p2 := t.Entrants[player1], t.Entrants[player2]
	winners := results.Winners()
	switch {
	case len(winners) == 1 && winners[0] == player1:
		pairing.Player1Wins++
		p1.Wins++
		p1.Points += PointsWin
		p2.Losses++
	case len(winners) == 1 && winners[0] == player2:
		pairing.Player2Wins++
		p2.Wins++
		p2.Points += PointsWin
		p1.Losses++
	default:
		pairing.Draws++
		p1.Draws++
		p1.Points += PointsDraw
		p2.Draws++
		p2.Points += PointsDraw
	}

	switch {
	case pairing.Player1Wins > pairing.Player2Wins:
		pairing.Winner = player1
	case pairing.Player2Wins > pairing.Player1Wins:
		pairing.Winner = player2
	default:
		pairing.Winner = ""
	}
	return nil
}

// Run plays every game of every round in order and finishes the tournament.
// Games are played one at a time; ctx is checked between games.
func (t *Tournament) Run(ctx context.Context, runner Runner) error {
	if err := t.Start(); err != nil {
		return err
	}

	t.mu.RLock()
	rounds := t.Rounds
	games := t.GamesPerPairing
	seed := t.Seed
	t.mu.RUnlock()

	for _, round := range rounds {
		t.setRoundFlags(round, true, false)
		for _, pairing := range round.Pairings {
			for i := 0; i < games; i++ {
				if err := ctx.Err(); err != nil {
					return t.fail(err)
				}
				setup := t.setupFor(pairing, i, seed)
				seed++

				sim, err := runner.Run(ctx, setup)
				if err != nil {
					return t.fail(fmt.Errorf("game %s: %w", setup.ID, err))
				}
				results, err := sim.Results()
				if err != nil {
					return t.fail(fmt.Errorf("game %s: %w", setup.ID, err))
				}
				if err := t.RecordGameResult(round.Number, pairing.Player1, pairing.Player2, sim.ID, results); err != nil {
					return t.fail(err)
				}
			}
		}
		t.setRoundFlags(round, true, true)
	}

	t.mu.Lock()
	now := time.Now()
	t.State = TournamentStateFinished
	t.EndTime = &now
	t.mu.Unlock()
	return nil
}

func (t *Tournament) setRoundFlags(round *Round, started, finished bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	round.Started = started
	round.Finished = finished
}

func (t *Tournament) fail(err error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	t.State = TournamentStateFailed
	t.EndTime = &now
	t.err = err
	return err
}

// Standings returns entrants ordered by points, then wins, then total
// victory points, then name.
func (t *Tournament) Standings() []EntrantSnapshot {
	standings := t.Snapshot().Entrants
	sort.SliceStable(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.Name < b.Name
	})
	return standings
}

// Snapshot returns a consistent copy of the tournament state.
func (t *Tournament) Snapshot() TournamentSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	entrants := make([]EntrantSnapshot, 0, len(t.EntrantOrder))
	for _, name := range t.EntrantOrder {
		if e, ok := t.Entrants[name]; ok {
			entrants = append(entrants, EntrantSnapshot{
				Name:   e.Name,
				Points: e.Points,
				Wins:   e.Wins,
				Losses: e.Losses,
				Draws:  e.Draws,
				Score:  e.Score,
			})
		}
	}

	rounds := make([]RoundSnapshot, 0, len(t.Rounds))
	for _, r := range t.Rounds {
		pairings := make([]PairingSnapshot, 0, len(r.Pairings))
		for _, p := range r.Pairings {
			pairings = append(pairings, PairingSnapshot{
				Player1:     p.Player1,
				Player2:     p.Player2,
				GameIDs:     append([]string(nil), p.GameIDs...),
				Winner:      p.Winner,
				Player1Wins: p.Player1Wins,
				Player2Wins: p.Player2Wins,
				Draws:       p.Draws,
			})
		}
		rounds = append(rounds, RoundSnapshot{
			Number:   r.Number,
			Bye:      r.Bye,
			Started:  r.Started,
			Finished: r.Finished,
			Pairings: pairings,
		})
	}

	var errText string
	if t.err != nil {
		errText = t.err.Error()
	}

	return TournamentSnapshot{
		ID:              t.ID,
		Name:            t.Name,
		State:           t.State,
		Entrants:        entrants,
		Rounds:          rounds,
		GamesPerPairing: t.GamesPerPairing,
		MaxTurns:        t.MaxTurns,
		Seed:            t.Seed,
		Kingdom:         append([]cards.Name(nil), t.Kingdom...),
		CreateTime:      t.CreateTime,
		StartTime:       cloneTime(t.StartTime),
		EndTime:         cloneTime(t.EndTime),
		Error:           errText,
	}
}

func cloneTime(src *time.Time) *time.Time {
	if src == nil {
		return nil
	}
	cp := *src
	return &cp
}

// Manager manages tournaments
type Manager struct {
	tournaments map[string]*Tournament
	runner      Runner
	mu          sync.RWMutex
	logger      *zap.Logger
}

// NewManager creates a tournament manager playing its games on runner.
func NewManager(runner Runner, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		tournaments: make(map[string]*Tournament),
		runner:      runner,
		logger:      logger,
	}
}

// CreateTournament creates a tournament between the given strategies.
func (m *Manager) CreateTournament(name string, strategies []string, opts Options) (*Tournament, error) {
	tournament := NewTournament(name, opts)
	for _, s := range strategies {
		if err := tournament.AddEntrant(s); err != nil {
			return nil, err
		}
	}

	m.mu.Lock()
	m.tournaments[tournament.ID] = tournament
	m.mu.Unlock()

	m.logger.Info("tournament created",
		zap.String("tournament_id", tournament.ID),
		zap.String("name", name),
		zap.Strings("strategies", strategies),
		zap.Int("games_per_pairing", tournament.GamesPerPairing),
	)
	return tournament, nil
}

// Run plays a tournament to the end.
func (m *Manager) Run(ctx context.Context, tournamentID string) (TournamentSnapshot, error) {
	tournament, ok := m.GetTournament(tournamentID)
	if !ok {
		return TournamentSnapshot{}, fmt.Errorf("tournament %s not found", tournamentID)
	}

	start := time.Now()
	if err := tournament.Run(ctx, m.runner); err != nil {
		m.logger.Error("tournament failed",
			zap.String("tournament_id", tournamentID),
			zap.Error(err),
		)
		return tournament.Snapshot(), err
	}

	standings := tournament.Standings()
	m.logger.Info("tournament finished",
		zap.String("tournament_id", tournamentID),
		zap.String("leader", standings[0].Name),
		zap.Int("leader_points", standings[0].Points),
		zap.Duration("duration", time.Since(start)),
	)
	return tournament.Snapshot(), nil
}

// GetTournament retrieves a tournament by ID
func (m *Manager) GetTournament(tournamentID string) (*Tournament, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tournament, ok := m.tournaments[tournamentID]
	return tournament, ok
}

// RemoveTournament removes a tournament
func (m *Manager) RemoveTournament(tournamentID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.tournaments, tournamentID)

	m.logger.Info("tournament removed", zap.String("tournament_id", tournamentID))
}

// GetAllTournaments returns all tournaments, oldest first.
func (m *Manager) GetAllTournaments() []*Tournament {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tournaments := make([]*Tournament, 0, len(m.tournaments))
	for _, tournament := range m.tournaments {
		tournaments = append(tournaments, tournament)
	}
	sort.Slice(tournaments, func(i, j int) bool {
		return tournaments[i].CreateTime.Before(tournaments[j].CreateTime)
	})
	return tournaments
}

// GetActiveTournamentCount returns the count of tournaments not yet over.
func (m *Manager) GetActiveTournamentCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, tournament := range m.tournaments {
		switch tournament.GetState() {
		case TournamentStateFinished, TournamentStateFailed:
		default:
			count++
		}
	}
	return count
}
