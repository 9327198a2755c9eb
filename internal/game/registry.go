package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kingdomforge/kingdom-server-go/internal/game/rules"
)

// Simulation is a game run by the Registry. Its event log can be read while
// the game is still being played.
type Simulation struct {
	ID        string
	Setup     Setup
	Events    *rules.BufferLog
	StartedAt time.Time

	done chan struct{}

	mu         sync.RWMutex
	finishedAt time.Time
	rounds     int
	results    PlayerResults
	checksum   string
	err        error
}

// Done is closed when the game has finished or failed.
func (s *Simulation) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the game finishes or ctx is done.
func (s *Simulation) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return s.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Finished reports whether the game is over.
func (s *Simulation) Finished() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Results returns the final results once finished.
func (s *Simulation) Results() (PlayerResults, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

// Checksum returns the SHA-256 of the final game state.
func (s *Simulation) Checksum() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.checksum
}

// Rounds returns how many rounds were played.
func (s *Simulation) Rounds() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rounds
}

// FinishedAt returns when the game ended.
func (s *Simulation) FinishedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.finishedAt
}

// Err returns the contract violation or other failure that stopped the game.
func (s *Simulation) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Registry runs simulations on their own goroutines and keeps the most
// recent ones by ID.
type Registry struct {
	logger   *zap.Logger
	recorder *ReplayRecorder

	mu    sync.RWMutex
	sims  map[string]*Simulation
	order []string
	limit int
}

// NewRegistry creates a registry keeping at most limit simulations; 0 means
// no limit.
func NewRegistry(logger *zap.Logger, limit int) *Registry {
	return &Registry{
		logger: logger,
		sims:   make(map[string]*Simulation),
		limit:  limit,
	}
}

// SetReplayRecorder records every simulation and saves it when it ends.
func (r *Registry) SetReplayRecorder(rr *ReplayRecorder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recorder = rr
}

// Start builds the game and plays it in the background. Setup errors are
// returned before anything runs.
func (r *Registry) Start(setup Setup) (*Simulation, error) {
	if setup.ID == "" {
		setup.ID = uuid.NewString()
	}

	r.mu.RLock()
	_, exists := r.sims[setup.ID]
	recorder := r.recorder
	r.mu.RUnlock()
	if exists {
		return nil, fmt.Errorf("simulation %s already exists", setup.ID)
	}

	sim := &Simulation{
		ID:        setup.ID,
		Setup:     setup,
		Events:    rules.NewBufferLog(),
		StartedAt: time.Now(),
		done:      make(chan struct{}),
	}

	opts := []Option{WithLog(sim.Events), WithLogger(r.logger)}
	if recorder != nil {
		opts = append(opts, WithReplayRecorder(recorder))
	}
	g, err := BuildGame(setup, opts...)
	if err != nil {
		return nil, err
	}

	r.add(sim)
	go r.run(sim, g)
	return sim, nil
}

// Run starts a simulation and waits for it.
func (r *Registry) Run(ctx context.Context, setup Setup) (*Simulation, error) {
	sim, err := r.Start(setup)
	if err != nil {
		return nil, err
	}
	if err := sim.Wait(ctx); err != nil {
		return sim, err
	}
	return sim, nil
}

func (r *Registry) run(sim *Simulation, g *Game) {
	defer close(sim.done)
	defer func() {
		if recovered := recover(); recovered != nil {
			var err error
			if cv, ok := rules.AsContractViolation(recovered); ok {
				err = cv
			} else {
				err = fmt.Errorf("simulation panicked: %v", recovered)
			}
			sim.mu.Lock()
			sim.err = err
			sim.finishedAt = time.Now()
			sim.mu.Unlock()

			if r.logger != nil {
				r.logger.Error("simulation failed",
					zap.String("game_id", sim.ID),
					zap.Error(err),
				)
			}
		}
	}()

	for !g.PlayOneRound() {
	}
	checksum, err := g.Snapshot().ComputeChecksum()
	if err != nil {
		panic(err)
	}
	results := g.Results()

	sim.mu.Lock()
	sim.results = results
	sim.checksum = checksum.Hash
	sim.rounds = g.Round()
	sim.finishedAt = time.Now()
	sim.mu.Unlock()

	if g.recorder != nil {
		if err := g.recorder.SaveReplay(g.ID()); err != nil && r.logger != nil {
			r.logger.Warn("failed to save replay", zap.String("game_id", sim.ID), zap.Error(err))
		}
	}

	if r.logger != nil {
		r.logger.Info("simulation finished",
			zap.String("game_id", sim.ID),
			zap.Strings("winners", results.Winners()),
			zap.Int("rounds", g.Round()),
		)
	}
}

func (r *Registry) add(sim *Simulation) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sims[sim.ID] = sim
	r.order = append(r.order, sim.ID)
	if r.limit <= 0 {
		return
	}
	for i := 0; len(r.order) > r.limit && i < len(r.order); {
		id := r.order[i]
		if !r.sims[id].Finished() {
			i++
			continue
		}
		delete(r.sims, id)
		r.order = append(r.order[:i], r.order[i+1:]...)
	}
}

// Get returns a simulation by ID.
func (r *Registry) Get(id string) (*Simulation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sim, ok := r.sims[id]
	return sim, ok
}

// List returns simulations oldest first.
func (r *Registry) List() []*Simulation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Simulation, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.sims[id])
	}
	return out
}

// Remove forgets a simulation.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sims[id]; !ok {
		return
	}
	delete(r.sims, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	if r.logger != nil {
		r.logger.Debug("simulation removed", zap.String("game_id", id))
	}
}
