package game

import (
	"fmt"

	"github.com/kingdomforge/kingdom-server-go/internal/game/agents"
	"github.com/kingdomforge/kingdom-server-go/internal/game/cards"
	"github.com/kingdomforge/kingdom-server-go/internal/game/shuffle"
)

// PlayerSpec seats a player with a preset strategy.
type PlayerSpec struct {
	Name     string
	Strategy string
}

// Setup describes a game to build: players, extra kingdom piles, round limit
// and the seed every player's shuffler derives from.
type Setup struct {
	ID       string
	Players  []PlayerSpec
	Kingdom  []cards.Name
	MaxTurns int
	Seed     uint64
}

// KingdomCards returns the configured kingdom plus every pile a seated
// strategy needs, without duplicates.
func (s Setup) KingdomCards() []cards.Name {
	seen := make(map[cards.Name]bool)
	var out []cards.Name
	add := func(names []cards.Name) {
		for _, n := range names {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	add(s.Kingdom)
	for _, p := range s.Players {
		add(agents.KingdomFor(agents.Strategy(p.Strategy)))
	}
	return out
}

// BuildGame creates a game from a setup: basic kingdom plus kingdom piles,
// one agent and one seeded shuffler per player. Player i shuffles with seed
// Seed+i so equal setups replay identically.
func BuildGame(setup Setup, opts ...Option) (*Game, error) {
	if len(setup.Players) == 0 {
		return nil, fmt.Errorf("at least one player is required")
	}

	all := make([]Option, 0, len(opts)+2)
	if setup.ID != "" {
		all = append(all, WithID(setup.ID))
	}
	if setup.MaxTurns > 0 {
		all = append(all, WithMaxTurns(setup.MaxTurns))
	}
	all = append(all, opts...)
	g := New(all...)

	g.PopulateBasicKingdom()
	if err := g.PopulateKingdom(setup.KingdomCards()); err != nil {
		return nil, err
	}

	for i, p := range setup.Players {
		agent, err := agents.New(p.Strategy)
		if err != nil {
			return nil, fmt.Errorf("player %s: %w", p.Name, err)
		}
		if err := g.AddPlayer(p.Name, agent, shuffle.NewRandom(setup.Seed+uint64(i))); err != nil {
			return nil, err
		}
	}
	return g, nil
}
