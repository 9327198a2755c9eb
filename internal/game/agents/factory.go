package agents

import (
	"fmt"
	"sort"

	"github.com/kingdomforge/kingdom-server-go/internal/game/cards"
)

// Strategy names a preset agent.
type Strategy string

const (
	StrategyAlwaysBuyCopper  Strategy = "always-buy-copper"
	StrategyGreedyForDuchies Strategy = "greedy-for-duchies"
	StrategyBigMoney         Strategy = "big-money"
	StrategyBigMoneySmithy   Strategy = "big-money-smithy"
	StrategyVillageSmithy    Strategy = "village-smithy"
)

var presets = map[Strategy]func() Agent{
	StrategyAlwaysBuyCopper: func() Agent {
		return NewPriority(cards.NameCopper)
	},
	StrategyGreedyForDuchies: func() Agent {
		return NewPriority(cards.NameDuchy, cards.NameCopper)
	},
	StrategyBigMoney: func() Agent {
		return NewPriority(cards.NameProvince, cards.NameGold, cards.NameSilver)
	},
	StrategyBigMoneySmithy: func() Agent {
		return NewBoundedPriority(
			Bound{Name: cards.NameProvince},
			Bound{Name: cards.NameGold},
			Bound{Name: cards.NameSmithy, Max: 1},
			Bound{Name: cards.NameSilver},
		).WithPlays(cards.NameSmithy)
	},
	StrategyVillageSmithy: func() Agent {
		return NewBoundedPriority(
			Bound{Name: cards.NameProvince},
			Bound{Name: cards.NameGold},
			Bound{Name: cards.NameSmithy, Max: 2},
			Bound{Name: cards.NameVillage, Max: 2},
			Bound{Name: cards.NameSilver},
		).WithPlays(cards.NameVillage, cards.NameSmithy)
	},
}

// New creates a fresh agent for the named strategy. Agents keep per-game
// state, so every seat needs its own.
func New(strategy string) (Agent, error) {
	factory, ok := presets[Strategy(strategy)]
	if !ok {
		return nil, fmt.Errorf("unknown strategy: %q", strategy)
	}
	return factory(), nil
}

// Strategies lists the preset names in sorted order.
func Strategies() []Strategy {
	out := make([]Strategy, 0, len(presets))
	for s := range presets {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// KingdomFor returns the action piles a strategy needs in the supply.
func KingdomFor(strategy Strategy) []cards.Name {
	switch strategy {
	case StrategyBigMoneySmithy:
		return []cards.Name{cards.NameSmithy}
	case StrategyVillageSmithy:
		return []cards.Name{cards.NameVillage, cards.NameSmithy}
	default:
		return nil
	}
}
