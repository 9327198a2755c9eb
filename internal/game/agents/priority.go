package agents

import "github.com/kingdomforge/kingdom-server-go/internal/game/cards"

// Priority buys the first card of its list that is on offer, and plays action
// cards in the order of its play list.
type Priority struct {
	buys  []cards.Name
	plays []cards.Name
}

// NewPriority creates a priority agent with no action preferences.
func NewPriority(buys ...cards.Name) *Priority {
	return &Priority{buys: buys}
}

// WithPlays sets the action-card preference order.
func (p *Priority) WithPlays(plays ...cards.Name) *Priority {
	p.plays = plays
	return p
}

// ActionPhase implements Agent.
func (p *Priority) ActionPhase(playable []cards.Name) PlayChoice {
	if name, ok := firstOffered(p.plays, playable); ok {
		return Play(name)
	}
	return NoPlay()
}

// BuyPhase implements Agent.
func (p *Priority) BuyPhase(buyable []cards.Name) BuyChoice {
	if name, ok := firstOffered(p.buys, buyable); ok {
		return Buy(name)
	}
	return NoBuy()
}

// Bound caps how many copies of a card an agent buys. Max 0 means no cap.
type Bound struct {
	Name cards.Name
	Max  int
}

// BoundedPriority is a priority agent that stops buying a card once it has
// bought Max copies of it.
type BoundedPriority struct {
	bounds []Bound
	bought map[cards.Name]int
	plays  []cards.Name
}

// NewBoundedPriority creates a bounded priority agent.
func NewBoundedPriority(bounds ...Bound) *BoundedPriority {
	return &BoundedPriority{
		bounds: bounds,
		bought: make(map[cards.Name]int),
	}
}

// WithPlays sets the action-card preference order.
func (b *BoundedPriority) WithPlays(plays ...cards.Name) *BoundedPriority {
	b.plays = plays
	return b
}

// ActionPhase implements Agent.
func (b *BoundedPriority) ActionPhase(playable []cards.Name) PlayChoice {
	if name, ok := firstOffered(b.plays, playable); ok {
		return Play(name)
	}
	return NoPlay()
}

// BuyPhase implements Agent. A returned Buy is counted against the bound.
func (b *BoundedPriority) BuyPhase(buyable []cards.Name) BuyChoice {
	for _, bound := range b.bounds {
		if bound.Max > 0 && b.bought[bound.Name] >= bound.Max {
			continue
		}
		if contains(buyable, bound.Name) {
			b.bought[bound.Name]++
			return Buy(bound.Name)
		}
	}
	return NoBuy()
}

// Bought returns how many copies of name the agent has chosen to buy.
func (b *BoundedPriority) Bought(name cards.Name) int {
	return b.bought[name]
}
