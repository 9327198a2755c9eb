package pile

import (
	"fmt"
	"strings"

	"github.com/kingdomforge/kingdom-server-go/internal/game/cards"
)

// DrawResult is the outcome of TakeN. Missing counts the cards that could
// not be supplied; a shortfall is an expected condition, not an error.
type DrawResult struct {
	Cards   []cards.Card
	Missing int
}

// Complete reports whether every requested card was taken.
func (r DrawResult) Complete() bool {
	return r.Missing == 0
}

// Pile is an ordered stack of cards. The tail (most recently added) is the
// next card taken.
type Pile struct {
	cards []cards.Card
}

// New creates an empty pile.
func New() *Pile {
	return &Pile{
		cards: make([]cards.Card, 0, 16),
	}
}

// From creates a pile holding the given cards; the last card is on top.
func From(cs []cards.Card) *Pile {
	p := New()
	p.AddRange(cs)
	return p
}

// TakeUpToN removes and returns min(n, Len()) cards from the top, in pile order.
func (p *Pile) TakeUpToN(n int) []cards.Card {
	if n <= 0 {
		return []cards.Card{}
	}
	idx := len(p.cards) - n
	if idx < 0 {
		idx = 0
	}
	taken := make([]cards.Card, len(p.cards)-idx)
	copy(taken, p.cards[idx:])
	p.cards = p.cards[:idx]
	return taken
}

// TakeN removes up to n cards and reports how many were missing.
func (p *Pile) TakeN(n int) DrawResult {
	taken := p.TakeUpToN(n)
	missing := 0
	if n > len(taken) {
		missing = n - len(taken)
	}
	return DrawResult{Cards: taken, Missing: missing}
}

// Add puts a card on top.
func (p *Pile) Add(card cards.Card) {
	p.cards = append(p.cards, card)
}

// AddRange puts cards on top in the order given; the last one becomes the top.
// Nothing is shuffled.
func (p *Pile) AddRange(cs []cards.Card) {
	p.cards = append(p.cards, cs...)
}

// Peek returns the top card without removing it.
func (p *Pile) Peek() (cards.Card, bool) {
	if len(p.cards) == 0 {
		return cards.Card{}, false
	}
	return p.cards[len(p.cards)-1], true
}

// TakeAll empties the pile and returns its cards in pile order.
func (p *Pile) TakeAll() []cards.Card {
	taken := p.cards
	p.cards = make([]cards.Card, 0, 16)
	return taken
}

// Remove deletes the topmost card with the given name.
func (p *Pile) Remove(name cards.Name) (cards.Card, bool) {
	for idx := len(p.cards) - 1; idx >= 0; idx-- {
		if p.cards[idx].Name == name {
			card := p.cards[idx]
			p.cards = append(p.cards[:idx], p.cards[idx+1:]...)
			return card, true
		}
	}
	return cards.Card{}, false
}

// Cards returns a copy of the pile contents (top card last).
func (p *Pile) Cards() []cards.Card {
	cpy := make([]cards.Card, len(p.cards))
	copy(cpy, p.cards)
	return cpy
}

// Len returns the number of cards in the pile.
func (p *Pile) Len() int {
	return len(p.cards)
}

// IsEmpty returns whether the pile is empty.
func (p *Pile) IsEmpty() bool {
	return len(p.cards) == 0
}

// String lists runs of equal names, e.g. "[3 Copper, 2 Estate]".
func (p *Pile) String() string {
	runs := cards.Runs(p.cards)
	parts := make([]string, len(runs))
	for i, run := range runs {
		parts[i] = fmt.Sprintf("%d %s", run.Count, run.Name)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
