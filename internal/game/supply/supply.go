// Package supply models the shared piles players buy and gain cards from.
package supply

import (
	"fmt"
	"strings"

	"github.com/kingdomforge/kingdom-server-go/internal/game/cards"
	"github.com/kingdomforge/kingdom-server-go/internal/game/pile"
	"github.com/kingdomforge/kingdom-server-go/internal/game/rules"
)

// SupplyPile is a named pile. The name and a prototype card are remembered so
// an emptied pile can still be identified.
type SupplyPile struct {
	name    cards.Name
	proto   cards.Card
	printed bool
	cards   *pile.Pile
}

// Name returns the remembered pile name.
func (sp *SupplyPile) Name() cards.Name {
	return sp.name
}

// Len returns the number of cards left.
func (sp *SupplyPile) Len() int {
	return sp.cards.Len()
}

// IsEmpty reports whether the pile has run out.
func (sp *SupplyPile) IsEmpty() bool {
	return sp.cards.IsEmpty()
}

// Top returns the next card to be taken.
func (sp *SupplyPile) Top() (cards.Card, bool) {
	return sp.cards.Peek()
}

// PileInfo is a snapshot of one supply pile.
type PileInfo struct {
	Name  cards.Name
	Cost  int
	Count int
}

// Supply is the ordered set of piles in a game.
type Supply struct {
	piles []*SupplyPile
	index map[cards.Name]*SupplyPile
}

// New creates an empty supply.
func New() *Supply {
	return &Supply{
		index: make(map[cards.Name]*SupplyPile),
	}
}

// Add creates a pile from cs, named after its first card.
func (s *Supply) Add(cs []cards.Card) {
	if len(cs) == 0 {
		rules.Violate("supply pile has a name", "cannot name an empty pile")
	}
	s.AddPile(cs[0].Name, cs)
}

// AddPile creates a pile with an explicit name. Adding to an existing name
// tops up that pile.
func (s *Supply) AddPile(name cards.Name, cs []cards.Card) {
	sp, ok := s.index[name]
	if ok {
		sp.cards.AddRange(cs)
	} else {
		sp = &SupplyPile{name: name, proto: cards.Card{Name: name}, cards: pile.From(cs)}
	}
	if !sp.printed && len(cs) > 0 {
		sp.proto = cs[0]
		sp.printed = true
	}
	if ok {
		return
	}
	s.piles = append(s.piles, sp)
	s.index[name] = sp
}

// BuyableCards lists, in pile order, the top card of every non-empty pile
// costing at most coins.
func (s *Supply) BuyableCards(coins int) []cards.Name {
	out := make([]cards.Name, 0, len(s.piles))
	for _, sp := range s.piles {
		if top, ok := sp.Top(); ok && top.CoinsCost <= coins {
			out = append(out, top.Name)
		}
	}
	return out
}

func (s *Supply) pileFor(name cards.Name) *SupplyPile {
	sp, ok := s.index[name]
	if !ok {
		rules.Violate("supply pile exists", "no %s pile in supply %s", name, s)
	}
	return sp
}

// TakeOne removes the top card of the named pile. It reports false when the
// pile has already run out.
func (s *Supply) TakeOne(name cards.Name) (cards.Card, bool) {
	taken := s.pileFor(name).cards.TakeUpToN(1)
	if len(taken) == 0 {
		return cards.Card{}, false
	}
	return taken[0], true
}

// TakeUpToN removes up to n cards from the named pile.
func (s *Supply) TakeUpToN(name cards.Name, n int) []cards.Card {
	return s.pileFor(name).cards.TakeUpToN(n)
}

// EmptySupplyPiles returns the names of piles that have run out.
func (s *Supply) EmptySupplyPiles() []cards.Name {
	var out []cards.Name
	for _, sp := range s.piles {
		if sp.IsEmpty() {
			out = append(out, sp.name)
		}
	}
	return out
}

// IsEmpty reports whether the named pile exists and has run out.
func (s *Supply) IsEmpty(name cards.Name) bool {
	sp, ok := s.index[name]
	return ok && sp.IsEmpty()
}

// Count returns the cards left in the named pile, 0 for unknown piles.
func (s *Supply) Count(name cards.Name) int {
	if sp, ok := s.index[name]; ok {
		return sp.Len()
	}
	return 0
}

// Has reports whether a pile with that name was ever added.
func (s *Supply) Has(name cards.Name) bool {
	_, ok := s.index[name]
	return ok
}

// Piles returns a snapshot of every pile in order.
func (s *Supply) Piles() []PileInfo {
	out := make([]PileInfo, len(s.piles))
	for i, sp := range s.piles {
		out[i] = PileInfo{Name: sp.name, Cost: sp.proto.CoinsCost, Count: sp.Len()}
	}
	return out
}

// HighestVictoryPile names the Victory pile with the highest VP value; the
// first one added wins ties. It reports false when there is no Victory pile.
func (s *Supply) HighestVictoryPile() (cards.Name, bool) {
	var best *SupplyPile
	for _, sp := range s.piles {
		if !sp.proto.IsType(cards.TypeVictory) {
			continue
		}
		if best == nil || sp.proto.VPValue > best.proto.VPValue {
			best = sp
		}
	}
	if best == nil {
		return "", false
	}
	return best.name, true
}

func (s *Supply) String() string {
	parts := make([]string, len(s.piles))
	for i, sp := range s.piles {
		parts[i] = fmt.Sprintf("%s x%d", sp.name, sp.Len())
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
