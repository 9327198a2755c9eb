// Package shuffle provides the reshuffle strategies a play area uses when its
// deck runs out.
package shuffle

import (
	"math/rand/v2"

	"github.com/kingdomforge/kingdom-server-go/internal/game/cards"
	"github.com/kingdomforge/kingdom-server-go/internal/game/rules"
)

// Shuffler consumes a collection of cards and returns a permutation of it.
type Shuffler interface {
	Shuffle(cs []cards.Card) []cards.Card
}

// NoShuffle returns cards in the order given.
type NoShuffle struct{}

// Shuffle implements Shuffler.
func (NoShuffle) Shuffle(cs []cards.Card) []cards.Card {
	return cs
}

// Random is a reproducible Fisher-Yates shuffler.
type Random struct {
	rng *rand.Rand
}

// NewRandom creates a shuffler seeded with seed. Two shufflers with the same
// seed produce the same permutations in the same order.
func NewRandom(seed uint64) *Random {
	return &Random{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Shuffle implements Shuffler.
func (r *Random) Shuffle(cs []cards.Card) []cards.Card {
	r.rng.Shuffle(len(cs), func(i, j int) {
		cs[i], cs[j] = cs[j], cs[i]
	})
	return cs
}

// Predestined ignores its input and hands out pre-scripted cards, as many as
// it is given. It is meant for tests that need a known deck order.
type Predestined struct {
	script []cards.Card
}

// NewPredestined creates a shuffler that will yield script in order.
func NewPredestined(script []cards.Card) *Predestined {
	cpy := make([]cards.Card, len(script))
	copy(cpy, script)
	return &Predestined{script: cpy}
}

// Shuffle implements Shuffler.
func (p *Predestined) Shuffle(cs []cards.Card) []cards.Card {
	if len(cs) > len(p.script) {
		rules.Violate("predestined script long enough", "need %d cards, %d scripted", len(cs), len(p.script))
	}
	out := p.script[:len(cs):len(cs)]
	p.script = p.script[len(cs):]
	return out
}

// Remaining returns how many scripted cards are left.
func (p *Predestined) Remaining() int {
	return len(p.script)
}

// Func adapts a function to Shuffler.
type Func func(cs []cards.Card) []cards.Card

// Shuffle implements Shuffler.
func (f Func) Shuffle(cs []cards.Card) []cards.Card {
	return f(cs)
}
