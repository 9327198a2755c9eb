package effects

// EffectBuilder provides a fluent API for composing card effects.
// Every call appends one step; Build collapses the result to the simplest
// equivalent effect.
type EffectBuilder struct {
	steps []Effect
}

// NewEffectBuilder creates an empty builder.
func NewEffectBuilder() *EffectBuilder {
	return &EffectBuilder{steps: []Effect{}}
}

// Actions appends +n actions.
func (b *EffectBuilder) Actions(n int) *EffectBuilder {
	b.steps = append(b.steps, AddActions(n))
	return b
}

// Buys appends +n buys.
func (b *EffectBuilder) Buys(n int) *EffectBuilder {
	b.steps = append(b.steps, AddBuys(n))
	return b
}

// Coins appends +n coins.
func (b *EffectBuilder) Coins(n int) *EffectBuilder {
	b.steps = append(b.steps, AddCoins(n))
	return b
}

// Cards appends +n cards.
func (b *EffectBuilder) Cards(n int) *EffectBuilder {
	b.steps = append(b.steps, DrawCards(n))
	return b
}

// Then appends an arbitrary effect, including nested sequences.
func (b *EffectBuilder) Then(effect Effect) *EffectBuilder {
	b.steps = append(b.steps, effect)
	return b
}

// Build returns None for no steps, the step itself for one, and a Sequence otherwise.
func (b *EffectBuilder) Build() Effect {
	switch len(b.steps) {
	case 0:
		return None()
	case 1:
		return b.steps[0]
	default:
		return Sequence(b.steps...)
	}
}
