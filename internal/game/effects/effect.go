package effects

import (
	"fmt"
	"strings"
)

// Kind tags the variant held by an Effect.
type Kind int

const (
	KindNone Kind = iota
	KindSequence
	KindAddActions
	KindAddBuys
	KindAddCoins
	KindDrawCards
)

var kindNames = map[Kind]string{
	KindNone:       "NONE",
	KindSequence:   "SEQUENCE",
	KindAddActions: "ADD_ACTIONS",
	KindAddBuys:    "ADD_BUYS",
	KindAddCoins:   "ADD_COINS",
	KindDrawCards:  "DRAW_CARDS",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("KIND_%d", int(k))
}

// Effect is the data-described consequence of playing a card. It is a tagged
// variant: Kind selects which of Amount or Steps is meaningful. Effects are
// plain values so they can be compared, logged and serialized without a card.
type Effect struct {
	Kind   Kind
	Amount int
	Steps  []Effect
}

// None is the effect of cards that do nothing when played.
func None() Effect {
	return Effect{Kind: KindNone}
}

// Sequence runs each step in order.
func Sequence(steps ...Effect) Effect {
	cpy := make([]Effect, len(steps))
	copy(cpy, steps)
	return Effect{Kind: KindSequence, Steps: cpy}
}

// AddActions grants n more actions this turn.
func AddActions(n int) Effect {
	return Effect{Kind: KindAddActions, Amount: n}
}

// AddBuys grants n more buys this turn.
func AddBuys(n int) Effect {
	return Effect{Kind: KindAddBuys, Amount: n}
}

// AddCoins grants n coins to spend this turn.
func AddCoins(n int) Effect {
	return Effect{Kind: KindAddCoins, Amount: n}
}

// DrawCards draws n cards into the hand of the player resolving the effect.
func DrawCards(n int) Effect {
	return Effect{Kind: KindDrawCards, Amount: n}
}

// IsNone reports whether resolving the effect can have no consequence.
func (e Effect) IsNone() bool {
	switch e.Kind {
	case KindNone:
		return true
	case KindSequence:
		for _, step := range e.Steps {
			if !step.IsNone() {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Equal compares two effects structurally.
func (e Effect) Equal(other Effect) bool {
	if e.Kind != other.Kind {
		return false
	}
	if e.Kind != KindSequence {
		return e.Amount == other.Amount
	}
	if len(e.Steps) != len(other.Steps) {
		return false
	}
	for i := range e.Steps {
		if !e.Steps[i].Equal(other.Steps[i]) {
			return false
		}
	}
	return true
}

func (e Effect) String() string {
	switch e.Kind {
	case KindNone:
		return "None"
	case KindSequence:
		parts := make([]string, len(e.Steps))
		for i, step := range e.Steps {
			parts[i] = step.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindAddActions:
		return fmt.Sprintf("+%d %s", e.Amount, plural(e.Amount, "Action"))
	case KindAddBuys:
		return fmt.Sprintf("+%d %s", e.Amount, plural(e.Amount, "Buy"))
	case KindAddCoins:
		return fmt.Sprintf("+$%d", e.Amount)
	case KindDrawCards:
		return fmt.Sprintf("+%d %s", e.Amount, plural(e.Amount, "Card"))
	default:
		return e.Kind.String()
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
