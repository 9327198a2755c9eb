package effects

import (
	"fmt"

	"github.com/kingdomforge/kingdom-server-go/internal/game/counters"
)

// Drawer is the part of a player's play area that draw effects act on.
type Drawer interface {
	DrawN(n int)
}

// Resolve applies an effect to the turn's counters and, for draw effects, to
// the drawer. Sequences resolve every step in order; a later step sees the
// state left by earlier ones and nothing is rolled back.
func Resolve(effect Effect, pc *counters.PlayerCounters, drawer Drawer) {
	switch effect.Kind {
	case KindNone:
	case KindSequence:
		for _, step := range effect.Steps {
			Resolve(step, pc, drawer)
		}
	case KindAddActions:
		pc.AddActions(effect.Amount)
	case KindAddBuys:
		pc.AddBuys(effect.Amount)
	case KindAddCoins:
		pc.AddCoins(effect.Amount)
	case KindDrawCards:
		if drawer == nil {
			panic(fmt.Sprintf("effects: %s resolved without a play area to draw into", effect))
		}
		drawer.DrawN(effect.Amount)
	default:
		panic(fmt.Sprintf("effects: unknown effect kind %s", effect.Kind))
	}
}
