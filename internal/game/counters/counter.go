package counters

import (
	"fmt"
	"strings"
)

// PlayerCounters is the ephemeral action/buy/coin budget of the player whose
// turn it is. A fresh value is created at the start of every turn and passed
// by pointer to every effect resolution; nothing else holds it.
type PlayerCounters struct {
	Actions int
	Buys    int
	Coins   int
}

// NewTurn returns the counters every turn starts with.
func NewTurn() *PlayerCounters {
	return &PlayerCounters{
		Actions: 1,
		Buys:    1,
		Coins:   0,
	}
}

// AddActions adds n actions.
func (pc *PlayerCounters) AddActions(n int) {
	pc.Actions += n
}

// AddBuys adds n buys.
func (pc *PlayerCounters) AddBuys(n int) {
	pc.Buys += n
}

// AddCoins adds n coins.
func (pc *PlayerCounters) AddCoins(n int) {
	pc.Coins += n
}

// Add adds n to the counter of the given type.
func (pc *PlayerCounters) Add(ct CounterType, n int) {
	switch ct {
	case CounterTypeActions:
		pc.AddActions(n)
	case CounterTypeBuys:
		pc.AddBuys(n)
	case CounterTypeCoins:
		pc.AddCoins(n)
	}
}

// Get returns the current value of the given counter type.
func (pc *PlayerCounters) Get(ct CounterType) int {
	switch ct {
	case CounterTypeActions:
		return pc.Actions
	case CounterTypeBuys:
		return pc.Buys
	case CounterTypeCoins:
		return pc.Coins
	default:
		return 0
	}
}

// SpendAction consumes one action. Returns false if none are left.
func (pc *PlayerCounters) SpendAction() bool {
	if pc.Actions <= 0 {
		return false
	}
	pc.Actions--
	return true
}

// SpendBuy consumes one buy and the given number of coins.
// Returns false without changing anything if either budget is short.
func (pc *PlayerCounters) SpendBuy(cost int) bool {
	if pc.Buys <= 0 || pc.Coins < cost {
		return false
	}
	pc.Buys--
	pc.Coins -= cost
	return true
}

// Copy returns an independent copy, used when counters are attached to events.
func (pc *PlayerCounters) Copy() PlayerCounters {
	return *pc
}

// String formats the counters as "[1A 1B 0C]".
func (pc PlayerCounters) String() string {
	parts := make([]string, 0, 3)
	for _, ct := range AllCounterTypes() {
		parts = append(parts, fmt.Sprintf("%d%s", pc.Get(ct), ct.Abbrev()))
	}
	return "[" + strings.Join(parts, " ") + "]"
}
