package counters

// CounterType names one of the per-turn budgets a player spends during a turn.
type CounterType string

const (
	CounterTypeActions CounterType = "actions"
	CounterTypeBuys    CounterType = "buys"
	CounterTypeCoins   CounterType = "coins"
)

// AllCounterTypes lists the counter types in display order.
func AllCounterTypes() []CounterType {
	return []CounterType{CounterTypeActions, CounterTypeBuys, CounterTypeCoins}
}

// Abbrev returns the single-letter suffix used when formatting counters.
func (ct CounterType) Abbrev() string {
	switch ct {
	case CounterTypeActions:
		return "A"
	case CounterTypeBuys:
		return "B"
	case CounterTypeCoins:
		return "C"
	default:
		return "?"
	}
}
