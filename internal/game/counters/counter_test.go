package counters

import "testing"

func TestNewTurn(t *testing.T) {
	pc := NewTurn()
	if pc.Actions != 1 || pc.Buys != 1 || pc.Coins != 0 {
		t.Errorf("Expected [1A 1B 0C], got %s", pc)
	}
}

func TestPlayerCounters_Add(t *testing.T) {
	pc := NewTurn()

	pc.AddActions(2)
	pc.AddBuys(1)
	pc.AddCoins(3)
	if pc.Actions != 3 {
		t.Errorf("Expected 3 actions, got %d", pc.Actions)
	}
	if pc.Buys != 2 {
		t.Errorf("Expected 2 buys, got %d", pc.Buys)
	}
	if pc.Coins != 3 {
		t.Errorf("Expected 3 coins, got %d", pc.Coins)
	}

	pc.Add(CounterTypeCoins, 2)
	if pc.Get(CounterTypeCoins) != 5 {
		t.Errorf("Expected 5 coins, got %d", pc.Get(CounterTypeCoins))
	}
}

func TestPlayerCounters_Spend(t *testing.T) {
	pc := NewTurn()
	pc.AddCoins(4)

	if !pc.SpendAction() {
		t.Error("Expected to spend the starting action")
	}
	if pc.SpendAction() {
		t.Error("Expected no actions left")
	}

	if pc.SpendBuy(5) {
		t.Error("Expected buy costing 5 to fail with 4 coins")
	}
	if pc.Buys != 1 || pc.Coins != 4 {
		t.Errorf("Failed buy must not change counters, got %s", pc)
	}
	if !pc.SpendBuy(3) {
		t.Error("Expected buy costing 3 to succeed")
	}
	if pc.Buys != 0 || pc.Coins != 1 {
		t.Errorf("Expected [0A 0B 1C], got %s", pc)
	}
}

func TestPlayerCounters_String(t *testing.T) {
	pc := PlayerCounters{Actions: 3, Buys: 2, Coins: 7}
	if pc.String() != "[3A 2B 7C]" {
		t.Errorf("Unexpected format %q", pc.String())
	}
}
