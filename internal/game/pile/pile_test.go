package pile

import (
	"testing"

	"github.com/kingdomforge/kingdom-server-go/internal/game/cards"
)

func named(names ...cards.Name) []cards.Card {
	out := make([]cards.Card, len(names))
	for i, n := range names {
		out[i] = cards.Card{Name: n}
	}
	return out
}

func TestPileTakeFromTop(t *testing.T) {
	p := From(named("a", "b", "c", "d"))

	taken := p.TakeUpToN(2)
	if len(taken) != 2 || taken[0].Name != "c" || taken[1].Name != "d" {
		t.Fatalf("expected [c d], got %v", cards.Names(taken))
	}
	if p.Len() != 2 {
		t.Fatalf("expected 2 cards left, got %d", p.Len())
	}
	top, ok := p.Peek()
	if !ok || top.Name != "b" {
		t.Fatalf("expected b on top, got %v", top)
	}
}

func TestPileTakeUpToNUnderSupplied(t *testing.T) {
	p := From(named("a", "b", "c"))

	taken := p.TakeUpToN(5)
	if len(taken) != 3 {
		t.Fatalf("expected all 3 cards, got %d", len(taken))
	}
	if !p.IsEmpty() {
		t.Fatalf("expected pile to be empty")
	}
}

func TestPileTakeNPartial(t *testing.T) {
	p := From(named("a", "b", "c"))

	result := p.TakeN(5)
	if result.Complete() {
		t.Fatalf("expected partial result")
	}
	if result.Missing != 2 {
		t.Fatalf("expected 2 missing, got %d", result.Missing)
	}
	if got := cards.Names(result.Cards); len(got) != 3 || got[0] != "a" || got[2] != "c" {
		t.Fatalf("expected [a b c], got %v", got)
	}
}

func TestPileTakeNComplete(t *testing.T) {
	p := From(named("a", "b", "c"))

	result := p.TakeN(3)
	if !result.Complete() || result.Missing != 0 {
		t.Fatalf("expected complete result, got missing %d", result.Missing)
	}
}

func TestPileTakeZero(t *testing.T) {
	p := From(named("a"))

	result := p.TakeN(0)
	if !result.Complete() || len(result.Cards) != 0 {
		t.Fatalf("expected empty complete result, got %+v", result)
	}
	if p.Len() != 1 {
		t.Fatalf("expected pile untouched")
	}
}

func TestPileTakeFromEmpty(t *testing.T) {
	p := New()

	result := p.TakeN(4)
	if len(result.Cards) != 0 || result.Missing != 4 {
		t.Fatalf("expected fully missing result, got %+v", result)
	}
	if _, ok := p.Peek(); ok {
		t.Fatalf("expected no top card on empty pile")
	}
}

func TestPileAddRangeKeepsOrder(t *testing.T) {
	p := New()
	p.AddRange(named("a", "b"))
	p.Add(cards.Card{Name: "c"})

	if got := cards.Names(p.Cards()); len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("expected [a b c], got %v", got)
	}
}

func TestPileRemove(t *testing.T) {
	p := From(named("a", "b", "a", "c"))

	card, ok := p.Remove("a")
	if !ok || card.Name != "a" {
		t.Fatalf("expected to remove a")
	}
	if got := cards.Names(p.Cards()); len(got) != 3 || got[1] != "b" || got[2] != "c" {
		t.Fatalf("expected topmost a removed, got %v", got)
	}
	if _, ok := p.Remove("z"); ok {
		t.Fatalf("expected missing card not to be removed")
	}
}

func TestPileTakeAllAndString(t *testing.T) {
	p := From(named(cards.NameCopper, cards.NameCopper, cards.NameEstate))
	if p.String() != "[2 Copper, 1 Estate]" {
		t.Fatalf("unexpected string %q", p.String())
	}

	all := p.TakeAll()
	if len(all) != 3 || !p.IsEmpty() {
		t.Fatalf("expected 3 cards drained, pile empty")
	}
}
