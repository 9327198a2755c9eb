package zones

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingdomforge/kingdom-server-go/internal/game/cards"
	"github.com/kingdomforge/kingdom-server-go/internal/game/counters"
	"github.com/kingdomforge/kingdom-server-go/internal/game/effects"
	"github.com/kingdomforge/kingdom-server-go/internal/game/rules"
	"github.com/kingdomforge/kingdom-server-go/internal/game/shuffle"
)

func numbered(names ...string) []cards.Card {
	out := make([]cards.Card, len(names))
	for i, n := range names {
		out[i] = cards.Card{Name: cards.Name(n)}
	}
	return out
}

func names(ns ...string) []cards.Name {
	out := make([]cards.Name, len(ns))
	for i, n := range ns {
		out[i] = cards.Name(n)
	}
	return out
}

func multiset(cs []cards.Card) map[cards.Name]int {
	out := make(map[cards.Name]int)
	for _, c := range cs {
		out[c.Name]++
	}
	return out
}

func TestDrawnCardsGoIntoHand(t *testing.T) {
	pa := FromInitialCards("P1", numbered("1", "2", "3", "4", "5", "6", "7", "8", "9", "10"), nil, nil)

	pa.DrawHand()

	assert.Equal(t, names("6", "7", "8", "9", "10"), pa.InspectHand())
	assert.Equal(t, 5, pa.Counts().Deck)
}

func TestDrawHandFromTenCoppers(t *testing.T) {
	coppers := cards.Print(cards.Copper, 10)
	pa := FromInitialCards("P1", coppers, nil, nil)

	pa.DrawHand()

	hand := pa.HandCards()
	require.Len(t, hand, 5)
	for _, c := range hand {
		assert.Equal(t, cards.NameCopper, c.Name)
	}
	assert.Equal(t, 5, pa.Counts().Deck)
}

func TestDiscardedCardsLeaveHand(t *testing.T) {
	pa := FromInitialCards("P1", numbered("1", "2", "3", "4", "5", "6", "7", "8", "9", "10"), nil, nil)
	pa.DrawHand()

	pa.DiscardHand()
	assert.Empty(t, pa.InspectHand())

	pa.DiscardHand()
	assert.Empty(t, pa.InspectHand())
	assert.Equal(t, 5, pa.Counts().Discard)
}

func TestDiscardedCardsAreRecycledIntoHand(t *testing.T) {
	log := rules.NewBufferLog()
	pa := FromInitialCards("P1", numbered("1", "2", "3", "4", "5", "6", "7"), shuffle.NoShuffle{}, log)

	pa.DrawHand()
	pa.DiscardHand()
	pa.DrawHand()

	assert.Equal(t, names("1", "2", "5", "6", "7"), pa.InspectHand())
	assert.Len(t, log.OfType(rules.EventShuffle), 1)
	draws := log.OfType(rules.EventDrawCards)
	require.Len(t, draws, 2)
	assert.Equal(t, 5, draws[1].Amount)
	assert.Equal(t, "P1", draws[1].PlayerID)
}

func TestStartingDeckReshuffleYieldsFullHand(t *testing.T) {
	start := append(cards.Print(cards.Copper, 5), cards.Print(cards.Estate, 2)...)
	pa := FromInitialCards("P1", start, shuffle.NewRandom(7), nil)

	pa.DrawHand()
	pa.DiscardHand()
	pa.DrawHand()

	assert.Len(t, pa.InspectHand(), 5)
	assert.Equal(t, 7, pa.Counts().Total())
}

func TestDrawMoreThanOwned(t *testing.T) {
	pa := FromInitialCards("P1", numbered("1", "2", "3"), nil, nil)

	pa.DrawHand()

	assert.Equal(t, names("1", "2", "3"), pa.InspectHand())
	assert.Equal(t, Counts{Hand: 3}, pa.Counts())
}

func TestDrawUnderScarcityDrainsDeckAndDiscard(t *testing.T) {
	pa := FromInitialCards("P1", numbered("a", "b"), nil, nil)
	pa.GainAllToDiscard(numbered("c", "d"))

	pa.DrawN(10)

	assert.Len(t, pa.InspectHand(), 4)
	assert.Equal(t, 0, pa.Counts().Deck)
	assert.Equal(t, 0, pa.Counts().Discard)
}

func TestDrawUnderAbundanceIsExact(t *testing.T) {
	for split := 0; split <= 6; split++ {
		deck := make([]cards.Card, split)
		for i := range deck {
			deck[i] = cards.Copper()
		}
		pa := FromInitialCards("P1", deck, shuffle.NewRandom(uint64(split)), nil)
		pa.GainAllToDiscard(cards.Print(cards.Estate, 6-split))

		pa.DrawN(6)

		assert.Len(t, pa.InspectHand(), 6, "deck holds %d", split)
	}
}

func TestReshuffleHappensOncePerDraw(t *testing.T) {
	log := rules.NewBufferLog()
	pa := FromInitialCards("P1", numbered("a"), nil, log)
	pa.GainAllToDiscard(numbered("b", "c"))

	pa.DrawN(20)

	assert.Len(t, log.OfType(rules.EventShuffle), 1)
	assert.Len(t, pa.InspectHand(), 3)
}

func TestDrawWithEmptyDiscardDoesNotShuffle(t *testing.T) {
	log := rules.NewBufferLog()
	calls := 0
	counting := shuffle.Func(func(cs []cards.Card) []cards.Card {
		calls++
		return cs
	})
	pa := FromInitialCards("P1", numbered("a"), counting, log)

	pa.DrawN(3)

	assert.Equal(t, 0, calls)
	assert.Empty(t, log.OfType(rules.EventShuffle))
}

func TestPileConservation(t *testing.T) {
	start := append(cards.Print(cards.Copper, 7), cards.Print(cards.Estate, 3)...)
	pa := FromInitialCards("P1", start, shuffle.NewRandom(99), nil)
	owned := append([]cards.Card{}, start...)
	pc := counters.NewTurn()

	for turn := 0; turn < 12; turn++ {
		pa.DrawHand()
		for _, name := range pa.PlayableOfType(cards.TypeTreasure) {
			for pa.handIndex(name) >= 0 {
				pa.PlayCard(name, pc)
			}
		}
		gained := cards.Silver()
		pa.GainToDiscard(gained)
		owned = append(owned, gained)

		assert.Equal(t, len(owned), pa.Counts().Total(), "turn %d", turn)

		pa.DiscardInPlay()
		pa.DiscardHand()
	}

	assert.Equal(t, multiset(owned), multiset(pa.TakeAllCards()))
	assert.Equal(t, 0, pa.Counts().Total())
}

func TestPlayCardResolvesSequence(t *testing.T) {
	village := cards.Card{
		Name:   "Village",
		Types:  cards.TypesOf(cards.TypeAction),
		Effect: effects.Sequence(effects.AddActions(2), effects.DrawCards(1)),
	}
	pa := FromInitialCards("P1", append(numbered("x", "y"), village), nil, nil)
	pa.DrawN(1)
	before := len(pa.InspectHand())
	pc := counters.NewTurn()

	played := pa.PlayCard("Village", pc)

	assert.Equal(t, cards.Name("Village"), played.Name)
	assert.Equal(t, 3, pc.Actions)
	assert.Equal(t, 1, pc.Buys)
	assert.Equal(t, 0, pc.Coins)
	assert.Equal(t, before, len(pa.InspectHand()), "one card left, one card drawn")
	assert.Equal(t, 1, pa.Counts().InPlay)
}

func TestPlayCardAddsToCounters(t *testing.T) {
	pa := FromInitialCards("P1", []cards.Card{cards.Silver(), cards.Copper(), cards.Smithy()}, nil, nil)
	pa.GainAllToDiscard(cards.Print(cards.Estate, 3))
	pa.DrawN(3)
	pc := counters.NewTurn()

	pa.PlayCard(cards.NameSmithy, pc)
	assert.Len(t, pa.InspectHand(), 5)
	pa.PlayCard(cards.NameSilver, pc)
	pa.PlayCard(cards.NameCopper, pc)

	assert.Equal(t, 3, pc.Coins)
	assert.Equal(t, []cards.Name{cards.NameEstate}, pa.PlayableOfType(cards.TypeVictory))
	assert.Equal(t, 3, pa.Counts().InPlay)
}

func TestPlayMissingCardIsContractViolation(t *testing.T) {
	pa := FromInitialCards("P1", cards.Print(cards.Copper, 5), nil, nil)
	pa.DrawHand()

	defer func() {
		cv, ok := rules.AsContractViolation(recover())
		require.True(t, ok)
		assert.Equal(t, "played card is in hand", cv.Invariant)
		assert.Len(t, pa.InspectHand(), 5)
	}()
	pa.PlayCard(cards.NameGold, counters.NewTurn())
}

func TestSnapshotListsZones(t *testing.T) {
	pa := FromInitialCards("P1", numbered("a", "b", "c"), nil, nil)
	pa.DrawN(1)
	pa.GainToDiscard(cards.Card{Name: "d"})

	snap := pa.Snapshot()
	assert.Equal(t, "P1", snap.Owner)
	assert.Equal(t, names("a", "b"), snap.Deck)
	assert.Equal(t, names("c"), snap.Hand)
	assert.Empty(t, snap.InPlay)
	assert.Equal(t, names("d"), snap.Discard)
}
