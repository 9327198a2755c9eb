package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/kingdomforge/kingdom-server-go/internal/game/agents"
	"github.com/kingdomforge/kingdom-server-go/internal/game/cards"
	"github.com/kingdomforge/kingdom-server-go/internal/game/rules"
	"github.com/kingdomforge/kingdom-server-go/internal/game/shuffle"
)

// scriptedAgent returns fixed choices regardless of what is offered.
type scriptedAgent struct {
	play agents.PlayChoice
	buy  agents.BuyChoice
}

func (a scriptedAgent) ActionPhase([]cards.Name) agents.PlayChoice { return a.play }
func (a scriptedAgent) BuyPhase([]cards.Name) agents.BuyChoice     { return a.buy }

func boughtCards(log *rules.BufferLog, player string) []cards.Name {
	var out []cards.Name
	for _, evt := range log.OfType(rules.EventCardBoughtGained) {
		if evt.PlayerID == player {
			out = append(out, evt.Card)
		}
	}
	return out
}

func TestGameSinglePlayerBuysCopper(t *testing.T) {
	log := rules.NewBufferLog()
	g := New(WithLog(log), WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, g.AddPlayer("Player 1", agents.NewPriority(cards.NameCopper), shuffle.NoShuffle{}))
	g.PopulateSupply(cards.Copper, 10)
	g.PopulateSupply(cards.Estate, 3)

	g.DealStartingHands()
	assert.Equal(t, 3, g.Supply().Count(cards.NameCopper))
	assert.Equal(t, 0, g.Supply().Count(cards.NameEstate))

	g.PlayOneRound()

	assert.Equal(t, 1, g.Round())
	assert.Equal(t, []cards.Name{cards.NameCopper}, boughtCards(log, "Player 1"))
	assert.Equal(t, 2, g.Supply().Count(cards.NameCopper))

	area, ok := g.PlayArea("Player 1")
	require.True(t, ok)
	assert.Equal(t, 11, area.Counts().Total())
	assert.Len(t, area.InspectHand(), 5)

	played := log.OfType(rules.EventCardPlayed)
	require.Len(t, played, 2, "two coppers in the first hand")
	assert.Equal(t, 1, played[0].Counters.Coins)
	assert.Equal(t, 2, played[1].Counters.Coins)
	assert.Equal(t, 1, played[1].Round)
}

func TestGameGreedyForDuchiesOverFiveRounds(t *testing.T) {
	log := rules.NewBufferLog()
	g := New(WithLog(log))
	gfd, err := agents.New(string(agents.StrategyGreedyForDuchies))
	require.NoError(t, err)
	require.NoError(t, g.AddPlayer("Player 1", gfd, shuffle.NoShuffle{}))
	g.PopulateSupply(cards.Copper, 10)
	g.PopulateSupply(cards.Estate, 3)
	g.PopulateSupply(cards.Duchy, 3)

	ending, ok := g.EndingPile()
	require.True(t, ok)
	assert.Equal(t, cards.NameDuchy, ending)

	g.DealStartingHands()
	for i := 0; i < 5; i++ {
		assert.False(t, g.PlayOneRound(), "round %d", i+1)
	}

	assert.Equal(t, []cards.Name{
		cards.NameCopper,
		cards.NameDuchy,
		cards.NameDuchy,
		cards.NameCopper,
		cards.NameCopper,
	}, boughtCards(log, "Player 1"))
	assert.Equal(t, 1, g.Supply().Count(cards.NameDuchy))
	assert.Equal(t, 0, g.Supply().Count(cards.NameCopper))
	assert.Len(t, log.OfType(rules.EventShuffle), 3)
}

func TestGameEndsWhenEndingPileEmpties(t *testing.T) {
	log := rules.NewBufferLog()
	g := New(WithLog(log))
	require.NoError(t, g.AddPlayer("P1", agents.NewPriority(cards.NameDuchy), nil))
	g.PopulateSupply(cards.Duchy, 3)
	area, _ := g.PlayArea("P1")
	area.GainAllToDiscard(cards.Print(cards.Gold, 10))

	assert.False(t, g.PlayOneRound())
	assert.False(t, g.PlayOneRound())
	assert.True(t, g.PlayOneRound())

	assert.Equal(t, 3, g.Round())
	assert.Equal(t, []cards.Name{cards.NameDuchy}, g.Supply().EmptySupplyPiles())
	assert.True(t, g.HasEnded())
	assert.Equal(t, GameStateEnded, g.State())

	ended := log.OfType(rules.EventGameEnded)
	require.Len(t, ended, 1)
	assert.Equal(t, "Duchy pile empty", ended[0].Description)

	assert.True(t, g.PlayOneRound(), "an ended game stays ended")
	assert.Equal(t, 3, g.Round())
}

func TestGameRoundLimitIsCheckedAfterEveryTurn(t *testing.T) {
	log := rules.NewBufferLog()
	g := New(WithLog(log), WithMaxTurns(3))
	require.NoError(t, g.AddPlayer("P1", agents.NewPriority(cards.NameCopper), shuffle.NewRandom(1)))
	require.NoError(t, g.AddPlayer("P2", agents.NewPriority(cards.NameCopper), shuffle.NewRandom(2)))
	g.PopulateBasicKingdom()

	results := g.PlayToEnd()

	assert.Equal(t, 3, g.Round())
	assert.Len(t, boughtCards(log, "P1"), 3)
	assert.Len(t, boughtCards(log, "P2"), 2, "the last round stops after the first player")

	p1, ok := results.ByName("P1")
	require.True(t, ok)
	assert.Equal(t, []cards.Run{{Name: cards.NameCopper, Count: 3}}, p1.Purchases)
	assert.Equal(t, 3, p1.Score)
	assert.Len(t, p1.Cards, 13)
	assert.Equal(t, "round limit 3 reached", log.OfType(rules.EventGameEnded)[0].Description)
}

func TestGameActionPhasePlaysOfferedActions(t *testing.T) {
	log := rules.NewBufferLog()
	g := New(WithLog(log))
	agent := agents.NewPriority(cards.NameSilver).WithPlays(cards.NameSmithy)
	require.NoError(t, g.AddPlayer("P1", agent, shuffle.NoShuffle{}))
	g.PopulateSupply(cards.Silver, 10)

	area, _ := g.PlayArea("P1")
	area.GainAllToDiscard(cards.Print(cards.Estate, 3))
	area.GainAllToDiscard(cards.Print(cards.Copper, 4))
	area.GainToDiscard(cards.Smithy())
	area.GainAllToDiscard(cards.Print(cards.Copper, 2))

	g.PlayOneRound()

	played := log.OfType(rules.EventCardPlayed)
	require.Len(t, played, 7)
	assert.Equal(t, cards.NameSmithy, played[0].Card)
	assert.Equal(t, 0, played[0].Counters.Actions)
	assert.Equal(t, 6, played[6].Counters.Coins)
	assert.Equal(t, []cards.Name{cards.NameSilver}, boughtCards(log, "P1"))

	phases := log.OfType(rules.EventPhaseChanged)
	require.Len(t, phases, 3)
	assert.Equal(t, rules.PhaseAction, phases[0].Phase)
	assert.Equal(t, rules.PhaseBuy, phases[1].Phase)
	assert.Equal(t, rules.PhaseCleanup, phases[2].Phase)
}

func TestGameMultipleBuys(t *testing.T) {
	g := New()
	agent := agents.NewPriority(cards.NameSilver, cards.NameCopper).WithPlays(cards.NameWoodcutter)
	require.NoError(t, g.AddPlayer("P1", agent, nil))
	g.PopulateSupply(cards.Copper, 10)
	g.PopulateSupply(cards.Silver, 10)

	area, _ := g.PlayArea("P1")
	area.GainAllToDiscard(cards.Print(cards.Copper, 4))
	area.GainToDiscard(cards.Woodcutter())

	g.PlayOneRound()
	results := g.Results()

	require.Len(t, results, 1)
	assert.Equal(t, []cards.Run{{Name: cards.NameSilver, Count: 2}}, results[0].Purchases,
		"4 coppers and +$2 buy two silvers with two buys")
}

func TestGameAgentChoosingUnofferedCardIsContractViolation(t *testing.T) {
	g := New()
	cheat := scriptedAgent{play: agents.NoPlay(), buy: agents.Buy(cards.NameProvince)}
	require.NoError(t, g.AddPlayer("P1", cheat, nil))
	g.PopulateBasicKingdom()

	defer func() {
		cv, ok := rules.AsContractViolation(recover())
		require.True(t, ok)
		assert.Equal(t, "bought card was offered", cv.Invariant)
	}()
	g.PlayOneRound()
}

func TestGameAddPlayerValidation(t *testing.T) {
	g := New()
	abc := agents.NewPriority(cards.NameCopper)

	assert.Error(t, g.AddPlayer(" ", abc, nil))
	assert.Error(t, g.AddPlayer("P1", nil, nil))
	require.NoError(t, g.AddPlayer("P1", abc, nil))
	assert.EqualError(t, g.AddPlayer("P1", abc, nil), "player P1 already seated")

	g.PopulateBasicKingdom()
	g.DealStartingHands()
	assert.Error(t, g.AddPlayer("P2", abc, nil))
	assert.Equal(t, []string{"P1"}, g.Players())
}

func TestGameConservesCards(t *testing.T) {
	g := New(WithMaxTurns(30))
	for i, s := range []agents.Strategy{agents.StrategyBigMoney, agents.StrategyVillageSmithy} {
		agent, err := agents.New(string(s))
		require.NoError(t, err)
		require.NoError(t, g.AddPlayer(string(s), agent, shuffle.NewRandom(uint64(i))))
	}
	g.PopulateBasicKingdom()
	require.NoError(t, g.PopulateKingdom([]cards.Name{cards.NameVillage, cards.NameSmithy}))
	initial := 0
	for _, p := range g.Supply().Piles() {
		initial += p.Count
	}

	results := g.PlayToEnd()

	total := 0
	for _, p := range g.Supply().Piles() {
		total += p.Count
	}
	for _, r := range results {
		total += len(r.Cards)
	}
	assert.Equal(t, initial, total)
}

func TestGreedyForDuchiesBeatsAlwaysBuyCopper(t *testing.T) {
	g := New()
	gfd, _ := agents.New(string(agents.StrategyGreedyForDuchies))
	abc, _ := agents.New(string(agents.StrategyAlwaysBuyCopper))
	rng := shuffle.NewRandom(1234)
	require.NoError(t, g.AddPlayer("P1 [GFD]", gfd, rng))
	require.NoError(t, g.AddPlayer("P2 [ABC]", abc, rng))
	g.PopulateBasicKingdom()

	results := g.PlayToEnd()

	assert.Equal(t, DefaultMaxTurns, g.Round())
	assert.Equal(t, []string{"P1 [GFD]"}, results.Winners())
	p2, _ := results.ByName("P2 [ABC]")
	assert.Equal(t, 3, p2.Score)
	assert.Same(t, &results[0], &g.Results()[0], "results are collected once")
}

func TestPopulateKingdomRejectsUnknownCards(t *testing.T) {
	g := New()
	assert.EqualError(t, g.PopulateKingdom([]cards.Name{"Witch"}), "unknown kingdom card: Witch")

	require.NoError(t, g.PopulateKingdom([]cards.Name{cards.NameSmithy, cards.NameSmithy}))
	assert.Equal(t, 10, g.Supply().Count(cards.NameSmithy))
}

func TestPlayerResultsString(t *testing.T) {
	results := PlayerResults{
		{Name: "P1", Score: 3, Cards: []cards.Card{cards.Copper(), cards.Copper(), cards.Duchy()}},
		{Name: "P2", Score: 3, Cards: []cards.Card{cards.Estate(), cards.Estate(), cards.Estate()}},
	}

	assert.Equal(t, "P1: 3 points\n  Copper x2\n  Duchy x1\n\nP2: 3 points\n  Estate x3\n\n", results.String())
	assert.Equal(t, []string{"P1", "P2"}, results.Winners())
	assert.Nil(t, PlayerResults{}.Winners())
}

func TestGameStateString(t *testing.T) {
	assert.Equal(t, "IN_PROGRESS", GameStateInProgress.String())
	assert.Equal(t, "STATE_9", GameState(9).String())
}
