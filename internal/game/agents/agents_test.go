package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingdomforge/kingdom-server-go/internal/game/cards"
)

func TestChoices(t *testing.T) {
	assert.True(t, Play(cards.NameSmithy).IsPlay())
	assert.False(t, NoPlay().IsPlay())
	assert.Equal(t, "play Smithy", Play(cards.NameSmithy).String())
	assert.Equal(t, "no play", NoPlay().String())

	assert.True(t, Buy(cards.NameGold).IsBuy())
	assert.False(t, NoBuy().IsBuy())
	assert.Equal(t, "buy Gold", Buy(cards.NameGold).String())
	assert.Equal(t, "no buy", NoBuy().String())
}

func TestPriorityBuysFirstOffered(t *testing.T) {
	agent := NewPriority(cards.NameProvince, cards.NameGold, cards.NameSilver)

	tests := []struct {
		offered []cards.Name
		want    BuyChoice
	}{
		{[]cards.Name{cards.NameCopper}, NoBuy()},
		{[]cards.Name{cards.NameCopper, cards.NameSilver}, Buy(cards.NameSilver)},
		{[]cards.Name{cards.NameCopper, cards.NameSilver, cards.NameGold}, Buy(cards.NameGold)},
		{[]cards.Name{cards.NameSilver, cards.NameGold, cards.NameProvince}, Buy(cards.NameProvince)},
		{nil, NoBuy()},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, agent.BuyPhase(tt.offered), "offered %v", tt.offered)
	}
	assert.Equal(t, NoPlay(), agent.ActionPhase([]cards.Name{cards.NameSmithy}))
}

func TestPriorityPlays(t *testing.T) {
	agent := NewPriority(cards.NameSilver).WithPlays(cards.NameVillage, cards.NameSmithy)

	assert.Equal(t, Play(cards.NameVillage), agent.ActionPhase([]cards.Name{cards.NameSmithy, cards.NameVillage}))
	assert.Equal(t, Play(cards.NameSmithy), agent.ActionPhase([]cards.Name{cards.NameSmithy}))
	assert.Equal(t, NoPlay(), agent.ActionPhase([]cards.Name{cards.NameMarket}))
}

func TestBoundedPriorityStopsAtMax(t *testing.T) {
	agent := NewBoundedPriority(
		Bound{Name: cards.NameSmithy, Max: 2},
		Bound{Name: cards.NameSilver},
	)
	offered := []cards.Name{cards.NameCopper, cards.NameSilver, cards.NameSmithy}

	assert.Equal(t, Buy(cards.NameSmithy), agent.BuyPhase(offered))
	assert.Equal(t, Buy(cards.NameSmithy), agent.BuyPhase(offered))
	assert.Equal(t, Buy(cards.NameSilver), agent.BuyPhase(offered))
	assert.Equal(t, Buy(cards.NameSilver), agent.BuyPhase(offered))
	assert.Equal(t, 2, agent.Bought(cards.NameSmithy))
	assert.Equal(t, 2, agent.Bought(cards.NameSilver))
	assert.Equal(t, NoBuy(), agent.BuyPhase([]cards.Name{cards.NameCopper}))
}

func TestNewKnowsEveryPreset(t *testing.T) {
	strategies := Strategies()
	require.Len(t, strategies, 5)
	assert.Equal(t, StrategyAlwaysBuyCopper, strategies[0])

	for _, s := range strategies {
		agent, err := New(string(s))
		require.NoError(t, err, s)
		assert.NotNil(t, agent)
	}

	_, err := New("chaos-monkey")
	assert.EqualError(t, err, `unknown strategy: "chaos-monkey"`)
}

func TestPresetsReturnFreshState(t *testing.T) {
	first, err := New(string(StrategyBigMoneySmithy))
	require.NoError(t, err)
	offered := []cards.Name{cards.NameSmithy, cards.NameSilver}
	assert.Equal(t, Buy(cards.NameSmithy), first.BuyPhase(offered))
	assert.Equal(t, Buy(cards.NameSilver), first.BuyPhase(offered))

	second, err := New(string(StrategyBigMoneySmithy))
	require.NoError(t, err)
	assert.Equal(t, Buy(cards.NameSmithy), second.BuyPhase(offered))
}

func TestPresetBehaviour(t *testing.T) {
	abc, _ := New(string(StrategyAlwaysBuyCopper))
	assert.Equal(t, Buy(cards.NameCopper), abc.BuyPhase([]cards.Name{cards.NameCopper, cards.NameEstate}))

	gfd, _ := New(string(StrategyGreedyForDuchies))
	assert.Equal(t, Buy(cards.NameDuchy), gfd.BuyPhase([]cards.Name{cards.NameCopper, cards.NameEstate, cards.NameDuchy}))
	assert.Equal(t, Buy(cards.NameCopper), gfd.BuyPhase([]cards.Name{cards.NameCopper, cards.NameEstate}))

	assert.Equal(t, []cards.Name{cards.NameVillage, cards.NameSmithy}, KingdomFor(StrategyVillageSmithy))
	assert.Nil(t, KingdomFor(StrategyBigMoney))
}
