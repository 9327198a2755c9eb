package cards

import (
	"testing"

	"github.com/kingdomforge/kingdom-server-go/internal/game/counters"
	"github.com/kingdomforge/kingdom-server-go/internal/game/effects"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayingCopperGivesOneCoin(t *testing.T) {
	pc := counters.NewTurn()
	require.Equal(t, 0, pc.Coins)

	effects.Resolve(Copper().Effect, pc, nil)
	assert.Equal(t, 1, pc.Coins)
}

func TestTypesIsASet(t *testing.T) {
	a := TypesOf(TypeAction, TypeVictory)
	b := TypesOf(TypeVictory, TypeAction, TypeAction)

	assert.Equal(t, a, b)
	assert.True(t, a.Has(TypeAction))
	assert.True(t, a.Has(TypeVictory))
	assert.False(t, a.Has(TypeTreasure))
	assert.Equal(t, "Action-Victory", a.String())
}

func TestCatalogLookup(t *testing.T) {
	for _, name := range All() {
		factory, ok := Lookup(name)
		require.True(t, ok, "missing factory for %s", name)
		assert.Equal(t, name, factory().Name)
	}

	_, ok := Lookup("Chapel")
	assert.False(t, ok)
}

func TestCatalogValues(t *testing.T) {
	tests := []struct {
		card Card
		cost int
		vp   int
		typ  Type
	}{
		{Copper(), 0, 0, TypeTreasure},
		{Silver(), 3, 0, TypeTreasure},
		{Gold(), 6, 0, TypeTreasure},
		{Estate(), 2, 1, TypeVictory},
		{Duchy(), 5, 3, TypeVictory},
		{Province(), 8, 6, TypeVictory},
		{Smithy(), 4, 0, TypeAction},
	}

	for _, tt := range tests {
		t.Run(string(tt.card.Name), func(t *testing.T) {
			assert.Equal(t, tt.cost, tt.card.CoinsCost)
			assert.Equal(t, tt.vp, tt.card.VPValue)
			assert.True(t, tt.card.IsType(tt.typ))
		})
	}
}

func TestActionNames(t *testing.T) {
	names := ActionNames()
	assert.Contains(t, names, NameVillage)
	assert.Contains(t, names, NameSmithy)
	assert.NotContains(t, names, NameCopper)
}

func TestRunsGroupsConsecutiveNames(t *testing.T) {
	cs := []Card{Copper(), Copper(), Estate(), Copper()}
	assert.Equal(t, []Run{
		{NameCopper, 2},
		{NameEstate, 1},
		{NameCopper, 1},
	}, Runs(cs))

	SortByName(cs)
	assert.Equal(t, []Name{NameCopper, NameCopper, NameCopper, NameEstate}, Names(cs))
}

func TestPrint(t *testing.T) {
	cs := Print(Gold, 3)
	require.Len(t, cs, 3)
	for _, c := range cs {
		assert.Equal(t, NameGold, c.Name)
	}
}
