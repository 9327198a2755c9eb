package cards

import (
	"github.com/kingdomforge/kingdom-server-go/internal/game/effects"
)

// Catalog card names.
const (
	NameCopper     Name = "Copper"
	NameSilver     Name = "Silver"
	NameGold       Name = "Gold"
	NameEstate     Name = "Estate"
	NameDuchy      Name = "Duchy"
	NameProvince   Name = "Province"
	NameCurse      Name = "Curse"
	NameVillage    Name = "Village"
	NameWoodcutter Name = "Woodcutter"
	NameSmithy     Name = "Smithy"
	NameLaboratory Name = "Laboratory"
	NameMarket     Name = "Market"
	NameFestival   Name = "Festival"
)

// Factory prints a new copy of a card.
type Factory func() Card

func Copper() Card {
	return Card{Name: NameCopper, CoinsCost: 0, Types: TypesOf(TypeTreasure), Effect: effects.AddCoins(1)}
}

func Silver() Card {
	return Card{Name: NameSilver, CoinsCost: 3, Types: TypesOf(TypeTreasure), Effect: effects.AddCoins(2)}
}

func Gold() Card {
	return Card{Name: NameGold, CoinsCost: 6, Types: TypesOf(TypeTreasure), Effect: effects.AddCoins(3)}
}

func Estate() Card {
	return Card{Name: NameEstate, CoinsCost: 2, VPValue: 1, Types: TypesOf(TypeVictory), Effect: effects.None()}
}

func Duchy() Card {
	return Card{Name: NameDuchy, CoinsCost: 5, VPValue: 3, Types: TypesOf(TypeVictory), Effect: effects.None()}
}

func Province() Card {
	return Card{Name: NameProvince, CoinsCost: 8, VPValue: 6, Types: TypesOf(TypeVictory), Effect: effects.None()}
}

// Curse has no type of its own in this catalog; it only carries negative VP.
func Curse() Card {
	return Card{Name: NameCurse, CoinsCost: 0, VPValue: -1, Effect: effects.None()}
}

func Village() Card {
	return action(NameVillage, 3, effects.NewEffectBuilder().Cards(1).Actions(2).Build())
}

func Woodcutter() Card {
	return action(NameWoodcutter, 3, effects.NewEffectBuilder().Buys(1).Coins(2).Build())
}

func Smithy() Card {
	return action(NameSmithy, 4, effects.DrawCards(3))
}

func Laboratory() Card {
	return action(NameLaboratory, 5, effects.NewEffectBuilder().Cards(2).Actions(1).Build())
}

func Market() Card {
	return action(NameMarket, 5, effects.NewEffectBuilder().Cards(1).Actions(1).Buys(1).Coins(1).Build())
}

func Festival() Card {
	return action(NameFestival, 5, effects.NewEffectBuilder().Actions(2).Buys(1).Coins(2).Build())
}

func action(name Name, cost int, effect effects.Effect) Card {
	return Card{Name: name, CoinsCost: cost, Types: TypesOf(TypeAction), Effect: effect}
}

var catalog = []struct {
	name    Name
	factory Factory
}{
	{NameCopper, Copper},
	{NameSilver, Silver},
	{NameGold, Gold},
	{NameEstate, Estate},
	{NameDuchy, Duchy},
	{NameProvince, Province},
	{NameCurse, Curse},
	{NameVillage, Village},
	{NameWoodcutter, Woodcutter},
	{NameSmithy, Smithy},
	{NameLaboratory, Laboratory},
	{NameMarket, Market},
	{NameFestival, Festival},
}

// Lookup returns the factory for a catalog card.
func Lookup(name Name) (Factory, bool) {
	for _, entry := range catalog {
		if entry.name == name {
			return entry.factory, true
		}
	}
	return nil, false
}

// All returns the catalog names in a stable order: treasures, victory, curse, then actions.
func All() []Name {
	out := make([]Name, len(catalog))
	for i, entry := range catalog {
		out[i] = entry.name
	}
	return out
}

// ActionNames returns the names of the catalog's Action cards.
func ActionNames() []Name {
	out := make([]Name, 0)
	for _, entry := range catalog {
		if entry.factory().IsType(TypeAction) {
			out = append(out, entry.name)
		}
	}
	return out
}

// Print returns n fresh copies of a card.
func Print(factory Factory, n int) []Card {
	out := make([]Card, n)
	for i := range out {
		out[i] = factory()
	}
	return out
}
