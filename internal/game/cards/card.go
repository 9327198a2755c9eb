package cards

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kingdomforge/kingdom-server-go/internal/game/effects"
)

// Name identifies a card. Cards with the same name are interchangeable for
// pile and supply purposes.
type Name string

func (n Name) String() string {
	return string(n)
}

// Type is a single card type.
type Type uint8

const (
	TypeAction Type = 1 << iota
	TypeTreasure
	TypeVictory
)

var typeNames = map[Type]string{
	TypeAction:   "Action",
	TypeTreasure: "Treasure",
	TypeVictory:  "Victory",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TYPE_%d", uint8(t))
}

// Types is a set of card types.
type Types uint8

// TypesOf builds a set from the given types; duplicates and order are irrelevant.
func TypesOf(types ...Type) Types {
	var set Types
	for _, t := range types {
		set |= Types(t)
	}
	return set
}

// Has reports whether t is in the set.
func (ts Types) Has(t Type) bool {
	return ts&Types(t) != 0
}

// List returns the members in a fixed order.
func (ts Types) List() []Type {
	out := make([]Type, 0, 3)
	for _, t := range []Type{TypeAction, TypeTreasure, TypeVictory} {
		if ts.Has(t) {
			out = append(out, t)
		}
	}
	return out
}

func (ts Types) String() string {
	list := ts.List()
	parts := make([]string, len(list))
	for i, t := range list {
		parts[i] = t.String()
	}
	return strings.Join(parts, "-")
}

// Card is an immutable card definition. Card values move between piles; they
// are compared by Name.
type Card struct {
	Name      Name
	CoinsCost int
	VPValue   int
	Types     Types
	Effect    effects.Effect
}

// IsType reports whether the card has type t.
func (c Card) IsType(t Type) bool {
	return c.Types.Has(t)
}

func (c Card) String() string {
	return string(c.Name)
}

// Names returns the names of the given cards in the same order.
func Names(cs []Card) []Name {
	out := make([]Name, len(cs))
	for i, c := range cs {
		out[i] = c.Name
	}
	return out
}

// SortByName orders cards by name, keeping equal names in their original order.
func SortByName(cs []Card) {
	sort.SliceStable(cs, func(i, j int) bool {
		return cs[i].Name < cs[j].Name
	})
}

// Run is a group of consecutive cards sharing a name.
type Run struct {
	Name  Name
	Count int
}

// Runs groups consecutive cards with the same name.
func Runs(cs []Card) []Run {
	runs := make([]Run, 0)
	for _, c := range cs {
		if n := len(runs); n > 0 && runs[n-1].Name == c.Name {
			runs[n-1].Count++
			continue
		}
		runs = append(runs, Run{Name: c.Name, Count: 1})
	}
	return runs
}
