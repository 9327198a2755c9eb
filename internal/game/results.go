package game

import (
	"fmt"
	"strings"

	"github.com/kingdomforge/kingdom-server-go/internal/game/cards"
)

// PlayerResult is one player's final cards and score. Cards are sorted by
// name.
type PlayerResult struct {
	Name      string
	Cards     []cards.Card
	Score     int
	Shuffles  int
	Purchases []cards.Run
}

// Holdings groups the player's cards by name.
func (r PlayerResult) Holdings() []cards.Run {
	return cards.Runs(r.Cards)
}

func (r PlayerResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d points\n", r.Name, r.Score)
	for _, run := range r.Holdings() {
		fmt.Fprintf(&b, "  %s x%d\n", run.Name, run.Count)
	}
	return b.String()
}

// PlayerResults lists results in seating order.
type PlayerResults []PlayerResult

func (rs PlayerResults) String() string {
	var b strings.Builder
	for _, r := range rs {
		b.WriteString(r.String())
		b.WriteString("\n")
	}
	return b.String()
}

// Winners returns the names of the players with the highest score.
func (rs PlayerResults) Winners() []string {
	if len(rs) == 0 {
		return nil
	}
	best := rs[0].Score
	for _, r := range rs[1:] {
		if r.Score > best {
			best = r.Score
		}
	}
	var out []string
	for _, r := range rs {
		if r.Score == best {
			out = append(out, r.Name)
		}
	}
	return out
}

// ByName finds a player's result.
func (rs PlayerResults) ByName(name string) (PlayerResult, bool) {
	for _, r := range rs {
		if r.Name == name {
			return r, true
		}
	}
	return PlayerResult{}, false
}
