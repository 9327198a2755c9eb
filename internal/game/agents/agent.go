// Package agents holds the decision makers that choose which cards a player
// plays and buys.
package agents

import "github.com/kingdomforge/kingdom-server-go/internal/game/cards"

// PlayChoice is an action-phase decision.
type PlayChoice struct {
	Card cards.Name
	play bool
}

// Play chooses to play the named card.
func Play(name cards.Name) PlayChoice {
	return PlayChoice{Card: name, play: true}
}

// NoPlay ends the action phase.
func NoPlay() PlayChoice {
	return PlayChoice{}
}

// IsPlay reports whether a card was chosen.
func (c PlayChoice) IsPlay() bool {
	return c.play
}

func (c PlayChoice) String() string {
	if !c.play {
		return "no play"
	}
	return "play " + c.Card.String()
}

// BuyChoice is a buy-phase decision.
type BuyChoice struct {
	Card cards.Name
	buy  bool
}

// Buy chooses to buy the named card.
func Buy(name cards.Name) BuyChoice {
	return BuyChoice{Card: name, buy: true}
}

// NoBuy ends the buy phase.
func NoBuy() BuyChoice {
	return BuyChoice{}
}

// IsBuy reports whether a card was chosen.
func (c BuyChoice) IsBuy() bool {
	return c.buy
}

func (c BuyChoice) String() string {
	if !c.buy {
		return "no buy"
	}
	return "buy " + c.Card.String()
}

// Agent makes a player's decisions. Both calls must return synchronously and
// may only choose a name from the offered list.
type Agent interface {
	// ActionPhase is offered the distinct Action cards in hand while the
	// player has actions left.
	ActionPhase(playable []cards.Name) PlayChoice
	// BuyPhase is offered the supply piles the player can afford.
	BuyPhase(buyable []cards.Name) BuyChoice
}

func contains(names []cards.Name, name cards.Name) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// firstOffered returns the first preference that appears in offered.
func firstOffered(preferences, offered []cards.Name) (cards.Name, bool) {
	for _, p := range preferences {
		if contains(offered, p) {
			return p, true
		}
	}
	return "", false
}
