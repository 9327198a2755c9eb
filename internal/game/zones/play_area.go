// Package zones holds a player's four card zones and the draw and play
// protocols that move cards between them.
package zones

import (
	"github.com/kingdomforge/kingdom-server-go/internal/game/cards"
	"github.com/kingdomforge/kingdom-server-go/internal/game/counters"
	"github.com/kingdomforge/kingdom-server-go/internal/game/effects"
	"github.com/kingdomforge/kingdom-server-go/internal/game/pile"
	"github.com/kingdomforge/kingdom-server-go/internal/game/rules"
	"github.com/kingdomforge/kingdom-server-go/internal/game/shuffle"
)

// HandSize is the number of cards drawn at cleanup.
const HandSize = 5

// PlayArea is one player's deck, hand, in-play and discard zones. Every card
// the player owns is in exactly one zone; only gains add cards.
type PlayArea struct {
	owner    string
	deck     *pile.Pile
	hand     []cards.Card
	inPlay   []cards.Card
	discard  *pile.Pile
	shuffler shuffle.Shuffler
	log      rules.GameLog
}

// New creates an empty play area. A nil shuffler keeps discard order on
// reshuffle and a nil log drops events.
func New(owner string, shuffler shuffle.Shuffler, log rules.GameLog) *PlayArea {
	if shuffler == nil {
		shuffler = shuffle.NoShuffle{}
	}
	if log == nil {
		log = rules.NullLog{}
	}
	return &PlayArea{
		owner:    owner,
		deck:     pile.New(),
		hand:     make([]cards.Card, 0, HandSize),
		inPlay:   make([]cards.Card, 0, HandSize),
		discard:  pile.New(),
		shuffler: shuffler,
		log:      log,
	}
}

// FromInitialCards creates a play area whose deck holds cs as given; the last
// card is drawn first.
func FromInitialCards(owner string, cs []cards.Card, shuffler shuffle.Shuffler, log rules.GameLog) *PlayArea {
	pa := New(owner, shuffler, log)
	pa.deck.AddRange(cs)
	return pa
}

// Owner returns the player this area belongs to.
func (pa *PlayArea) Owner() string {
	return pa.owner
}

// DrawN moves up to n cards from deck to hand. When the deck runs short the
// discard pile is shuffled into a new deck once and the remainder drawn from
// it; if deck and discard together hold fewer than n cards, all of them end
// up in hand.
func (pa *PlayArea) DrawN(n int) {
	result := pa.deck.TakeN(n)
	pa.hand = append(pa.hand, result.Cards...)
	drawn := len(result.Cards)

	if !result.Complete() {
		if !pa.deck.IsEmpty() {
			rules.Violate("partial draw empties the deck", "%d cards left in %s's deck", pa.deck.Len(), pa.owner)
		}
		pa.reshuffle()
		more := pa.deck.TakeUpToN(result.Missing)
		pa.hand = append(pa.hand, more...)
		drawn += len(more)
	}

	pa.log.Record(rules.NewEventWithAmount(rules.EventDrawCards, pa.owner, drawn))
}

func (pa *PlayArea) reshuffle() {
	if pa.discard.IsEmpty() {
		return
	}
	pa.deck.AddRange(pa.shuffler.Shuffle(pa.discard.TakeAll()))
	pa.log.Record(rules.NewEvent(rules.EventShuffle, pa.owner))
}

// DrawHand draws a standard hand.
func (pa *PlayArea) DrawHand() {
	pa.DrawN(HandSize)
}

// PlayCard moves the first card named name from hand to in play and resolves
// its effect. The card must be in hand.
func (pa *PlayArea) PlayCard(name cards.Name, pc *counters.PlayerCounters) cards.Card {
	idx := pa.handIndex(name)
	if idx < 0 {
		rules.Violate("played card is in hand", "%s not in %s's hand %v", name, pa.owner, pa.InspectHand())
	}
	card := pa.hand[idx]
	pa.hand = append(pa.hand[:idx], pa.hand[idx+1:]...)
	pa.inPlay = append(pa.inPlay, card)
	effects.Resolve(card.Effect, pc, pa)
	return card
}

func (pa *PlayArea) handIndex(name cards.Name) int {
	for i, c := range pa.hand {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// DiscardHand moves the whole hand to the discard pile.
func (pa *PlayArea) DiscardHand() {
	pa.discard.AddRange(pa.hand)
	pa.hand = make([]cards.Card, 0, HandSize)
}

// DiscardInPlay moves every played card to the discard pile.
func (pa *PlayArea) DiscardInPlay() {
	pa.discard.AddRange(pa.inPlay)
	pa.inPlay = make([]cards.Card, 0, HandSize)
}

// GainToDiscard adds a new card to the player's discard pile.
func (pa *PlayArea) GainToDiscard(card cards.Card) {
	pa.discard.Add(card)
}

// GainAllToDiscard adds new cards to the discard pile in order.
func (pa *PlayArea) GainAllToDiscard(cs []cards.Card) {
	pa.discard.AddRange(cs)
}

// InspectHand lists the names in hand, in hand order.
func (pa *PlayArea) InspectHand() []cards.Name {
	return cards.Names(pa.hand)
}

// HandCards returns a copy of the hand.
func (pa *PlayArea) HandCards() []cards.Card {
	out := make([]cards.Card, len(pa.hand))
	copy(out, pa.hand)
	return out
}

// PlayableOfType lists the distinct names in hand carrying type t, in the
// order they first appear.
func (pa *PlayArea) PlayableOfType(t cards.Type) []cards.Name {
	seen := make(map[cards.Name]bool)
	var out []cards.Name
	for _, c := range pa.hand {
		if c.IsType(t) && !seen[c.Name] {
			seen[c.Name] = true
			out = append(out, c.Name)
		}
	}
	return out
}

// TakeAllCards drains every zone and returns the cards for scoring. The play
// area holds nothing afterwards.
func (pa *PlayArea) TakeAllCards() []cards.Card {
	all := make([]cards.Card, 0, pa.Counts().Total())
	all = append(all, pa.deck.TakeAll()...)
	all = append(all, pa.hand...)
	all = append(all, pa.inPlay...)
	all = append(all, pa.discard.TakeAll()...)
	pa.hand = make([]cards.Card, 0, HandSize)
	pa.inPlay = make([]cards.Card, 0, HandSize)
	return all
}

// Counts holds zone sizes.
type Counts struct {
	Deck    int
	Hand    int
	InPlay  int
	Discard int
}

// Total returns the number of cards across all zones.
func (c Counts) Total() int {
	return c.Deck + c.Hand + c.InPlay + c.Discard
}

// Counts returns the current zone sizes.
func (pa *PlayArea) Counts() Counts {
	return Counts{
		Deck:    pa.deck.Len(),
		Hand:    len(pa.hand),
		InPlay:  len(pa.inPlay),
		Discard: pa.discard.Len(),
	}
}

// Snapshot is a read-only copy of zone contents by name. Deck and discard
// are listed bottom to top.
type Snapshot struct {
	Owner   string
	Deck    []cards.Name
	Hand    []cards.Name
	InPlay  []cards.Name
	Discard []cards.Name
}

// Snapshot captures the zone contents.
func (pa *PlayArea) Snapshot() Snapshot {
	return Snapshot{
		Owner:   pa.owner,
		Deck:    cards.Names(pa.deck.Cards()),
		Hand:    cards.Names(pa.hand),
		InPlay:  cards.Names(pa.inPlay),
		Discard: cards.Names(pa.discard.Cards()),
	}
}
