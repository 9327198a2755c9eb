// Package game runs deck-building games: it seats players, fills the supply
// and drives rounds of action, buy and cleanup phases until the game ends.
package game

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kingdomforge/kingdom-server-go/internal/game/agents"
	"github.com/kingdomforge/kingdom-server-go/internal/game/cards"
	"github.com/kingdomforge/kingdom-server-go/internal/game/counters"
	"github.com/kingdomforge/kingdom-server-go/internal/game/rules"
	"github.com/kingdomforge/kingdom-server-go/internal/game/shuffle"
	"github.com/kingdomforge/kingdom-server-go/internal/game/supply"
	"github.com/kingdomforge/kingdom-server-go/internal/game/zones"
)

// DefaultMaxTurns is the round limit used when none is configured.
const DefaultMaxTurns = 100

// Starting deck composition.
const (
	startingCoppers = 7
	startingEstates = 3
	kingdomPileSize = 10
)

// ContractViolation is raised (via panic) when an agent or the engine breaks
// a precondition.
type ContractViolation = rules.ContractViolation

// GameState is the lifecycle stage of a game.
type GameState int

const (
	GameStateSetup GameState = iota
	GameStateInProgress
	GameStateEnded
)

var gameStateNames = map[GameState]string{
	GameStateSetup:      "SETUP",
	GameStateInProgress: "IN_PROGRESS",
	GameStateEnded:      "ENDED",
}

func (s GameState) String() string {
	if name, ok := gameStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("STATE_%d", int(s))
}

type seat struct {
	name  string
	area  *zones.PlayArea
	agent agents.Agent
}

// Game is a single game. It is not safe for concurrent use; one goroutine
// drives it from setup to results.
type Game struct {
	id       string
	logger   *zap.Logger
	players  []*seat
	supply   *supply.Supply
	bus      *rules.EventBus
	turns    *rules.TurnManager
	watchers *rules.WatcherRegistry
	shuffles *rules.ShuffleWatcher
	bought   map[string]*rules.PurchaseWatcher
	recorder *ReplayRecorder
	maxTurns int
	state    GameState

	endingPile    cards.Name
	hasEndingPile bool

	results PlayerResults
}

// Option configures a Game.
type Option func(*Game)

// WithID sets the game ID; a random UUID is used otherwise.
func WithID(id string) Option {
	return func(g *Game) {
		g.id = id
	}
}

// WithMaxTurns sets the round limit.
func WithMaxTurns(n int) Option {
	return func(g *Game) {
		g.maxTurns = n
	}
}

// WithLog forwards every game event to log.
func WithLog(log rules.GameLog) Option {
	return func(g *Game) {
		g.bus.SubscribeLog(log)
	}
}

// WithLogger sets the engine logger. Game events are written to it at debug
// level.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Game) {
		g.logger = logger
	}
}

// WithReplayRecorder records a snapshot after setup and after every round.
func WithReplayRecorder(rr *ReplayRecorder) Option {
	return func(g *Game) {
		g.recorder = rr
	}
}

// New creates a game with an empty supply and no players.
func New(opts ...Option) *Game {
	g := &Game{
		id:       uuid.NewString(),
		supply:   supply.New(),
		bus:      rules.NewEventBus(),
		turns:    rules.NewTurnManager(),
		watchers: rules.NewWatcherRegistry(),
		shuffles: rules.NewShuffleWatcher(),
		bought:   make(map[string]*rules.PurchaseWatcher),
		maxTurns: DefaultMaxTurns,
		state:    GameStateSetup,
	}
	g.watchers.Attach(g.bus)
	g.watchers.AddWatcher(g.shuffles)
	for _, opt := range opts {
		opt(g)
	}
	if g.logger != nil {
		g.bus.SubscribeLog(rules.NewZapLog(g.logger.With(zap.String("game_id", g.id))))
	}
	if g.recorder != nil {
		g.recorder.StartRecording(g.id)
	}
	return g
}

// ID returns the game ID.
func (g *Game) ID() string {
	return g.id
}

// State returns the lifecycle stage.
func (g *Game) State() GameState {
	return g.state
}

// Round returns the number of rounds started so far.
func (g *Game) Round() int {
	return g.turns.Round()
}

// MaxTurns returns the round limit.
func (g *Game) MaxTurns() int {
	return g.maxTurns
}

// Supply exposes the shared supply for inspection.
func (g *Game) Supply() *supply.Supply {
	return g.supply
}

// Events exposes the event bus so callers can subscribe after construction.
func (g *Game) Events() *rules.EventBus {
	return g.bus
}

// PlayArea returns the named player's zones.
func (g *Game) PlayArea(player string) (*zones.PlayArea, bool) {
	for _, s := range g.players {
		if s.name == player {
			return s.area, true
		}
	}
	return nil, false
}

// Players returns the seating order.
func (g *Game) Players() []string {
	return g.turns.Players()
}

// gameLog stamps events with the current round before publishing them.
type gameLog struct {
	g *Game
}

func (l gameLog) Record(event rules.Event) {
	event.Round = l.g.turns.Round()
	l.g.bus.Publish(event)
}

func (g *Game) emit(event rules.Event) {
	gameLog{g}.Record(event)
}

// AddPlayer seats a player. Players must be added before hands are dealt and
// names must be unique.
func (g *Game) AddPlayer(name string, agent agents.Agent, shuffler shuffle.Shuffler) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("player name is required")
	}
	if agent == nil {
		return fmt.Errorf("player %s has no agent", name)
	}
	if g.state != GameStateSetup {
		return fmt.Errorf("cannot add player %s: game is %s", name, g.state)
	}
	if _, exists := g.PlayArea(name); exists {
		return fmt.Errorf("player %s already seated", name)
	}

	g.players = append(g.players, &seat{
		name:  name,
		area:  zones.New(name, shuffler, gameLog{g}),
		agent: agent,
	})
	g.turns.AddPlayer(name)
	watcher := rules.NewPurchaseWatcher(name)
	g.bought[name] = watcher
	g.watchers.AddWatcher(watcher)
	return nil
}

// PopulateSupply adds a pile of n freshly printed cards.
func (g *Game) PopulateSupply(factory cards.Factory, n int) {
	g.supply.Add(cards.Print(factory, n))
	g.endingPile, g.hasEndingPile = g.supply.HighestVictoryPile()
}

// PopulateBasicKingdom adds the treasure and victory piles.
func (g *Game) PopulateBasicKingdom() {
	g.PopulateSupply(cards.Copper, 60)
	g.PopulateSupply(cards.Silver, 40)
	g.PopulateSupply(cards.Gold, 30)
	g.PopulateSupply(cards.Estate, 12)
	g.PopulateSupply(cards.Duchy, 12)
	g.PopulateSupply(cards.Province, 12)
}

// PopulateKingdom adds a pile of 10 for each named card not already in the
// supply.
func (g *Game) PopulateKingdom(names []cards.Name) error {
	for _, name := range names {
		factory, ok := cards.Lookup(name)
		if !ok {
			return fmt.Errorf("unknown kingdom card: %s", name)
		}
		if g.supply.Has(name) {
			continue
		}
		g.PopulateSupply(factory, kingdomPileSize)
	}
	return nil
}

// EndingPile names the pile whose exhaustion ends the game.
func (g *Game) EndingPile() (cards.Name, bool) {
	return g.endingPile, g.hasEndingPile
}

// DealStartingHands gives every player up to 7 Copper and 3 Estate from the
// supply and draws their first hand.
func (g *Game) DealStartingHands() {
	if g.state != GameStateSetup {
		return
	}
	for _, s := range g.players {
		if g.supply.Has(cards.NameCopper) {
			s.area.GainAllToDiscard(g.supply.TakeUpToN(cards.NameCopper, startingCoppers))
		}
		if g.supply.Has(cards.NameEstate) {
			s.area.GainAllToDiscard(g.supply.TakeUpToN(cards.NameEstate, startingEstates))
		}
		s.area.DrawHand()
	}
	g.state = GameStateInProgress
	g.recordSnapshot()

	if g.logger != nil {
		g.logger.Info("game started",
			zap.String("game_id", g.id),
			zap.Strings("players", g.Players()),
			zap.Stringer("supply", g.supply),
			zap.Int("max_turns", g.maxTurns),
		)
	}
}

// PlayOneRound gives every player one turn. It returns true when the game has
// ended; the round stops early as soon as the termination rule holds.
func (g *Game) PlayOneRound() bool {
	if g.state == GameStateSetup {
		g.DealStartingHands()
	}
	if g.state == GameStateEnded {
		return true
	}

	g.turns.StartRound()
	for i, s := range g.players {
		g.playTurn(i, s)
		if g.HasEnded() {
			g.finish()
			return true
		}
	}
	g.recordSnapshot()

	if g.HasEnded() {
		g.finish()
		return true
	}
	return false
}

func (g *Game) playTurn(i int, s *seat) {
	g.turns.StartTurn(i)
	g.emit(rules.NewEvent(rules.EventTurnStart, s.name))
	pc := counters.NewTurn()

	g.enterPhase(s, rules.PhaseAction)
	g.actionPhase(s, pc)

	g.advance(s)
	g.playTreasures(s, pc)
	g.buyPhase(s, pc)

	g.advance(s)
	s.area.DiscardInPlay()
	s.area.DiscardHand()
	s.area.DrawHand()
	g.turns.EndTurn()
}

func (g *Game) enterPhase(s *seat, phase rules.Phase) {
	evt := rules.NewEvent(rules.EventPhaseChanged, s.name)
	evt.Phase = phase
	g.emit(evt)
}

func (g *Game) advance(s *seat) {
	if phase, ok := g.turns.Advance(); ok {
		g.enterPhase(s, phase)
	}
}

func (g *Game) actionPhase(s *seat, pc *counters.PlayerCounters) {
	for pc.Actions > 0 {
		playable := s.area.PlayableOfType(cards.TypeAction)
		if len(playable) == 0 {
			return
		}
		choice := s.agent.ActionPhase(playable)
		if !choice.IsPlay() {
			return
		}
		if !containsName(playable, choice.Card) {
			rules.Violate("played card was offered", "%s chose %s from %v", s.name, choice.Card, playable)
		}
		pc.SpendAction()
		g.play(s, choice.Card, pc)
	}
}

// playTreasures plays every treasure in hand, in hand order.
func (g *Game) playTreasures(s *seat, pc *counters.PlayerCounters) {
	for _, c := range s.area.HandCards() {
		if c.IsType(cards.TypeTreasure) {
			g.play(s, c.Name, pc)
		}
	}
}

func (g *Game) play(s *seat, name cards.Name, pc *counters.PlayerCounters) {
	s.area.PlayCard(name, pc)
	evt := rules.NewCardEvent(rules.EventCardPlayed, s.name, name)
	evt.Counters = pc.Copy()
	g.emit(evt)
}

func (g *Game) buyPhase(s *seat, pc *counters.PlayerCounters) {
	for pc.Buys > 0 {
		buyable := g.supply.BuyableCards(pc.Coins)
		choice := s.agent.BuyPhase(buyable)
		if !choice.IsBuy() {
			return
		}
		if !containsName(buyable, choice.Card) {
			rules.Violate("bought card was offered", "%s chose %s from %v", s.name, choice.Card, buyable)
		}
		card, ok := g.supply.TakeOne(choice.Card)
		if !ok {
			rules.Violate("offered pile has a card", "%s pile is empty", choice.Card)
		}
		if !pc.SpendBuy(card.CoinsCost) {
			rules.Violate("offered card is affordable", "%s costs %d with %s", card.Name, card.CoinsCost, pc)
		}
		s.area.GainToDiscard(card)
		g.emit(rules.NewCardEvent(rules.EventCardBoughtGained, s.name, card.Name))
	}
}

func containsName(names []cards.Name, name cards.Name) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// HasEnded reports whether the round limit is reached or the game-ending
// pile has run out.
func (g *Game) HasEnded() bool {
	if g.state == GameStateEnded {
		return true
	}
	if g.turns.Round() >= g.maxTurns {
		return true
	}
	return g.hasEndingPile && g.supply.IsEmpty(g.endingPile)
}

func (g *Game) finish() {
	if g.state == GameStateEnded {
		return
	}
	g.state = GameStateEnded
	g.recordSnapshot()
	evt := rules.NewEvent(rules.EventGameEnded, "")
	evt.Description = g.endReason()
	g.emit(evt)

	if g.logger != nil {
		g.logger.Info("game ended",
			zap.String("game_id", g.id),
			zap.Int("rounds", g.turns.Round()),
			zap.String("reason", evt.Description),
		)
	}
}

func (g *Game) endReason() string {
	if g.hasEndingPile && g.supply.IsEmpty(g.endingPile) {
		return fmt.Sprintf("%s pile empty", g.endingPile)
	}
	return fmt.Sprintf("round limit %d reached", g.maxTurns)
}

// PlayToEnd deals if needed, plays rounds until the game ends and returns the
// results.
func (g *Game) PlayToEnd() PlayerResults {
	if g.state == GameStateSetup {
		g.DealStartingHands()
	}
	for !g.PlayOneRound() {
	}
	return g.Results()
}

// Results collects every player's cards and scores them. The first call
// empties the play areas; later calls return the same results.
func (g *Game) Results() PlayerResults {
	if g.results != nil {
		return g.results
	}
	results := make(PlayerResults, 0, len(g.players))
	for _, s := range g.players {
		owned := s.area.TakeAllCards()
		cards.SortByName(owned)
		results = append(results, PlayerResult{
			Name:      s.name,
			Cards:     owned,
			Score:     score(owned),
			Shuffles:  g.shuffles.Count(s.name),
			Purchases: g.bought[s.name].Tally(),
		})
	}
	g.results = results
	return results
}

func score(cs []cards.Card) int {
	total := 0
	for _, c := range cs {
		total += c.VPValue
	}
	return total
}

func (g *Game) recordSnapshot() {
	if g.recorder == nil {
		return
	}
	g.recorder.RecordState(g.id, g.Snapshot())
}
