package rules

import (
	"fmt"
	"strings"
)

// Phase is one of the three phases of a player's turn.
type Phase int

const (
	PhaseAction Phase = iota
	PhaseBuy
	PhaseCleanup
)

var phaseNames = map[Phase]string{
	PhaseAction:  "ACTION",
	PhaseBuy:     "BUY",
	PhaseCleanup: "CLEANUP",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

var turnSequence = []Phase{PhaseAction, PhaseBuy, PhaseCleanup}

// TurnManager tracks the round number, the player whose turn it is and the
// phase that turn is in. A round is one turn for every seated player.
type TurnManager struct {
	players    []string
	round      int
	seat       int
	orderIndex int
	activeTurn bool
}

// NewTurnManager creates a manager for the given seating order. No round has
// started yet.
func NewTurnManager(players ...string) *TurnManager {
	seats := make([]string, 0, len(players))
	for _, p := range players {
		seats = append(seats, strings.TrimSpace(p))
	}
	return &TurnManager{players: seats}
}

// AddPlayer appends a seat.
func (tm *TurnManager) AddPlayer(player string) {
	tm.players = append(tm.players, strings.TrimSpace(player))
}

// StartRound increments the round counter and seats the first player.
func (tm *TurnManager) StartRound() int {
	tm.round++
	tm.seat = 0
	tm.orderIndex = 0
	tm.activeTurn = false
	return tm.round
}

// StartTurn begins the turn of the player at seat, in the action phase.
func (tm *TurnManager) StartTurn(seat int) string {
	tm.seat = seat
	tm.orderIndex = 0
	tm.activeTurn = true
	return tm.ActivePlayer()
}

// Advance moves to the next phase. It reports false once cleanup is over.
func (tm *TurnManager) Advance() (Phase, bool) {
	if !tm.activeTurn {
		return tm.CurrentPhase(), false
	}
	if tm.orderIndex+1 >= len(turnSequence) {
		tm.activeTurn = false
		return tm.CurrentPhase(), false
	}
	tm.orderIndex++
	return tm.CurrentPhase(), true
}

// EndTurn closes the current turn regardless of phase.
func (tm *TurnManager) EndTurn() {
	tm.activeTurn = false
}

// CurrentPhase returns the phase currently in progress.
func (tm *TurnManager) CurrentPhase() Phase {
	return turnSequence[tm.orderIndex]
}

// Round returns the current round (0 before the first round starts).
func (tm *TurnManager) Round() int {
	return tm.round
}

// InTurn reports whether a turn is in progress.
func (tm *TurnManager) InTurn() bool {
	return tm.activeTurn
}

// ActivePlayer returns the player who currently has the turn.
func (tm *TurnManager) ActivePlayer() string {
	if tm.seat < 0 || tm.seat >= len(tm.players) {
		return ""
	}
	return tm.players[tm.seat]
}

// Players returns the seating order.
func (tm *TurnManager) Players() []string {
	out := make([]string, len(tm.players))
	copy(out, tm.players)
	return out
}
