package server

import (
	"fmt"
	"math"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/kingdomforge/kingdom-server-go/internal/game"
	"github.com/kingdomforge/kingdom-server-go/internal/game/cards"
	"github.com/kingdomforge/kingdom-server-go/internal/game/rules"
	"github.com/kingdomforge/kingdom-server-go/internal/repository"
	"github.com/kingdomforge/kingdom-server-go/internal/tournament"
)

// Requests and responses are google.protobuf.Struct values. Numbers arrive
// as doubles, so seeds above 2^53 lose precision.

func stringField(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

func intField(s *structpb.Struct, key string) (int, bool, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return 0, false, nil
	}
	n, isNumber := v.GetKind().(*structpb.Value_NumberValue)
	if !isNumber {
		return 0, false, fmt.Errorf("%s must be a number", key)
	}
	if n.NumberValue < 0 || n.NumberValue != math.Trunc(n.NumberValue) {
		return 0, false, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return int(n.NumberValue), true, nil
}

func stringsField(s *structpb.Struct, key string) ([]string, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return nil, nil
	}
	list := v.GetListValue()
	if list == nil {
		return nil, fmt.Errorf("%s must be a list", key)
	}
	out := make([]string, 0, len(list.GetValues()))
	for i, item := range list.GetValues() {
		str, isString := item.GetKind().(*structpb.Value_StringValue)
		if !isString {
			return nil, fmt.Errorf("%s[%d] must be a string", key, i)
		}
		out = append(out, str.StringValue)
	}
	return out, nil
}

// setupFromStruct reads a game setup. Missing fields keep the values of
// defaults.
func setupFromStruct(req *structpb.Struct, defaults game.Setup) (game.Setup, error) {
	setup := defaults
	setup.ID = stringField(req, "id")

	if v, ok := req.GetFields()["players"]; ok {
		list := v.GetListValue()
		if list == nil {
			return game.Setup{}, fmt.Errorf("players must be a list")
		}
		setup.Players = nil
		for i, item := range list.GetValues() {
			p := item.GetStructValue()
			if p == nil {
				return game.Setup{}, fmt.Errorf("players[%d] must be an object", i)
			}
			spec := game.PlayerSpec{Name: stringField(p, "name"), Strategy: stringField(p, "strategy")}
			if spec.Name == "" {
				spec.Name = fmt.Sprintf("P%d", i+1)
			}
			setup.Players = append(setup.Players, spec)
		}
	}

	kingdom, err := stringsField(req, "kingdom")
	if err != nil {
		return game.Setup{}, err
	}
	if kingdom != nil {
		setup.Kingdom = make([]cards.Name, len(kingdom))
		for i, name := range kingdom {
			setup.Kingdom[i] = cards.Name(name)
		}
	}

	if n, ok, err := intField(req, "max_turns"); err != nil {
		return game.Setup{}, err
	} else if ok {
		setup.MaxTurns = n
	}
	if n, ok, err := intField(req, "seed"); err != nil {
		return game.Setup{}, err
	} else if ok {
		setup.Seed = uint64(n)
	}
	return setup, nil
}

func runsToMap(runs []cards.Run) map[string]any {
	out := make(map[string]any, len(runs))
	for _, r := range runs {
		out[string(r.Name)] = r.Count
	}
	return out
}

func stringsToList(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// simulationSummary describes a simulation; results are included once it
// has finished.
func simulationSummary(sim *game.Simulation) map[string]any {
	summary := map[string]any{
		"id":         sim.ID,
		"finished":   sim.Finished(),
		"started_at": formatTime(sim.StartedAt),
		"events":     sim.Events.Len(),
		"seed":       float64(sim.Setup.Seed),
	}
	if !sim.Finished() {
		return summary
	}

	summary["finished_at"] = formatTime(sim.FinishedAt())
	results, err := sim.Results()
	if err != nil {
		summary["error"] = err.Error()
		return summary
	}

	strategies := make(map[string]string, len(sim.Setup.Players))
	for _, p := range sim.Setup.Players {
		strategies[p.Name] = p.Strategy
	}
	winners := make(map[string]bool)
	for _, name := range results.Winners() {
		winners[name] = true
	}

	players := make([]any, 0, len(results))
	for _, r := range results {
		players = append(players, map[string]any{
			"name":      r.Name,
			"strategy":  strategies[r.Name],
			"score":     r.Score,
			"shuffles":  r.Shuffles,
			"winner":    winners[r.Name],
			"cards":     runsToMap(r.Holdings()),
			"purchases": runsToMap(r.Purchases),
		})
	}
	summary["rounds"] = sim.Rounds()
	summary["checksum"] = sim.Checksum()
	summary["players"] = players
	summary["winners"] = stringsToList(results.Winners())
	summary["display"] = results.String()
	return summary
}

func recordSummary(record repository.GameRecord) map[string]any {
	players := make([]any, 0, len(record.Players))
	var winners []string
	for _, p := range record.Players {
		if p.Winner {
			winners = append(winners, p.Name)
		}
		players = append(players, map[string]any{
			"name":      p.Name,
			"strategy":  p.Strategy,
			"score":     p.Score,
			"shuffles":  p.Shuffles,
			"winner":    p.Winner,
			"purchases": runsToMap(p.Purchases),
		})
	}
	return map[string]any{
		"id":          record.ID,
		"finished":    true,
		"stored":      true,
		"seed":        float64(record.Seed),
		"rounds":      record.Rounds,
		"checksum":    record.Checksum,
		"finished_at": formatTime(record.FinishedAt),
		"players":     players,
		"winners":     stringsToList(winners),
	}
}

func tournamentSummary(snap tournament.TournamentSnapshot, standings []tournament.EntrantSnapshot) map[string]any {
	table := make([]any, 0, len(standings))
	for _, e := range standings {
		table = append(table, map[string]any{
			"strategy": e.Name,
			"points":   e.Points,
			"wins":     e.Wins,
			"losses":   e.Losses,
			"draws":    e.Draws,
			"score":    e.Score,
		})
	}

	var pairings []any
	for _, r := range snap.Rounds {
		for _, p := range r.Pairings {
			pairings = append(pairings, map[string]any{
				"round":        r.Number,
				"player1":      p.Player1,
				"player2":      p.Player2,
				"winner":       p.Winner,
				"player1_wins": p.Player1Wins,
				"player2_wins": p.Player2Wins,
				"draws":        p.Draws,
				"games":        stringsToList(p.GameIDs),
			})
		}
	}

	summary := map[string]any{
		"id":                snap.ID,
		"name":              snap.Name,
		"state":             snap.State.String(),
		"games_per_pairing": snap.GamesPerPairing,
		"standings":         table,
		"pairings":          pairings,
	}
	if snap.Error != "" {
		summary["error"] = snap.Error
	}
	return summary
}

func statsSummary(stats []repository.StrategyStats) map[string]any {
	out := make([]any, 0, len(stats))
	for _, s := range stats {
		out = append(out, map[string]any{
			"strategy":  s.Strategy,
			"games":     s.Games,
			"wins":      s.Wins,
			"avg_score": s.AvgScore,
		})
	}
	return map[string]any{"strategies": out}
}

// eventMessage is the JSON form of a game event on the websocket.
type eventMessage struct {
	Type        string           `json:"type"`
	Player      string           `json:"player,omitempty"`
	Round       int              `json:"round"`
	Card        string           `json:"card,omitempty"`
	Amount      int              `json:"amount,omitempty"`
	Phase       string           `json:"phase,omitempty"`
	Counters    *countersMessage `json:"counters,omitempty"`
	Description string           `json:"description,omitempty"`
}

type countersMessage struct {
	Actions int `json:"actions"`
	Buys    int `json:"buys"`
	Coins   int `json:"coins"`
}

func newEventMessage(evt rules.Event) eventMessage {
	msg := eventMessage{
		Type:        string(evt.Type),
		Player:      evt.PlayerID,
		Round:       evt.Round,
		Card:        string(evt.Card),
		Amount:      evt.Amount,
		Description: evt.Description,
	}
	switch evt.Type {
	case rules.EventPhaseChanged:
		msg.Phase = evt.Phase.String()
	case rules.EventCardPlayed:
		msg.Counters = &countersMessage{
			Actions: evt.Counters.Actions,
			Buys:    evt.Counters.Buys,
			Coins:   evt.Counters.Coins,
		}
	}
	return msg
}
