// Command simulate plays one game (or a round-robin tournament) between
// preset strategies and prints the results.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/kingdomforge/kingdom-server-go/internal/config"
	"github.com/kingdomforge/kingdom-server-go/internal/game"
	"github.com/kingdomforge/kingdom-server-go/internal/game/cards"
	"github.com/kingdomforge/kingdom-server-go/internal/game/rules"
	"github.com/kingdomforge/kingdom-server-go/internal/logging"
	"github.com/kingdomforge/kingdom-server-go/internal/tournament"
)

// Exit codes.
const (
	exitOK        = 0
	exitViolation = 1
	exitUsage     = 2
	exitFailure   = 3
)

type options struct {
	configPath string
	players    string
	kingdom    string
	maxTurns   int
	seed       uint64
	seedSet    bool
	events     bool
	replayDir  string
	tournament string
	games      int
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("simulate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "config/config.yaml", "path to configuration file")
	fs.StringVar(&opts.players, "players", "", "comma-separated name=strategy seats, e.g. P1=big-money,P2=greedy-for-duchies")
	fs.StringVar(&opts.kingdom, "kingdom", "", "comma-separated extra kingdom piles, e.g. Smithy,Village")
	fs.IntVar(&opts.maxTurns, "max-turns", 0, "round limit (0 keeps the configured value)")
	fs.Uint64Var(&opts.seed, "seed", 0, "shuffle seed")
	fs.BoolVar(&opts.events, "events", false, "print every game event")
	fs.StringVar(&opts.replayDir, "replay-dir", "", "save a replay of the game into this directory")
	fs.StringVar(&opts.tournament, "tournament", "", "comma-separated strategies for a round robin instead of one game")
	fs.IntVar(&opts.games, "games", 0, "games per tournament pairing (0 keeps the configured value)")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			opts.seedSet = true
		}
	})
	return opts, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// buildSetup overlays the flags on the configured game.
func buildSetup(cfg *config.Config, opts options) (game.Setup, error) {
	setup := cfg.Game.Setup()
	if opts.players != "" {
		setup.Players = nil
		for i, seat := range splitList(opts.players) {
			name, strategy, found := strings.Cut(seat, "=")
			if !found {
				name, strategy = fmt.Sprintf("P%d", i+1), seat
			}
			setup.Players = append(setup.Players, game.PlayerSpec{Name: name, Strategy: strategy})
		}
	}
	if opts.kingdom != "" {
		setup.Kingdom = nil
		for _, name := range splitList(opts.kingdom) {
			setup.Kingdom = append(setup.Kingdom, cards.Name(name))
		}
	}
	if opts.maxTurns > 0 {
		setup.MaxTurns = opts.maxTurns
	}
	if opts.seedSet {
		setup.Seed = opts.seed
	}
	if len(setup.Players) == 0 {
		return setup, errors.New("no players configured")
	}
	return setup, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return exitUsage
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load configuration: %v\n", err)
		return exitUsage
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to initialize logger: %v\n", err)
		return exitFailure
	}
	defer logger.Sync()

	setup, err := buildSetup(cfg, opts)
	if err != nil {
		fmt.Fprintf(stderr, "Invalid game: %v\n", err)
		return exitUsage
	}

	if opts.tournament != "" {
		games := cfg.Tournament.GamesPerPairing
		if opts.games > 0 {
			games = opts.games
		}
		return runTournament(splitList(opts.tournament), games, setup, logger, stdout, stderr)
	}

	var cv *rules.ContractViolation
	err = playGame(setup, opts, logger, stdout)
	switch {
	case errors.As(err, &cv):
		fmt.Fprintf(stderr, "%v\n", cv)
		return exitViolation
	case err != nil:
		fmt.Fprintf(stderr, "Game failed: %v\n", err)
		return exitUsage
	}
	return exitOK
}

// playGame runs one game on this goroutine. A contract violation is
// returned as the error.
func playGame(setup game.Setup, opts options, logger *zap.Logger, stdout io.Writer) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			cv, ok := rules.AsContractViolation(recovered)
			if !ok {
				panic(recovered)
			}
			err = cv
		}
	}()

	log := rules.NewBufferLog()
	gameOpts := []game.Option{game.WithLogger(logger), game.WithLog(log)}
	var recorder *game.ReplayRecorder
	if opts.replayDir != "" {
		if setup.ID == "" {
			setup.ID = fmt.Sprintf("simulate-%d", setup.Seed)
		}
		recorder = game.NewReplayRecorder(logger, opts.replayDir)
		gameOpts = append(gameOpts, game.WithReplayRecorder(recorder))
	}

	g, err := game.BuildGame(setup, gameOpts...)
	if err != nil {
		return err
	}
	for !g.PlayOneRound() {
	}
	checksum, err := g.Snapshot().ComputeChecksum()
	if err != nil {
		return err
	}
	results := g.Results()

	if opts.events {
		for _, evt := range log.Events() {
			fmt.Fprintln(stdout, formatEvent(evt))
		}
		fmt.Fprintln(stdout)
	}

	fmt.Fprint(stdout, results.String())
	fmt.Fprintf(stdout, "Winners: %s\n", strings.Join(results.Winners(), ", "))
	fmt.Fprintf(stdout, "Rounds: %d\n", g.Round())
	fmt.Fprintf(stdout, "Checksum: %s\n", checksum.Hash)

	if recorder != nil {
		if err := recorder.SaveReplay(g.ID()); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Replay: %s/%s.replay\n", opts.replayDir, g.ID())
	}
	return nil
}

func formatEvent(evt rules.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%d] %-18s", evt.Round, evt.Type)
	if evt.PlayerID != "" {
		fmt.Fprintf(&b, " %s", evt.PlayerID)
	}
	switch evt.Type {
	case rules.EventPhaseChanged:
		fmt.Fprintf(&b, " %s", evt.Phase)
	case rules.EventCardPlayed:
		fmt.Fprintf(&b, " %s %s", evt.Card, evt.Counters)
	case rules.EventCardBoughtGained:
		fmt.Fprintf(&b, " %s", evt.Card)
	case rules.EventDrawCards:
		fmt.Fprintf(&b, " %d", evt.Amount)
	case rules.EventGameEnded:
		fmt.Fprintf(&b, " %s", evt.Description)
	}
	return b.String()
}

func runTournament(strategies []string, games int, setup game.Setup, logger *zap.Logger, stdout, stderr io.Writer) int {
	registry := game.NewRegistry(logger, 0)
	manager := tournament.NewManager(registry, logger)

	t, err := manager.CreateTournament("simulate", strategies, tournament.Options{
		GamesPerPairing: games,
		MaxTurns:        setup.MaxTurns,
		Seed:            setup.Seed,
		Kingdom:         setup.Kingdom,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Invalid tournament: %v\n", err)
		return exitUsage
	}

	if _, err := manager.Run(context.Background(), t.ID); err != nil {
		fmt.Fprintf(stderr, "Tournament failed: %v\n", err)
		var cv *rules.ContractViolation
		if errors.As(err, &cv) {
			return exitViolation
		}
		return exitFailure
	}

	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STRATEGY\tPOINTS\tWINS\tLOSSES\tDRAWS\tVP")
	for _, e := range t.Standings() {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\n", e.Name, e.Points, e.Wins, e.Losses, e.Draws, e.Score)
	}
	_ = w.Flush()
	return exitOK
}
