package server

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/kingdomforge/kingdom-server-go/internal/config"
	"github.com/kingdomforge/kingdom-server-go/internal/game"
	"github.com/kingdomforge/kingdom-server-go/internal/game/agents"
	"github.com/kingdomforge/kingdom-server-go/internal/game/cards"
	"github.com/kingdomforge/kingdom-server-go/internal/repository"
	"github.com/kingdomforge/kingdom-server-go/internal/tournament"
)

// ServiceName is the full gRPC service name.
const ServiceName = "kingdom.v1.KingdomSimulator"

// KingdomSimulatorServer is the server API for the simulator service. Every
// message is a google.protobuf.Struct.
type KingdomSimulatorServer interface {
	RunGame(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetResult(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListStrategies(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RunTournament(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetStrategyStats(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(KingdomSimulatorServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func methodDesc(name string, call unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(KingdomSimulatorServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + ServiceName + "/" + name,
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(KingdomSimulatorServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// KingdomSimulatorServiceDesc describes the service for grpc.Server.
var KingdomSimulatorServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*KingdomSimulatorServer)(nil),
	Methods: []grpc.MethodDesc{
		methodDesc("RunGame", KingdomSimulatorServer.RunGame),
		methodDesc("GetResult", KingdomSimulatorServer.GetResult),
		methodDesc("ListStrategies", KingdomSimulatorServer.ListStrategies),
		methodDesc("RunTournament", KingdomSimulatorServer.RunTournament),
		methodDesc("GetStrategyStats", KingdomSimulatorServer.GetStrategyStats),
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterKingdomSimulatorServer registers srv on s.
func RegisterKingdomSimulatorServer(s grpc.ServiceRegistrar, srv KingdomSimulatorServer) {
	s.RegisterService(&KingdomSimulatorServiceDesc, srv)
}

// recordingRunner plays a game on the registry and stores the result.
type recordingRunner struct {
	registry *game.Registry
	store    repository.Store
	logger   *zap.Logger
}

func (r *recordingRunner) Run(ctx context.Context, setup game.Setup) (*game.Simulation, error) {
	sim, err := r.registry.Run(ctx, setup)
	if err != nil {
		return sim, err
	}
	r.persist(ctx, sim)
	return sim, nil
}

func (r *recordingRunner) persist(ctx context.Context, sim *game.Simulation) {
	record, err := repository.NewGameRecord(sim)
	if err != nil {
		return
	}
	if err := r.store.SaveGame(ctx, record); err != nil {
		r.logger.Warn("failed to store game", zap.String("game_id", sim.ID), zap.Error(err))
	}
}

// Simulator implements KingdomSimulatorServer.
type Simulator struct {
	registry        *game.Registry
	runner          *recordingRunner
	tournaments     *tournament.Manager
	store           repository.Store
	defaults        game.Setup
	gamesPerPairing int
	serverVersion   string
	logger          *zap.Logger
}

// NewSimulator creates the service. A nil store keeps results in memory.
func NewSimulator(cfg *config.Config, registry *game.Registry, store repository.Store, serverVersion string, logger *zap.Logger) *Simulator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if store == nil {
		store = repository.NewMemoryStore()
	}
	runner := &recordingRunner{registry: registry, store: store, logger: logger}
	return &Simulator{
		registry:        registry,
		runner:          runner,
		tournaments:     tournament.NewManager(runner, logger),
		store:           store,
		defaults:        cfg.Game.Setup(),
		gamesPerPairing: cfg.Tournament.GamesPerPairing,
		serverVersion:   serverVersion,
		logger:          logger,
	}
}

// Start begins a game from a request. The result is stored when the game
// ends.
func (s *Simulator) Start(req *structpb.Struct) (*game.Simulation, error) {
	setup, err := setupFromStruct(req, s.defaults)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if setup.ID != "" {
		if _, exists := s.registry.Get(setup.ID); exists {
			return nil, status.Errorf(codes.AlreadyExists, "game %s already exists", setup.ID)
		}
	}

	sim, err := s.registry.Start(setup)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	go func() {
		<-sim.Done()
		s.runner.persist(context.Background(), sim)
	}()
	return sim, nil
}

func toStruct(m map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	return out, nil
}

// RunGame starts a game. With "wait": true it blocks until the game ends
// and returns the results; otherwise it returns the game ID at once.
func (s *Simulator) RunGame(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sim, err := s.Start(req)
	if err != nil {
		return nil, err
	}

	if req.GetFields()["wait"].GetBoolValue() {
		if err := sim.Wait(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, status.FromContextError(err).Err()
			}
			return nil, status.Errorf(codes.Internal, "game %s: %v", sim.ID, err)
		}
		s.runner.persist(ctx, sim)
	}
	return toStruct(simulationSummary(sim))
}

// GetResult returns a game by ID, from the registry or from the store.
func (s *Simulator) GetResult(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id := stringField(req, "id")
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}

	if sim, ok := s.registry.Get(id); ok {
		return toStruct(simulationSummary(sim))
	}

	record, err := s.store.GetGame(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, status.Errorf(codes.NotFound, "game %s not found", id)
	}
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to load game: %v", err)
	}
	return toStruct(recordSummary(record))
}

// ListStrategies lists the preset agents and the card catalog.
func (s *Simulator) ListStrategies(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	var strategies []string
	for _, st := range agents.Strategies() {
		strategies = append(strategies, string(st))
	}
	var kingdom []string
	for _, name := range cards.ActionNames() {
		kingdom = append(kingdom, string(name))
	}
	sort.Strings(kingdom)

	return toStruct(map[string]any{
		"strategies":    stringsToList(strategies),
		"kingdom_cards": stringsToList(kingdom),
		"version":       s.serverVersion,
	})
}

// RunTournament plays a round robin between strategies and returns the
// standings.
func (s *Simulator) RunTournament(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	strategies, err := stringsField(req, "strategies")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if len(strategies) == 0 {
		for _, st := range agents.Strategies() {
			strategies = append(strategies, string(st))
		}
	}

	setup, err := setupFromStruct(req, s.defaults)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	games := s.gamesPerPairing
	if n, ok, err := intField(req, "games_per_pairing"); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	} else if ok && n > 0 {
		games = n
	}

	name := stringField(req, "name")
	if name == "" {
		name = fmt.Sprintf("round robin of %d", len(strategies))
	}
	t, err := s.tournaments.CreateTournament(name, strategies, tournament.Options{
		GamesPerPairing: games,
		MaxTurns:        setup.MaxTurns,
		Seed:            setup.Seed,
		Kingdom:         setup.Kingdom,
	})
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	snap, err := s.tournaments.Run(ctx, t.ID)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, status.FromContextError(ctxErr).Err()
		}
		return nil, status.Errorf(codes.Internal, "tournament %s: %v", t.ID, err)
	}
	return toStruct(tournamentSummary(snap, t.Standings()))
}

// GetStrategyStats aggregates every stored game by strategy.
func (s *Simulator) GetStrategyStats(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	stats, err := s.store.StrategyStats(ctx)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to load stats: %v", err)
	}
	return toStruct(statsSummary(stats))
}

// Client calls the simulator service over a connection.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps a client connection.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, req map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) RunGame(ctx context.Context, req map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "RunGame", req, opts...)
}

func (c *Client) GetResult(ctx context.Context, id string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "GetResult", map[string]any{"id": id}, opts...)
}

func (c *Client) ListStrategies(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "ListStrategies", map[string]any{}, opts...)
}

func (c *Client) RunTournament(ctx context.Context, req map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "RunTournament", req, opts...)
}

func (c *Client) GetStrategyStats(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "GetStrategyStats", map[string]any{}, opts...)
}

var _ KingdomSimulatorServer = (*Simulator)(nil)
