package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/kingdomforge/kingdom-server-go/internal/config"
	"github.com/kingdomforge/kingdom-server-go/internal/game"
)

// WebSocket message types.
const (
	MessageRunGame     = "run_game"
	MessageWatchGame   = "watch_game"
	MessageGameStarted = "game_started"
	MessageEvent       = "event"
	MessageGameResult  = "game_result"
	MessageError       = "error"
)

// WSMessage is the envelope for every websocket frame.
type WSMessage struct {
	Type   string `json:"type"`
	GameID string `json:"game_id,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// GameStreamHandler serves /ws/games. A client either sends run_game with a
// setup object (the same fields RunGame accepts) or watch_game with a game
// ID, or connects with ?id=<game id>. The handler then streams every game
// event followed by a game_result frame and closes.
type GameStreamHandler struct {
	simulator    *Simulator
	registry     *game.Registry
	upgrader     websocket.Upgrader
	writeTimeout time.Duration
	pollInterval time.Duration
	logger       *zap.Logger
}

// NewGameStreamHandler creates the handler.
func NewGameStreamHandler(simulator *Simulator, cfg config.WebSocketConfig, logger *zap.Logger) *GameStreamHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}
	return &GameStreamHandler{
		simulator: simulator,
		registry:  simulator.registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		writeTimeout: writeTimeout,
		pollInterval: 20 * time.Millisecond,
		logger:       logger,
	}
}

func (h *GameStreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	sim, err := h.resolve(conn, r.URL.Query().Get("id"))
	if err != nil {
		h.writeError(conn, err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		// Drain control frames and notice when the client goes away.
		for {
			if _, _, err := conn.NextReader(); err != nil {
				cancel()
				return
			}
		}
	}()

	if err := h.stream(ctx, conn, sim); err != nil && !errors.Is(err, context.Canceled) {
		h.logger.Debug("websocket stream ended", zap.String("game_id", sim.ID), zap.Error(err))
	}
}

// resolve finds the simulation a connection asked for, starting one if the
// first message is run_game.
func (h *GameStreamHandler) resolve(conn *websocket.Conn, id string) (*game.Simulation, error) {
	if id != "" {
		return h.lookup(id)
	}

	var msg WSMessage
	if err := conn.ReadJSON(&msg); err != nil {
		return nil, errors.New("invalid message")
	}

	switch msg.Type {
	case MessageWatchGame:
		return h.lookup(msg.GameID)
	case MessageRunGame:
		data, ok := msg.Data.(map[string]any)
		if msg.Data != nil && !ok {
			return nil, errors.New("run_game data must be an object")
		}
		if data == nil {
			data = map[string]any{}
		}
		req, err := structpb.NewStruct(data)
		if err != nil {
			return nil, err
		}
		sim, err := h.simulator.Start(req)
		if err != nil {
			return nil, errors.New(status.Convert(err).Message())
		}
		return sim, nil
	default:
		return nil, errors.New("unknown message type: " + msg.Type)
	}
}

func (h *GameStreamHandler) lookup(id string) (*game.Simulation, error) {
	sim, ok := h.registry.Get(id)
	if !ok {
		return nil, errors.New("game " + id + " not found")
	}
	return sim, nil
}

func (h *GameStreamHandler) write(conn *websocket.Conn, msg WSMessage) error {
	if err := conn.SetWriteDeadline(time.Now().Add(h.writeTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(msg)
}

func (h *GameStreamHandler) writeError(conn *websocket.Conn, err error) {
	_ = h.write(conn, WSMessage{Type: MessageError, Data: err.Error()})
	h.close(conn)
}

func (h *GameStreamHandler) close(conn *websocket.Conn) {
	deadline := time.Now().Add(h.writeTimeout)
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
}

// stream sends events as the game produces them. The event log is read
// after the done check, so nothing recorded before the game ended is
// missed.
func (h *GameStreamHandler) stream(ctx context.Context, conn *websocket.Conn, sim *game.Simulation) error {
	if err := h.write(conn, WSMessage{Type: MessageGameStarted, GameID: sim.ID}); err != nil {
		return err
	}

	ticker := time.NewTicker(h.pollInterval)
	defer ticker.Stop()

	offset := 0
	for {
		finished := sim.Finished()
		events := sim.Events.Since(offset)
		for _, evt := range events {
			if err := h.write(conn, WSMessage{Type: MessageEvent, GameID: sim.ID, Data: newEventMessage(evt)}); err != nil {
				return err
			}
		}
		offset += len(events)

		if finished {
			summary := simulationSummary(sim)
			if err := h.write(conn, WSMessage{Type: MessageGameResult, GameID: sim.ID, Data: summary}); err != nil {
				return err
			}
			h.close(conn)
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sim.Done():
		case <-ticker.C:
		}
	}
}

// NewHTTPServer serves the game stream and a health check.
func NewHTTPServer(cfg config.WebSocketConfig, handler *GameStreamHandler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/ws/games", handler)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	return &http.Server{
		Addr:              cfg.Address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
