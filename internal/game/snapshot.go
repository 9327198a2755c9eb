package game

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/kingdomforge/kingdom-server-go/internal/game/cards"
	"github.com/kingdomforge/kingdom-server-go/internal/game/supply"
	"github.com/kingdomforge/kingdom-server-go/internal/game/zones"
)

// Snapshot is a point-in-time copy of a game: every player's zones and the
// supply. Snapshots are plain data and gob-encodable.
type Snapshot struct {
	GameID    string
	State     GameState
	Round     int
	Players   []zones.Snapshot
	Supply    []supply.PileInfo
	Timestamp time.Time
}

// Snapshot captures the current game state.
func (g *Game) Snapshot() *Snapshot {
	players := make([]zones.Snapshot, len(g.players))
	for i, s := range g.players {
		players[i] = s.area.Snapshot()
	}
	return &Snapshot{
		GameID:    g.id,
		State:     g.state,
		Round:     g.turns.Round(),
		Players:   players,
		Supply:    g.supply.Piles(),
		Timestamp: time.Now(),
	}
}

// SerializationChecksum identifies a snapshot's game state.
type SerializationChecksum struct {
	Hash      string // SHA-256 of the canonical representation
	Timestamp string
	Version   int
}

// ComputeChecksum hashes the canonical representation of the snapshot. The
// timestamp is not part of it, so equal games hash equal whenever they were
// captured.
func (snapshot *Snapshot) ComputeChecksum() (*SerializationChecksum, error) {
	hash := sha256.New()
	if _, err := hash.Write([]byte(snapshot.canonical())); err != nil {
		return nil, fmt.Errorf("failed to compute hash: %w", err)
	}

	return &SerializationChecksum{
		Hash:      hex.EncodeToString(hash.Sum(nil)),
		Timestamp: snapshot.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z"),
		Version:   1,
	}, nil
}

// canonical lists zones in order; pile order is game state and is kept.
func (snapshot *Snapshot) canonical() string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "GAME:%s|%s|%d\n", snapshot.GameID, snapshot.State, snapshot.Round)
	for _, p := range snapshot.Players {
		fmt.Fprintf(&buf, "PLAYER:%s\n", p.Owner)
		writeZone(&buf, "DECK", p.Deck)
		writeZone(&buf, "HAND", p.Hand)
		writeZone(&buf, "IN_PLAY", p.InPlay)
		writeZone(&buf, "DISCARD", p.Discard)
	}
	for _, pile := range snapshot.Supply {
		fmt.Fprintf(&buf, "SUPPLY:%s|%d|%d\n", pile.Name, pile.Cost, pile.Count)
	}
	return buf.String()
}

func writeZone(buf *bytes.Buffer, zone string, names []cards.Name) {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = string(n)
	}
	fmt.Fprintf(buf, "  %s:%s\n", zone, strings.Join(parts, ","))
}

// VerifyChecksum reports whether the snapshot still hashes to expected.
func (snapshot *Snapshot) VerifyChecksum(expected *SerializationChecksum) (bool, error) {
	computed, err := snapshot.ComputeChecksum()
	if err != nil {
		return false, fmt.Errorf("failed to compute checksum: %w", err)
	}
	return computed.Hash == expected.Hash, nil
}

// SerializeToBytes gob-encodes the snapshot.
func (snapshot *Snapshot) SerializeToBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snapshot); err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// DeserializeFromBytes decodes a snapshot written by SerializeToBytes.
func DeserializeFromBytes(data []byte) (*Snapshot, error) {
	var snapshot Snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snapshot, nil
}

// ValidateSerializationRoundtrip checks that encoding and decoding the
// snapshot preserves its checksum.
func ValidateSerializationRoundtrip(snapshot *Snapshot) error {
	original, err := snapshot.ComputeChecksum()
	if err != nil {
		return fmt.Errorf("failed to compute original checksum: %w", err)
	}
	data, err := snapshot.SerializeToBytes()
	if err != nil {
		return fmt.Errorf("failed to serialize: %w", err)
	}
	decoded, err := DeserializeFromBytes(data)
	if err != nil {
		return fmt.Errorf("failed to deserialize: %w", err)
	}
	ok, err := decoded.VerifyChecksum(original)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("checksum mismatch after roundtrip for game %s", snapshot.GameID)
	}
	return nil
}
