package rules

import (
	"sort"
	"sync"

	"github.com/kingdomforge/kingdom-server-go/internal/game/cards"
)

// WatcherScope defines the scope of a watcher's tracking.
type WatcherScope int

const (
	// WatcherScopeGame tracks events for the entire game.
	WatcherScopeGame WatcherScope = iota
	// WatcherScopePlayer tracks events for a specific player.
	WatcherScopePlayer
)

// String returns the string representation of the watcher scope.
func (ws WatcherScope) String() string {
	switch ws {
	case WatcherScopeGame:
		return "GAME"
	case WatcherScopePlayer:
		return "PLAYER"
	default:
		return "UNKNOWN"
	}
}

// Watcher observes game events and accumulates statistics or conditions.
type Watcher interface {
	// Watch is called for every event published while the watcher is registered.
	Watch(event Event)

	// Reset clears the watcher's accumulated state.
	Reset()

	// GetScope returns the scope of this watcher.
	GetScope() WatcherScope

	// GetKey returns a unique key for this watcher instance.
	GetKey() string
}

// BaseWatcher provides the key/scope bookkeeping shared by watchers.
type BaseWatcher struct {
	scope        WatcherScope
	controllerID string
	key          string
}

// NewBaseWatcher creates a new base watcher with the specified scope.
func NewBaseWatcher(scope WatcherScope, key string) *BaseWatcher {
	return &BaseWatcher{scope: scope, key: key}
}

// GetScope returns the watcher's scope.
func (bw *BaseWatcher) GetScope() WatcherScope {
	return bw.scope
}

// SetControllerID sets the player a PLAYER scope watcher follows.
func (bw *BaseWatcher) SetControllerID(id string) {
	bw.controllerID = id
}

// GetControllerID returns the controller ID.
func (bw *BaseWatcher) GetControllerID() string {
	return bw.controllerID
}

// GetKey returns the unique key for this watcher.
func (bw *BaseWatcher) GetKey() string {
	if bw.scope == WatcherScopePlayer && bw.controllerID != "" {
		return bw.controllerID + "_" + bw.key
	}
	return bw.key
}

// follows reports whether a PLAYER scope watcher should see the event.
func (bw *BaseWatcher) follows(event Event) bool {
	return bw.scope != WatcherScopePlayer || bw.controllerID == event.PlayerID
}

// ShuffleWatcher counts reshuffles per player.
type ShuffleWatcher struct {
	*BaseWatcher
	mu     sync.Mutex
	counts map[string]int
}

// NewShuffleWatcher creates a game-scope shuffle counter.
func NewShuffleWatcher() *ShuffleWatcher {
	return &ShuffleWatcher{
		BaseWatcher: NewBaseWatcher(WatcherScopeGame, "ShuffleWatcher"),
		counts:      make(map[string]int),
	}
}

// Watch implements Watcher.
func (w *ShuffleWatcher) Watch(event Event) {
	if event.Type != EventShuffle {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.counts[event.PlayerID]++
}

// Reset implements Watcher.
func (w *ShuffleWatcher) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.counts = make(map[string]int)
}

// Count returns how many times the player reshuffled.
func (w *ShuffleWatcher) Count(playerID string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.counts[playerID]
}

// PurchaseWatcher tallies the cards a single player bought or gained.
type PurchaseWatcher struct {
	*BaseWatcher
	mu     sync.Mutex
	counts map[cards.Name]int
	total  int
}

// NewPurchaseWatcher creates a watcher following one player.
func NewPurchaseWatcher(playerID string) *PurchaseWatcher {
	base := NewBaseWatcher(WatcherScopePlayer, "PurchaseWatcher")
	base.SetControllerID(playerID)
	return &PurchaseWatcher{
		BaseWatcher: base,
		counts:      make(map[cards.Name]int),
	}
}

// Watch implements Watcher.
func (w *PurchaseWatcher) Watch(event Event) {
	if event.Type != EventCardBoughtGained || !w.follows(event) {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.counts[event.Card]++
	w.total++
}

// Reset implements Watcher.
func (w *PurchaseWatcher) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.counts = make(map[cards.Name]int)
	w.total = 0
}

// Total returns the number of cards gained.
func (w *PurchaseWatcher) Total() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.total
}

// Tally returns gained cards sorted by name.
func (w *PurchaseWatcher) Tally() []cards.Run {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]cards.Run, 0, len(w.counts))
	for name, count := range w.counts {
		out = append(out, cards.Run{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// WatcherRegistry manages watchers for a game.
type WatcherRegistry struct {
	mu       sync.RWMutex
	watchers map[string]Watcher
	order    []string
}

// NewWatcherRegistry creates a new watcher registry.
func NewWatcherRegistry() *WatcherRegistry {
	return &WatcherRegistry{
		watchers: make(map[string]Watcher),
	}
}

// AddWatcher adds a watcher to the registry, replacing one with the same key.
func (wr *WatcherRegistry) AddWatcher(watcher Watcher) {
	if watcher == nil {
		return
	}

	wr.mu.Lock()
	defer wr.mu.Unlock()

	key := watcher.GetKey()
	if _, exists := wr.watchers[key]; !exists {
		wr.order = append(wr.order, key)
	}
	wr.watchers[key] = watcher
}

// RemoveWatcher removes a watcher from the registry.
func (wr *WatcherRegistry) RemoveWatcher(key string) {
	wr.mu.Lock()
	defer wr.mu.Unlock()

	if _, ok := wr.watchers[key]; !ok {
		return
	}
	delete(wr.watchers, key)
	for i, k := range wr.order {
		if k == key {
			wr.order = append(wr.order[:i], wr.order[i+1:]...)
			break
		}
	}
}

// GetWatcher retrieves a watcher by key.
func (wr *WatcherRegistry) GetWatcher(key string) Watcher {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	return wr.watchers[key]
}

// GetWatchersByScope returns all watchers for a given scope in registration order.
func (wr *WatcherRegistry) GetWatchersByScope(scope WatcherScope) []Watcher {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	var result []Watcher
	for _, key := range wr.order {
		if w := wr.watchers[key]; w.GetScope() == scope {
			result = append(result, w)
		}
	}
	return result
}

// ResetWatchers resets all watchers.
func (wr *WatcherRegistry) ResetWatchers() {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	for _, watcher := range wr.watchers {
		watcher.Reset()
	}
}

// NotifyWatchers notifies all watchers of an event in registration order.
func (wr *WatcherRegistry) NotifyWatchers(event Event) {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	for _, key := range wr.order {
		wr.watchers[key].Watch(event)
	}
}

// Attach subscribes the registry to a bus and returns the subscription handle.
func (wr *WatcherRegistry) Attach(bus *EventBus) int {
	return bus.Subscribe(wr.NotifyWatchers)
}
