package rules

import (
	"sync"

	"github.com/kingdomforge/kingdom-server-go/internal/game/cards"
	"github.com/kingdomforge/kingdom-server-go/internal/game/counters"
)

// EventType indicates the category of a game event.
type EventType string

const (
	EventTurnStart        EventType = "TURN_START"
	EventPhaseChanged     EventType = "PHASE_CHANGED"
	EventCardPlayed       EventType = "CARD_PLAYED"
	EventCardBoughtGained EventType = "CARD_BOUGHT_GAINED"
	EventDrawCards        EventType = "DRAW_CARDS"
	EventShuffle          EventType = "SHUFFLE"
	EventGameEnded        EventType = "GAME_ENDED"
)

// AllEventTypes lists every event type in emission-independent order.
func AllEventTypes() []EventType {
	return []EventType{
		EventTurnStart,
		EventPhaseChanged,
		EventCardPlayed,
		EventCardBoughtGained,
		EventDrawCards,
		EventShuffle,
		EventGameEnded,
	}
}

// Event is a structured record of something the engine did. Only the fields
// relevant to Type are set.
type Event struct {
	Type        EventType
	PlayerID    string
	Round       int
	Card        cards.Name
	Amount      int
	Phase       Phase
	Counters    counters.PlayerCounters
	Description string
}

// NewEvent creates an event for a player.
func NewEvent(eventType EventType, playerID string) Event {
	return Event{
		Type:     eventType,
		PlayerID: playerID,
	}
}

// NewCardEvent creates an event about a single card.
func NewCardEvent(eventType EventType, playerID string, card cards.Name) Event {
	evt := NewEvent(eventType, playerID)
	evt.Card = card
	return evt
}

// NewEventWithAmount creates an event carrying a count.
func NewEventWithAmount(eventType EventType, playerID string, amount int) Event {
	evt := NewEvent(eventType, playerID)
	evt.Amount = amount
	return evt
}

// GameLog receives engine events. Implementations must not influence the
// engine; a log that drops everything is valid.
type GameLog interface {
	Record(event Event)
}

// NullLog discards every event.
type NullLog struct{}

// Record implements GameLog.
func (NullLog) Record(Event) {}

// BufferLog keeps every event in order. It is safe to read while a game
// running on another goroutine is still recording.
type BufferLog struct {
	mu     sync.RWMutex
	events []Event
}

// NewBufferLog creates an empty buffer.
func NewBufferLog() *BufferLog {
	return &BufferLog{events: make([]Event, 0, 64)}
}

// Record implements GameLog.
func (b *BufferLog) Record(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

// Events returns a copy of the recorded events.
func (b *BufferLog) Events() []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Event, len(b.events))
	copy(out, b.events)
	return out
}

// Since returns the events recorded at or after offset.
func (b *BufferLog) Since(offset int) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if offset >= len(b.events) {
		return nil
	}
	if offset < 0 {
		offset = 0
	}
	out := make([]Event, len(b.events)-offset)
	copy(out, b.events[offset:])
	return out
}

// OfType filters the recorded events.
func (b *BufferLog) OfType(eventType EventType) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []Event
	for _, evt := range b.events {
		if evt.Type == eventType {
			out = append(out, evt)
		}
	}
	return out
}

// Len returns the number of recorded events.
func (b *BufferLog) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.events)
}

// Listener defines a callback that reacts to incoming events.
type Listener func(Event)

type subscription struct {
	handle   int
	listener Listener
}

// TypedListener defines a callback that reacts to a specific event type.
type TypedListener struct {
	Handle    int
	EventType EventType
	Callback  func(Event)
}

// EventBus provides a synchronous publish/subscribe implementation with type
// filtering. Listeners are called in subscription order.
type EventBus struct {
	mu             sync.RWMutex
	listeners      []subscription
	typedListeners map[EventType][]TypedListener
	nextHandle     int
}

// NewEventBus constructs a fresh event bus instance.
func NewEventBus() *EventBus {
	return &EventBus{
		typedListeners: make(map[EventType][]TypedListener),
	}
}

// Subscribe registers a listener for all events and returns a handle.
func (bus *EventBus) Subscribe(listener Listener) int {
	if listener == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.listeners = append(bus.listeners, subscription{handle: handle, listener: listener})
	return handle
}

// SubscribeLog forwards every event to a GameLog.
func (bus *EventBus) SubscribeLog(log GameLog) int {
	if log == nil {
		return -1
	}
	return bus.Subscribe(log.Record)
}

// SubscribeTyped registers a listener for a specific event type.
func (bus *EventBus) SubscribeTyped(eventType EventType, callback func(Event)) int {
	if callback == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.typedListeners[eventType] = append(bus.typedListeners[eventType], TypedListener{
		Handle:    handle,
		EventType: eventType,
		Callback:  callback,
	})
	return handle
}

// Unsubscribe removes the listener identified by the provided handle,
// whether it was registered with Subscribe or SubscribeTyped.
func (bus *EventBus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	for i, sub := range bus.listeners {
		if sub.handle == handle {
			bus.listeners = append(bus.listeners[:i], bus.listeners[i+1:]...)
			return
		}
	}
	for eventType, listeners := range bus.typedListeners {
		for i := len(listeners) - 1; i >= 0; i-- {
			if listeners[i].Handle == handle {
				bus.typedListeners[eventType] = append(listeners[:i], listeners[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers the event to all registered listeners synchronously.
func (bus *EventBus) Publish(event Event) {
	bus.mu.RLock()
	defer bus.mu.RUnlock()

	for _, sub := range bus.listeners {
		sub.listener(event)
	}
	for _, listener := range bus.typedListeners[event.Type] {
		listener.Callback(event)
	}
}

// Record implements GameLog so the bus can be handed to the engine directly.
func (bus *EventBus) Record(event Event) {
	bus.Publish(event)
}
