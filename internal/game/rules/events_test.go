package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kingdomforge/kingdom-server-go/internal/game/cards"
	"github.com/kingdomforge/kingdom-server-go/internal/game/counters"
)

func TestEventBusSubscribeTyped(t *testing.T) {
	bus := NewEventBus()

	shuffles := 0
	purchases := 0

	handle1 := bus.SubscribeTyped(EventShuffle, func(e Event) {
		shuffles++
	})
	bus.SubscribeTyped(EventCardBoughtGained, func(e Event) {
		purchases++
	})

	bus.Publish(NewEvent(EventShuffle, "P1"))
	bus.Publish(NewCardEvent(EventCardBoughtGained, "P1", cards.NameSilver))
	assert.Equal(t, 1, shuffles)
	assert.Equal(t, 1, purchases)

	bus.Unsubscribe(handle1)
	bus.Publish(NewEvent(EventShuffle, "P1"))
	assert.Equal(t, 1, shuffles, "typed listener should be removed")
}

func TestEventBusSubscribeAllInOrder(t *testing.T) {
	bus := NewEventBus()

	var order []int
	first := bus.Subscribe(func(e Event) { order = append(order, 1) })
	bus.Subscribe(func(e Event) { order = append(order, 2) })
	assert.Equal(t, -1, bus.Subscribe(nil))

	bus.Publish(NewEvent(EventTurnStart, "P1"))
	bus.Publish(NewEventWithAmount(EventDrawCards, "P1", 5))
	assert.Equal(t, []int{1, 2, 1, 2}, order)

	bus.Unsubscribe(first)
	bus.Publish(NewEvent(EventTurnStart, "P1"))
	assert.Equal(t, []int{1, 2, 1, 2, 2}, order)
}

func TestEventBusForwardsToLog(t *testing.T) {
	bus := NewEventBus()
	buffer := NewBufferLog()
	bus.SubscribeLog(buffer)

	var log GameLog = bus
	log.Record(NewEventWithAmount(EventDrawCards, "P1", 3))
	log.Record(NewEvent(EventShuffle, "P2"))

	require.Equal(t, 2, buffer.Len())
	assert.Equal(t, 3, buffer.Events()[0].Amount)
	assert.Len(t, buffer.OfType(EventShuffle), 1)
	assert.Len(t, buffer.Since(1), 1)
	assert.Nil(t, buffer.Since(5))
}

func TestNullLogIgnoresEvents(t *testing.T) {
	var log GameLog = NullLog{}
	assert.NotPanics(t, func() { log.Record(NewEvent(EventGameEnded, "")) })
}

func TestZapLogWritesFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := NewZapLog(zap.New(core))

	played := NewCardEvent(EventCardPlayed, "P1", cards.NameCopper)
	played.Round = 2
	played.Counters = counters.PlayerCounters{Actions: 1, Buys: 1, Coins: 1}
	log.Record(played)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "game event", entry.Message)
	fields := entry.ContextMap()
	assert.Equal(t, "CARD_PLAYED", fields["type"])
	assert.Equal(t, "Copper", fields["card"])
	assert.Equal(t, "[1A 1B 1C]", fields["counters"])
	assert.EqualValues(t, 2, fields["round"])
}

func TestZapLogRespectsLevel(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	log := NewZapLog(zap.New(core))

	log.Record(NewEvent(EventTurnStart, "P1"))
	assert.Equal(t, 0, logs.Len())

	assert.NotPanics(t, func() { NewZapLog(nil).Record(NewEvent(EventTurnStart, "P1")) })
}
