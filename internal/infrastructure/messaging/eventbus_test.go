package messaging

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/domain/shared"
)

func testBus(async bool) *InMemoryEventBus {
	return NewInMemoryEventBus(Config{
		AsyncMode:      async,
		WorkerPoolSize: 4,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

type recordingHandler struct {
	delay time.Duration

	mu     sync.Mutex
	events []shared.Event
}

func (h *recordingHandler) Handle(event shared.Event) error {
	if h.delay > 0 {
		time.Sleep(h.delay)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return nil
}

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.events)
}

func TestInMemoryEventBus_PublishRoutesByType(t *testing.T) {
	bus := testBus(false)
	defer bus.Close()

	closed := &recordingHandler{}
	refreshed := &recordingHandler{}

	require.NoError(t, bus.Subscribe(shared.EventPeriodClosed, closed))
	require.NoError(t, bus.Subscribe(shared.EventRefreshCompleted, refreshed))

	boundary := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	event := shared.NewPeriodClosedEvent("day", boundary, 3, "period:day")

	require.NoError(t, bus.Publish(event))

	assert.Equal(t, 1, closed.count())
	assert.Equal(t, 0, refreshed.count())
}

func TestInMemoryEventBus_SubscribeAllSeesEverything(t *testing.T) {
	bus := testBus(false)
	defer bus.Close()

	all := &recordingHandler{}
	require.NoError(t, bus.SubscribeAll(all))

	boundary := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, bus.Publish(shared.NewPeriodClosedEvent("day", boundary, 1, "period:day")))
	require.NoError(t, bus.Publish(shared.NewRefreshCompletedEvent(5, 5, 0, time.Second, "cycle")))

	assert.Equal(t, 2, all.count())
}

func TestInMemoryEventBus_AsyncDeliveryCompletesOnClose(t *testing.T) {
	bus := testBus(true)

	// The delay keeps all four worker slots busy, so most of the ten
	// deliveries are still waiting for a slot when Close is called.
	handler := &recordingHandler{delay: 20 * time.Millisecond}
	require.NoError(t, bus.Subscribe(shared.EventRefreshCompleted, handler))

	for i := 0; i < 10; i++ {
		require.NoError(t, bus.Publish(shared.NewRefreshCompletedEvent(1, 1, 0, time.Millisecond, "cycle")))
	}

	// Close waits for queued deliveries too, not just in-flight ones.
	require.NoError(t, bus.Close())
	assert.Equal(t, 10, handler.count())
}

func TestInMemoryEventBus_ClosedBusRejectsPublish(t *testing.T) {
	bus := testBus(false)
	require.NoError(t, bus.Close())

	err := bus.Publish(shared.NewRefreshCompletedEvent(1, 1, 0, 0, "cycle"))
	assert.ErrorIs(t, err, ErrEventBusClosed)
}

func TestInMemoryEventBus_NilChecks(t *testing.T) {
	bus := testBus(false)
	defer bus.Close()

	assert.ErrorIs(t, bus.Publish(nil), ErrNilEvent)
	assert.ErrorIs(t, bus.Subscribe(shared.EventPeriodClosed, nil), ErrNilHandler)
}
