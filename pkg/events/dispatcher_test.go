// -----------------------------------------------------------------------------
// Event Dispatcher Tests
// -----------------------------------------------------------------------------
// Testler:
// - Query event payload'ları
// - Wildcard listener'lar
// - Graceful shutdown
// - Concurrent dispatch
// -----------------------------------------------------------------------------

package events

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockLogger, test için basit logger.
type MockLogger struct {
	mu   sync.Mutex
	logs []string
}

func (m *MockLogger) Printf(format string, v ...interface{}) {
	m.mu.Lock()
	m.logs = append(m.logs, fmt.Sprintf(format, v...))
	m.mu.Unlock()
}

func (m *MockLogger) Println(v ...interface{}) {
	m.mu.Lock()
	m.logs = append(m.logs, fmt.Sprint(v...))
	m.mu.Unlock()
}

func (m *MockLogger) GetLogs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.logs...)
}

// TestListener, çağrı sayısını tutan listener.
type TestListener struct {
	handled atomic.Int32
	delay   time.Duration
	err     error
	last    atomic.Value
}

func (l *TestListener) Handle(event Event) error {
	if l.delay > 0 {
		time.Sleep(l.delay)
	}
	l.last.Store(event)
	l.handled.Add(1)
	return l.err
}

func (l *TestListener) HandledCount() int {
	return int(l.handled.Load())
}

func TestDispatcher_QueryEventPayload(t *testing.T) {
	dispatcher := NewDispatcher(&MockLogger{})
	defer dispatcher.Shutdown()

	listener := &TestListener{}
	dispatcher.Listen(EventQueryExecuted, listener)

	payload := QueryPayload{SQL: "SELECT 1", Duration: time.Millisecond, RowsAffected: -1}
	require.NoError(t, dispatcher.Dispatch(NewQueryEvent(EventQueryExecuted, payload)))

	require.Equal(t, 1, listener.HandledCount())
	got := listener.last.Load().(Event)
	assert.Equal(t, EventQueryExecuted, got.Name())
	assert.Equal(t, payload, got.Payload())
	assert.False(t, got.OccurredAt().IsZero())
}

func TestDispatcher_WildcardReceivesEverything(t *testing.T) {
	dispatcher := NewDispatcher(&MockLogger{})
	defer dispatcher.Shutdown()

	specific := &TestListener{}
	all := &TestListener{}
	dispatcher.Listen(EventQueryFailed, specific)
	dispatcher.Listen(Wildcard, all)

	dispatcher.Dispatch(NewQueryEvent(EventQueryFailed, QueryPayload{}))
	dispatcher.Dispatch(NewQueryEvent(EventTransactionCommitted, QueryPayload{}))

	assert.Equal(t, 1, specific.HandledCount())
	assert.Equal(t, 2, all.HandledCount())
}

func TestDispatcher_NoListenersIsSilent(t *testing.T) {
	logger := &MockLogger{}
	dispatcher := NewDispatcher(logger)
	defer dispatcher.Shutdown()

	require.NoError(t, dispatcher.Dispatch(NewQueryEvent(EventQueryExecuted, QueryPayload{})))
	assert.Empty(t, logger.GetLogs())
}

// Bir listener'ın hatası diğerlerini durdurmaz; hatalar birleştirilir.
func TestDispatcher_ListenerErrors(t *testing.T) {
	dispatcher := NewDispatcher(&MockLogger{})
	defer dispatcher.Shutdown()

	errA := errors.New("a failed")
	errB := errors.New("b failed")
	first := &TestListener{err: errA}
	second := &TestListener{}
	third := &TestListener{err: errB}

	dispatcher.Listen("test.event", first)
	dispatcher.Listen("test.event", second)
	dispatcher.Listen(Wildcard, third)

	err := dispatcher.Dispatch(NewBaseEvent("test.event", nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.Equal(t, 1, second.HandledCount())
}

func TestDispatcher_ForgetAndStats(t *testing.T) {
	dispatcher := NewDispatcher(&MockLogger{})
	defer dispatcher.Shutdown()

	listener := &TestListener{}
	dispatcher.Subscribe([]string{EventTransactionCommitted, EventTransactionRolledBack}, listener)

	assert.True(t, dispatcher.HasListeners(EventTransactionCommitted))
	assert.Equal(t, map[string]int{
		EventTransactionCommitted:  1,
		EventTransactionRolledBack: 1,
	}, dispatcher.Stats())

	dispatcher.Forget(EventTransactionCommitted)
	assert.False(t, dispatcher.HasListeners(EventTransactionCommitted))

	dispatcher.Clear()
	assert.Empty(t, dispatcher.Stats())
}

func TestDispatcher_AsyncDispatch(t *testing.T) {
	dispatcher := NewDispatcher(&MockLogger{})

	listener := &TestListener{delay: 50 * time.Millisecond}
	dispatcher.Listen("test.event", listener)

	start := time.Now()
	for i := 0; i < 5; i++ {
		dispatcher.DispatchAsync(NewBaseEvent("test.event", i))
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)

	// Shutdown bekleyen tüm event'lerin bitmesini bekler
	dispatcher.Shutdown()
	assert.Equal(t, 5, listener.HandledCount())
}

func TestDispatcher_AsyncAfterShutdown(t *testing.T) {
	dispatcher := NewDispatcher(&MockLogger{})

	listener := &TestListener{}
	dispatcher.Listen("test.event", listener)
	dispatcher.Shutdown()

	dispatcher.DispatchAsync(NewBaseEvent("test.event", nil))
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, 0, listener.HandledCount())
}

func TestDispatcher_ShutdownWithTimeout(t *testing.T) {
	dispatcher := NewDispatcher(&MockLogger{})

	listener := &TestListener{delay: 500 * time.Millisecond}
	dispatcher.Listen("test.event", listener)
	dispatcher.DispatchAsync(NewBaseEvent("test.event", nil))

	assert.Error(t, dispatcher.ShutdownWithTimeout(50*time.Millisecond))
}

func TestDispatcher_ConcurrentDispatch(t *testing.T) {
	dispatcher := NewDispatcher(&MockLogger{})
	defer dispatcher.Shutdown()

	listener := &TestListener{}
	dispatcher.Listen(EventQueryExecuted, listener)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				dispatcher.Dispatch(NewQueryEvent(EventQueryExecuted, QueryPayload{}))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1000, listener.HandledCount())
}

func TestConditionalListener(t *testing.T) {
	dispatcher := NewDispatcher(&MockLogger{})
	defer dispatcher.Shutdown()

	listener := &TestListener{}
	slow := func(e Event) bool {
		return e.Payload().(QueryPayload).Duration > time.Second
	}
	dispatcher.Listen(EventQueryExecuted, NewConditionalListener(listener, slow))

	dispatcher.Dispatch(NewQueryEvent(EventQueryExecuted, QueryPayload{Duration: 2 * time.Second}))
	dispatcher.Dispatch(NewQueryEvent(EventQueryExecuted, QueryPayload{Duration: time.Millisecond}))

	assert.Equal(t, 1, listener.HandledCount())
}

func BenchmarkDispatcher_QueryEvent(b *testing.B) {
	dispatcher := NewDispatcher(&MockLogger{})
	defer dispatcher.Shutdown()

	dispatcher.Listen(EventQueryExecuted, &TestListener{})
	event := NewQueryEvent(EventQueryExecuted, QueryPayload{SQL: "SELECT 1"})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		dispatcher.Dispatch(event)
	}
}
