package rendezvous

import (
	"sync"
	"testing"

	"github.com/joeycumines/logiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testEvent is a minimal logiface.Event implementation capturing structured
// fields, for testing the lifecycle logging paths.
type testEvent struct {
	logiface.UnimplementedEvent
	level  logiface.Level
	fields map[string]any
	msg    string
}

func (x *testEvent) Level() logiface.Level { return x.level }

func (x *testEvent) AddField(key string, val any) {
	if x.fields == nil {
		x.fields = make(map[string]any)
	}
	x.fields[key] = val
}

func (x *testEvent) AddMessage(msg string) bool {
	x.msg = msg
	return true
}

// testEventFactory creates testEvent instances.
type testEventFactory struct{}

func (testEventFactory) NewEvent(level logiface.Level) *testEvent {
	return &testEvent{level: level}
}

// testEventWriter collects written events.
type testEventWriter struct {
	mu     sync.Mutex
	events []*testEvent
}

func (x *testEventWriter) Write(event *testEvent) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.events = append(x.events, event)
	return nil
}

func (x *testEventWriter) byField(key, value string) (out []*testEvent) {
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, e := range x.events {
		if e.fields[key] == value {
			out = append(out, e)
		}
	}
	return
}

func newTestLogger() (*logiface.Logger[logiface.Event], *testEventWriter) {
	writer := &testEventWriter{}
	typed := logiface.New[*testEvent](
		logiface.WithEventFactory[*testEvent](testEventFactory{}),
		logiface.WithWriter[*testEvent](writer),
		logiface.WithLevel[*testEvent](logiface.LevelTrace),
	)
	return typed.Logger(), writer
}

func TestLogging_LifecycleEvents(t *testing.T) {
	logger, writer := newTestLogger()
	r, err := New[int](WithLogger(logger))
	require.NoError(t, err)

	p, err := r.Join()
	require.NoError(t, err)
	data := 1
	res := attendSum(p, &data)
	require.Equal(t, 1, res.passed)
	p.Leave()
	r.Close()

	assert.Len(t, writer.byField(`event`, `join`), 1)
	assert.Len(t, writer.byField(`event`, `master`), 1)
	assert.Len(t, writer.byField(`event`, `leave`), 1)
	assert.Len(t, writer.byField(`event`, `close`), 1)
}

func TestLogging_AdmissionEvent(t *testing.T) {
	logger, writer := newTestLogger()
	r, err := New[int](WithLogger(logger))
	require.NoError(t, err)

	pA, err := r.Join()
	require.NoError(t, err)
	dataA := 1
	require.Equal(t, 1, attendSum(pA, &dataA).passed)

	done := make(chan struct{})
	go func() {
		defer close(done)
		pB, err := r.Join()
		if err != nil {
			return
		}
		dataB := 2
		attendSum(pB, &dataB)
		pB.Leave()
	}()
	for attendSum(pA, &dataA).passed != 2 {
	}
	for attendSum(pA, &dataA).passed != 1 {
	}
	<-done
	pA.Leave()
	r.Close()

	admits := writer.byField(`event`, `admit`)
	require.NotEmpty(t, admits, "the master admitting B must log")
	assert.Equal(t, 1, admits[0].fields[`admitted`])
}

func TestLogging_NilLoggerIsSilent(t *testing.T) {
	// nil logger: every lifecycle path still runs, with no logging side
	// effects (logiface builders are nil-safe)
	r, err := New[int]()
	require.NoError(t, err)
	p, err := r.Join()
	require.NoError(t, err)
	data := 1
	attendSum(p, &data)
	p.Leave()
	r.Close()
}
