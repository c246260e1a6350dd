package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/socialchef/cocktail-studio/internal/api"
	"github.com/socialchef/cocktail-studio/internal/config"
	"github.com/socialchef/cocktail-studio/internal/flow"
	"github.com/socialchef/cocktail-studio/internal/services/recipe"
	"github.com/socialchef/cocktail-studio/internal/store"
	"github.com/socialchef/cocktail-studio/internal/studio"
	"github.com/socialchef/cocktail-studio/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	handler   http.Handler
	queue     *memoryQueue
	processor *worker.DeliveryProcessor
}

func setupQueueFixture(t *testing.T, delays flow.DelaySource) *fixture {
	t.Helper()

	s := store.NewMemoryStore()
	q := newMemoryQueue()
	st := studio.New(studio.Options{
		Store:      s,
		Dispatcher: worker.NewDispatcher(q),
		Delays:     delays,
	})
	cfg := &config.Config{ServiceName: "cocktail-studio-integration"}

	return &fixture{
		handler:   api.NewServer(cfg, st).Router(),
		queue:     q,
		processor: worker.NewDeliveryProcessor(s),
	}
}

func (f *fixture) post(t *testing.T, path, input string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(map[string]string{"input": input})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

func (f *fixture) get(t *testing.T, path string, v any) {
	t.Helper()
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v))
}

func (f *fixture) process(t *testing.T, tasks []queuedTask) {
	t.Helper()
	for _, qt := range tasks {
		require.NoError(t, f.processor.HandleDeliverResult(context.Background(), qt.task))
	}
}

func TestQueue_IdeasRoundTrip(t *testing.T) {
	f := setupQueueFixture(t, flow.FixedDelay(900*time.Millisecond))

	rr := f.post(t, "/api/ideas", "fumaça")
	require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())

	var pending flow.State[[]recipe.Recipe]
	f.get(t, "/api/ideas", &pending)
	assert.True(t, pending.Loading)

	tasks := f.queue.drain()
	require.Len(t, tasks, 1)
	assert.Equal(t, worker.TypeDeliverResult, tasks[0].task.Type())
	assert.Equal(t, 900*time.Millisecond, tasks[0].processIn)
	assert.NotEmpty(t, tasks[0].id)

	f.process(t, tasks)

	var done flow.State[[]recipe.Recipe]
	f.get(t, "/api/ideas", &done)
	assert.False(t, done.Loading)
	require.Len(t, done.Result, 3)
	for _, r := range done.Result {
		assert.Contains(t, r.Title, "fumaça")
	}
}

func TestQueue_LastProcessedDeliveryWins(t *testing.T) {
	f := setupQueueFixture(t, flow.FixedDelay(time.Second))

	require.Equal(t, http.StatusAccepted, f.post(t, "/api/research", "acidez").Code)
	require.Equal(t, http.StatusAccepted, f.post(t, "/api/research", "espuma").Code)

	tasks := f.queue.drain()
	require.Len(t, tasks, 2)

	// The first delivery completes last.
	f.process(t, []queuedTask{tasks[1], tasks[0]})

	var state flow.State[string]
	f.get(t, "/api/research", &state)
	assert.False(t, state.Loading)
	assert.Contains(t, state.Result, "'acidez'")
}

func TestQueue_EmptyInputEnqueuesNothing(t *testing.T) {
	f := setupQueueFixture(t, nil)

	rr := f.post(t, "/api/visual", " \u0000\t ")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, f.queue.drain())
}

func TestQueue_FlowsAreIndependent(t *testing.T) {
	f := setupQueueFixture(t, flow.FixedDelay(time.Second))

	require.Equal(t, http.StatusAccepted, f.post(t, "/api/ideas", "lime").Code)
	require.Equal(t, http.StatusAccepted, f.post(t, "/api/visual", "lime").Code)

	tasks := f.queue.drain()
	require.Len(t, tasks, 2)
	f.process(t, tasks[:1])

	var snap studio.Snapshot
	f.get(t, "/api/studio", &snap)
	assert.False(t, snap.Ideas.Loading)
	assert.True(t, snap.Visual.Loading)
	assert.False(t, snap.Research.Loading)
	assert.False(t, snap.Research.HasResult)
}

func TestTimerDispatcher_EndToEnd(t *testing.T) {
	s := store.NewMemoryStore()
	timers := flow.NewTimerDispatcher(s)
	st := studio.New(studio.Options{
		Store:      s,
		Dispatcher: timers,
		Delays:     flow.FixedDelay(5 * time.Millisecond),
	})

	triggered, err := st.Trigger(context.Background(), flow.KindResearch, "  pH do xarope ")
	require.NoError(t, err)
	require.True(t, triggered)

	timers.Wait()

	state, err := st.Research.Snapshot(context.Background())
	require.NoError(t, err)
	assert.False(t, state.Loading)
	assert.True(t, strings.HasPrefix(state.Result, "Resumo curto sobre 'pH do xarope'"))
}
