package form

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/todo/internal/models"
)

func newWorkflow(h *harness, resetAfterCreate bool) *Workflow {
	return NewWorkflow(NewController(MustValidator()), h.coord, resetAfterCreate)
}

func TestLoadExistingTodo(t *testing.T) {
	h := newHarness(t)
	w := newWorkflow(h, true)

	require.NoError(t, w.Load(&models.Todo{ID: 4, Title: "Buy milk", CompleteBy: time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)}))

	assert.Equal(t, Values{Title: "Buy milk", Date: "2024-03-01", Time: "14:30"}, w.Controller().Values())
	assert.True(t, w.Editing())
	assert.Equal(t, int64(4), w.Target().ID)

	require.NoError(t, w.Load(nil))
	assert.False(t, w.Editing())
	assert.Equal(t, Values{}, w.Controller().Values())
}

func TestSubmitBlankTitleNeverDispatches(t *testing.T) {
	for _, title := range []string{"  ", "\v", "\u00a0", "\u3000", "\u2003 "} {
		h := newHarness(t)
		w := newWorkflow(h, true)
		w.Controller().Bind(FieldTitle).Set(title)
		w.Controller().Bind(FieldDate).Set("2024-03-01")

		_, err := w.Submit(context.Background())

		var ve *ValidationError
		require.ErrorAs(t, err, &ve, "title %q", title)
		assert.Equal(t, MsgRequired, ve.Fields[FieldTitle], "title %q", title)
		assert.Equal(t, MsgRequired, w.Controller().Bind(FieldTitle).Error(), "title %q", title)
		assert.Zero(t, h.store.calls(), "title %q", title)
		assert.Empty(t, h.rec.list(), "title %q", title)
	}
}

func TestSubmitCreateResetsForm(t *testing.T) {
	h := newHarness(t)
	w := newWorkflow(h, true)
	c := w.Controller()
	c.Bind(FieldTitle).Set("Buy milk")
	c.Bind(FieldDate).Set("2024-03-01")
	c.Bind(FieldTime).Set("14:30")

	saved, err := w.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Buy milk", saved.Title)
	assert.Equal(t, Values{}, c.Values())
	assert.Equal(t, StatusIdle, c.Status())
	assert.False(t, w.Editing())
	assert.Empty(t, h.edit.writes)
}

func TestSubmitCreateWithoutReset(t *testing.T) {
	h := newHarness(t)
	w := newWorkflow(h, false)
	w.Controller().Bind(FieldTitle).Set("Buy milk")

	_, err := w.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", w.Controller().Values().Title)
}

func TestSubmitEditKeepsValuesAndClosesModal(t *testing.T) {
	h := newHarness(t)
	h.edit.open = true
	w := newWorkflow(h, true)
	require.NoError(t, w.Load(&models.Todo{ID: 9, Title: "Buy milk", CompleteBy: time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)}))
	w.Controller().Bind(FieldTime).Set("16:00")

	saved, err := w.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(9), saved.ID)
	assert.Equal(t, time.Date(2024, 3, 1, 16, 0, 0, 0, time.UTC), saved.CompleteBy)
	assert.Equal(t, "16:00", w.Controller().Values().Time)
	assert.Equal(t, saved.CompleteBy, w.Target().CompleteBy)
	assert.Equal(t, []bool{false}, h.edit.writes)
}

func TestSubmitFailureLeavesFormUsable(t *testing.T) {
	h := newHarness(t)
	h.store.err = errStore
	w := newWorkflow(h, true)
	w.Controller().Bind(FieldTitle).Set("Buy milk")

	_, err := w.Submit(context.Background())
	assert.ErrorIs(t, err, errStore)
	assert.Equal(t, StatusIdle, w.Controller().Status())
	assert.Equal(t, "Buy milk", w.Controller().Values().Title)
	assert.Empty(t, h.cache.keys)

	h.store.mu.Lock()
	h.store.err = nil
	h.store.mu.Unlock()
	_, err = w.Submit(context.Background())
	require.NoError(t, err)
	assert.Len(t, h.cache.keys, 1)
}

func TestConcurrentSubmitsDispatchOnce(t *testing.T) {
	h := newHarness(t)
	h.store.block = make(chan struct{})
	w := newWorkflow(h, true)
	w.Controller().Bind(FieldTitle).Set("Buy milk")

	first := make(chan error, 1)
	go func() {
		_, err := w.Submit(context.Background())
		first <- err
	}()
	require.Eventually(t, w.Controller().Submitting, time.Second, time.Millisecond)

	const extra = 4
	rejected := make(chan error, extra)
	var wg sync.WaitGroup
	for i := 0; i < extra; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := w.Submit(context.Background())
			rejected <- err
		}()
	}
	wg.Wait()
	close(rejected)

	close(h.store.block)
	require.NoError(t, <-first)

	for err := range rejected {
		assert.ErrorIs(t, err, ErrSubmitInFlight)
	}
	assert.Equal(t, 1, h.store.calls())
	assert.Len(t, h.cache.keys, 1)
}

func TestLoadWhileSubmittingIsRejected(t *testing.T) {
	h := newHarness(t)
	h.edit.open = true
	h.store.block = make(chan struct{})
	w := newWorkflow(h, true)
	todo := &models.Todo{ID: 9, Title: "Buy milk", CompleteBy: time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)}
	require.NoError(t, w.Load(todo))

	first := make(chan error, 1)
	go func() {
		_, err := w.Submit(context.Background())
		first <- err
	}()
	require.Eventually(t, w.Controller().Submitting, time.Second, time.Millisecond)

	assert.ErrorIs(t, w.Load(todo), ErrSubmitInFlight)
	assert.ErrorIs(t, w.Load(nil), ErrSubmitInFlight)
	assert.True(t, w.Editing())
	assert.True(t, w.Controller().Submitting())

	_, err := w.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmitInFlight)
	assert.Equal(t, []string{"save"}, h.rec.list())

	close(h.store.block)
	require.NoError(t, <-first)
	assert.Equal(t, 1, h.store.calls())
	assert.Equal(t, []string{"save", "invalidate", "close"}, h.rec.list())
	require.NoError(t, w.Load(todo))
}
