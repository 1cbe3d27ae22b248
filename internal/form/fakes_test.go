package form

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tgienger/todo/internal/models"
)

// recorder keeps the order in which collaborators are called
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

type fakeStore struct {
	rec    *recorder
	err    error
	inputs []models.TodoInput
	nextID int64
	// block, when set, holds SaveTodo until it is closed
	block chan struct{}
	mu    sync.Mutex
}

func (s *fakeStore) SaveTodo(ctx context.Context, in models.TodoInput) (*models.Todo, error) {
	s.rec.add("save")
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs = append(s.inputs, in)
	if s.err != nil {
		return nil, s.err
	}
	id := in.ID
	if id == 0 {
		s.nextID++
		id = s.nextID
	}
	return &models.Todo{ID: id, Title: in.Title, CompleteBy: in.CompleteBy}, nil
}

func (s *fakeStore) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inputs)
}

type fakeCache struct {
	rec  *recorder
	err  error
	keys []string
}

func (c *fakeCache) Invalidate(ctx context.Context, key string) error {
	c.rec.add("invalidate")
	c.keys = append(c.keys, key)
	return c.err
}

type fakeEdit struct {
	rec    *recorder
	open   bool
	writes []bool
}

func (e *fakeEdit) Open() bool { return e.open }

func (e *fakeEdit) SetOpen(open bool) {
	e.rec.add("close")
	e.open = open
	e.writes = append(e.writes, open)
}

type harness struct {
	rec   *recorder
	store *fakeStore
	cache *fakeCache
	edit  *fakeEdit
	coord *Coordinator
}

var fixedNow = time.Date(2024, 2, 10, 8, 15, 0, 0, time.UTC)

func newHarness(t *testing.T) *harness {
	t.Helper()
	rec := &recorder{}
	h := &harness{
		rec:   rec,
		store: &fakeStore{rec: rec},
		cache: &fakeCache{rec: rec},
		edit:  &fakeEdit{rec: rec},
	}
	h.coord = NewCoordinator(h.store, h.cache, h.edit, log.New(io.Discard),
		WithClock(func() time.Time { return fixedNow }),
		WithLocation(time.UTC),
	)
	return h
}

var errStore = errors.New("disk on fire")
