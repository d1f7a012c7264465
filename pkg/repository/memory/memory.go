package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/earmark/pkg/domain/interfaces"
	"github.com/secmon-lab/earmark/pkg/domain/model/errs"
	"github.com/secmon-lab/earmark/pkg/domain/model/transcript"
	"github.com/secmon-lab/earmark/pkg/domain/types"
	"github.com/secmon-lab/earmark/pkg/utils/errutil"
	"github.com/secmon-lab/earmark/pkg/utils/logging"
)

// Memory is the in-process Session Store. Records are copied on the way in and out.
type Memory struct {
	mu       sync.RWMutex
	sessions map[types.SessionID]*transcript.Record
	order    []types.SessionID // creation order, oldest first

	// capacity bounds the number of sessions; 0 means unbounded.
	capacity int

	eb *goerr.Builder
}

var _ interfaces.SessionRepository = &Memory{}

type Option func(*Memory)

// WithCapacity enables eviction of the least recently created session once more than n
// sessions are stored.
func WithCapacity(n int) Option {
	return func(m *Memory) {
		m.capacity = n
	}
}

func New(opts ...Option) *Memory {
	m := &Memory{
		sessions: make(map[types.SessionID]*transcript.Record),
		eb:       goerr.NewBuilder(goerr.V("repository", "memory")),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (r *Memory) PutSession(ctx context.Context, record *transcript.Record) error {
	if err := record.ID.Validate(); err != nil {
		return r.eb.Wrap(err, "refusing to store session", goerr.T(errs.TagValidation))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[record.ID]; !exists {
		r.order = append(r.order, record.ID)
	}
	r.sessions[record.ID] = record.Copy()

	for r.capacity > 0 && len(r.order) > r.capacity {
		evicted := r.order[0]
		r.order = r.order[1:]
		delete(r.sessions, evicted)
		logging.From(ctx).Info("session evicted", "session_id", evicted, "capacity", r.capacity)
	}

	return nil
}

func (r *Memory) GetSession(ctx context.Context, id types.SessionID) (*transcript.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.sessions[id]
	if !ok {
		return nil, r.notFound(id)
	}
	return record.Copy(), nil
}

func (r *Memory) UpdateSession(ctx context.Context, id types.SessionID, mutator func(record *transcript.Record) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.sessions[id]
	if !ok {
		return r.notFound(id)
	}

	updated := record.Copy()
	if err := mutator(updated); err != nil {
		return err
	}
	updated.ID = id
	r.sessions[id] = updated

	return nil
}

func (r *Memory) ListSessions(ctx context.Context) ([]transcript.Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summaries := make([]transcript.Summary, 0, len(r.order))
	for _, id := range r.order {
		summaries = append(summaries, r.sessions[id].Summary())
	}
	return summaries, nil
}

// Len returns the number of stored sessions.
func (r *Memory) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Has reports whether id is stored, without copying the record.
func (r *Memory) Has(id types.SessionID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sessions[id]
	return ok
}

func (r *Memory) notFound(id types.SessionID) error {
	return r.eb.Wrap(errs.ErrSessionNotFound, "session not found",
		goerr.T(errs.TagNotFound),
		goerr.TV(errutil.SessionIDKey, id),
	)
}
