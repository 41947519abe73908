package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/prepdeck/prepdeck/internal/question"
	"github.com/prepdeck/prepdeck/internal/session"
	"github.com/prepdeck/prepdeck/internal/wire"
)

// memoryStore backs tests and dev runs without a database.
type memoryStore struct {
	mu       sync.RWMutex
	tests    map[string]wire.TestRecord
	updated  map[string]int64
	sessions map[string]session.State
}

func NewInMemoryStore() Store {
	return &memoryStore{
		tests:    map[string]wire.TestRecord{},
		updated:  map[string]int64{},
		sessions: map[string]session.State{},
	}
}

func (m *memoryStore) PutTest(_ context.Context, rec wire.TestRecord) (wire.TestRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	m.tests[rec.ID] = rec
	m.updated[rec.ID] = time.Now().Unix()
	return rec, nil
}

func (m *memoryStore) GetTestAdmin(_ context.Context, id string) (wire.TestRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.tests[id]
	if !ok {
		return wire.TestRecord{}, ErrTestNotFound
	}
	return rec, nil
}

func (m *memoryStore) GetTest(ctx context.Context, id string) (wire.TestRecord, error) {
	rec, err := m.GetTestAdmin(ctx, id)
	if err != nil {
		return wire.TestRecord{}, err
	}
	t, _ := wire.NormalizeTest(rec)
	return wire.SerializeTest(question.ScrubTest(t)), nil
}

func (m *memoryStore) ListTests(_ context.Context, opts ListOpts) ([]TestSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []TestSummary
	for id, rec := range m.tests {
		if opts.ActiveOnly && !rec.Active {
			continue
		}
		if opts.Q != "" && !strings.Contains(strings.ToLower(rec.Title), strings.ToLower(opts.Q)) {
			continue
		}
		ts := TestSummary{ID: id, Title: rec.Title, Active: rec.Active, Parts: len(rec.Parts), UpdatedAt: m.updated[id]}
		for _, p := range rec.Parts {
			ts.Questions += len(p.Questions)
		}
		out = append(out, ts)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt > out[j].UpdatedAt })
	if opts.Offset > 0 {
		if opts.Offset >= len(out) {
			return nil, nil
		}
		out = out[opts.Offset:]
	}
	limit := opts.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryStore) NewSession(_ context.Context, testID, userID string, timeLimitSec int) (session.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tests[testID]; !ok {
		return session.State{}, ErrTestNotFound
	}
	st := session.New(uuid.NewString(), testID, userID, timeLimitSec, time.Now().Unix())
	m.sessions[st.ID] = st
	return st, nil
}

func (m *memoryStore) PatchSession(_ context.Context, id string, p session.Patch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	st, err := applyPatch(st, p)
	if err != nil {
		return err
	}
	m.sessions[id] = st
	return nil
}

func (m *memoryStore) SubmitSession(_ context.Context, id string) (session.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.sessions[id]
	if !ok {
		return session.State{}, ErrSessionNotFound
	}
	if st.Status != session.StatusSubmitted {
		st.Status = session.StatusSubmitted
		st.SubmittedAt = time.Now().Unix()
		m.sessions[id] = st
	}
	return st, nil
}

func (m *memoryStore) GetSession(_ context.Context, id string) (session.State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.sessions[id]
	if !ok {
		return session.State{}, ErrSessionNotFound
	}
	return st, nil
}

func (m *memoryStore) ListSessions(_ context.Context, opts SessionListOpts) ([]session.State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []session.State
	for _, st := range m.sessions {
		if opts.TestID != "" && st.TestID != opts.TestID {
			continue
		}
		if opts.UserID != "" && st.UserID != opts.UserID {
			continue
		}
		if opts.Status != "" && st.Status != opts.Status {
			continue
		}
		out = append(out, st)
	}
	return out, nil
}
