package builder

import (
	"context"
	"errors"
	"sync"

	"github.com/prepdeck/prepdeck/internal/question"
	"github.com/prepdeck/prepdeck/internal/wire"
)

var (
	// ErrSaveInFlight means a save for this test is already running; the
	// request is rejected, not queued, so interleaved writes can't race on
	// the same record.
	ErrSaveInFlight = errors.New("builder: save already in flight")
	// ErrBlockedByWarnings means the policy refuses to persist a test that
	// still has validation warnings.
	ErrBlockedByWarnings = errors.New("builder: validation warnings block save")
)

// TestPutter is the persistence boundary the saver writes through.
type TestPutter interface {
	PutTest(ctx context.Context, rec wire.TestRecord) (wire.TestRecord, error)
}

// Policy configures how strict saving is. Duplicate markers and
// marker/gap mismatches have always been permissive warnings; deployments
// that want them enforced flip BlockOnWarnings.
type Policy struct {
	BlockOnWarnings bool
}

// Saver serializes a canonical test and writes it through the boundary,
// holding at most one in-flight save per test id.
type Saver struct {
	store  TestPutter
	policy Policy

	mu       sync.Mutex
	inFlight map[string]bool
}

func NewSaver(store TestPutter, policy Policy) *Saver {
	return &Saver{store: store, policy: policy, inFlight: map[string]bool{}}
}

// Save validates, serializes and persists t. On boundary failure the
// in-memory model is untouched and the caller may simply retry. Warnings
// are always returned, even on success.
func (s *Saver) Save(ctx context.Context, t question.Test) (wire.TestRecord, []Warning, error) {
	warnings := Validate(t)
	if s.policy.BlockOnWarnings && len(warnings) > 0 {
		return wire.TestRecord{}, warnings, ErrBlockedByWarnings
	}

	key := t.ID
	s.mu.Lock()
	if s.inFlight[key] {
		s.mu.Unlock()
		return wire.TestRecord{}, warnings, ErrSaveInFlight
	}
	s.inFlight[key] = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.inFlight, key)
		s.mu.Unlock()
	}()

	saved, err := s.store.PutTest(ctx, wire.SerializeTest(t))
	if err != nil {
		return wire.TestRecord{}, warnings, err
	}
	return saved, warnings, nil
}
