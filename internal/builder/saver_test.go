package builder

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prepdeck/prepdeck/internal/question"
	"github.com/prepdeck/prepdeck/internal/wire"
)

type fakePutter struct {
	mu        sync.Mutex
	calls     int
	err       error
	enterOnce sync.Once
	entered   chan struct{}
	release   chan struct{}
}

func (f *fakePutter) PutTest(ctx context.Context, rec wire.TestRecord) (wire.TestRecord, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.entered != nil {
		f.enterOnce.Do(func() { close(f.entered) })
	}
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return wire.TestRecord{}, f.err
	}
	return rec, nil
}

func validTest() question.Test {
	return question.Test{
		ID:    "t1",
		Title: "Mock",
		Parts: []question.Part{{
			ID: "p1",
			Questions: []question.Question{{
				ID: "q1", Type: question.ShortAnswer,
				Payload: question.ShortAnswerPayload{Answer: "x"},
			}},
		}},
	}
}

func warnedTest() question.Test {
	t := validTest()
	t.Parts[0].Questions = append(t.Parts[0].Questions, question.Question{
		ID: "q2", Type: question.GapFill,
		Payload: question.GapTextPayload{Text: "[[1]] and [[1]]", Gaps: []question.Gap{{Number: 1}}},
	})
	return t
}

func TestSavePersistsSerializedRecord(t *testing.T) {
	f := &fakePutter{}
	s := NewSaver(f, Policy{})
	rec, warnings, err := s.Save(context.Background(), validTest())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if rec.ID != "t1" || len(rec.Parts) != 1 {
		t.Errorf("saved record = %+v", rec)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %+v", warnings)
	}
	if f.calls != 1 {
		t.Errorf("calls = %d", f.calls)
	}
}

func TestSaveReturnsWarningsOnSuccess(t *testing.T) {
	s := NewSaver(&fakePutter{}, Policy{})
	_, warnings, err := s.Save(context.Background(), warnedTest())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(warnings) == 0 {
		t.Error("expected duplicate-marker warnings on a permissive save")
	}
}

func TestSaveBlockedByWarnings(t *testing.T) {
	f := &fakePutter{}
	s := NewSaver(f, Policy{BlockOnWarnings: true})
	_, warnings, err := s.Save(context.Background(), warnedTest())
	if !errors.Is(err, ErrBlockedByWarnings) {
		t.Fatalf("want ErrBlockedByWarnings, got %v", err)
	}
	if len(warnings) == 0 {
		t.Error("blocked save must still report its warnings")
	}
	if f.calls != 0 {
		t.Errorf("store reached despite block: %d calls", f.calls)
	}
}

func TestSaveRejectsSecondInFlight(t *testing.T) {
	f := &fakePutter{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	s := NewSaver(f, Policy{})

	done := make(chan error, 1)
	go func() {
		_, _, err := s.Save(context.Background(), validTest())
		done <- err
	}()
	<-f.entered

	_, _, err := s.Save(context.Background(), validTest())
	if !errors.Is(err, ErrSaveInFlight) {
		t.Errorf("want ErrSaveInFlight, got %v", err)
	}

	close(f.release)
	if err := <-done; err != nil {
		t.Fatalf("first save: %v", err)
	}

	// slot freed: a retry goes through
	f.release = nil
	f.entered = nil
	if _, _, err := s.Save(context.Background(), validTest()); err != nil {
		t.Errorf("retry after completion: %v", err)
	}
}

func TestSaveDifferentTestsDoNotContend(t *testing.T) {
	f := &fakePutter{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	s := NewSaver(f, Policy{})

	done := make(chan error, 2)
	go func() {
		_, _, err := s.Save(context.Background(), validTest())
		done <- err
	}()
	<-f.entered

	// The guard is per test id: an unrelated test must not see
	// ErrSaveInFlight even while t1's save is still running.
	other := validTest()
	other.ID = "t2"
	go func() {
		_, _, err := s.Save(context.Background(), other)
		done <- err
	}()

	close(f.release)
	for i := 0; i < 2; i++ {
		if err := <-done; err != nil {
			t.Errorf("save %d: %v", i, err)
		}
	}
}

func TestSaveStoreFailureSurfaces(t *testing.T) {
	boom := errors.New("boom")
	s := NewSaver(&fakePutter{err: boom}, Policy{})
	_, _, err := s.Save(context.Background(), validTest())
	if !errors.Is(err, boom) {
		t.Errorf("want store error, got %v", err)
	}
	// failed save releases the slot
	if _, _, err := s.Save(context.Background(), validTest()); !errors.Is(err, boom) {
		t.Errorf("retry blocked after failure: %v", err)
	}
}
