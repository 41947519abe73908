// Package store is the persistence boundary for tests and student
// sessions. The engine treats it as an opaque collaborator: records go in
// and out in their storage (wire) shape, normalization happens above.
package store

import (
	"context"
	"errors"

	"github.com/prepdeck/prepdeck/internal/session"
	"github.com/prepdeck/prepdeck/internal/wire"
)

var (
	ErrTestNotFound     = errors.New("test not found")
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionSubmitted = errors.New("session already submitted")
)

type ListOpts struct {
	Q          string
	ActiveOnly bool
	Limit      int
	Offset     int
}

type SessionListOpts struct {
	TestID string
	UserID string
	Status string
	Limit  int
	Offset int
}

// TestSummary is the list-view projection of a test.
type TestSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Active    bool   `json:"active"`
	Parts     int    `json:"parts"`
	Questions int    `json:"questions"`
	UpdatedAt int64  `json:"updated_at"`
}

type Store interface {
	// PutTest upserts a test record and returns it as persisted.
	PutTest(ctx context.Context, rec wire.TestRecord) (wire.TestRecord, error)
	// GetTest returns the student-safe record: all ground truth stripped.
	GetTest(ctx context.Context, id string) (wire.TestRecord, error)
	// GetTestAdmin returns the full record including answers.
	GetTestAdmin(ctx context.Context, id string) (wire.TestRecord, error)
	ListTests(ctx context.Context, opts ListOpts) ([]TestSummary, error)

	NewSession(ctx context.Context, testID, userID string, timeLimitSec int) (session.State, error)
	// PatchSession merges answers/flags/time into an in-progress session.
	PatchSession(ctx context.Context, id string, p session.Patch) error
	SubmitSession(ctx context.Context, id string) (session.State, error)
	GetSession(ctx context.Context, id string) (session.State, error)
	ListSessions(ctx context.Context, opts SessionListOpts) ([]session.State, error)
}

func applyPatch(s session.State, p session.Patch) (session.State, error) {
	if s.Status != session.StatusInProgress {
		return s, ErrSessionSubmitted
	}
	if p.Responses != nil {
		merged := make(map[string]interface{}, len(s.Responses)+len(p.Responses))
		for k, v := range s.Responses {
			merged[k] = v
		}
		for k, v := range p.Responses {
			merged[k] = v
		}
		s.Responses = merged
	}
	if p.Flags != nil {
		s.Flags = p.Flags
	}
	if p.TimeLeftSec != nil {
		s = s.Tick(*p.TimeLeftSec)
	}
	return s, nil
}
