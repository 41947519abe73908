// Package session holds the student-side state of one test sitting: the
// flat response map, the flagged-for-review set and the remaining time.
// All mutations come from a single interaction thread; the only
// concurrency here is the fire-and-forget background sync in syncer.go.
package session

import (
	"github.com/prepdeck/prepdeck/internal/answers"
	"github.com/prepdeck/prepdeck/internal/question"
)

const (
	StatusInProgress = "in_progress"
	StatusSubmitted  = "submitted"
)

// State is one sitting. Responses reference questions by id only; the
// session never holds the question tree itself.
type State struct {
	ID          string              `json:"id"`
	TestID      string              `json:"test_id"`
	UserID      string              `json:"user_id"`
	Status      string              `json:"status"`
	Responses   answers.ResponseMap `json:"responses"`
	Flags       map[string]bool     `json:"flags"`
	TimeLeftSec int                 `json:"time_left_sec"`
	StartedAt   int64               `json:"started_at"`
	SubmittedAt int64               `json:"submitted_at,omitempty"`
}

// New starts an empty sitting for a test.
func New(id, testID, userID string, timeLimitSec int, now int64) State {
	return State{
		ID:          id,
		TestID:      testID,
		UserID:      userID,
		Status:      StatusInProgress,
		Responses:   answers.ResponseMap{},
		Flags:       map[string]bool{},
		TimeLeftSec: timeLimitSec,
		StartedAt:   now,
	}
}

// Capture records one interaction through the answer codec (last write
// wins, single-select exclusivity applied) and returns the new state.
func (s State) Capture(q question.Question, key string, value interface{}) State {
	s.Responses = answers.Capture(s.Responses, q, key, value)
	return s
}

// ToggleFlag flips the review flag of a question.
func (s State) ToggleFlag(questionID string) State {
	flags := make(map[string]bool, len(s.Flags))
	for k, v := range s.Flags {
		flags[k] = v
	}
	if flags[questionID] {
		delete(flags, questionID)
	} else {
		flags[questionID] = true
	}
	s.Flags = flags
	return s
}

// Tick sets the remaining time as reported by the player clock.
func (s State) Tick(timeLeftSec int) State {
	if timeLeftSec < 0 {
		timeLeftSec = 0
	}
	s.TimeLeftSec = timeLeftSec
	return s
}

// FlaggedIDs returns the flagged question ids (order unspecified).
func (s State) FlaggedIDs() []string {
	out := make([]string, 0, len(s.Flags))
	for id, on := range s.Flags {
		if on {
			out = append(out, id)
		}
	}
	return out
}
