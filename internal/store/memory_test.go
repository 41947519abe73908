package store

import (
	"context"
	"errors"
	"testing"

	"github.com/prepdeck/prepdeck/internal/session"
	"github.com/prepdeck/prepdeck/internal/wire"
)

func seedTest(t *testing.T, s Store) wire.TestRecord {
	t.Helper()
	rec := wire.TestRecord{
		ID:     "t1",
		Title:  "Mock Exam 1",
		Active: true,
		Parts: []wire.PartRecord{{
			ID: "p1",
			Questions: []wire.Record{
				{
					ID:           "q1",
					QuestionType: "multiple_choice",
					AnswerOptions: []wire.OptionRecord{
						{Label: "A", Text: "cat"},
						{Label: "B", Text: "dog"},
					},
					CorrectAnswers: []string{"B"},
				},
				{
					ID:             "q2",
					QuestionType:   "gap_fill",
					QuestionText:   "The capital is [[1]].",
					CorrectAnswers: []string{"Paris|paris"},
				},
			},
		}},
	}
	saved, err := s.PutTest(context.Background(), rec)
	if err != nil {
		t.Fatalf("PutTest: %v", err)
	}
	return saved
}

func TestMemoryStoreGetTestScrubsAnswers(t *testing.T) {
	s := NewInMemoryStore()
	seedTest(t, s)
	ctx := context.Background()

	safe, err := s.GetTest(ctx, "t1")
	if err != nil {
		t.Fatalf("GetTest: %v", err)
	}
	for _, p := range safe.Parts {
		for _, q := range p.Questions {
			for _, a := range q.CorrectAnswers {
				if a != "" {
					t.Errorf("question %s leaked correct_answers: %v", q.ID, q.CorrectAnswers)
				}
			}
			if _, ok := q.ExtraData["answer"]; ok {
				t.Errorf("question %s leaked bag answer", q.ID)
			}
		}
	}
	// admin copy still has ground truth
	full, err := s.GetTestAdmin(ctx, "t1")
	if err != nil {
		t.Fatalf("GetTestAdmin: %v", err)
	}
	if len(full.Parts[0].Questions[0].CorrectAnswers) == 0 {
		t.Error("admin record lost its answers")
	}
}

func TestMemoryStoreGetTestKeepsStructure(t *testing.T) {
	s := NewInMemoryStore()
	seedTest(t, s)
	safe, _ := s.GetTest(context.Background(), "t1")
	if len(safe.Parts) != 1 || len(safe.Parts[0].Questions) != 2 {
		t.Fatalf("structure = %+v", safe)
	}
	q := safe.Parts[0].Questions[0]
	if len(q.AnswerOptions) != 2 || q.AnswerOptions[1].Text != "dog" {
		t.Errorf("options stripped too aggressively: %+v", q.AnswerOptions)
	}
}

func TestMemoryStoreNotFound(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	if _, err := s.GetTest(ctx, "missing"); !errors.Is(err, ErrTestNotFound) {
		t.Errorf("GetTest: %v", err)
	}
	if _, err := s.NewSession(ctx, "missing", "u1", 60); !errors.Is(err, ErrTestNotFound) {
		t.Errorf("NewSession: %v", err)
	}
	if _, err := s.GetSession(ctx, "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("GetSession: %v", err)
	}
}

func TestMemoryStoreSessionLifecycle(t *testing.T) {
	s := NewInMemoryStore()
	seedTest(t, s)
	ctx := context.Background()

	st, err := s.NewSession(ctx, "t1", "u1", 3600)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if st.Status != session.StatusInProgress || st.TimeLeftSec != 3600 {
		t.Errorf("state = %+v", st)
	}

	tl := 3500
	err = s.PatchSession(ctx, st.ID, session.Patch{
		Responses:   map[string]interface{}{"q1__B": true},
		Flags:       map[string]bool{"q2": true},
		TimeLeftSec: &tl,
	})
	if err != nil {
		t.Fatalf("PatchSession: %v", err)
	}

	got, _ := s.GetSession(ctx, st.ID)
	if got.Responses["q1__B"] != true || !got.Flags["q2"] || got.TimeLeftSec != 3500 {
		t.Errorf("patched state = %+v", got)
	}

	// second patch merges rather than replaces responses
	err = s.PatchSession(ctx, st.ID, session.Patch{
		Responses: map[string]interface{}{"q2__gap1": "Paris"},
	})
	if err != nil {
		t.Fatalf("PatchSession 2: %v", err)
	}
	got, _ = s.GetSession(ctx, st.ID)
	if got.Responses["q1__B"] != true || got.Responses["q2__gap1"] != "Paris" {
		t.Errorf("merge lost keys: %v", got.Responses)
	}

	sub, err := s.SubmitSession(ctx, st.ID)
	if err != nil {
		t.Fatalf("SubmitSession: %v", err)
	}
	if sub.Status != session.StatusSubmitted || sub.SubmittedAt == 0 {
		t.Errorf("submitted = %+v", sub)
	}

	// patching after submit is rejected
	if err := s.PatchSession(ctx, st.ID, session.Patch{Responses: map[string]interface{}{"x": 1}}); !errors.Is(err, ErrSessionSubmitted) {
		t.Errorf("patch after submit: %v", err)
	}

	// submit is idempotent
	again, err := s.SubmitSession(ctx, st.ID)
	if err != nil || again.SubmittedAt != sub.SubmittedAt {
		t.Errorf("resubmit = %+v, %v", again, err)
	}
}

func TestMemoryStoreListTests(t *testing.T) {
	s := NewInMemoryStore()
	seedTest(t, s)
	_, _ = s.PutTest(context.Background(), wire.TestRecord{ID: "t2", Title: "Draft", Active: false})

	all, _ := s.ListTests(context.Background(), ListOpts{})
	if len(all) != 2 {
		t.Errorf("all = %+v", all)
	}
	active, _ := s.ListTests(context.Background(), ListOpts{ActiveOnly: true})
	if len(active) != 1 || active[0].ID != "t1" {
		t.Errorf("active = %+v", active)
	}
	byTitle, _ := s.ListTests(context.Background(), ListOpts{Q: "mock"})
	if len(byTitle) != 1 || byTitle[0].Questions != 2 {
		t.Errorf("search = %+v", byTitle)
	}
	page, _ := s.ListTests(context.Background(), ListOpts{Limit: 1})
	if len(page) != 1 {
		t.Errorf("limit 1 = %+v", page)
	}
	rest, _ := s.ListTests(context.Background(), ListOpts{Offset: 2})
	if len(rest) != 0 {
		t.Errorf("offset past end = %+v", rest)
	}
}

func TestMemoryStoreListSessionsFilters(t *testing.T) {
	s := NewInMemoryStore()
	seedTest(t, s)
	ctx := context.Background()
	a, _ := s.NewSession(ctx, "t1", "alice", 60)
	_, _ = s.NewSession(ctx, "t1", "bob", 60)
	_, _ = s.SubmitSession(ctx, a.ID)

	mine, _ := s.ListSessions(ctx, SessionListOpts{UserID: "alice"})
	if len(mine) != 1 || mine[0].UserID != "alice" {
		t.Errorf("mine = %+v", mine)
	}
	open, _ := s.ListSessions(ctx, SessionListOpts{Status: session.StatusInProgress})
	if len(open) != 1 || open[0].UserID != "bob" {
		t.Errorf("open = %+v", open)
	}
}
