package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	authmw "github.com/prepdeck/prepdeck/internal/auth/middleware"
	"github.com/prepdeck/prepdeck/internal/rbac"
	"github.com/prepdeck/prepdeck/internal/session"
	"github.com/prepdeck/prepdeck/internal/store"
)

// GetTestHandler serves the student-safe record: answers, correct flags
// and per-gap ground truth are stripped before it leaves the store.
func GetTestHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := st.GetTest(r.Context(), chi.URLParam(r, "testID"))
		if err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		_ = json.NewEncoder(w).Encode(rec)
	}
}

func CreateSessionHandler(st store.Store, timeLimitSec int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			TestID       string `json:"test_id"`
			TimeLimitSec int    `json:"time_limit_sec"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if req.TestID == "" {
			http.Error(w, "test_id required", 400)
			return
		}
		userID := authmw.SubjectFromContext(r.Context())
		if userID == "" {
			http.Error(w, "unauthorized", 401)
			return
		}
		limit := timeLimitSec
		if req.TimeLimitSec > 0 {
			limit = req.TimeLimitSec
		}
		s, err := st.NewSession(r.Context(), req.TestID, userID, limit)
		if err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		_ = json.NewEncoder(w).Encode(s)
	}
}

// PatchSessionHandler merges a partial save from the player: new or
// changed responses, the full flag set, the remaining clock.
func PatchSessionHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "sessionID")
		if !canTouchSession(st, r, id) {
			http.Error(w, "forbidden", 403)
			return
		}
		var p session.Patch
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if err := st.PatchSession(r.Context(), id, p); err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func SubmitSessionHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "sessionID")
		if !canTouchSession(st, r, id) {
			http.Error(w, "forbidden", 403)
			return
		}
		s, err := st.SubmitSession(r.Context(), id)
		if err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		_ = json.NewEncoder(w).Encode(s)
	}
}

func GetSessionHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "sessionID")
		s, err := st.GetSession(r.Context(), id)
		if err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		if !ownsOrViewsAll(r, s.UserID) {
			http.Error(w, "forbidden", 403)
			return
		}
		_ = json.NewEncoder(w).Encode(s)
	}
}

// ListSessionsHandler: students see their own sittings; staff may filter
// by any user or test.
func ListSessionsHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		opts := store.SessionListOpts{
			TestID: q.Get("test_id"),
			UserID: q.Get("user_id"),
			Status: q.Get("status"),
			Limit:  atoiOr(q.Get("limit"), 50),
			Offset: atoiOr(q.Get("offset"), 0),
		}
		sub := authmw.SubjectFromContext(r.Context())
		if !viewsAll(r) {
			opts.UserID = sub
		}
		out, err := st.ListSessions(r.Context(), opts)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}

// --- ownership helpers ---

func viewsAll(r *http.Request) bool {
	role := rbac.RoleFromContext(r.Context())
	return rbac.NewChecker(nil).Has(role, "session:view-all")
}

func ownsOrViewsAll(r *http.Request, ownerID string) bool {
	if viewsAll(r) {
		return true
	}
	sub := authmw.SubjectFromContext(r.Context())
	return sub != "" && sub == ownerID
}

func canTouchSession(st store.Store, r *http.Request, id string) bool {
	s, err := st.GetSession(r.Context(), id)
	if err != nil {
		// Let the store surface not-found on the real call.
		return true
	}
	return ownsOrViewsAll(r, s.UserID)
}
