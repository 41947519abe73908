package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/prepdeck/prepdeck/internal/builder"
	"github.com/prepdeck/prepdeck/internal/store"
	"github.com/prepdeck/prepdeck/internal/wire"
)

// PutTestHandler accepts a test in storage shape, runs it through the
// engine (normalize -> validate -> serialize) and persists the result.
// Warnings never block unless the saver's policy says so.
func PutTestHandler(saver *builder.Saver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rec wire.TestRecord
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if id := chi.URLParam(r, "testID"); id != "" {
			rec.ID = id
		}

		t, normErr := wire.NormalizeTest(rec)
		saved, warnings, err := saver.Save(r.Context(), t)
		switch {
		case errors.Is(err, builder.ErrSaveInFlight):
			http.Error(w, err.Error(), http.StatusConflict)
			return
		case errors.Is(err, builder.ErrBlockedByWarnings):
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			_ = json.NewEncoder(w).Encode(map[string]any{"warnings": warnings})
			return
		case err != nil:
			http.Error(w, err.Error(), 500)
			return
		}

		resp := map[string]any{"test": saved, "warnings": warnings}
		if normErr != nil {
			// Degraded questions were replaced by defaults; tell the editor.
			resp["normalize_notes"] = normErr.Error()
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// GetTestAdminHandler returns the full record, answers included.
func GetTestAdminHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := st.GetTestAdmin(r.Context(), chi.URLParam(r, "testID"))
		if err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		_ = json.NewEncoder(w).Encode(rec)
	}
}

func ListTestsHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		opts := store.ListOpts{
			Q:          q.Get("q"),
			ActiveOnly: q.Get("active") == "true",
			Limit:      atoiOr(q.Get("limit"), 50),
			Offset:     atoiOr(q.Get("offset"), 0),
		}
		out, err := st.ListTests(r.Context(), opts)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}

// ValidateTestHandler is the dry-run counterpart of PutTestHandler: same
// pipeline, nothing persisted.
func ValidateTestHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rec wire.TestRecord
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		t, normErr := wire.NormalizeTest(rec)
		resp := map[string]any{"warnings": builder.Validate(t)}
		if normErr != nil {
			resp["normalize_notes"] = normErr.Error()
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrTestNotFound), errors.Is(err, store.ErrSessionNotFound):
		return 404
	case errors.Is(err, store.ErrSessionSubmitted):
		return 409
	default:
		return 500
	}
}
