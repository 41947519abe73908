package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/prepdeck/prepdeck/internal/question"
	"github.com/prepdeck/prepdeck/internal/session"
	syncx "github.com/prepdeck/prepdeck/internal/sync"
	"github.com/prepdeck/prepdeck/internal/wire"
)

// SQLStore persists tests and sessions as JSON columns, matching the
// historical storage shape. Works against sqlite and postgres through the
// same statements.
type SQLStore struct {
	db     *sql.DB
	events *syncx.EventRepo
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, events: syncx.NewEventRepo(db)}
}

func (s *SQLStore) PutTest(ctx context.Context, rec wire.TestRecord) (wire.TestRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	pj, err := json.Marshal(rec.Parts)
	if err != nil {
		return wire.TestRecord{}, err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO tests (id,title,active,explanation_url,parts_json,updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, active=EXCLUDED.active,
			explanation_url=EXCLUDED.explanation_url, parts_json=EXCLUDED.parts_json, updated_at=EXCLUDED.updated_at`,
		rec.ID, rec.Title, rec.Active, rec.ExplanationURL, string(pj), time.Now().Unix())
	if err != nil {
		return wire.TestRecord{}, err
	}
	return rec, nil
}

func (s *SQLStore) GetTestAdmin(ctx context.Context, id string) (wire.TestRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,title,active,explanation_url,parts_json FROM tests WHERE id=$1`, id)
	var rec wire.TestRecord
	var pjson string
	if err := row.Scan(&rec.ID, &rec.Title, &rec.Active, &rec.ExplanationURL, &pjson); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return wire.TestRecord{}, ErrTestNotFound
		}
		return wire.TestRecord{}, err
	}
	if err := json.Unmarshal([]byte(pjson), &rec.Parts); err != nil {
		return wire.TestRecord{}, err
	}
	return rec, nil
}

// GetTest strips ground truth before serving: the record is normalized,
// scrubbed at the canonical level and reserialized, so every historical
// answer location (top-level, bag, parallel arrays) is cleared at once.
func (s *SQLStore) GetTest(ctx context.Context, id string) (wire.TestRecord, error) {
	rec, err := s.GetTestAdmin(ctx, id)
	if err != nil {
		return wire.TestRecord{}, err
	}
	t, _ := wire.NormalizeTest(rec) // unknown types already degraded to fallbacks
	return wire.SerializeTest(question.ScrubTest(t)), nil
}

func (s *SQLStore) ListTests(ctx context.Context, opts ListOpts) ([]TestSummary, error) {
	limit := opts.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	activeOnly := 0
	if opts.ActiveOnly {
		activeOnly = 1
	}
	// Filters live in the WHERE clause so LIMIT/OFFSET page over matches,
	// not over raw rows.
	rows, err := s.db.QueryContext(ctx, `SELECT id,title,active,parts_json,updated_at
		FROM tests
		WHERE ($1=0 OR active<>0) AND ($2='' OR LOWER(title) LIKE '%'||LOWER($2)||'%')
		ORDER BY updated_at DESC LIMIT $3 OFFSET $4`,
		activeOnly, opts.Q, limit, opts.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []TestSummary
	for rows.Next() {
		var ts TestSummary
		var pjson string
		if err := rows.Scan(&ts.ID, &ts.Title, &ts.Active, &pjson, &ts.UpdatedAt); err != nil {
			return nil, err
		}
		var parts []wire.PartRecord
		if err := json.Unmarshal([]byte(pjson), &parts); err == nil {
			ts.Parts = len(parts)
			for _, p := range parts {
				ts.Questions += len(p.Questions)
			}
		}
		out = append(out, ts)
	}
	return out, rows.Err()
}

func (s *SQLStore) NewSession(ctx context.Context, testID, userID string, timeLimitSec int) (session.State, error) {
	var exist int
	if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM tests WHERE id=$1`, testID).Scan(&exist); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return session.State{}, ErrTestNotFound
		}
		return session.State{}, err
	}
	st := session.New(uuid.NewString(), testID, userID, timeLimitSec, time.Now().Unix())
	rj, _ := json.Marshal(st.Responses)
	fj, _ := json.Marshal(st.Flags)
	_, err := s.db.ExecContext(ctx, `INSERT INTO sessions
		(id,test_id,user_id,status,responses_json,flags_json,time_left_sec,started_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		st.ID, st.TestID, st.UserID, st.Status, string(rj), string(fj), st.TimeLeftSec, st.StartedAt)
	if err != nil {
		return session.State{}, err
	}
	return st, nil
}

func (s *SQLStore) PatchSession(ctx context.Context, id string, p session.Patch) error {
	st, err := s.GetSession(ctx, id)
	if err != nil {
		return err
	}
	st, err = applyPatch(st, p)
	if err != nil {
		return err
	}
	rj, _ := json.Marshal(st.Responses)
	fj, _ := json.Marshal(st.Flags)
	_, err = s.db.ExecContext(ctx,
		`UPDATE sessions SET responses_json=$1, flags_json=$2, time_left_sec=$3 WHERE id=$4`,
		string(rj), string(fj), st.TimeLeftSec, id)
	return err
}

func (s *SQLStore) SubmitSession(ctx context.Context, id string) (session.State, error) {
	st, err := s.GetSession(ctx, id)
	if err != nil {
		return session.State{}, err
	}
	if st.Status == session.StatusSubmitted {
		return st, nil
	}
	st.Status = session.StatusSubmitted
	st.SubmittedAt = time.Now().Unix()
	_, err = s.db.ExecContext(ctx,
		`UPDATE sessions SET status=$1, submitted_at=$2 WHERE id=$3`,
		st.Status, st.SubmittedAt, id)
	if err != nil {
		return session.State{}, err
	}
	data, _ := json.Marshal(st)
	if err := s.events.Append(ctx, syncx.Event{
		Type: syncx.TypeSessionSubmitted, Key: st.ID, DataJSON: string(data),
	}); err != nil {
		// the submit itself succeeded; the event log is advisory
		return st, nil
	}
	return st, nil
}

func (s *SQLStore) GetSession(ctx context.Context, id string) (session.State, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,test_id,user_id,status,responses_json,flags_json,time_left_sec,started_at,submitted_at
		FROM sessions WHERE id=$1`, id)
	return scanSession(row)
}

func (s *SQLStore) ListSessions(ctx context.Context, opts SessionListOpts) ([]session.State, error) {
	limit := opts.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id,test_id,user_id,status,responses_json,flags_json,time_left_sec,started_at,submitted_at
		FROM sessions
		WHERE ($1='' OR test_id=$1) AND ($2='' OR user_id=$2) AND ($3='' OR status=$3)
		ORDER BY started_at DESC LIMIT $4 OFFSET $5`,
		opts.TestID, opts.UserID, opts.Status, limit, opts.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []session.State
	for rows.Next() {
		st, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

type rowScanner interface{ Scan(dest ...interface{}) error }

func scanSession(row rowScanner) (session.State, error) {
	var st session.State
	var rjson, fjson string
	var submitted sql.NullInt64
	err := row.Scan(&st.ID, &st.TestID, &st.UserID, &st.Status, &rjson, &fjson,
		&st.TimeLeftSec, &st.StartedAt, &submitted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return session.State{}, ErrSessionNotFound
		}
		return session.State{}, err
	}
	if err := json.Unmarshal([]byte(rjson), &st.Responses); err != nil {
		st.Responses = map[string]interface{}{}
	}
	if err := json.Unmarshal([]byte(fjson), &st.Flags); err != nil {
		st.Flags = map[string]bool{}
	}
	if submitted.Valid {
		st.SubmittedAt = submitted.Int64
	}
	return st, nil
}
