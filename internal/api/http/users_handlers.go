package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	authmw "github.com/prepdeck/prepdeck/internal/auth/middleware"
)

type userRow struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`               // usually "student"
	Password string `json:"password,omitempty"` // plaintext optional (LAN-only flow)
}

func validRole(role string) bool {
	return role == "student" || role == "staff" || role == "admin"
}

// BulkUpsertUsersHandler takes a JSON array of users. Classrooms roster
// whole cohorts at once, so new users require a password while existing
// users keep theirs unless one is supplied.
func BulkUpsertUsersHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rows []userRow
		if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
			http.Error(w, "expected JSON array", 400)
			return
		}
		ins, upd, err := upsertUsers(r.Context(), db, rows)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"inserted": ins, "updated": upd})
	}
}

func ListUsersHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := r.URL.Query().Get("role")
		var rows *sql.Rows
		var err error
		if role == "" {
			rows, err = db.QueryContext(r.Context(), `SELECT id,username,role FROM users ORDER BY username`)
		} else {
			rows, err = db.QueryContext(r.Context(), `SELECT id,username,role FROM users WHERE role=$1 ORDER BY username`, role)
		}
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		defer rows.Close()
		out := []map[string]string{}
		for rows.Next() {
			var id, u, rl string
			if err := rows.Scan(&id, &u, &rl); err != nil {
				http.Error(w, err.Error(), 500)
				return
			}
			out = append(out, map[string]string{"id": id, "username": u, "role": rl})
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}

// UpdateUserRoleHandler changes one user's role, refusing to demote the
// last admin.
func UpdateUserRoleHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target := chi.URLParam(r, "userID") // id or username
		var req struct {
			Role string `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		role := strings.ToLower(strings.TrimSpace(req.Role))
		if !validRole(role) {
			http.Error(w, "invalid role", 400)
			return
		}

		var id, curRole string
		err := db.QueryRowContext(r.Context(),
			`SELECT id, role FROM users WHERE id=$1 OR username=$1`, target).Scan(&id, &curRole)
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "user not found", 404)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		if curRole == "admin" && role != "admin" {
			var admins int
			if err := db.QueryRowContext(r.Context(),
				`SELECT COUNT(1) FROM users WHERE role='admin'`).Scan(&admins); err != nil {
				http.Error(w, err.Error(), 500)
				return
			}
			if admins <= 1 {
				http.Error(w, "cannot demote the last admin", 400)
				return
			}
		}
		if _, err := db.ExecContext(r.Context(),
			`UPDATE users SET role=$1 WHERE id=$2`, role, id); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id": id, "role": role})
	}
}

func ChangePasswordHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := authmw.SubjectFromContext(r.Context())
		if userID == "" {
			http.Error(w, "unauthorized", 401)
			return
		}
		var req struct {
			OldPassword string `json:"old_password"`
			NewPassword string `json:"new_password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", 400)
			return
		}
		if req.NewPassword == "" {
			http.Error(w, "new password required", 400)
			return
		}

		var storedHash string
		err := db.QueryRowContext(r.Context(),
			`SELECT pass_hash FROM users WHERE id=$1 OR username=$1`, userID).Scan(&storedHash)
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "user not found", 404)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(req.OldPassword)) != nil {
			http.Error(w, "incorrect old password", 403)
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), 12)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		if _, err := db.ExecContext(r.Context(),
			`UPDATE users SET pass_hash=$1 WHERE id=$2 OR username=$2`, string(hash), userID); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func upsertUsers(ctx context.Context, db *sql.DB, rows []userRow) (inserted, updated int, err error) {
	if len(rows) == 0 {
		return 0, 0, nil
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	for _, u := range rows {
		if u.Role == "" {
			u.Role = "student"
		}
		if !validRole(u.Role) {
			return inserted, updated, errors.New("invalid role: " + u.Role)
		}
		if u.ID == "" || u.Username == "" {
			return inserted, updated, errors.New("id and username required")
		}
		var hash string
		if u.Password != "" {
			b, e := bcrypt.GenerateFromPassword([]byte(u.Password), 12)
			if e != nil {
				return inserted, updated, e
			}
			hash = string(b)
		}

		var exists bool
		err = tx.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id=$1 OR username=$2`, u.ID, u.Username).Scan(new(int))
		switch {
		case err == nil:
			exists = true
		case errors.Is(err, sql.ErrNoRows):
			err = nil
		default:
			return inserted, updated, err
		}

		if exists {
			if hash != "" {
				_, err = tx.ExecContext(ctx, `UPDATE users SET username=$1, role=$2, pass_hash=$3 WHERE id=$4`,
					u.Username, u.Role, hash, u.ID)
			} else {
				_, err = tx.ExecContext(ctx, `UPDATE users SET username=$1, role=$2 WHERE id=$3`,
					u.Username, u.Role, u.ID)
			}
			if err != nil {
				return inserted, updated, err
			}
			updated++
		} else {
			if hash == "" {
				return inserted, updated, errors.New("password required for new user: " + u.Username)
			}
			_, err = tx.ExecContext(ctx,
				`INSERT INTO users (id, username, pass_hash, role) VALUES ($1,$2,$3,$4)`,
				u.ID, u.Username, hash, u.Role)
			if err != nil {
				return inserted, updated, err
			}
			inserted++
		}
	}
	return
}
