package auth

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/prepdeck/prepdeck/internal/rbac"
)

// AttachRoleFromDB swaps the token's role claim for the authoritative users
// row. With allowClaimFallback (offline/dev mode) a lookup miss falls back to
// the claim; online only an admin claim survives a missing row.
func AttachRoleFromDB(db *sql.DB, allowClaimFallback bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			claimRole := rbac.RoleFromContext(ctx) // set by JWTMiddleware

			role, err := lookupRole(ctx, db, SubjectFromContext(ctx))
			if err == nil && role != "" {
				next.ServeHTTP(w, r.WithContext(rbac.WithRole(ctx, role)))
				return
			}

			noRow := errors.Is(err, sql.ErrNoRows) || isUsersTableMissing(err)
			if (noRow && claimRole == "admin") || (allowClaimFallback && claimRole != "") {
				next.ServeHTTP(w, r)
				return
			}
			http.Error(w, "forbidden", http.StatusForbidden)
		})
	}
}

// Dev tokens often carry the username as the subject, so match either column.
func lookupRole(ctx context.Context, db *sql.DB, sub string) (string, error) {
	var role string
	err := db.QueryRowContext(ctx,
		`SELECT role FROM users WHERE id=$1 OR username=$1`, sub).Scan(&role)
	return role, err
}

func isUsersTableMissing(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "no such table: users") || // sqlite
		strings.Contains(msg, `relation "users" does not exist`) // postgres
}
