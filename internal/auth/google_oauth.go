package auth

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	authmw "github.com/prepdeck/prepdeck/internal/auth/middleware"
	"github.com/prepdeck/prepdeck/internal/config"
)

func googleOAuthConfig(cfg config.Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURI,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     google.Endpoint,
	}
}

// /api/auth/google/login -> redirect to Google OAuth. Staff sign-on for
// online deployments; students normally use local login.
func GoogleLoginHandler(cfg config.Config) http.HandlerFunc {
	oc := googleOAuthConfig(cfg)
	return func(w http.ResponseWriter, r *http.Request) {
		state := fmt.Sprintf("s-%d", time.Now().UnixNano())
		http.SetCookie(w, &http.Cookie{
			Name:     "pd_oauth_state",
			Value:    state,
			Path:     "/",
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteNoneMode,
			Expires:  time.Now().Add(10 * time.Minute),
		})
		var opts []oauth2.AuthCodeOption
		opts = append(opts, oauth2.AccessTypeOffline)
		if cfg.GoogleAllowedHD != "" {
			opts = append(opts, oauth2.SetAuthURLParam("hd", cfg.GoogleAllowedHD))
		}
		http.Redirect(w, r, oc.AuthCodeURL(state, opts...), http.StatusFound)
	}
}

// /api/auth/google/callback -> exchange code, verify id_token, upsert the
// user, mint an internal JWT and hand it to the SPA.
func GoogleCallbackHandler(a *authmw.AuthService, db *sql.DB, cfg config.Config) http.HandlerFunc {
	oc := googleOAuthConfig(cfg)
	return func(w http.ResponseWriter, r *http.Request) {
		state := r.URL.Query().Get("state")
		if c, err := r.Cookie("pd_oauth_state"); err != nil || state == "" || c.Value != state {
			http.Error(w, "bad state", http.StatusBadRequest)
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}

		tok, err := oc.Exchange(r.Context(), code)
		if err != nil {
			http.Error(w, "token exchange error", http.StatusBadGateway)
			return
		}
		rawID, _ := tok.Extra("id_token").(string)
		if rawID == "" {
			http.Error(w, "bad token response", http.StatusBadGateway)
			return
		}

		ti, err := verifyIDToken(rawID, cfg)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		// Default role student; an existing user row keeps its role.
		role := "student"
		username := ti.Email
		userID := "google|" + ti.Sub
		if db != nil {
			var existingID, existingRole string
			err := db.QueryRowContext(r.Context(),
				`SELECT id, role FROM users WHERE username=$1`, username).Scan(&existingID, &existingRole)
			switch {
			case errors.Is(err, sql.ErrNoRows):
				_, _ = db.ExecContext(r.Context(),
					`INSERT INTO users (id, username, role) VALUES ($1,$2,$3)`, userID, username, role)
			case err == nil:
				if existingRole != "" {
					role = existingRole
				}
				userID = existingID
			}
		}

		jwtTok, err := a.IssueJWT(userID, role)
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "pd_oauth_state", Value: "", Path: "/", Expires: time.Unix(0, 0), MaxAge: -1})

		target := cfg.PublicURL
		if target == "" {
			target = "/"
		}
		u, _ := url.Parse(target)
		q := u.Query()
		q.Set("access_token", jwtTok)
		u.RawQuery = q.Encode()
		http.Redirect(w, r, u.String(), http.StatusFound)
	}
}

type googleTokenInfo struct {
	Iss   string `json:"iss"`
	Aud   string `json:"aud"`
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Hd    string `json:"hd"`
}

// verifyIDToken checks the id_token via Google's tokeninfo endpoint.
// NOTE: production deployments should verify the JWT signature against
// Google's JWKS instead of a round trip per login.
func verifyIDToken(raw string, cfg config.Config) (googleTokenInfo, error) {
	resp, err := http.Get("https://oauth2.googleapis.com/tokeninfo?id_token=" + url.QueryEscape(raw))
	if err != nil {
		return googleTokenInfo{}, errors.New("tokeninfo fetch error")
	}
	defer resp.Body.Close()
	var ti googleTokenInfo
	if err := json.NewDecoder(resp.Body).Decode(&ti); err != nil {
		return googleTokenInfo{}, errors.New("tokeninfo parse error")
	}
	if ti.Aud != cfg.GoogleClientID {
		return googleTokenInfo{}, errors.New("invalid aud")
	}
	if ti.Iss != "accounts.google.com" && ti.Iss != "https://accounts.google.com" {
		return googleTokenInfo{}, errors.New("invalid iss")
	}
	if cfg.GoogleAllowedHD != "" && !strings.EqualFold(ti.Hd, cfg.GoogleAllowedHD) {
		return googleTokenInfo{}, errors.New("unauthorized domain")
	}
	return ti, nil
}
