package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	api "github.com/prepdeck/prepdeck/internal/api/http"
	auth "github.com/prepdeck/prepdeck/internal/auth"
	authmw "github.com/prepdeck/prepdeck/internal/auth/middleware"
	"github.com/prepdeck/prepdeck/internal/builder"
	"github.com/prepdeck/prepdeck/internal/config"
	"github.com/prepdeck/prepdeck/internal/db"
	"github.com/prepdeck/prepdeck/internal/rbac"
	"github.com/prepdeck/prepdeck/internal/storage"
	"github.com/prepdeck/prepdeck/internal/store"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	st := store.NewSQLStore(dbh)
	saver := builder.NewSaver(st, builder.Policy{BlockOnWarnings: cfg.StrictValidation})

	authSvc := authmw.NewAuthService(cfg.AuthSecret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	origins := cfg.CORSOriginsOffline
	if cfg.Mode == config.ModeOnline {
		origins = cfg.CORSOriginsOnline
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Local login (default in offline mode; may be enabled online via env).
	if cfg.EnableLocalAuth {
		r.Post("/auth/login", authmw.LoginHandler(authSvc, dbh, authmw.LoginOpts{
			AdminUser:     cfg.AdminUser,
			AdminPassHash: cfg.AdminPassHash,
		}))
	}
	if cfg.EnableGoogleAuth && cfg.Mode == config.ModeOnline {
		r.Get("/auth/google/login", auth.GoogleLoginHandler(cfg))
		r.Get("/auth/google/callback", auth.GoogleCallbackHandler(authSvc, dbh, cfg))
	}

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}

	// Protected API (JWT -> role in context -> RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(authmw.JWTMiddleware(authSvc))
		// Online deployments trust the users table over the claim role.
		pr.Use(authmw.AttachRoleFromDB(dbh, cfg.Mode == config.ModeOffline))

		pr.Route("/assets", func(ar chi.Router) {
			api.MountAssets(ar, bs)
		})

		pr.Route("/tests", func(tr chi.Router) {
			tr.With(rbac.RequireAny("test:create", "test:edit")).
				Put("/{testID}", api.PutTestHandler(saver))
			tr.With(rbac.RequireAny("test:create", "test:edit")).
				Post("/validate", api.ValidateTestHandler())
			tr.With(rbac.Require("test:view-answers")).
				Get("/{testID}/full", api.GetTestAdminHandler(st))
			tr.With(rbac.Require("test:view")).
				Get("/{testID}", api.GetTestHandler(st))
			tr.With(rbac.Require("test:list")).
				Get("/", api.ListTestsHandler(st))
		})

		pr.Route("/sessions", func(sr chi.Router) {
			sr.With(rbac.Require("session:create")).
				Post("/", api.CreateSessionHandler(st, cfg.SessionTimeLimitSec))
			sr.With(rbac.Require("session:save")).
				Patch("/{sessionID}", api.PatchSessionHandler(st))
			sr.With(rbac.Require("session:submit")).
				Post("/{sessionID}/submit", api.SubmitSessionHandler(st))
			sr.With(rbac.RequireAny("session:view-own", "session:view-all")).
				Get("/{sessionID}", api.GetSessionHandler(st))
			sr.With(rbac.RequireAny("session:view-own", "session:view-all")).
				Get("/", api.ListSessionsHandler(st))
		})

		pr.With(rbac.Require("review:view")).
			Get("/review/{sessionID}", api.ReviewSessionHandler(st))

		// Admin-only user management.
		pr.With(rbac.Require("users:manage")).
			Post("/users/bulk", api.BulkUpsertUsersHandler(dbh))
		pr.With(rbac.Require("users:manage")).
			Get("/users", api.ListUsersHandler(dbh))
		pr.With(rbac.Require("users:manage")).
			Post("/users/{userID}/role", api.UpdateUserRoleHandler(dbh))
		pr.Post("/users/change-password", api.ChangePasswordHandler(dbh))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (mode=%s, db=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
