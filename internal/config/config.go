package config

import (
	"os"
	"strconv"
	"strings"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode      Mode
	HTTPAddr  string
	PublicURL string

	DBDriver string
	DBDSN    string

	BlobBasePath string // part audio/image assets

	AuthSecret      string
	EnableLocalAuth bool

	// Saving a test with validation warnings (duplicate gap markers,
	// marker/gap count mismatch) is permissive by default; flip to enforce.
	StrictValidation bool

	// Default session length when a test is started, seconds.
	SessionTimeLimitSec int

	AdminUser     string
	AdminPassHash string // bcrypt

	CORSOriginsOnline  []string
	CORSOriginsOffline []string

	EnableGoogleAuth   bool
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string // e.g., PUBLIC_URL + "/api/auth/google/callback"
	GoogleAllowedHD    string // optional: restrict to one workspace domain
}

func FromEnv() Config {
	mode := Mode(os.Getenv("MODE"))
	if mode == "" {
		mode = ModeOffline
	}
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	pub := os.Getenv("PUBLIC_URL")
	return Config{
		Mode:                mode,
		HTTPAddr:            addr,
		PublicURL:           pub,
		DBDriver:            envOr("DB_DRIVER", "sqlite"),
		DBDSN:               envOr("DB_DSN", ""),
		BlobBasePath:        envOr("BLOB_BASE_PATH", "./data"),
		AuthSecret:          envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		EnableLocalAuth:     envBool("ENABLE_LOCAL_AUTH", true),
		StrictValidation:    envBool("STRICT_VALIDATION", false),
		SessionTimeLimitSec: envInt("SESSION_TIME_LIMIT_SEC", 3600),
		AdminUser:           envOr("ADMIN_USER", "admin"),
		AdminPassHash:       envOr("ADMIN_PASS_HASH", ""),
		CORSOriginsOnline:   csvOr("CORS_ORIGINS_ONLINE", "https://app.prepdeck.io"),
		CORSOriginsOffline:  csvOr("CORS_ORIGINS_OFFLINE", "http://localhost:3000,http://localhost:3010"),

		EnableGoogleAuth:   envBool("ENABLE_GOOGLE_AUTH", false),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURI:  envOr("GOOGLE_REDIRECT_URI", strings.TrimSuffix(pub, "/")+"/api/auth/google/callback"),
		GoogleAllowedHD:    os.Getenv("GOOGLE_ALLOWED_HD"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
