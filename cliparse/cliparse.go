package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
)

// Supported DATABASE_TYPE values
const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
	DatabaseMongo    = "mongo"
	DatabaseMemory   = "memory"
)

const (
	defaultPort           = 3318
	defaultDatabaseName   = "ward_admin"
	defaultSessionTTL     = 12 * time.Hour
	defaultMaxUploadBytes = 10 << 20
)

type Config struct {
	Port              int
	DatabaseURL       string
	DatabaseType      string
	DatabaseName      string
	AuthFile          string
	SessionSecret     string
	SessionTTL        time.Duration
	TimeZone          string
	MaxUploadBytes    int64
	GoogleAPIEndpoint string
	PDFFontFile       string
}

// Location resolves TimeZone; empty or "Local" is the host zone.
func (c Config) Location() (*time.Location, error) {
	if c.TimeZone == "" || c.TimeZone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIME_ZONE %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

// LoadDotEnv loads KEY=value files into the environment without overriding
// variables that are already set. Missing files are skipped.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// ParseFlags validates flags and fills the rest from the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var sessionTTL, maxUpload string

	fs := flag.NewFlagSet("ward-admin", flag.ContinueOnError)

	// Network and storage (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL or sqlite file")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite, postgres, mongo or memory)")
	fs.StringVar(&cfg.DatabaseName, "n", "", "Database name (mongo only)")

	// Auth (prefer env for the secret)
	fs.StringVar(&cfg.AuthFile, "auth-file", "", "Admin credential file (user:argon2id-hash)")
	fs.StringVar(&cfg.SessionSecret, "session-secret", "", "Session signing secret (prefer env)")
	fs.StringVar(&sessionTTL, "session-ttl", "", "Session lifetime, e.g. 12h")

	fs.StringVar(&cfg.TimeZone, "tz", "", "Time zone for calendar dates (IANA name)")
	fs.StringVar(&maxUpload, "max-upload", "", "Upload size limit, e.g. 10MiB")
	fs.StringVar(&cfg.GoogleAPIEndpoint, "google-endpoint", "", "Google Calendar API endpoint override")
	fs.StringVar(&cfg.PDFFontFile, "pdf-font", "", "UTF-8 TrueType font for PDF export")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = defaultPort
		}
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = DatabaseSQLite
		}
	}
	switch cfg.DatabaseType {
	case DatabaseSQLite, DatabasePostgres, DatabaseMongo, DatabaseMemory:
	default:
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" && cfg.DatabaseType != DatabaseMemory {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseName == "" {
		cfg.DatabaseName = envOr("DATABASE_NAME", defaultDatabaseName)
	}

	if cfg.AuthFile == "" {
		cfg.AuthFile = os.Getenv("AUTH_FILE")
	}
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = os.Getenv("SESSION_SECRET")
	}
	if cfg.AuthFile != "" && cfg.SessionSecret == "" {
		return Config{}, errors.New("SESSION_SECRET required when AUTH_FILE is set")
	}

	if sessionTTL == "" {
		sessionTTL = os.Getenv("SESSION_TTL")
	}
	cfg.SessionTTL = defaultSessionTTL
	if sessionTTL != "" {
		d, err := time.ParseDuration(sessionTTL)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("invalid session TTL %q", sessionTTL)
		}
		cfg.SessionTTL = d
	}

	if cfg.TimeZone == "" {
		cfg.TimeZone = envOr("TIME_ZONE", "Local")
	}
	if _, err := cfg.Location(); err != nil {
		return Config{}, err
	}

	if maxUpload == "" {
		maxUpload = os.Getenv("MAX_UPLOAD_BYTES")
	}
	cfg.MaxUploadBytes = defaultMaxUploadBytes
	if maxUpload != "" {
		n, err := humanize.ParseBytes(maxUpload)
		if err != nil || n == 0 {
			return Config{}, fmt.Errorf("invalid upload limit %q", maxUpload)
		}
		cfg.MaxUploadBytes = int64(n)
	}

	if cfg.GoogleAPIEndpoint == "" {
		cfg.GoogleAPIEndpoint = os.Getenv("GOOGLE_API_ENDPOINT")
	}
	if cfg.PDFFontFile == "" {
		cfg.PDFFontFile = os.Getenv("PDF_FONT_FILE")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
