// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package commands

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/ward-admin/auth"
	"github.com/danielhkuo/ward-admin/calendar"
	"github.com/danielhkuo/ward-admin/cliparse"
	"github.com/danielhkuo/ward-admin/db"
	"github.com/danielhkuo/ward-admin/gcal"
	"github.com/danielhkuo/ward-admin/middleware"
	"github.com/danielhkuo/ward-admin/router"
	"github.com/danielhkuo/ward-admin/sheet"
	"github.com/danielhkuo/ward-admin/store"
)

// sweepInterval is how often expired calendar tables are dropped
const sweepInterval = time.Minute

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve [flags]",
		Short: "Start the HTTP server (default)",
		Long: `Start the HTTP server. Flags fall back to environment variables:
PORT, DATABASE_TYPE, DATABASE_URL, DATABASE_NAME, AUTH_FILE, SESSION_SECRET,
SESSION_TTL, TIME_ZONE, MAX_UPLOAD_BYTES, GOOGLE_API_ENDPOINT, PDF_FONT_FILE.`,
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cliparse.ParseFlags(args)
			if errors.Is(err, flag.ErrHelp) {
				return nil
			}
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg cliparse.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	font, err := sheet.LoadPDFFont(cfg.PDFFontFile)
	if err != nil {
		return err
	}

	s, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	creds, err := auth.LoadCredentials(cfg.AuthFile)
	if err != nil {
		return err
	}
	var issuer *auth.SessionIssuer
	if creds != nil {
		issuer = auth.NewSessionIssuer(cfg.SessionSecret, cfg.SessionTTL)
	}

	sessions := calendar.NewSessions(cfg.SessionTTL)
	go sessions.Run(ctx, sweepInterval)

	hub := store.NewHub()
	mux := router.NewRouter(router.Services{
		Store:    store.Watch(s, hub),
		Hub:      hub,
		Sessions: sessions,
		Fetcher:  gcal.NewFetcher(cfg.GoogleAPIEndpoint),
		Creds:    creds,
		Issuer:   issuer,
		PDFFont:  font,
	}, cfg)

	// Create server
	server := http.Server{
		Handler:           middleware.CORS(mux),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		// Wait for Ctrl-C signal
		<-ctx.Done()
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "database", cfg.DatabaseType, "time_zone", cfg.TimeZone)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
		return err
	}
	slog.Info("Server closed")
	return nil
}

// sqlStore closes its connection pool along with the store
type sqlStore struct {
	*store.SQLStore
	conn *sql.DB
}

func (s sqlStore) Close() error {
	return s.conn.Close()
}

// openStore connects the backing store selected by DATABASE_TYPE
func openStore(ctx context.Context, cfg cliparse.Config) (store.Store, error) {
	switch cfg.DatabaseType {
	case cliparse.DatabaseMemory:
		slog.Warn("using in-memory store, data is lost on exit")
		return store.NewMemory(), nil

	case cliparse.DatabaseMongo:
		s, err := store.NewMongoStore(ctx, cfg.DatabaseURL, cfg.DatabaseName)
		if err != nil {
			return nil, fmt.Errorf("mongo connection failed: %w", err)
		}
		slog.Info("Mongo store ready", "database", cfg.DatabaseName)
		return s, nil

	case cliparse.DatabaseSQLite, cliparse.DatabasePostgres:
		conn, err := sql.Open(cfg.DatabaseType, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("database connection failed: %w", err)
		}
		if cfg.DatabaseType == cliparse.DatabaseSQLite {
			// One writer at a time avoids SQLITE_BUSY
			conn.SetMaxOpenConns(1)
		}

		// Verify connection
		if err := conn.PingContext(ctx); err != nil {
			conn.Close()
			return nil, fmt.Errorf("database ping failed: %w", err)
		}

		// Create schema (tables)
		if err := db.CreateSchema(conn); err != nil {
			conn.Close()
			return nil, err
		}
		slog.Info("Database schema ready", "driver", cfg.DatabaseType)
		return sqlStore{SQLStore: store.NewSQLStore(conn), conn: conn}, nil
	}

	return nil, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
}
