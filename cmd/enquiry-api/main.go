// cmd/enquiry-api/main.go
//
// Group-booking enquiry API – HTTP entry point.
//
// Start-up
// --------
//
//  1. Load configuration (defaults → conf/.env → conf/global.yaml → ENQUIRY_*).
//
//  2. Start daily rotating logger (tees to console when running in a TTY).
//
//  3. Pick the booking repository:
//
//     • memory – bookings live for the life of the process
//     • mysql  – resolve the DSN (plain or vault:…) and open it
//
//     Either one is wrapped in an LRU read-through cache when
//     storage.cache_size > 0.
//
//  4. Open the optional GeoIP database.
//
//  5. Wire the service (notifier + simulated latency), the chi router, and
//     the http.Server with the configured timeouts.
//
//  6. Serve until SIGINT/SIGTERM, then drain for http.shutdown_timeout.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/yanizio/groupenquiry/internal/config"
	"github.com/yanizio/groupenquiry/internal/database"
	"github.com/yanizio/groupenquiry/internal/enquiry"
	"github.com/yanizio/groupenquiry/internal/logger"
	"github.com/yanizio/groupenquiry/internal/message"
	"github.com/yanizio/groupenquiry/internal/requestinfo"
	"github.com/yanizio/groupenquiry/internal/server"
	"github.com/yanizio/groupenquiry/internal/vault"
)

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logOut, err := logger.New(cfg.Paths.Root, runningInTTY(), cfg.Log.Level)
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}
	defer func() { _ = zap.L().Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//
	// ── 1.  Repository ──────────────────────────────────────────────────
	//
	storage := cfg.Storage
	if vault.IsRef(storage.DSN) {
		vc, err := vault.New(ctx, vault.Options{
			Address: cfg.Vault.Address,
			Renew:   cfg.Vault.Renew,
			Logger:  logOut,
		})
		if err != nil {
			logOut.Fatalw("vault client", "err", err)
		}
		if storage.DSN, err = vc.Resolve(ctx, storage.DSN); err != nil {
			logOut.Fatalw("resolve storage dsn", "err", err)
		}
	}

	repo, db, err := openRepository(ctx, storage)
	if err != nil {
		logOut.Fatalw("open repository", "driver", cfg.Storage.Driver, "err", err)
	}
	if db != nil {
		defer db.Close()
	}

	//
	// ── 2.  GeoIP (optional) ────────────────────────────────────────────
	//
	var geo *requestinfo.GeoDB
	if path := cfg.GeoIP.Database; path != "" {
		if geo, err = requestinfo.OpenGeo(path); err != nil {
			logOut.Fatalw("open geoip database", "path", path, "err", err)
		}
		defer geo.Close()
	}

	//
	// ── 3.  Service + routes ────────────────────────────────────────────
	//
	svc := enquiry.NewService(repo, enquiry.Options{
		Notifier: message.NewQueue(logOut),
		Latency: enquiry.Latency{
			Booking:   cfg.Simulation.BookingLatency,
			Locations: cfg.Simulation.LocationLatency,
		},
		Logger: logOut,
	})
	handler := enquiry.NewRouter(enquiry.NewHandler(svc), enquiry.RouterOptions{
		ForceHTTPS: cfg.HTTP.ForceHTTPS,
		Geo:        geo,
	})

	//
	// ── 4.  Serve until signalled ───────────────────────────────────────
	//
	srv := server.New(cfg.HTTP.ListenAddr, handler, server.Timeouts{
		Read:  cfg.HTTP.ReadTimeout,
		Write: cfg.HTTP.WriteTimeout,
		Idle:  cfg.HTTP.IdleTimeout,
	})
	logOut.Infow("listening",
		"addr", cfg.HTTP.ListenAddr,
		"storage", cfg.Storage.Driver,
		"booking_latency", cfg.Simulation.BookingLatency)

	if err := server.Run(ctx, srv, cfg.HTTP.ShutdownTimeout); err != nil {
		logOut.Errorw("http server", "err", err)
		os.Exit(1)
	}
	logOut.Infow("shutdown complete")
}

// openRepository builds the configured repository.  db is non-nil only for
// the mysql driver and must be closed by the caller.
func openRepository(ctx context.Context, st config.Storage) (enquiry.Repository, *sqlx.DB, error) {
	var (
		repo enquiry.Repository
		db   *sqlx.DB
	)
	switch st.Driver {
	case "mysql":
		var err error
		if db, err = database.Open(st.DSN); err != nil {
			return nil, nil, err
		}
		if err := database.EnsureSchema(ctx, db, enquiry.Schema); err != nil {
			db.Close()
			return nil, nil, err
		}
		repo = enquiry.NewSQLRepository(db)
	default:
		repo = enquiry.NewMemoryRepository()
	}

	if st.CacheSize > 0 {
		repo = enquiry.NewCachedRepository(repo, st.CacheSize)
	}
	return repo, db, nil
}
