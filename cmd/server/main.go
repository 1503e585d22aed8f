package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	_ "modernc.org/sqlite"

	emailPkg "ascend/internal/adapters/email"
	web "ascend/internal/adapters/http"
	"ascend/internal/adapters/http/perf"
	"ascend/internal/adapters/storage"
	accountStore "ascend/internal/adapters/storage/account"
	bookingStore "ascend/internal/adapters/storage/booking"
	"ascend/internal/application/orchestrators"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Initialize database with WAL mode, foreign keys, and busy timeout
	dbPath := envOrDefault("ASCEND_DB_PATH", "ascend.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	// Health check
	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}

	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	if err := storage.MigrateDB(db, dbPath); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	log.Println("Database initialized successfully!")

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector)

	acctStore := accountStore.NewSQLiteStore(timedDB)
	stores := &web.Stores{
		AccountStore: acctStore,
		BookingStore: bookingStore.NewSQLiteStore(timedDB),
	}

	// Seed the admin account if it does not exist yet
	adminEmail := envOrDefault("ASCEND_ADMIN_EMAIL", "info@ascendacademics.com")
	seedDeps := orchestrators.SeedAdminDeps{AccountStore: acctStore}
	if err := orchestrators.ExecuteSeedAdmin(context.Background(), seedDeps, adminEmail); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	web.SetAdminEmail(adminEmail)

	// Configure email sender
	resendKey := os.Getenv("ASCEND_RESEND_KEY")
	emailFrom := envOrDefault("ASCEND_RESEND_FROM", "Ascend Academics <noreply@ascendacademics.com>")
	emailReply := envOrDefault("ASCEND_REPLY_TO", "info@ascendacademics.com")
	if resendKey != "" {
		web.SetEmailSender(emailPkg.NewResendSender(resendKey, emailFrom), emailFrom, emailReply)
		log.Println("Email sender configured (Resend)")
	} else {
		web.SetEmailSender(emailPkg.NewNoopSender(), emailFrom, emailReply)
		if os.Getenv("ASCEND_ENV") == "production" {
			log.Println("WARNING: ASCEND_RESEND_KEY is not set — email delivery is DISABLED in production")
		} else {
			log.Println("Email sender configured (noop — set ASCEND_RESEND_KEY for real delivery)")
		}
	}

	// Start background worker that clears expired and spent login codes
	purgeStopCh := make(chan struct{})
	purger := orchestrators.NewCodePurger(acctStore)
	orchestrators.StartBackgroundWorker(purger, 15*time.Minute, purgeStopCh)
	defer close(purgeStopCh)

	// Create HTTP handler with middleware (pass collector for timing + dashboard)
	mux := web.NewMux("static", stores, collector)

	// Start server
	addr := envOrDefault("ASCEND_ADDR", ":8080")
	log.Printf("Ascend %s starting on %s (env=%s, schema=%d)", version, addr, envOrDefault("ASCEND_ENV", "development"), storage.LatestSchemaVersion())

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
