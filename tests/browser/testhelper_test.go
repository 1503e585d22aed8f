package browser_test

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	_ "modernc.org/sqlite"

	emailPkg "ascend/internal/adapters/email"
	web "ascend/internal/adapters/http"
	"ascend/internal/adapters/http/middleware"
	"ascend/internal/adapters/storage"
	accountStore "ascend/internal/adapters/storage/account"
	bookingStore "ascend/internal/adapters/storage/booking"
	"ascend/internal/application/orchestrators"
)

const adminEmail = "admin@test.com"

// testApp holds the running test server and Playwright handles.
type testApp struct {
	BaseURL string
	DB      *sql.DB
	Server  *http.Server
	PW      *playwright.Playwright
	Browser playwright.Browser
	Stores  *web.Stores
	Emails  *emailPkg.CaptureSender
	tmpDir  string
}

// newTestApp creates a fully wired app with a temp SQLite DB and starts an HTTP server.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	// Create temp directory for the database
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	// Create schema and run migrations
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("failed to init test DB: %v", err)
	}
	if err := storage.MigrateDB(db, dbPath); err != nil {
		t.Fatalf("failed to migrate test DB: %v", err)
	}

	// Create stores
	acctStore := accountStore.NewSQLiteStore(db)
	stores := &web.Stores{
		AccountStore: acctStore,
		BookingStore: bookingStore.NewSQLiteStore(db),
	}

	// Seed admin and capture outgoing email so tests can read login codes
	ctx := context.Background()
	seedDeps := orchestrators.SeedAdminDeps{AccountStore: acctStore}
	if err := orchestrators.ExecuteSeedAdmin(ctx, seedDeps, adminEmail); err != nil {
		t.Fatalf("failed to seed admin: %v", err)
	}
	web.SetAdminEmail(adminEmail)

	capture := emailPkg.NewCaptureSender()
	web.SetEmailSender(capture, "Ascend Academics <noreply@test.com>", "")

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()

	// Change to project root so relative template/static paths work
	projectRoot := findProjectRoot(t)
	origDir, _ := os.Getwd()
	if err := os.Chdir(projectRoot); err != nil {
		t.Fatalf("failed to chdir to project root: %v", err)
	}
	t.Cleanup(func() { os.Chdir(origDir) })

	// Add test port to CSRF trusted origins before creating mux
	middleware.ExtraTrustedOrigins = append(middleware.ExtraTrustedOrigins,
		fmt.Sprintf("127.0.0.1:%d", port),
		fmt.Sprintf("localhost:%d", port),
	)

	// Start HTTP server
	mux := web.NewMux("static", stores, nil)
	srv := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", port),
		Handler: mux,
	}
	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("test server error: %v", err)
		}
	}()

	// Wait for server to be ready
	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)
	for i := 0; i < 50; i++ {
		resp, err := http.Get(baseURL + "/")
		if err == nil {
			resp.Body.Close()
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	// Start Playwright
	pw, err := playwright.Run()
	if err != nil {
		t.Fatalf("failed to start Playwright: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		t.Fatalf("failed to launch browser: %v", err)
	}

	app := &testApp{
		BaseURL: baseURL,
		DB:      db,
		Server:  srv,
		PW:      pw,
		Browser: browser,
		Stores:  stores,
		Emails:  capture,
		tmpDir:  tmpDir,
	}

	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
		srv.Close()
		db.Close()
	})

	return app
}

// newPage creates a new browser page (tab).
func (a *testApp) newPage(t *testing.T) playwright.Page {
	t.Helper()
	page, err := a.Browser.NewPage()
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	t.Cleanup(func() { page.Close() })
	return page
}

var codePattern = regexp.MustCompile(`>(\d{6})<`)

// lastCode extracts the 6-digit code from the most recently captured email.
func (a *testApp) lastCode(t *testing.T) string {
	t.Helper()
	sent, ok := a.Emails.Last()
	if !ok {
		t.Fatal("no verification email was captured")
	}
	m := codePattern.FindStringSubmatch(sent.HTML)
	if m == nil {
		t.Fatalf("no code found in captured email: %s", sent.HTML)
	}
	return m[1]
}

// signIn runs the email-code flow from the landing page.
// mode is "login" or "signup"; age is filled only at signup.
func (a *testApp) signIn(t *testing.T, page playwright.Page, email, mode string, age string) {
	t.Helper()
	if _, err := page.Goto(a.BaseURL + "/"); err != nil {
		t.Fatalf("failed to open landing page: %v", err)
	}

	label := "Sign In"
	if mode == "signup" {
		label = "Get Started"
	}
	if err := page.Locator("button", playwright.PageLocatorOptions{HasText: label}).First().Click(); err != nil {
		t.Fatalf("failed to open auth panel: %v", err)
	}

	if err := page.Locator("#auth-email").Fill(email); err != nil {
		t.Fatalf("failed to fill email: %v", err)
	}
	if mode == "signup" && age != "" {
		if err := page.Locator("#auth-age").Fill(age); err != nil {
			t.Fatalf("failed to fill age: %v", err)
		}
	}
	if err := page.Locator("#email-form button[type=submit]").Click(); err != nil {
		t.Fatalf("failed to request code: %v", err)
	}

	// The code form appears once the send succeeds
	if err := page.Locator("#code-form").WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(10000),
	}); err != nil {
		t.Fatalf("code form never appeared: %v", err)
	}

	if err := page.Locator("#auth-code").Fill(a.lastCode(t)); err != nil {
		t.Fatalf("failed to fill code: %v", err)
	}
	if err := page.Locator("#code-form button[type=submit]").Click(); err != nil {
		t.Fatalf("failed to submit code: %v", err)
	}

	target := a.BaseURL + "/schedule**"
	if email == adminEmail {
		target = a.BaseURL + "/admin**"
	}
	if err := page.WaitForURL(target, playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		t.Fatalf("sign-in did not redirect: %v", err)
	}
}

// findProjectRoot walks up from the working directory to find the project root (contains go.mod).
func findProjectRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("could not find project root (go.mod) from working directory")
		}
		dir = parent
	}
}
