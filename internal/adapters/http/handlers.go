package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"ascend/internal/adapters/http/middleware"
	"ascend/internal/application/orchestrators"
	"ascend/internal/application/projections"
	accountDomain "ascend/internal/domain/account"
	bookingDomain "ascend/internal/domain/booking"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeJSON writes v as a JSON response.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

const templatesDir = "internal/adapters/http/templates"

func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	role := ""
	email := ""
	if ok {
		role = sess.Role
		email = sess.Email
	}

	funcMap := template.FuncMap{
		"currentRole":  func() string { return role },
		"currentEmail": func() string { return email },
		"isLoggedIn":   func() bool { return role != "" },
		"isAdmin":      func() bool { return role == accountDomain.RoleAdmin },
		"csrfToken":    func() string { return csrf.Token(r) },
		"renderMarkdown": func(md string) template.HTML {
			var buf bytes.Buffer
			if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
				return template.HTML(template.HTMLEscapeString(md))
			}
			return template.HTML(buf.String())
		},
	}

	layoutPath := filepath.Join(templatesDir, "layout.html")
	pagePath := filepath.Join(templatesDir, templateName)
	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFiles(layoutPath, pagePath)
	if err != nil {
		http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tpl.Execute(w, data); err != nil {
		http.Error(w, "Render error: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// registerRoutes attaches all page and API handlers to the mux.
func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/", handleHome)
	mux.HandleFunc("/schedule", handleSchedulePage)
	mux.HandleFunc("/admin", handleAdminPage)

	mux.HandleFunc("/auth/send-code", handleSendCode)
	mux.HandleFunc("/auth/verify", handleVerifyCode)
	mux.HandleFunc("/logout", handleLogout)

	mux.HandleFunc("/api/slots", handleGetSlots)
	mux.HandleFunc("/api/requests", handleRequests)
	mux.HandleFunc("/api/admin/requests", handleGetAdminRequests)
	mux.HandleFunc("/api/admin/requests/decide", handleDecideRequest)
	mux.HandleFunc("/api/admin/perf", handleGetAdminPerf)
}

// homeFor returns the landing target for a signed-in role.
func homeFor(role string) string {
	if role == accountDomain.RoleAdmin {
		return "/admin"
	}
	return "/schedule"
}

// requireAdmin extracts the session and rejects non-admin callers.
func requireAdmin(w http.ResponseWriter, r *http.Request) (middleware.Session, bool) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		slog.Warn("auth_denied", "path", r.URL.Path, "reason", "no session")
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return middleware.Session{}, false
	}
	if sess.Role != accountDomain.RoleAdmin {
		slog.Warn("auth_denied", "path", r.URL.Path, "account_id", sess.AccountID, "role", sess.Role, "required", "admin")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return middleware.Session{}, false
	}
	return sess, true
}

// requireSession extracts the session or rejects with 401.
func requireSession(w http.ResponseWriter, r *http.Request) (middleware.Session, bool) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return middleware.Session{}, false
	}
	return sess, true
}

// handleHome handles GET / — the public landing page.
// Signed-in visitors are sent to their home page instead.
func handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
		http.Redirect(w, r, homeFor(sess.Role), http.StatusSeeOther)
		return
	}

	renderTemplate(w, r, "home.html", map[string]any{
		"Intro":    landingIntro,
		"Services": landingServices,
		"Subjects": landingSubjects,
		"Pricing":  landingPricing,
	})
}

// handleSchedulePage handles GET /schedule — the student booking page.
func handleSchedulePage(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	day := r.URL.Query().Get("day")
	deps := projections.GetScheduleViewDeps{
		BookingStore: stores.BookingStore,
		Catalog:      slotCatalog,
	}
	result, err := projections.QueryGetScheduleView(r.Context(), deps, sess.Email, day)
	if err != nil {
		internalError(w, err)
		return
	}

	renderTemplate(w, r, "schedule.html", map[string]any{
		"Days":     result.Days,
		"Day":      result.Day,
		"Slots":    result.Slots,
		"Pending":  result.Pending,
		"Upcoming": result.Upcoming,
	})
}

// handleAdminPage handles GET /admin — the request review console.
// Students are sent to their own schedule page.
func handleAdminPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if sess.Role != accountDomain.RoleAdmin {
		http.Redirect(w, r, "/schedule", http.StatusSeeOther)
		return
	}

	deps := projections.GetAdminRequestsDeps{BookingStore: stores.BookingStore}
	result, err := projections.QueryGetAdminRequests(r.Context(), deps)
	if err != nil {
		internalError(w, err)
		return
	}

	renderTemplate(w, r, "admin.html", map[string]any{
		"Pending":       result.Pending,
		"Approved":      result.Approved,
		"Denied":        result.Denied,
		"PendingCount":  result.PendingCount,
		"ApprovedCount": result.ApprovedCount,
		"DeniedCount":   result.DeniedCount,
	})
}

// handleSendCode handles POST /auth/send-code
func handleSendCode(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var input orchestrators.SendLoginCodeInput
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	deps := orchestrators.SendLoginCodeDeps{
		AccountStore: stores.AccountStore,
		Sender:       emailSender,
		From:         emailFromAddress,
		ReplyTo:      emailReplyTo,
	}
	if err := orchestrators.ExecuteSendLoginCode(r.Context(), input, deps); err != nil {
		switch {
		case errors.Is(err, orchestrators.ErrUnknownAccount):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, orchestrators.ErrInvalidMode),
			errors.Is(err, accountDomain.ErrEmptyEmail):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, orchestrators.ErrCodeSendFailed):
			http.Error(w, err.Error(), http.StatusBadGateway)
		default:
			internalError(w, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleVerifyCode handles POST /auth/verify
func handleVerifyCode(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var input orchestrators.VerifyLoginCodeInput
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	deps := orchestrators.VerifyLoginCodeDeps{
		AccountStore: stores.AccountStore,
		AdminEmail:   adminEmail,
	}
	result, err := orchestrators.ExecuteVerifyLoginCode(r.Context(), input, deps)
	if err != nil {
		switch {
		case errors.Is(err, accountDomain.ErrWrongCode),
			errors.Is(err, accountDomain.ErrCodeExpired),
			errors.Is(err, accountDomain.ErrCodeUsed):
			http.Error(w, err.Error(), http.StatusUnauthorized)
		case errors.Is(err, accountDomain.ErrEmptyEmail),
			errors.Is(err, accountDomain.ErrEmptyCode),
			errors.Is(err, accountDomain.ErrInvalidEmail),
			errors.Is(err, accountDomain.ErrInvalidAge):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			internalError(w, err)
		}
		return
	}

	token, err := sessions.Create(result.AccountID, result.Email, result.Role)
	if err != nil {
		internalError(w, err)
		return
	}
	middleware.SetSessionCookie(w, token)

	writeJSON(w, map[string]string{
		"Email":    result.Email,
		"Role":     result.Role,
		"Redirect": homeFor(result.Role),
	})
}

// handleLogout handles POST /logout
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if token := middleware.SessionToken(r); token != "" {
		sessions.Delete(token)
	}
	middleware.ClearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleGetSlots handles GET /api/slots?day=
func handleGetSlots(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	day := r.URL.Query().Get("day")
	snapshot, err := stores.BookingStore.ListVisibleTo(r.Context(), sess.Email)
	if err != nil {
		internalError(w, err)
		return
	}

	// A day outside the catalog yields an empty slot list, not an error.
	slots := projections.ComputeSlotView(slotCatalog, snapshot, sess.Email, day)
	if slots == nil {
		slots = []projections.SlotView{}
	}

	writeJSON(w, map[string]any{
		"Day":   day,
		"Slots": slots,
	})
}

// handleRequests handles GET (own requests) and POST (submit) for /api/requests
func handleRequests(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	if r.Method == "GET" {
		own, err := stores.BookingStore.ListByEmail(r.Context(), sess.Email)
		if err != nil {
			internalError(w, err)
			return
		}
		p := projections.PartitionByStatus(own)
		writeJSON(w, map[string]any{
			"Pending":  p.Pending,
			"Upcoming": p.Approved,
		})
		return
	}

	if r.Method == "POST" {
		var body struct {
			Day  string
			Time string
		}
		if err := strictDecode(r, &body); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		input := orchestrators.RequestSessionInput{
			UserEmail: sess.Email,
			Day:       body.Day,
			Time:      body.Time,
		}
		deps := orchestrators.RequestSessionDeps{
			BookingStore: stores.BookingStore,
			Catalog:      slotCatalog,
			Now:          timeNow,
		}
		request, err := orchestrators.ExecuteRequestSession(r.Context(), input, deps)
		if err != nil {
			switch {
			case errors.Is(err, orchestrators.ErrMissingIdentity):
				http.Error(w, err.Error(), http.StatusUnauthorized)
			case errors.Is(err, orchestrators.ErrInvalidSlot):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, orchestrators.ErrSlotUnavailable):
				http.Error(w, err.Error(), http.StatusConflict)
			default:
				internalError(w, err)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(request)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleGetAdminRequests handles GET /api/admin/requests
func handleGetAdminRequests(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	deps := projections.GetAdminRequestsDeps{BookingStore: stores.BookingStore}
	result, err := projections.QueryGetAdminRequests(r.Context(), deps)
	if err != nil {
		internalError(w, err)
		return
	}

	writeJSON(w, result)
}

// handleDecideRequest handles POST /api/admin/requests/decide
func handleDecideRequest(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireAdmin(w, r)
	if !ok {
		return
	}

	var body struct {
		ID       string
		Decision string
	}
	if err := strictDecode(r, &body); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	input := orchestrators.DecideRequestInput{
		RequestID: body.ID,
		Decision:  body.Decision,
		DecidedBy: sess.Email,
	}
	deps := orchestrators.DecideRequestDeps{BookingStore: stores.BookingStore}
	request, err := orchestrators.ExecuteDecideRequest(r.Context(), input, deps)
	if err != nil {
		switch {
		case errors.Is(err, orchestrators.ErrRequestNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, bookingDomain.ErrInvalidDecision):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			internalError(w, err)
		}
		return
	}

	writeJSON(w, request)
}

// handleGetAdminPerf handles GET /api/admin/perf
func handleGetAdminPerf(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	if perfCollector == nil {
		http.Error(w, "perf collection disabled", http.StatusNotFound)
		return
	}

	since := timeNow().Add(-1 * time.Hour)
	writeJSON(w, perfCollector.Snapshot(since, 10))
}
