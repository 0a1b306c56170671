package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/parcelhub/parcelhub/internal/cache"
	"github.com/parcelhub/parcelhub/internal/config"
	"github.com/parcelhub/parcelhub/internal/domain/shipment"
	"github.com/parcelhub/parcelhub/internal/domain/user"
	httpx "github.com/parcelhub/parcelhub/internal/http"
	"github.com/parcelhub/parcelhub/internal/repo/memory"
	"github.com/parcelhub/parcelhub/internal/security"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// appFixture stands up the full router on in-memory stores, so these tests
// cover the same middleware chain and route wiring production traffic sees.
type appFixture struct {
	router *gin.Engine
	users  *memory.UsersRepo
}

func newAppFixture(t *testing.T) *appFixture {
	t.Helper()

	cfg := config.Config{
		Env:                 "test",
		JWTSecret:           "test-secret-key",
		JWTAccessTTLMinutes: 60,
		AuthRateLimit:       1000,
		AuthRateWindowSec:   60,
		CORSAllowedOrigins:  []string{"http://localhost:5173"},
	}

	f := &appFixture{users: memory.NewUsersRepo()}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	f.router = httpx.NewRouter(log, cfg, httpx.Deps{
		Users:      f.users,
		Shipments:  memory.NewShipmentsRepo(),
		TrackCache: cache.NewMemory(time.Minute),
		PingDB:     func() error { return nil },
	})

	return f
}

func (f *appFixture) do(method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request

	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	return w
}

func (f *appFixture) loginToken(t *testing.T, email, password string) string {
	t.Helper()

	w := f.do(http.MethodPost, "/auth/login", "", `{"email":"`+email+`","password":"`+password+`"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("login %s: got status %d, body=%s", email, w.Code, w.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		t.Fatalf("login %s: no token in response %s", email, w.Body.String())
	}

	return resp.Token
}

func (f *appFixture) seedAdmin(t *testing.T) string {
	t.Helper()

	hash, err := security.HashPassword("admin-secret")

	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	_, err = f.users.Create(t.Context(), "admin@x.com", hash, "Ops", "HQ", "555-0001", user.RoleAdmin)

	if err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	return f.loginToken(t, "admin@x.com", "admin-secret")
}

func TestHealthEndpoints(t *testing.T) {
	f := newAppFixture(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		w := f.do(http.MethodGet, path, "", "")

		if w.Code != http.StatusOK {
			t.Fatalf("%s: got status %d, body=%s", path, w.Code, w.Body.String())
		}
	}
}

func TestPostWithoutJSONContentTypeIsRejected(t *testing.T) {
	f := newAppFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString("email=a@x.com"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("got status %d, want 415, body=%s", w.Code, w.Body.String())
	}
}

// TestShipmentLifecycle walks a parcel from registration to soft delete
// through the public HTTP surface only.
func TestShipmentLifecycle(t *testing.T) {
	f := newAppFixture(t)

	// a client signs up
	w := f.do(http.MethodPost, "/auth/register", "", `{
		"email": "alice@x.com",
		"password": "secret1",
		"name": "Alice",
		"address": "1 Sender Way",
		"phone_number": "555-0100"
	}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("register: got status %d, body=%s", w.Code, w.Body.String())
	}

	clientToken := f.loginToken(t, "alice@x.com", "secret1")
	adminToken := f.seedAdmin(t)

	// client books a shipment
	w = f.do(http.MethodPost, "/shipments", clientToken, `{
		"recipient_name": "Bob",
		"recipient_address": "9 Receiver Rd",
		"shipment_details": "books",
		"weight": 2.5,
		"dimensions": "30x20x10"
	}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("create shipment: got status %d, body=%s", w.Code, w.Body.String())
	}

	var created shipment.Shipment

	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal shipment: %v", err)
	}

	if created.TrackingNumber == "" || created.Status != shipment.StatusPending {
		t.Fatalf("unexpected new shipment: %+v", created)
	}

	if created.SenderName != "Alice" || created.SenderAddress != "1 Sender Way" {
		t.Fatalf("sender not snapshotted from the profile: %+v", created)
	}

	trackPath := "/shipments/track/" + created.TrackingNumber
	statusPath := "/shipments/" + strconv.FormatInt(created.ID, 10) + "/status"
	deletePath := "/shipments/" + strconv.FormatInt(created.ID, 10)

	// anyone with the code can track, no token needed
	w = f.do(http.MethodGet, trackPath, "", "")

	if w.Code != http.StatusOK {
		t.Fatalf("track: got status %d, body=%s", w.Code, w.Body.String())
	}

	// admin surface is closed to clients
	for _, tc := range []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/shipments/all", ""},
		{http.MethodPut, statusPath, `{"status":"In Transit"}`},
		{http.MethodDelete, deletePath, ""},
	} {
		w = f.do(tc.method, tc.path, clientToken, tc.body)

		if w.Code != http.StatusForbidden {
			t.Fatalf("%s %s as client: got status %d, want 403", tc.method, tc.path, w.Code)
		}
	}

	// and fully closed to anonymous callers
	w = f.do(http.MethodGet, "/shipments/all", "", "")

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous list all: got status %d, want 401", w.Code)
	}

	// admin advances the parcel
	w = f.do(http.MethodPut, statusPath, adminToken, `{"status":"In Transit"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("update status: got status %d, body=%s", w.Code, w.Body.String())
	}

	// the public view reflects it immediately
	w = f.do(http.MethodGet, trackPath, "", "")

	var tracked shipment.Shipment

	if err := json.Unmarshal(w.Body.Bytes(), &tracked); err != nil {
		t.Fatalf("unmarshal tracked shipment: %v", err)
	}

	if tracked.Status != shipment.StatusInTransit {
		t.Fatalf("track after update: got status %q, want %q", tracked.Status, shipment.StatusInTransit)
	}

	// admin listing sees the shipment
	w = f.do(http.MethodGet, "/shipments/all", adminToken, "")

	if w.Code != http.StatusOK {
		t.Fatalf("list all: got status %d, body=%s", w.Code, w.Body.String())
	}

	var page struct {
		Items []shipment.Shipment `json:"items"`
		Count int                 `json:"count"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("unmarshal page: %v", err)
	}

	if page.Count != 1 || len(page.Items) != 1 {
		t.Fatalf("list all: got %d items, want 1", page.Count)
	}

	// retire the shipment
	w = f.do(http.MethodDelete, deletePath, adminToken, "")

	if w.Code != http.StatusOK {
		t.Fatalf("delete: got status %d, body=%s", w.Code, w.Body.String())
	}

	// the tracking code stops resolving
	w = f.do(http.MethodGet, trackPath, "", "")

	if w.Code != http.StatusNotFound {
		t.Fatalf("track after delete: got status %d, want 404, body=%s", w.Code, w.Body.String())
	}

	// and the listing no longer includes it
	w = f.do(http.MethodGet, "/shipments/all", adminToken, "")

	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("unmarshal page: %v", err)
	}

	if page.Count != 0 {
		t.Fatalf("list all after delete: got %d items, want 0", page.Count)
	}

	// deleting again answers 404, not 200
	w = f.do(http.MethodDelete, deletePath, adminToken, "")

	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete: got status %d, want 404", w.Code)
	}
}

func TestAuthRateLimit(t *testing.T) {
	f := newAppFixture(t)

	cfgLimited := config.Config{
		Env:                 "test",
		JWTSecret:           "test-secret-key",
		JWTAccessTTLMinutes: 60,
		AuthRateLimit:       3,
		AuthRateWindowSec:   60,
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	limited := httpx.NewRouter(log, cfgLimited, httpx.Deps{
		Users:      f.users,
		Shipments:  memory.NewShipmentsRepo(),
		TrackCache: cache.NewMemory(time.Minute),
		PingDB:     func() error { return nil },
	})

	body := `{"email":"nobody@x.com","password":"whatever"}`

	var last int

	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		limited.ServeHTTP(w, req)
		last = w.Code
	}

	if last != http.StatusTooManyRequests {
		t.Fatalf("4th login attempt: got status %d, want 429", last)
	}
}
