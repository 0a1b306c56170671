package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/parcelhub/parcelhub/internal/auth"
	"github.com/parcelhub/parcelhub/internal/domain/user"
	"github.com/parcelhub/parcelhub/internal/http/handlers"
	"github.com/parcelhub/parcelhub/internal/http/middlewares"
	"github.com/parcelhub/parcelhub/internal/repo/memory"
	"github.com/parcelhub/parcelhub/internal/security"
)

type usersFixture struct {
	router *gin.Engine
	users  *memory.UsersRepo
	jwt    *auth.Manager
}

func newUsersFixture(t *testing.T) *usersFixture {
	t.Helper()

	f := &usersFixture{
		users: memory.NewUsersRepo(),
		jwt:   auth.NewManager("test-secret-key", time.Hour),
	}

	h := handlers.NewUsersHandler(f.users)
	authMW := middlewares.NewAuthMiddleware(f.jwt)

	r := gin.New()

	profile := r.Group("/users", authMW.RequireAuth())
	profile.GET("/profile", h.GetProfile)
	profile.PUT("/profile", h.UpdateProfile)
	profile.DELETE("/profile", h.DeleteProfile)

	f.router = r

	return f
}

func (f *usersFixture) seedUser(t *testing.T) (user.User, string) {
	t.Helper()

	hash, err := security.HashPassword("secret1")

	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	u, err := f.users.Create(t.Context(), "alice@x.com", hash, "Alice", "1 Sender Way", "555-0100", user.RoleClient)

	if err != nil {
		t.Fatalf("seed user: %v", err)
	}

	token, err := f.jwt.GenerateToken(u.ID, u.Email, u.Role)

	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	return u, token
}

func (f *usersFixture) do(method, token, body string) *httptest.ResponseRecorder {
	var req *http.Request

	if body != "" {
		req = httptest.NewRequest(method, "/users/profile", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, "/users/profile", nil)
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	return w
}

func TestGetProfile(t *testing.T) {
	f := newUsersFixture(t)
	u, token := f.seedUser(t)

	t.Run("requires_auth", func(t *testing.T) {
		w := f.do(http.MethodGet, "", "")

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("got status %d, want 401", w.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		w := f.do(http.MethodGet, token, "")

		if w.Code != http.StatusOK {
			t.Fatalf("got status %d, want 200, body=%s", w.Code, w.Body.String())
		}

		var got map[string]interface{}

		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
			t.Fatalf("unmarshal profile: %v", err)
		}

		if got["email"] != u.Email {
			t.Fatalf("got email %v, want %s", got["email"], u.Email)
		}

		if _, ok := got["password_hash"]; ok {
			t.Fatal("profile leaks password_hash")
		}
	})
}

func TestUpdateProfile(t *testing.T) {
	f := newUsersFixture(t)
	u, token := f.seedUser(t)

	t.Run("empty_body_is_rejected", func(t *testing.T) {
		w := f.do(http.MethodPut, token, `{}`)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("got status %d, want 400, body=%s", w.Code, w.Body.String())
		}
	})

	t.Run("partial_update", func(t *testing.T) {
		w := f.do(http.MethodPut, token, `{"name":"Alice B.","phone_number":"555-0199"}`)

		if w.Code != http.StatusOK {
			t.Fatalf("got status %d, want 200, body=%s", w.Code, w.Body.String())
		}

		got, err := f.users.GetByID(t.Context(), u.ID)

		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}

		if got.Name != "Alice B." || got.Phone != "555-0199" {
			t.Fatalf("update not applied: %+v", got)
		}

		// untouched fields keep their values
		if got.Address != u.Address || got.Email != u.Email {
			t.Fatalf("update clobbered unrelated fields: %+v", got)
		}
	})

	t.Run("password_change_rehashes", func(t *testing.T) {
		w := f.do(http.MethodPut, token, `{"password":"newsecret"}`)

		if w.Code != http.StatusOK {
			t.Fatalf("got status %d, want 200, body=%s", w.Code, w.Body.String())
		}

		got, err := f.users.GetByID(t.Context(), u.ID)

		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}

		if got.PasswordHash == u.PasswordHash {
			t.Fatal("password hash did not change")
		}

		if err := security.CheckPassword(got.PasswordHash, "newsecret"); err != nil {
			t.Fatalf("new password does not verify: %v", err)
		}
	})
}

func TestDeleteProfile(t *testing.T) {
	f := newUsersFixture(t)
	_, token := f.seedUser(t)

	w := f.do(http.MethodDelete, token, "")

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200, body=%s", w.Code, w.Body.String())
	}

	var resp map[string]string

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}

	if resp["message"] != "User account deleted successfully" {
		t.Fatalf("got message %q", resp["message"])
	}

	// the token is still cryptographically valid but the account is gone
	t.Run("stale_token_sees_404", func(t *testing.T) {
		w := f.do(http.MethodGet, token, "")

		if w.Code != http.StatusNotFound {
			t.Fatalf("got status %d, want 404, body=%s", w.Code, w.Body.String())
		}
	})
}
