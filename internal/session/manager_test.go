package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tomarAyush07/healthbridge-seva-kendra/internal/api"
	"github.com/tomarAyush07/healthbridge-seva-kendra/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	st, err := store.Open(dsn)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return st
}

// fakeClock lets tests move through the resend cooldown.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newAuthBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login/", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Username == "alice" && req.Password == "Secret1!" {
			json.NewEncoder(w).Encode(map[string]string{
				"access":  "access-token",
				"refresh": "refresh-token",
			})
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{
			"detail": "No active account found with the given credentials.",
		})
	})
	mux.HandleFunc("/auth/register/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{
			"message": "Please verify your email with the OTP sent to your inbox.",
		})
	})
	mux.HandleFunc("/auth/verify-otp/", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			OTP string `json:"otp"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.OTP != "123456" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Invalid OTP."})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"message": "Email verified."})
	})
	mux.HandleFunc("/auth/resend-otp/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"message": "A new verification code has been sent to your email."})
	})
	mux.HandleFunc("/healthcare/form/me/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	return httptest.NewServer(mux)
}

func TestLogin_PersistsSession(t *testing.T) {
	srv := newAuthBackend(t)
	defer srv.Close()

	st := newTestStore(t)
	m := NewManager(api.NewClient(srv.URL), st)

	if err := m.Login(context.Background(), "alice", "Secret1!"); err != nil {
		t.Fatalf("login: %v", err)
	}

	u, ok := m.CurrentUser()
	if !ok || u.Name != "alice" {
		t.Fatalf("current user = %+v ok=%t, want alice", u, ok)
	}

	access, _ := st.Get(store.KeyAccessToken)
	refresh, _ := st.Get(store.KeyRefreshToken)
	if access != "access-token" || refresh != "refresh-token" {
		t.Fatalf("stored tokens = %q / %q", access, refresh)
	}
}

func TestLogin_FailureSurfacesMessage(t *testing.T) {
	srv := newAuthBackend(t)
	defer srv.Close()

	m := NewManager(api.NewClient(srv.URL), newTestStore(t))

	err := m.Login(context.Background(), "alice", "wrong")
	if err == nil {
		t.Fatal("expected login error")
	}
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected api error, got %v", err)
	}
	if apiErr.Message != "No active account found with the given credentials." {
		t.Fatalf("message = %q", apiErr.Message)
	}
	if m.Authenticated() {
		t.Fatal("failed login must not authenticate")
	}
}

func TestSignup_PasswordMismatchIsLocal(t *testing.T) {
	// No server: a mismatch must not reach the network.
	m := NewManager(api.NewClient("http://127.0.0.1:1"), newTestStore(t))

	_, err := m.Signup(context.Background(), "bob", "bob@example.com", "Secret1!", "Other1!")
	if !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}
	if m.State() != StateIdle {
		t.Fatalf("state = %v, want idle", m.State())
	}
}

func TestSignup_ResendCooldown(t *testing.T) {
	srv := newAuthBackend(t)
	defer srv.Close()

	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	m := NewManager(api.NewClient(srv.URL), newTestStore(t))
	m.now = clock.now

	if _, err := m.Signup(context.Background(), "bob", "bob@example.com", "Secret1!", "Secret1!"); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if m.State() != StateOTPPending {
		t.Fatalf("state = %v, want otp_pending", m.State())
	}
	if m.CanResend() {
		t.Fatal("resend must be disabled right after signup")
	}
	if got := m.Countdown(); got != 90 {
		t.Fatalf("countdown = %d, want 90", got)
	}

	if _, err := m.ResendOTP(context.Background()); !errors.Is(err, ErrResendCooldown) {
		t.Fatalf("expected ErrResendCooldown, got %v", err)
	}

	clock.advance(89 * time.Second)
	if m.CanResend() {
		t.Fatal("resend enabled one second early")
	}

	clock.advance(1 * time.Second)
	if !m.CanResend() {
		t.Fatal("resend must be enabled after 90s")
	}

	if _, err := m.ResendOTP(context.Background()); err != nil {
		t.Fatalf("resend: %v", err)
	}
	// cooldown restarts
	if m.CanResend() {
		t.Fatal("resend must cool down again after a successful resend")
	}
}

func TestVerifyOTP_RequiresPendingState(t *testing.T) {
	srv := newAuthBackend(t)
	defer srv.Close()

	m := NewManager(api.NewClient(srv.URL), newTestStore(t))

	if _, err := m.VerifyOTP(context.Background(), "123456"); !errors.Is(err, ErrNoPendingOTP) {
		t.Fatalf("expected ErrNoPendingOTP, got %v", err)
	}
}

func TestVerifyOTP_TransitionsToVerified(t *testing.T) {
	srv := newAuthBackend(t)
	defer srv.Close()

	m := NewManager(api.NewClient(srv.URL), newTestStore(t))
	if _, err := m.Signup(context.Background(), "bob", "bob@example.com", "Secret1!", "Secret1!"); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, err := m.VerifyOTP(context.Background(), "123456"); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if m.State() != StateVerified {
		t.Fatalf("state = %v, want verified", m.State())
	}
	if m.Countdown() != 0 {
		t.Fatal("cooldown must be cleared after verification")
	}
}

func TestAuthExpired_ClearsSessionAndStore(t *testing.T) {
	srv := newAuthBackend(t)
	defer srv.Close()

	st := newTestStore(t)
	client := api.NewClient(srv.URL)
	m := NewManager(client, st)

	if err := m.Login(context.Background(), "alice", "Secret1!"); err != nil {
		t.Fatalf("login: %v", err)
	}

	// Any authenticated request answered with 401 tears the session down.
	err := client.Get(context.Background(), "/healthcare/form/me/", nil)
	if !errors.Is(err, api.ErrAuthExpired) {
		t.Fatalf("expected ErrAuthExpired, got %v", err)
	}

	if m.Authenticated() {
		t.Fatal("session must be cleared after a 401")
	}
	if _, ok := st.Get(store.KeyAccessToken); ok {
		t.Fatal("access token must be removed from the store")
	}
	if _, ok := st.Get(store.KeyRefreshToken); ok {
		t.Fatal("refresh token must be removed from the store")
	}
	if _, ok := st.Get(store.KeyUserInfo); ok {
		t.Fatal("user info must be removed from the store")
	}
}

func TestNewManager_RestoresPersistedSession(t *testing.T) {
	st := newTestStore(t)
	if err := st.Set(store.KeyAccessToken, "persisted-access"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := st.Set(store.KeyRefreshToken, "persisted-refresh"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := st.SetJSON(store.KeyUserInfo, User{Name: "alice"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	m := NewManager(api.NewClient("http://127.0.0.1:1"), st)
	if !m.Authenticated() {
		t.Fatal("expected restored session")
	}
	if m.AccessToken() != "persisted-access" {
		t.Fatalf("access token = %q", m.AccessToken())
	}
	u, _ := m.CurrentUser()
	if u.Name != "alice" {
		t.Fatalf("user = %+v", u)
	}
}

func TestFormatTime(t *testing.T) {
	cases := map[int]string{0: "00:00", 5: "00:05", 90: "01:30", 600: "10:00", -3: "00:00"}
	for in, want := range cases {
		if got := FormatTime(in); got != want {
			t.Fatalf("FormatTime(%d) = %q, want %q", in, got, want)
		}
	}
}
