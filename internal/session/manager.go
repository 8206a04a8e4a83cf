// Package session owns authentication state. All mutation goes through the
// Manager so there is exactly one writer, and every change is mirrored to
// the durable store.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tomarAyush07/healthbridge-seva-kendra/internal/api"
	"github.com/tomarAyush07/healthbridge-seva-kendra/internal/store"
)

// ResendCooldown is how long resend-OTP stays disabled after each send.
const ResendCooldown = 90 * time.Second

var (
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrNoPendingOTP     = errors.New("no OTP verification in progress")
	ErrResendCooldown   = errors.New("resend is still cooling down")
	ErrNotAuthenticated = errors.New("not authenticated")
)

type Manager struct {
	api   *api.Client
	store *store.Store
	now   func() time.Time

	mu           sync.Mutex
	session      *Session
	state        State
	pendingEmail string
	resendAt     time.Time
}

// NewManager restores any persisted session from the store and installs
// itself as the client's token source and 401 hook.
func NewManager(c *api.Client, st *store.Store) *Manager {
	m := &Manager{
		api:   c,
		store: st,
		now:   time.Now,
		state: StateIdle,
	}

	access, _ := st.Get(store.KeyAccessToken)
	refresh, _ := st.Get(store.KeyRefreshToken)
	if access != "" {
		var u User
		st.GetJSON(store.KeyUserInfo, &u)
		m.session = &Session{AccessToken: access, RefreshToken: refresh, User: u}
	}

	c.Tokens = m
	c.OnAuthExpired = m.HandleAuthExpired
	return m
}

// AccessToken implements api.TokenSource.
func (m *Manager) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return ""
	}
	return m.session.AccessToken
}

func (m *Manager) Authenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session != nil
}

func (m *Manager) CurrentUser() (User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return User{}, false
	}
	return m.session.User, true
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Login exchanges credentials for tokens, persists them and marks the
// session authenticated.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	pair, err := m.api.Login(ctx, username, password)
	if err != nil {
		return err
	}

	u := User{Name: username}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = &Session{AccessToken: pair.Access, RefreshToken: pair.Refresh, User: u}
	m.state = StateIdle
	m.pendingEmail = ""
	m.resendAt = time.Time{}

	if err := m.store.Set(store.KeyAccessToken, pair.Access); err != nil {
		return err
	}
	if err := m.store.Set(store.KeyRefreshToken, pair.Refresh); err != nil {
		return err
	}
	return m.store.SetJSON(store.KeyUserInfo, u)
}

// Signup registers a new account. On success the manager enters
// StateOTPPending and the resend cooldown starts.
func (m *Manager) Signup(ctx context.Context, username, email, password, confirmPassword string) (string, error) {
	if password != confirmPassword {
		return "", ErrPasswordMismatch
	}

	msg, err := m.api.Register(ctx, username, email, password, confirmPassword)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateOTPPending
	m.pendingEmail = email
	m.resendAt = m.now().Add(ResendCooldown)

	// Remember who signed up so the dashboard can greet them before the
	// first login, like the original did.
	_ = m.store.SetJSON(store.KeyUserInfo, User{Name: username, Email: email})

	if msg == "" {
		msg = "Please verify your email with the OTP sent to your inbox."
	}
	return msg, nil
}

// VerifyOTP confirms the emailed code. Legal only in StateOTPPending.
func (m *Manager) VerifyOTP(ctx context.Context, code string) (string, error) {
	m.mu.Lock()
	if m.state != StateOTPPending {
		m.mu.Unlock()
		return "", ErrNoPendingOTP
	}
	email := m.pendingEmail
	m.mu.Unlock()

	msg, err := m.api.VerifyOTP(ctx, email, code)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateVerified
	m.pendingEmail = ""
	m.resendAt = time.Time{}

	if msg == "" {
		msg = "Your email has been verified successfully. You can now login."
	}
	return msg, nil
}

// ResendOTP re-requests a code. Legal only in StateOTPPending and only once
// the cooldown has elapsed; on success the cooldown restarts.
func (m *Manager) ResendOTP(ctx context.Context) (string, error) {
	m.mu.Lock()
	if m.state != StateOTPPending {
		m.mu.Unlock()
		return "", ErrNoPendingOTP
	}
	if m.now().Before(m.resendAt) {
		m.mu.Unlock()
		return "", ErrResendCooldown
	}
	email := m.pendingEmail
	m.mu.Unlock()

	msg, err := m.api.ResendOTP(ctx, email)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.resendAt = m.now().Add(ResendCooldown)

	if msg == "" {
		msg = "A new verification code has been sent to your email."
	}
	return msg, nil
}

// CanResend reports whether resend-OTP is currently actionable.
func (m *Manager) CanResend() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateOTPPending && !m.now().Before(m.resendAt)
}

// Countdown returns the whole seconds left in the resend cooldown.
func (m *Manager) Countdown() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateOTPPending {
		return 0
	}
	left := m.resendAt.Sub(m.now())
	if left <= 0 {
		return 0
	}
	return int(left.Round(time.Second) / time.Second)
}

// Logout clears the persisted and in-memory session.
func (m *Manager) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearLocked()
}

// HandleAuthExpired is installed as the API client's 401 hook. It tears the
// session down exactly like Logout; the caller is then routed to login.
func (m *Manager) HandleAuthExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearLocked()
}

func (m *Manager) clearLocked() {
	m.session = nil
	m.state = StateIdle
	m.pendingEmail = ""
	m.resendAt = time.Time{}
	_ = m.store.Delete(store.KeyAccessToken, store.KeyRefreshToken, store.KeyUserInfo)
}

// FormatTime renders a second count as MM:SS for countdown display.
func FormatTime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
