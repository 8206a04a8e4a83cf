// Package api is the HTTP client for the HealthBridge backend. Every request
// the application makes goes through Client.do, which is the single place
// that attaches the bearer token and reacts to 401 responses.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"
)

// TokenSource supplies the current access token. An empty string means the
// request is sent unauthenticated.
type TokenSource interface {
	AccessToken() string
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// Tokens provides the bearer token for authenticated calls.
	Tokens TokenSource

	// OnAuthExpired fires once per 401 on an authenticated request, before
	// ErrAuthExpired is returned. The session manager installs itself here.
	OnAuthExpired func()
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenPair is the login response body.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type registerReq struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type verifyOTPReq struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type resendOTPReq struct {
	Email string `json:"email"`
}

type messageResp struct {
	Message string `json:"message"`
}

func (c *Client) Login(ctx context.Context, username, password string) (TokenPair, error) {
	var pair TokenPair
	err := c.Post(ctx, "/auth/login/", loginReq{Username: username, Password: password}, &pair)
	return pair, err
}

func (c *Client) Register(ctx context.Context, username, email, password, confirmPassword string) (string, error) {
	var resp messageResp
	err := c.Post(ctx, "/auth/register/", registerReq{
		Username:        username,
		Email:           email,
		Password:        password,
		ConfirmPassword: confirmPassword,
	}, &resp)
	return resp.Message, err
}

func (c *Client) VerifyOTP(ctx context.Context, email, code string) (string, error) {
	var resp messageResp
	err := c.Post(ctx, "/auth/verify-otp/", verifyOTPReq{Email: email, OTP: code}, &resp)
	return resp.Message, err
}

func (c *Client) ResendOTP(ctx context.Context, email string) (string, error) {
	var resp messageResp
	err := c.Post(ctx, "/auth/resend-otp/", resendOTPReq{Email: email}, &resp)
	return resp.Message, err
}

// Ping checks backend availability.
func (c *Client) Ping(ctx context.Context) error {
	return c.Get(ctx, "/", nil)
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	authenticated := false
	if c.Tokens != nil {
		if token := c.Tokens.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
			authenticated = true
		}
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return networkError()
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized && authenticated {
		if c.OnAuthExpired != nil {
			c.OnAuthExpired()
		}
		return ErrAuthExpired
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return decodeError(resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}
