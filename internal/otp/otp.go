// Package otp issues and stores one-time email-verification codes.
package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"time"
)

// ErrCodeNotFound means no live code exists for the address (never issued,
// already consumed, or expired).
var ErrCodeNotFound = errors.New("otp: code not found")

// Store keeps codes keyed by email with a TTL.
type Store interface {
	SetCode(ctx context.Context, email, code string, ttl time.Duration) error
	GetCode(ctx context.Context, email string) (string, error)
	DeleteCode(ctx context.Context, email string) error
}

// GenerateCode returns a 6-digit numeric code.
func GenerateCode() (string, error) {
	const digits = "0123456789"
	out := make([]byte, 6)
	for i := range out {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", err
		}
		out[i] = digits[n.Int64()]
	}
	return string(out), nil
}
