package qr

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/parkingly/parkingly-server/internal/clock"
	"github.com/parkingly/parkingly-server/internal/domain"
)

const DefaultTTL = 30 * time.Minute

// tokenBytes yields 12 URL-safe characters after base64 encoding.
const tokenBytes = 9

// Issuer mints QR tokens with a fixed time-to-live. It holds no state; the
// caller attaches the token to a booking.
type Issuer struct {
	ttl   time.Duration
	clock clock.Clock
}

func NewIssuer(ttl time.Duration, clk clock.Clock) *Issuer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{ttl: ttl, clock: clk}
}

func (i *Issuer) Issue() (domain.QRToken, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return domain.QRToken{}, err
	}
	return domain.QRToken{
		Token:     base64.RawURLEncoding.EncodeToString(buf),
		ExpiresAt: i.clock.Now().Add(i.ttl),
	}, nil
}
