package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/evoleadai/evolead/internal/clock"
	"github.com/evoleadai/evolead/internal/config"
)

const (
	signaturePrefix = "sha256="
	maxSkew         = 300 * time.Second
)

var (
	// ErrSecretUnset means verification cannot run at all. The endpoint
	// rejects everything rather than letting unsigned traffic through.
	ErrSecretUnset      = errors.New("webhook secret not configured")
	ErrMissingSignature = errors.New("missing webhook signature")
	ErrMissingTimestamp = errors.New("missing webhook timestamp")
	ErrStaleTimestamp   = errors.New("webhook timestamp outside tolerance")
	ErrBadSignature     = errors.New("webhook signature mismatch")
)

// Verifier authenticates inbound webhook requests: HMAC-SHA256 over
// "{timestamp}.{body}" with a shared secret, compared in constant time,
// with a replay window of +/-300 seconds.
type Verifier struct {
	secret []byte
	clock  clock.Clock
}

func NewVerifier(cfg config.Config, clk clock.Clock) *Verifier {
	var secret []byte
	if cfg.WebhookSecret != "" {
		secret = []byte(cfg.WebhookSecret)
	}
	return &Verifier{secret: secret, clock: clk}
}

func (v *Verifier) Verify(signatureHeader, timestampHeader string, body []byte) error {
	if len(v.secret) == 0 {
		return ErrSecretUnset
	}

	signatureHeader = strings.TrimSpace(signatureHeader)
	if signatureHeader == "" {
		return ErrMissingSignature
	}
	timestampHeader = strings.TrimSpace(timestampHeader)
	if timestampHeader == "" {
		return ErrMissingTimestamp
	}

	ts, err := strconv.ParseInt(timestampHeader, 10, 64)
	if err != nil {
		return ErrMissingTimestamp
	}
	skew := v.clock.Now().Sub(time.Unix(ts, 0))
	if skew > maxSkew || skew < -maxSkew {
		return ErrStaleTimestamp
	}

	provided := strings.TrimPrefix(signatureHeader, signaturePrefix)
	providedRaw, err := hex.DecodeString(provided)
	if err != nil {
		return ErrBadSignature
	}

	mac := hmac.New(sha256.New, v.secret)
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(body)
	expected := mac.Sum(nil)

	if subtle.ConstantTimeCompare(providedRaw, expected) != 1 {
		return ErrBadSignature
	}
	return nil
}

// Sign produces the header value for a timestamp and body. Used by tests
// and by outbound deliveries.
func (v *Verifier) Sign(ts int64, body []byte) (string, error) {
	if len(v.secret) == 0 {
		return "", ErrSecretUnset
	}
	mac := hmac.New(sha256.New, v.secret)
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(body)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil)), nil
}
