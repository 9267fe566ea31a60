package webhook

import (
	"strconv"
	"testing"
	"time"

	"github.com/evoleadai/evolead/internal/clock"
	"github.com/evoleadai/evolead/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVerifier(t *testing.T, secret string) (*Verifier, *clock.FakeClock) {
	t.Helper()
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	return NewVerifier(config.Config{WebhookSecret: secret}, clk), clk
}

func TestVerifyRoundTrip(t *testing.T) {
	v, clk := newTestVerifier(t, "topsecret")
	body := []byte(`{"search_id":"123","status":"completed"}`)
	ts := clk.Now().Unix()

	sig, err := v.Sign(ts, body)
	require.NoError(t, err)

	assert.NoError(t, v.Verify(sig, formatTS(ts), body))
}

func TestVerifyFailsClosedWithoutSecret(t *testing.T) {
	v, clk := newTestVerifier(t, "")
	body := []byte(`{}`)

	err := v.Verify("sha256=deadbeef", formatTS(clk.Now().Unix()), body)
	assert.ErrorIs(t, err, ErrSecretUnset)

	_, err = v.Sign(clk.Now().Unix(), body)
	assert.ErrorIs(t, err, ErrSecretUnset)
}

func TestVerifyMissingHeaders(t *testing.T) {
	v, clk := newTestVerifier(t, "topsecret")
	body := []byte(`{}`)
	sig, err := v.Sign(clk.Now().Unix(), body)
	require.NoError(t, err)

	assert.ErrorIs(t, v.Verify("", formatTS(clk.Now().Unix()), body), ErrMissingSignature)
	assert.ErrorIs(t, v.Verify(sig, "", body), ErrMissingTimestamp)
	assert.ErrorIs(t, v.Verify(sig, "not-a-number", body), ErrMissingTimestamp)
}

func TestVerifyTimestampTolerance(t *testing.T) {
	v, clk := newTestVerifier(t, "topsecret")
	body := []byte(`{}`)

	tests := []struct {
		name   string
		offset time.Duration
		ok     bool
	}{
		{"fresh", 0, true},
		{"just inside past", -299 * time.Second, true},
		{"just inside future", 299 * time.Second, true},
		{"too old", -301 * time.Second, false},
		{"too far ahead", 301 * time.Second, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := clk.Now().Add(tt.offset).Unix()
			sig, err := v.Sign(ts, body)
			require.NoError(t, err)

			err = v.Verify(sig, formatTS(ts), body)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrStaleTimestamp)
			}
		})
	}
}

func TestVerifyRejectsTamperedBody(t *testing.T) {
	v, clk := newTestVerifier(t, "topsecret")
	ts := clk.Now().Unix()
	sig, err := v.Sign(ts, []byte(`{"status":"completed"}`))
	require.NoError(t, err)

	err = v.Verify(sig, formatTS(ts), []byte(`{"status":"failed"}`))
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	signer, clk := newTestVerifier(t, "secret-a")
	verifier, _ := newTestVerifier(t, "secret-b")

	body := []byte(`{}`)
	ts := clk.Now().Unix()
	sig, err := signer.Sign(ts, body)
	require.NoError(t, err)

	assert.ErrorIs(t, verifier.Verify(sig, formatTS(ts), body), ErrBadSignature)
}

func TestVerifyRejectsMalformedSignature(t *testing.T) {
	v, clk := newTestVerifier(t, "topsecret")
	ts := clk.Now().Unix()

	assert.ErrorIs(t, v.Verify("sha256=zzzz", formatTS(ts), []byte(`{}`)), ErrBadSignature)
}

func formatTS(ts int64) string {
	return strconv.FormatInt(ts, 10)
}
