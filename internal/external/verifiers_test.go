package external

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// signSvix produces a valid "v1,<base64>" signature entry for the given
// key material, matching the provider's signing scheme.
func signSvix(t *testing.T, key []byte, id, timestamp string, payload []byte) string {
	t.Helper()
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(id + "." + timestamp + "."))
	mac.Write(payload)
	return "v1," + base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func svixTestFixture(t *testing.T, now time.Time) (secret string, key []byte, headers SvixHeaders, payload []byte) {
	t.Helper()
	key = []byte("0123456789abcdef0123456789abcdef")
	secret = "whsec_" + base64.StdEncoding.EncodeToString(key)
	payload = []byte(`{"type":"user.created","data":{"id":"u1"}}`)
	timestamp := strconv.FormatInt(now.Unix(), 10)
	headers = SvixHeaders{
		ID:        "msg_123",
		Timestamp: timestamp,
		Signature: signSvix(t, key, "msg_123", timestamp, payload),
	}
	return secret, key, headers, payload
}

func TestClerkVerifier_Verify_Success(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	secret, _, headers, payload := svixTestFixture(t, now)

	v := &ClerkVerifier{now: func() time.Time { return now }}
	require.NoError(t, v.Verify(payload, headers, secret))
}

func TestClerkVerifier_Verify_MultipleSignatureEntries(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	secret, _, headers, payload := svixTestFixture(t, now)

	// An unknown version and a garbage entry ahead of the valid one must
	// not break verification.
	headers.Signature = "v2,Zm9v bogus " + headers.Signature

	v := &ClerkVerifier{now: func() time.Time { return now }}
	require.NoError(t, v.Verify(payload, headers, secret))
}

func TestClerkVerifier_Verify_SecretUnconfigured(t *testing.T) {
	now := time.Now()
	_, _, headers, payload := svixTestFixture(t, now)

	v := NewClerkVerifier()
	err := v.Verify(payload, headers, "")
	assert.ErrorIs(t, err, ErrSecretUnconfigured)
}

func TestClerkVerifier_Verify_MissingHeaders(t *testing.T) {
	now := time.Now()
	secret, _, headers, payload := svixTestFixture(t, now)

	tests := []struct {
		name   string
		mutate func(*SvixHeaders)
	}{
		{"no id", func(h *SvixHeaders) { h.ID = "" }},
		{"no timestamp", func(h *SvixHeaders) { h.Timestamp = "" }},
		{"no signature", func(h *SvixHeaders) { h.Signature = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := headers
			tt.mutate(&h)
			err := NewClerkVerifier().Verify(payload, h, secret)
			assert.ErrorIs(t, err, ErrSignatureMissing)
		})
	}
}

func TestClerkVerifier_Verify_StaleTimestamp(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	secret, key, headers, payload := svixTestFixture(t, now)

	// Re-sign with a timestamp six minutes in the past so the signature
	// itself is valid but outside the tolerance window.
	stale := strconv.FormatInt(now.Add(-6*time.Minute).Unix(), 10)
	headers.Timestamp = stale
	headers.Signature = signSvix(t, key, headers.ID, stale, payload)

	v := &ClerkVerifier{now: func() time.Time { return now }}
	err := v.Verify(payload, headers, secret)
	assert.ErrorIs(t, err, ErrTimestampInvalid)
}

func TestClerkVerifier_Verify_TamperedPayload(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	secret, _, headers, payload := svixTestFixture(t, now)

	tampered := append([]byte(nil), payload...)
	tampered[0] ^= 0x01

	v := &ClerkVerifier{now: func() time.Time { return now }}
	err := v.Verify(tampered, headers, secret)
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestLemonSqueezyVerifier_Verify(t *testing.T) {
	secret := "ls-webhook-secret"
	payload := []byte(`{"meta":{"event_name":"subscription_created"}}`)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	valid := hex.EncodeToString(mac.Sum(nil))

	v := NewLemonSqueezyVerifier()

	t.Run("valid signature", func(t *testing.T) {
		require.NoError(t, v.Verify(payload, valid, secret))
	})

	t.Run("flipped digest byte", func(t *testing.T) {
		bad := []byte(valid)
		if bad[0] == 'a' {
			bad[0] = 'b'
		} else {
			bad[0] = 'a'
		}
		err := v.Verify(payload, string(bad), secret)
		assert.ErrorIs(t, err, ErrSignatureInvalid)
	})

	t.Run("tampered payload", func(t *testing.T) {
		err := v.Verify([]byte(`{"meta":{}}`), valid, secret)
		assert.ErrorIs(t, err, ErrSignatureInvalid)
	})

	t.Run("missing header", func(t *testing.T) {
		err := v.Verify(payload, "", secret)
		assert.ErrorIs(t, err, ErrSignatureMissing)
	})

	t.Run("unconfigured secret", func(t *testing.T) {
		err := v.Verify(payload, valid, "")
		assert.ErrorIs(t, err, ErrSecretUnconfigured)
	})

	t.Run("wrong secret", func(t *testing.T) {
		err := v.Verify(payload, valid, "other-secret")
		assert.ErrorIs(t, err, ErrSignatureInvalid)
	})
}

func TestDecodeSvixSecret(t *testing.T) {
	key := []byte("super-secret-key")
	encoded := base64.StdEncoding.EncodeToString(key)

	t.Run("with prefix", func(t *testing.T) {
		got, err := decodeSvixSecret("whsec_" + encoded)
		require.NoError(t, err)
		assert.Equal(t, key, got)
	})

	t.Run("without prefix", func(t *testing.T) {
		got, err := decodeSvixSecret(encoded)
		require.NoError(t, err)
		assert.Equal(t, key, got)
	})

	t.Run("invalid base64", func(t *testing.T) {
		_, err := decodeSvixSecret("whsec_!!not-base64!!")
		require.Error(t, err)
	})
}

func TestClerkVerifier_Verify_NonNumericTimestamp(t *testing.T) {
	now := time.Now()
	secret, _, headers, payload := svixTestFixture(t, now)
	headers.Timestamp = fmt.Sprintf("%d.5", now.Unix())

	err := NewClerkVerifier().Verify(payload, headers, secret)
	assert.ErrorIs(t, err, ErrTimestampInvalid)
}
