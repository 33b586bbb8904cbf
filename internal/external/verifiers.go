package external

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Sentinel errors returned by the verifiers. Handlers map these onto the
// HTTP error taxonomy; the verifiers themselves are transport-agnostic.
var (
	ErrSecretUnconfigured = errors.New("webhook secret is not configured")
	ErrSignatureMissing   = errors.New("missing signature header")
	ErrSignatureInvalid   = errors.New("signature mismatch")
	ErrTimestampInvalid   = errors.New("timestamp outside tolerance")
)

// ---------------------------------------------------------------------------
// Identity-Provider Webhook Verification (svix scheme)
// ---------------------------------------------------------------------------

// svixTimestampTolerance is the accepted clock skew between the webhook
// timestamp and the local clock.
const svixTimestampTolerance = 5 * time.Minute

// svixSecretPrefix prefixes the provider's signing secret; the remainder is
// the base64-encoded key material.
const svixSecretPrefix = "whsec_"

// SvixHeaders carries the three headers the identity provider signs with.
type SvixHeaders struct {
	ID        string // svix-id
	Timestamp string // svix-timestamp (unix seconds)
	Signature string // svix-signature (space-separated "v1,<base64>" entries)
}

// Complete reports whether all three headers are present.
func (h SvixHeaders) Complete() bool {
	return h.ID != "" && h.Timestamp != "" && h.Signature != ""
}

// ClerkVerifier validates identity-provider webhooks using the svix signing
// scheme: HMAC-SHA256 over "id.timestamp.body" with a base64-encoded secret,
// base64-encoded signatures, and a timestamp tolerance window.
type ClerkVerifier struct {
	now func() time.Time // injectable clock for tests
}

// NewClerkVerifier creates a verifier using the system clock.
func NewClerkVerifier() *ClerkVerifier {
	return &ClerkVerifier{now: time.Now}
}

// Verify checks the webhook signature and timestamp. The secret is the
// value configured in the provider dashboard ("whsec_" + base64 key).
//
// Returns ErrSecretUnconfigured, ErrSignatureMissing, ErrTimestampInvalid,
// or ErrSignatureInvalid (possibly wrapped) on failure; nil on success.
func (v *ClerkVerifier) Verify(payload []byte, headers SvixHeaders, secret string) error {
	if secret == "" {
		return ErrSecretUnconfigured
	}
	if !headers.Complete() {
		return ErrSignatureMissing
	}

	key, err := decodeSvixSecret(secret)
	if err != nil {
		return fmt.Errorf("decoding signing secret: %w", err)
	}

	// Reject stale or far-future timestamps before any HMAC work.
	ts, err := strconv.ParseInt(headers.Timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: non-numeric timestamp", ErrTimestampInvalid)
	}
	skew := v.now().Sub(time.Unix(ts, 0))
	if skew > svixTimestampTolerance || skew < -svixTimestampTolerance {
		return ErrTimestampInvalid
	}

	// Signed content is "<id>.<timestamp>.<body>".
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(headers.ID))
	mac.Write([]byte("."))
	mac.Write([]byte(headers.Timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := mac.Sum(nil)

	// The signature header may carry multiple space-separated versioned
	// entries ("v1,<base64>"); any matching v1 entry passes.
	for _, entry := range strings.Fields(headers.Signature) {
		version, sig, found := strings.Cut(entry, ",")
		if !found || version != "v1" {
			continue
		}
		provided, err := base64.StdEncoding.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(expected, provided) {
			return nil
		}
	}

	return ErrSignatureInvalid
}

// decodeSvixSecret strips the "whsec_" prefix and base64-decodes the key
// material. Secrets without the prefix are decoded as-is.
func decodeSvixSecret(secret string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(strings.TrimPrefix(secret, svixSecretPrefix))
}

// ---------------------------------------------------------------------------
// Billing-Provider Webhook Verification (raw HMAC-SHA256)
// ---------------------------------------------------------------------------

// LemonSqueezyVerifier validates billing-provider webhooks: the x-signature
// header must equal the hex-encoded HMAC-SHA256 of the raw body under the
// shared secret. Comparison is constant-time.
type LemonSqueezyVerifier struct{}

// NewLemonSqueezyVerifier creates a new LemonSqueezyVerifier.
func NewLemonSqueezyVerifier() *LemonSqueezyVerifier {
	return &LemonSqueezyVerifier{}
}

// Verify checks the signature header against the computed digest.
//
// Returns ErrSecretUnconfigured, ErrSignatureMissing, or
// ErrSignatureInvalid on failure; nil on success.
func (v *LemonSqueezyVerifier) Verify(payload []byte, signatureHeader string, secret string) error {
	if secret == "" {
		return ErrSecretUnconfigured
	}
	if signatureHeader == "" {
		return ErrSignatureMissing
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	digest := hex.EncodeToString(mac.Sum(nil))

	// Both sides compared as byte sequences of the hex encoding, matching
	// the provider's documented verification example.
	if !hmac.Equal([]byte(digest), []byte(signatureHeader)) {
		return ErrSignatureInvalid
	}
	return nil
}
