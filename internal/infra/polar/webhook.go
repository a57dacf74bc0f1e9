// Package polar handles webhook deliveries from Polar. Polar signs
// deliveries with the Standard Webhooks scheme: HMAC-SHA256 over
// "<id>.<timestamp>.<payload>" keyed with the base64-decoded secret, sent
// base64-encoded in the webhook-signature header as "v1,<sig>" entries.
package polar

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"buildtactical/internal/domain/billing"
)

// Tolerance bounds how far a delivery timestamp may drift from now.
const Tolerance = 5 * time.Minute

var (
	ErrMissingHeaders = errors.New("polar: missing webhook headers")
	ErrStaleTimestamp = errors.New("polar: webhook timestamp outside tolerance")
	ErrBadSignature   = errors.New("polar: signature verification failed")
)

// Verify checks the Standard Webhooks signature on a delivery and returns
// the message id for idempotency bookkeeping.
func Verify(secret string, headers http.Header, payload []byte, now time.Time) (string, error) {
	msgID := headers.Get("webhook-id")
	tsRaw := headers.Get("webhook-timestamp")
	sigHeader := headers.Get("webhook-signature")
	if msgID == "" || tsRaw == "" || sigHeader == "" {
		return "", ErrMissingHeaders
	}

	ts, err := strconv.ParseInt(tsRaw, 10, 64)
	if err != nil {
		return "", fmt.Errorf("polar: bad webhook timestamp: %w", err)
	}
	sent := time.Unix(ts, 0)
	if sent.Before(now.Add(-Tolerance)) || sent.After(now.Add(Tolerance)) {
		return "", ErrStaleTimestamp
	}

	key, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}

	mac := hmac.New(sha256.New, key)
	fmt.Fprintf(mac, "%s.%s.", msgID, tsRaw)
	mac.Write(payload)
	expected := mac.Sum(nil)

	for _, entry := range strings.Fields(sigHeader) {
		version, sig, ok := strings.Cut(entry, ",")
		if !ok || version != "v1" {
			continue
		}
		got, err := base64.StdEncoding.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(got, expected) {
			return msgID, nil
		}
	}
	return "", ErrBadSignature
}

// Sign produces the v1 signature entry for a delivery. Used by tests and
// kept next to Verify so the two cannot drift.
func Sign(secret, msgID, timestamp string, payload []byte) (string, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}
	mac := hmac.New(sha256.New, key)
	fmt.Fprintf(mac, "%s.%s.", msgID, timestamp)
	mac.Write(payload)
	return "v1," + base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

func decodeSecret(secret string) ([]byte, error) {
	trimmed := strings.TrimPrefix(secret, "whsec_")
	if trimmed == "" {
		return nil, errors.New("polar: empty webhook secret")
	}
	key, err := base64.StdEncoding.DecodeString(trimmed)
	if err != nil {
		// Some dashboards hand out raw (non-base64) secrets.
		return []byte(trimmed), nil
	}
	return key, nil
}

// MapStatus folds a Polar subscription status onto the internal status set.
// Unknown statuses read as expired, which fails closed.
func MapStatus(s string) billing.Status {
	switch strings.TrimSpace(s) {
	case "active", "past_due":
		return billing.StatusActive
	case "trialing":
		return billing.StatusTrialing
	case "canceled", "revoked", "unpaid":
		return billing.StatusCanceled
	default:
		return billing.StatusExpired
	}
}
