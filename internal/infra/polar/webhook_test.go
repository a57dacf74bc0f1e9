package polar

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"testing"
	"time"

	"buildtactical/internal/domain/billing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "whsec_dGVzdC1zZWNyZXQtdGVzdC1zZWNyZXQ=" // base64("test-secret-test-secret")

func signedHeaders(t *testing.T, secret, msgID string, ts time.Time, payload []byte) http.Header {
	t.Helper()
	tsRaw := fmt.Sprintf("%d", ts.Unix())
	sig, err := Sign(secret, msgID, tsRaw, payload)
	require.NoError(t, err)

	h := http.Header{}
	h.Set("webhook-id", msgID)
	h.Set("webhook-timestamp", tsRaw)
	h.Set("webhook-signature", sig)
	return h
}

func TestVerify_RoundTrip(t *testing.T) {
	now := time.Now()
	payload := []byte(`{"type":"subscription.created","data":{"id":"sub_1"}}`)
	h := signedHeaders(t, testSecret, "msg_1", now, payload)

	msgID, err := Verify(testSecret, h, payload, now)
	require.NoError(t, err)
	assert.Equal(t, "msg_1", msgID)
}

func TestVerify_TamperedPayload(t *testing.T) {
	now := time.Now()
	payload := []byte(`{"type":"subscription.created"}`)
	h := signedHeaders(t, testSecret, "msg_1", now, payload)

	_, err := Verify(testSecret, h, []byte(`{"type":"subscription.revoked"}`), now)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestVerify_WrongSecret(t *testing.T) {
	now := time.Now()
	payload := []byte(`{}`)
	h := signedHeaders(t, testSecret, "msg_1", now, payload)

	other := "whsec_" + base64.StdEncoding.EncodeToString([]byte("another-secret-entirely"))
	_, err := Verify(other, h, payload, now)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestVerify_StaleTimestamp(t *testing.T) {
	now := time.Now()
	payload := []byte(`{}`)

	h := signedHeaders(t, testSecret, "msg_1", now.Add(-Tolerance-time.Minute), payload)
	_, err := Verify(testSecret, h, payload, now)
	assert.ErrorIs(t, err, ErrStaleTimestamp)

	// Future drift beyond tolerance is rejected too.
	h = signedHeaders(t, testSecret, "msg_1", now.Add(Tolerance+time.Minute), payload)
	_, err = Verify(testSecret, h, payload, now)
	assert.ErrorIs(t, err, ErrStaleTimestamp)
}

func TestVerify_MissingHeaders(t *testing.T) {
	now := time.Now()
	payload := []byte(`{}`)
	full := signedHeaders(t, testSecret, "msg_1", now, payload)

	for _, drop := range []string{"webhook-id", "webhook-timestamp", "webhook-signature"} {
		h := http.Header{}
		for k, v := range full {
			h[k] = v
		}
		h.Del(drop)
		_, err := Verify(testSecret, h, payload, now)
		assert.ErrorIs(t, err, ErrMissingHeaders, "dropped %s", drop)
	}
}

func TestVerify_MultipleSignatureEntries(t *testing.T) {
	// Standard Webhooks allows several space-separated entries; one valid
	// v1 entry is enough.
	now := time.Now()
	payload := []byte(`{}`)
	h := signedHeaders(t, testSecret, "msg_1", now, payload)

	valid := h.Get("webhook-signature")
	h.Set("webhook-signature", "v1,Zm9vYmFy "+valid)

	msgID, err := Verify(testSecret, h, payload, now)
	require.NoError(t, err)
	assert.Equal(t, "msg_1", msgID)
}

func TestVerify_RawSecretFallback(t *testing.T) {
	// Secrets that are not valid base64 are used as raw bytes.
	raw := "whsec_not*base64*material"
	now := time.Now()
	payload := []byte(`{}`)
	h := signedHeaders(t, raw, "msg_1", now, payload)

	_, err := Verify(raw, h, payload, now)
	assert.NoError(t, err)
}

func TestMapStatus(t *testing.T) {
	assert.Equal(t, billing.StatusActive, MapStatus("active"))
	assert.Equal(t, billing.StatusActive, MapStatus("past_due"))
	assert.Equal(t, billing.StatusTrialing, MapStatus("trialing"))
	assert.Equal(t, billing.StatusCanceled, MapStatus("canceled"))
	assert.Equal(t, billing.StatusCanceled, MapStatus("revoked"))
	assert.Equal(t, billing.StatusCanceled, MapStatus("unpaid"))
	assert.Equal(t, billing.StatusExpired, MapStatus("incomplete"))
	assert.Equal(t, billing.StatusExpired, MapStatus(""))
}
