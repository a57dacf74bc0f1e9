package polarwebhook

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"buildtactical/config"
	"buildtactical/internal/domain/billing"
	"buildtactical/internal/domain/identity"
	"buildtactical/internal/infra/polar"
	"buildtactical/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "whsec_cG9sYXItdGVzdC1zZWNyZXQ="

func webhookRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/polar-webhook", PolarWebhook)
	return r
}

func deliver(t *testing.T, r *gin.Engine, msgID string, payload []byte) *httptest.ResponseRecorder {
	t.Helper()
	ts := fmt.Sprintf("%d", time.Now().Unix())
	sig, err := polar.Sign(testSecret, msgID, ts, payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/polar-webhook", bytes.NewReader(payload))
	req.Header.Set("webhook-id", msgID)
	req.Header.Set("webhook-timestamp", ts)
	req.Header.Set("webhook-signature", sig)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func subscriptionPayload(user *identity.User, subID, status string) []byte {
	return []byte(fmt.Sprintf(
		`{"type":"subscription.active","data":{"id":%q,"status":%q,"customer":{"id":"cus_polar_1","external_id":"%d"},"product":{"id":"prod_1"}}}`,
		subID, status, user.ID))
}

func TestPolarWebhook_AppliesSubscription(t *testing.T) {
	db := testutil.SetupTestDB(t)
	config.POLAR_WEBHOOK_SECRET = testSecret
	t.Cleanup(func() { config.POLAR_WEBHOOK_SECRET = "" })
	r := webhookRouter()

	user := testutil.CreateTestUser(t, db, identity.RoleContractor)

	rr := deliver(t, r, "msg_1", subscriptionPayload(user, "sub_p1", "active"))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var sub billing.Subscription
	require.NoError(t, db.First(&sub, "provider_subscription_id = ?", "sub_p1").Error)
	assert.Equal(t, billing.ProviderPolar, sub.Provider)
	assert.Equal(t, billing.StatusActive, sub.Status)
	assert.Equal(t, user.ID, sub.UserID)
	assert.True(t, sub.Entitles(time.Now()))

	// Customer id is stored back on the user.
	var got identity.User
	require.NoError(t, db.First(&got, user.ID).Error)
	require.NotNil(t, got.PolarCustomerID)
	assert.Equal(t, "cus_polar_1", *got.PolarCustomerID)
}

func TestPolarWebhook_RedeliveryIsIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	config.POLAR_WEBHOOK_SECRET = testSecret
	t.Cleanup(func() { config.POLAR_WEBHOOK_SECRET = "" })
	r := webhookRouter()

	user := testutil.CreateTestUser(t, db, identity.RoleContractor)

	require.Equal(t, http.StatusOK, deliver(t, r, "msg_1", subscriptionPayload(user, "sub_p1", "active")).Code)
	require.Equal(t, http.StatusOK, deliver(t, r, "msg_1", subscriptionPayload(user, "sub_p1", "active")).Code)

	var events int64
	db.Model(&billing.WebhookEvent{}).Count(&events)
	assert.Equal(t, int64(1), events)

	var subs int64
	db.Model(&billing.Subscription{}).Count(&subs)
	assert.Equal(t, int64(1), subs)
}

func TestPolarWebhook_RevocationEndsEntitlement(t *testing.T) {
	db := testutil.SetupTestDB(t)
	config.POLAR_WEBHOOK_SECRET = testSecret
	t.Cleanup(func() { config.POLAR_WEBHOOK_SECRET = "" })
	r := webhookRouter()

	user := testutil.CreateTestUser(t, db, identity.RoleContractor)

	require.Equal(t, http.StatusOK, deliver(t, r, "msg_1", subscriptionPayload(user, "sub_p1", "active")).Code)

	payload := []byte(fmt.Sprintf(
		`{"type":"subscription.revoked","data":{"id":"sub_p1","status":"revoked","customer":{"id":"cus_polar_1","external_id":"%d"}}}`,
		user.ID))
	require.Equal(t, http.StatusOK, deliver(t, r, "msg_2", payload).Code)

	var sub billing.Subscription
	require.NoError(t, db.First(&sub, "provider_subscription_id = ?", "sub_p1").Error)
	assert.Equal(t, billing.StatusCanceled, sub.Status)
	assert.False(t, sub.Entitles(time.Now()))
}

func TestPolarWebhook_BadSignatureRejected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	config.POLAR_WEBHOOK_SECRET = testSecret
	t.Cleanup(func() { config.POLAR_WEBHOOK_SECRET = "" })
	r := webhookRouter()

	user := testutil.CreateTestUser(t, db, identity.RoleContractor)
	payload := subscriptionPayload(user, "sub_p1", "active")

	req := httptest.NewRequest(http.MethodPost, "/polar-webhook", bytes.NewReader(payload))
	req.Header.Set("webhook-id", "msg_1")
	req.Header.Set("webhook-timestamp", fmt.Sprintf("%d", time.Now().Unix()))
	req.Header.Set("webhook-signature", "v1,aW52YWxpZA==")

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	err := db.First(&billing.Subscription{}, "provider_subscription_id = ?", "sub_p1").Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPolarWebhook_UnknownEventIgnored(t *testing.T) {
	testutil.SetupTestDB(t)
	config.POLAR_WEBHOOK_SECRET = testSecret
	t.Cleanup(func() { config.POLAR_WEBHOOK_SECRET = "" })
	r := webhookRouter()

	rr := deliver(t, r, "msg_1", []byte(`{"type":"order.created","data":{"id":"ord_1"}}`))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ignored")
}
