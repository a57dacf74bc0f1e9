package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"buildtactical/config"
	"buildtactical/internal/domain/identity"
	"buildtactical/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func authRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/register", Register)
	r.POST("/login", Login)
	r.GET("/verify", VerifyEmail)
	return r
}

func post(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, testutil.AuthenticatedRequest(t, http.MethodPost, path, body, ""))
	return rr
}

func TestRegister_RoleValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	r := authRouter()

	// Valid signup role.
	rr := post(t, r, "/register", map[string]any{
		"full_name": "Olive Owner",
		"email":     testutil.UniqueEmail(),
		"password":  "sturdy-pass-1",
		"role":      "Org Owner",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	// Admin cannot be self-assigned at signup.
	rr = post(t, r, "/register", map[string]any{
		"full_name": "Sneaky Sam",
		"email":     testutil.UniqueEmail(),
		"password":  "sturdy-pass-1",
		"role":      "Admin",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// Neither can the platform Owner role.
	rr = post(t, r, "/register", map[string]any{
		"full_name": "Sneaky Sue",
		"email":     testutil.UniqueEmail(),
		"password":  "sturdy-pass-1",
		"role":      "Owner",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// Omitted role defaults to Contractor.
	email := testutil.UniqueEmail()
	rr = post(t, r, "/register", map[string]any{
		"full_name": "Default Dana",
		"email":     email,
		"password":  "sturdy-pass-1",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var user identity.User
	require.NoError(t, db.Where("email = ?", email).First(&user).Error)
	assert.Equal(t, identity.RoleContractor, user.RoleTag())
	assert.False(t, user.IsVerified)
}

func TestRegister_WeakPasswordRejected(t *testing.T) {
	testutil.SetupTestDB(t)
	r := authRouter()

	for _, pw := range []string{"short1", "onlyletters", "12345678"} {
		rr := post(t, r, "/register", map[string]any{
			"full_name": "Weak Willy",
			"email":     testutil.UniqueEmail(),
			"password":  pw,
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code, "password %q", pw)
	}
}

func TestLoginFlow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	config.JWT_SECRET = "test-secret-key"
	r := authRouter()

	email := testutil.UniqueEmail()
	rr := post(t, r, "/register", map[string]any{
		"full_name": "Flow Fran",
		"email":     email,
		"password":  "sturdy-pass-1",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	// Unverified accounts cannot log in.
	rr = post(t, r, "/login", map[string]any{"email": email, "password": "sturdy-pass-1"})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	// Verify via the emailed token.
	var user identity.User
	require.NoError(t, db.Where("email = ?", email).First(&user).Error)
	var verif identity.VerificationToken
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&verif).Error)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/verify?token="+verif.Token, nil))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	// The token is single-use.
	err := db.Where("user_id = ?", user.ID).First(&identity.VerificationToken{}).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// Now login succeeds and yields a token.
	rr = post(t, r, "/login", map[string]any{"email": email, "password": "sturdy-pass-1"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	testutil.ParseJSONResponse(t, rr, &resp)
	assert.NotEmpty(t, resp.Token)

	// Wrong password stays a 401.
	rr = post(t, r, "/login", map[string]any{"email": email, "password": "wrong-pass-1"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// Unknown account reads the same as wrong password.
	rr = post(t, r, "/login", map[string]any{"email": testutil.UniqueEmail(), "password": "sturdy-pass-1"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
