package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"buildtactical/config"
	"buildtactical/database"
	"buildtactical/internal/domain/billing"
	"buildtactical/internal/domain/identity"
	"buildtactical/internal/domain/orgs"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an in-memory SQLite database with the full schema
// and points the package-level database handle at it for the duration of
// the test.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	prev := database.DB
	database.DB = db
	t.Cleanup(func() {
		database.DB = prev
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// CreateTestUser inserts a verified user with the given role.
func CreateTestUser(t *testing.T, db *gorm.DB, role identity.Role) *identity.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("testpassword123"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	pw := string(hash)

	user := &identity.User{
		FullName:   "Test User",
		Email:      "test-" + uuid.New().String()[:8] + "@example.com",
		Password:   &pw,
		Role:       string(role),
		IsVerified: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateTestOrg inserts an organization and makes the user a member.
func CreateTestOrg(t *testing.T, db *gorm.DB, owner *identity.User) *orgs.Organization {
	t.Helper()

	org := &orgs.Organization{
		Name: "Test Org " + uuid.New().String()[:8],
	}
	if err := db.Create(org).Error; err != nil {
		t.Fatalf("failed to create test org: %v", err)
	}
	if err := db.Create(&orgs.Member{OrganizationID: org.ID, UserID: owner.ID}).Error; err != nil {
		t.Fatalf("failed to create test membership: %v", err)
	}

	return org
}

// CreateActiveSubscription inserts a subscription row that entitles the
// user right now.
func CreateActiveSubscription(t *testing.T, db *gorm.DB, userID uint) *billing.Subscription {
	t.Helper()

	end := time.Now().Add(30 * 24 * time.Hour)
	subID := "sub_" + uuid.New().String()[:8]
	sub := &billing.Subscription{
		UserID:                 userID,
		Provider:               billing.ProviderStripe,
		Status:                 billing.StatusActive,
		PlanType:               billing.PlanMonthly,
		ProviderSubscriptionID: &subID,
		CurrentPeriodEnd:       &end,
	}
	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("failed to create test subscription: %v", err)
	}

	return sub
}

// SignToken issues a session JWT the way the login handler does. It also
// makes sure config.JWT_SECRET is populated, since handlers read it.
func SignToken(t *testing.T, user *identity.User) string {
	t.Helper()

	if config.JWT_SECRET == "" {
		config.JWT_SECRET = "test-secret-key"
	}

	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(config.JWT_SECRET))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}

	return token
}

// AuthenticatedRequest builds a JSON request with a Bearer token.
func AuthenticatedRequest(t *testing.T, method, path string, body any, token string) *http.Request {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// ParseJSONResponse decodes the recorded body into v.
func ParseJSONResponse(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to parse response body: %v. Body: %s", err, rr.Body.String())
	}
}

// UniqueEmail returns a fresh test address.
func UniqueEmail() string {
	return fmt.Sprintf("user-%s@example.com", uuid.New().String()[:8])
}
