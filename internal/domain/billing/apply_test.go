package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Subscription{}, &WebhookEvent{}))
	return db
}

func activeChange(eventID, subID string, userID uint) Change {
	return Change{
		Provider:               ProviderStripe,
		EventID:                eventID,
		EventType:              "customer.subscription.updated",
		UserID:                 userID,
		ProviderSubscriptionID: subID,
		Status:                 StatusActive,
		PlanType:               PlanMonthly,
	}
}

func TestApply_CreatesSubscriptionRow(t *testing.T) {
	db := setupDB(t)
	now := time.Now()

	applied, err := Apply(db, now, activeChange("evt_1", "sub_1", 42))
	require.NoError(t, err)
	assert.True(t, applied)

	var sub Subscription
	require.NoError(t, db.First(&sub, "provider_subscription_id = ?", "sub_1").Error)
	assert.Equal(t, uint(42), sub.UserID)
	assert.Equal(t, StatusActive, sub.Status)
	assert.True(t, sub.Entitles(now))
}

func TestApply_DuplicateEventIsNoop(t *testing.T) {
	db := setupDB(t)
	now := time.Now()

	applied, err := Apply(db, now, activeChange("evt_1", "sub_1", 42))
	require.NoError(t, err)
	require.True(t, applied)

	// Redelivery with the same event id but a different status must not
	// touch the row.
	redelivery := activeChange("evt_1", "sub_1", 42)
	redelivery.Status = StatusCanceled
	applied, err = Apply(db, now, redelivery)
	require.NoError(t, err)
	assert.False(t, applied)

	var sub Subscription
	require.NoError(t, db.First(&sub, "provider_subscription_id = ?", "sub_1").Error)
	assert.Equal(t, StatusActive, sub.Status)

	var events int64
	db.Model(&WebhookEvent{}).Count(&events)
	assert.Equal(t, int64(1), events)
}

func TestApply_SameEventIDAcrossProvidersIsDistinct(t *testing.T) {
	db := setupDB(t)
	now := time.Now()

	applied, err := Apply(db, now, activeChange("evt_1", "sub_s", 42))
	require.NoError(t, err)
	require.True(t, applied)

	polar := activeChange("evt_1", "sub_p", 42)
	polar.Provider = ProviderPolar
	applied, err = Apply(db, now, polar)
	require.NoError(t, err)
	assert.True(t, applied)
}

func TestApply_UpdatesExistingRowInPlace(t *testing.T) {
	db := setupDB(t)
	now := time.Now()

	_, err := Apply(db, now, activeChange("evt_1", "sub_1", 42))
	require.NoError(t, err)

	cancel := activeChange("evt_2", "sub_1", 42)
	cancel.Status = StatusCanceled
	cancel.EventType = "customer.subscription.deleted"
	applied, err := Apply(db, now, cancel)
	require.NoError(t, err)
	assert.True(t, applied)

	var count int64
	db.Model(&Subscription{}).Count(&count)
	assert.Equal(t, int64(1), count)

	var sub Subscription
	require.NoError(t, db.First(&sub, "provider_subscription_id = ?", "sub_1").Error)
	assert.Equal(t, StatusCanceled, sub.Status)
	assert.False(t, sub.Entitles(now))
}

func TestApply_ExpiresSupersededRows(t *testing.T) {
	db := setupDB(t)
	now := time.Now()

	// Trial row from the app itself.
	end := now.Add(TrialDuration)
	trialSubID := "trial_1"
	require.NoError(t, db.Create(&Subscription{
		UserID:                 42,
		Provider:               ProviderNone,
		Status:                 StatusTrialing,
		PlanType:               PlanFreeTrial,
		ProviderSubscriptionID: &trialSubID,
		CurrentPeriodEnd:       &end,
	}).Error)

	// A paid subscription lands from Polar.
	ch := activeChange("evt_1", "sub_polar", 42)
	ch.Provider = ProviderPolar
	applied, err := Apply(db, now, ch)
	require.NoError(t, err)
	require.True(t, applied)

	// The trial row no longer entitles; exactly one row does.
	var subs []Subscription
	require.NoError(t, db.Where("user_id = ?", 42).Find(&subs).Error)
	require.Len(t, subs, 2)

	entitling := 0
	for _, s := range subs {
		if s.Entitles(now) {
			entitling++
		}
	}
	assert.Equal(t, 1, entitling)
}

func TestApply_ExpiryLeavesOtherUsersAlone(t *testing.T) {
	db := setupDB(t)
	now := time.Now()

	_, err := Apply(db, now, activeChange("evt_a", "sub_a", 1))
	require.NoError(t, err)
	_, err = Apply(db, now, activeChange("evt_b", "sub_b", 2))
	require.NoError(t, err)

	var sub Subscription
	require.NoError(t, db.First(&sub, "provider_subscription_id = ?", "sub_a").Error)
	assert.True(t, sub.Entitles(now))
}

func TestApply_RejectsIncompleteChange(t *testing.T) {
	db := setupDB(t)
	now := time.Now()

	ch := activeChange("", "sub_1", 42)
	_, err := Apply(db, now, ch)
	assert.Error(t, err)

	ch = activeChange("evt_1", "", 42)
	_, err = Apply(db, now, ch)
	assert.Error(t, err)
}

func TestStartTrial(t *testing.T) {
	db := setupDB(t)
	now := time.Now()

	sub, err := StartTrial(db, now, 42, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusTrialing, sub.Status)
	assert.Equal(t, PlanFreeTrial, sub.PlanType)
	require.NotNil(t, sub.CurrentPeriodEnd)
	assert.WithinDuration(t, now.Add(TrialDuration), *sub.CurrentPeriodEnd, time.Second)
	assert.True(t, sub.Entitles(now))

	// A second trial while the first still entitles is refused.
	_, err = StartTrial(db, now, 42, nil)
	assert.ErrorIs(t, err, ErrAlreadyEntitled)

	// Once the first trial lapses, a lapsed row does not block a paid flow,
	// but StartTrial also allows a fresh trial only because nothing
	// entitles anymore.
	later := now.Add(TrialDuration + time.Minute)
	_, err = StartTrial(db, later, 42, nil)
	require.NoError(t, err)
}

func TestStartTrial_RefusedWhileActiveSubscriptionExists(t *testing.T) {
	db := setupDB(t)
	now := time.Now()

	_, err := Apply(db, now, activeChange("evt_1", "sub_1", 42))
	require.NoError(t, err)

	_, err = StartTrial(db, now, 42, nil)
	assert.ErrorIs(t, err, ErrAlreadyEntitled)
}
