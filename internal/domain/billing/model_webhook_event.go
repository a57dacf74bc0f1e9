package billing

import "time"

// WebhookEvent records a processed provider event id. Both webhook
// receivers insert here before applying anything, so a redelivered event
// is acknowledged without re-applying its side effects.
type WebhookEvent struct {
	ID         uint     `gorm:"primaryKey"`
	Provider   Provider `gorm:"type:varchar(16);not null;uniqueIndex:idx_webhook_events_provider_event"`
	EventID    string   `gorm:"not null;uniqueIndex:idx_webhook_events_provider_event"`
	Type       string
	ReceivedAt time.Time
}
