package polarwebhook

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"buildtactical/config"
	"buildtactical/database"
	"buildtactical/internal/domain/billing"
	"buildtactical/internal/domain/identity"
	"buildtactical/internal/infra/polar"

	"github.com/gin-gonic/gin"
)

// polarEvent is the slice of the Polar webhook payload this service needs.
type polarEvent struct {
	Type string `json:"type"`
	Data struct {
		ID       string `json:"id"`
		Status   string `json:"status"`
		Customer struct {
			ID         string `json:"id"`
			ExternalID string `json:"external_id"`
		} `json:"customer"`
		Product struct {
			ID string `json:"id"`
		} `json:"product"`
		Metadata          map[string]string `json:"metadata"`
		CurrentPeriodEnd  *time.Time        `json:"current_period_end"`
		CancelAtPeriodEnd bool              `json:"cancel_at_period_end"`
	} `json:"data"`
}

// PolarWebhook verifies the standard-webhooks signature, maps the Polar
// event onto the internal subscription aggregate, and applies it
// idempotently keyed on the delivery id.
func PolarWebhook(c *gin.Context) {
	secret := config.POLAR_WEBHOOK_SECRET
	if secret == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "POLAR_WEBHOOK_SECRET not configured"})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 65536)
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Error reading request body"})
		return
	}

	eventID, err := polar.Verify(secret, c.Request.Header, payload, time.Now())
	if err != nil {
		slog.Error("polar signature verification failed", "error", err)
		c.JSON(http.StatusForbidden, gin.H{"error": "Signature verification failed"})
		return
	}

	var event polarEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse event"})
		return
	}

	switch event.Type {
	case "subscription.created", "subscription.updated", "subscription.active",
		"subscription.canceled", "subscription.revoked":
		if err := applySubscriptionEvent(eventID, event); err != nil {
			slog.Error("polar webhook apply failed", "event_id", eventID, "type", event.Type, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	default:
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "received"})
}

func applySubscriptionEvent(eventID string, event polarEvent) error {
	if event.Data.ID == "" {
		return errors.New("event missing subscription id")
	}

	user, err := resolveUser(event)
	if err != nil {
		return err
	}
	if user == nil {
		// User deleted or never linked; acknowledge so Polar stops retrying.
		return nil
	}

	status := polar.MapStatus(event.Data.Status)
	if strings.HasSuffix(event.Type, ".revoked") {
		status = billing.StatusCanceled
	}

	ch := billing.Change{
		Provider:               billing.ProviderPolar,
		EventID:                eventID,
		EventType:              event.Type,
		UserID:                 user.ID,
		ProviderSubscriptionID: event.Data.ID,
		Status:                 status,
		PlanType:               billing.PlanMonthly,
		CurrentPeriodEnd:       event.Data.CurrentPeriodEnd,
		CancelAtPeriodEnd:      event.Data.CancelAtPeriodEnd,
	}
	if event.Data.Customer.ID != "" {
		id := event.Data.Customer.ID
		ch.ProviderCustomerID = &id
		_ = database.DB.Model(&identity.User{}).
			Where("id = ?", user.ID).
			Update("polar_customer_id", id).Error
	}

	if event.Data.Product.ID != "" {
		var plan billing.Plan
		if err := database.DB.Where("polar_product_id = ?", event.Data.Product.ID).First(&plan).Error; err == nil {
			ch.PlanID = &plan.ID
			ch.PlanType = plan.Type
		}
	}

	_, err = billing.Apply(database.DB, time.Now(), ch)
	return err
}

// resolveUser tries, in order: the customer external id we set at
// checkout, the metadata user_id, and the stored polar customer id.
func resolveUser(event polarEvent) (*identity.User, error) {
	var user identity.User

	if ext := event.Data.Customer.ExternalID; ext != "" {
		if id, err := strconv.ParseUint(ext, 10, 64); err == nil {
			if err := database.DB.First(&user, uint(id)).Error; err == nil {
				return &user, nil
			}
		}
	}

	if md := event.Data.Metadata; md != nil && md["user_id"] != "" {
		if id, err := strconv.ParseUint(md["user_id"], 10, 64); err == nil {
			if err := database.DB.First(&user, uint(id)).Error; err == nil {
				return &user, nil
			}
		}
	}

	if event.Data.Customer.ID != "" {
		if err := database.DB.Where("polar_customer_id = ?", event.Data.Customer.ID).First(&user).Error; err == nil {
			return &user, nil
		}
	}

	return nil, nil
}
