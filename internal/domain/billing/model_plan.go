package billing

import "time"

// Plan is a catalog row. Stripe plans carry a price id, Polar plans a
// product id; the free trial carries neither.
type Plan struct {
	ID       uint   `gorm:"primaryKey"`
	Name     string `gorm:"not null"`
	Type     PlanType
	PriceUSD float64 `gorm:"column:price_usd"`
	Interval string

	StripePriceID  *string `gorm:"column:stripe_price_id;uniqueIndex:idx_plans_stripe_price_id"`
	PolarProductID *string `gorm:"column:polar_product_id;uniqueIndex:idx_plans_polar_product_id"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
