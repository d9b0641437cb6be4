// Package plan models subscription tiers and the feature gate that decides
// which clinic-admin surfaces a plan unlocks. Plans are read-only here; all
// writes go through the upstream API.
package plan

// Plan is a subscription tier: boolean capability flags, numeric limits and
// billing metadata.
type Plan struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	AllowOnlinePayments bool `json:"allowOnlinePayments"`
	AllowCustomBranding bool `json:"allowCustomBranding"`
	EnableAuditLogs     bool `json:"enableAuditLogs"`
	EnableGoogleReviews bool `json:"enableGoogleReviews"`
	AllowEmbedReviews   bool `json:"allowEmbedReviews"`
	EnableBulkSlots     bool `json:"enableBulkSlots"`
	EnableExports       bool `json:"enableExports"`
	EnableReviews       bool `json:"enableReviews"`

	MaxDoctors          int `json:"maxDoctors"`
	MaxBookingsPerMonth int `json:"maxBookingsPerMonth"`

	PriceMonthly float64 `json:"priceMonthly"`
	Currency     string  `json:"currency"`
	DurationDays int     `json:"durationDays"`
	IsTrial      bool    `json:"isTrial"`
	IsActive     bool    `json:"isActive"`
}
