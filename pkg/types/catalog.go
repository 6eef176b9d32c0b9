package types

// Deliverable is a discrete sellable item from the configured catalog.
// Prices are minor units (cents).
type Deliverable struct {
	ID       string `json:"id" mapstructure:"id"`
	Name     string `json:"name" mapstructure:"name"`
	Price    int64  `json:"price" mapstructure:"price"`
	Currency string `json:"currency" mapstructure:"currency"`
}

// SubscriptionPlan is a recurring plan sold through the redirect gateway.
type SubscriptionPlan struct {
	ID              string `json:"id" mapstructure:"id"`
	Name            string `json:"name" mapstructure:"name"`
	MonthlyPrice    int64  `json:"monthly_price" mapstructure:"monthly_price"`
	Currency        string `json:"currency" mapstructure:"currency"`
	CommittedMonths int    `json:"committed_months" mapstructure:"committed_months"`
	// StripePriceID is the recurring price object backing checkout sessions.
	StripePriceID string `json:"stripe_price_id" mapstructure:"stripe_price_id"`
}
