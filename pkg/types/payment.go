package types

// PaymentGateway identifies the upstream payment provider.
type PaymentGateway string

const (
	PaymentGatewayPayPal PaymentGateway = "paypal"
	PaymentGatewayStripe PaymentGateway = "stripe"
)

// GatewayKind distinguishes how a gateway confirms funds movement:
// capture gateways confirm synchronously in the same exchange, redirect
// gateways confirm later through a signed webhook.
type GatewayKind string

const (
	GatewayKindCapture  GatewayKind = "capture"
	GatewayKindRedirect GatewayKind = "redirect"
)

// PaymentPurpose tags what a payment settles. Cancellation fees reuse the
// same gateways as purchases and must never be confused with them.
type PaymentPurpose string

const (
	PaymentPurposePurchase     PaymentPurpose = "purchase"
	PaymentPurposeCancellation PaymentPurpose = "cancellation"
)

type PaymentStatus string

const (
	PaymentStatusPaid PaymentStatus = "paid"
)

// PaymentConfirmed is the single internal event both gateway shapes are
// normalized into. It is produced once per underlying gateway notification
// but may be delivered multiple times; consumers must treat re-delivery as
// a no-op keyed by TransactionID.
type PaymentConfirmed struct {
	TransactionID  string         `json:"transaction_id"`
	Gateway        PaymentGateway `json:"gateway"`
	Kind           GatewayKind    `json:"kind"`
	Purpose        PaymentPurpose `json:"purpose"`
	Amount         int64          `json:"amount"` // minor units
	Currency       string         `json:"currency"`
	CustomerEmail  string         `json:"customer_email"`
	CustomerName   string         `json:"customer_name"`
	SubscriptionID *string        `json:"subscription_id,omitempty"`
	PlanID         string         `json:"plan_id,omitempty"`
	DeliverableIDs []string       `json:"deliverable_ids,omitempty"`
}

// ProvisionStepError records a failed saga step without aborting the run.
type ProvisionStepError struct {
	Step    string `json:"step"`
	Message string `json:"message"`
}

// ProvisioningResult is the step ledger built by the fulfillment saga. A
// failed step is recorded here and the remaining steps still run.
type ProvisioningResult struct {
	TransactionID  string               `json:"transaction_id"`
	ProjectKey     string               `json:"project_key"`
	TrackerURL     string               `json:"tracker_url"`
	ChatChannelURL string               `json:"chat_channel_url"`
	InviteSent     bool                 `json:"invite_sent"`
	Errors         []ProvisionStepError `json:"errors,omitempty"`
}

// Failed reports whether any step of the run was recorded as failed.
func (r *ProvisioningResult) Failed() bool {
	return r != nil && len(r.Errors) > 0
}

type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusInactive SubscriptionStatus = "inactive"
)
