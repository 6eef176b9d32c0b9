package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/lumenworks/storefront/pkg/config"
	"github.com/lumenworks/storefront/pkg/logctx"
	"github.com/lumenworks/storefront/pkg/tool"
	"github.com/lumenworks/storefront/pkg/types"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"go.uber.org/zap"
)

// StripeAdapter is the redirect-style adapter: the buyer finishes checkout
// off-site and confirmation normally arrives later through a signed webhook.
type StripeAdapter struct {
	cfg config.StripeConfig
	log *zap.SugaredLogger
}

func NewStripeAdapter(cfg *config.Config, log *zap.SugaredLogger) *StripeAdapter {
	stripe.Key = cfg.Stripe.APIKey
	return &StripeAdapter{cfg: cfg.Stripe, log: log}
}

func (a *StripeAdapter) Gateway() types.PaymentGateway { return types.PaymentGatewayStripe }
func (a *StripeAdapter) Kind() types.GatewayKind       { return types.GatewayKindRedirect }

func (a *StripeAdapter) StartPayment(ctx context.Context, req *PaymentIntentRequest) (*StartPaymentResult, error) {
	params := &stripe.CheckoutSessionParams{
		SuccessURL:    stripe.String(a.cfg.SuccessURL),
		CancelURL:     stripe.String(a.cfg.CancelURL),
		CustomerEmail: stripe.String(req.CustomerEmail),
	}
	params.Context = ctx
	params.AddMetadata("purpose", string(types.PaymentPurposePurchase))
	params.AddMetadata("customer_name", req.CustomerName)

	switch {
	case req.IsSubscription():
		params.Mode = stripe.String(string(stripe.CheckoutSessionModeSubscription))
		params.LineItems = []*stripe.CheckoutSessionLineItemParams{{
			Price:    stripe.String(req.Plan.StripePriceID),
			Quantity: stripe.Int64(1),
		}}
		params.AddMetadata("plan_id", req.Plan.ID)
	case len(req.Items) > 0:
		params.Mode = stripe.String(string(stripe.CheckoutSessionModePayment))
		ids := make([]string, 0, len(req.Items))
		for _, item := range req.Items {
			ids = append(ids, item.ID)
			params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(strings.ToLower(item.Currency)),
					UnitAmount: stripe.Int64(item.Price),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(item.Name),
					},
				},
			})
		}
		params.AddMetadata("deliverable_ids", strings.Join(ids, ","))
	default:
		return nil, ErrInvalidIntent
	}

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	logctx.FromCtx(ctx, a.log).Infow("checkout session created", "session_id", sess.ID, "mode", sess.Mode)
	return &StartPaymentResult{
		Handle:      sess.ID,
		RedirectURL: sess.URL,
		ProjectKey:  tool.ProjectKeyFromTransactionID(sess.ID),
		ChannelName: tool.ChannelNameFromTransactionID(sess.ID),
	}, nil
}

// ConfirmPayment resolves a session on demand. The usual confirmation path is
// the webhook; this exists for operator tooling and settlement checks.
func (a *StripeAdapter) ConfirmPayment(ctx context.Context, handle string) (*types.PaymentConfirmed, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	sess, err := session.Get(handle, params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch checkout session: %w", err)
	}
	return ConfirmedFromCheckoutSession(sess)
}

// ConfirmedFromCheckoutSession normalizes a paid checkout session into the
// internal event. Shared with the Stripe webhook parser.
func ConfirmedFromCheckoutSession(sess *stripe.CheckoutSession) (*types.PaymentConfirmed, error) {
	if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return nil, fmt.Errorf("%w: session %s payment status %s", ErrPaymentNotCompleted, sess.ID, sess.PaymentStatus)
	}

	ev := &types.PaymentConfirmed{
		TransactionID: sess.ID,
		Gateway:       types.PaymentGatewayStripe,
		Kind:          types.GatewayKindRedirect,
		Purpose:       types.PaymentPurposePurchase,
		Amount:        sess.AmountTotal,
		Currency:      strings.ToUpper(string(sess.Currency)),
		CustomerEmail: sess.CustomerEmail,
	}
	if sess.CustomerDetails != nil {
		if sess.CustomerDetails.Email != "" {
			ev.CustomerEmail = sess.CustomerDetails.Email
		}
		if sess.CustomerDetails.Name != "" {
			ev.CustomerName = sess.CustomerDetails.Name
		}
	}
	if name := sess.Metadata["customer_name"]; name != "" {
		ev.CustomerName = name
	}

	if sess.Subscription != nil && sess.Subscription.ID != "" {
		sub := sess.Subscription.ID
		ev.SubscriptionID = &sub
		ev.PlanID = sess.Metadata["plan_id"]
	} else if ids := sess.Metadata["deliverable_ids"]; ids != "" {
		ev.DeliverableIDs = strings.Split(ids, ",")
	}
	return ev, nil
}
