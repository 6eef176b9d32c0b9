package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/lumenworks/storefront/internal/platform/paypal"
	"github.com/lumenworks/storefront/pkg/logctx"
	"github.com/lumenworks/storefront/pkg/types"

	"go.uber.org/zap"
)

// PayPalAdapter is the capture-style adapter: the caller creates an order,
// the buyer approves it, and a synchronous capture call moves the funds.
type PayPalAdapter struct {
	client *paypal.Client
	log    *zap.SugaredLogger
}

func NewPayPalAdapter(client *paypal.Client, log *zap.SugaredLogger) *PayPalAdapter {
	return &PayPalAdapter{client: client, log: log}
}

func (a *PayPalAdapter) Gateway() types.PaymentGateway { return types.PaymentGatewayPayPal }
func (a *PayPalAdapter) Kind() types.GatewayKind       { return types.GatewayKindCapture }

func (a *PayPalAdapter) StartPayment(ctx context.Context, req *PaymentIntentRequest) (*StartPaymentResult, error) {
	if req.IsSubscription() {
		return nil, fmt.Errorf("%w: subscriptions are sold through the redirect gateway", ErrInvalidIntent)
	}

	tag := PaymentTag{Purpose: req.Purpose, SubscriptionID: req.SubscriptionID}
	order := &paypal.CreateOrderRequest{CustomID: tag.Encode()}

	switch {
	case req.Purpose == types.PaymentPurposeCancellation:
		if req.Amount <= 0 || req.SubscriptionID == "" {
			return nil, ErrInvalidIntent
		}
		order.Amount = req.Amount
		order.Currency = req.Currency
		order.Description = "Subscription cancellation fee"
	case len(req.Items) > 0:
		ids := make([]string, 0, len(req.Items))
		names := make([]string, 0, len(req.Items))
		var total int64
		for _, item := range req.Items {
			ids = append(ids, item.ID)
			names = append(names, item.Name)
			total += item.Price
		}
		order.ReferenceID = strings.Join(ids, ",")
		order.Description = strings.Join(names, ", ")
		order.Amount = total
		order.Currency = req.Items[0].Currency
	default:
		return nil, ErrInvalidIntent
	}

	created, err := a.client.CreateOrder(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("failed to create paypal order: %w", err)
	}

	logctx.FromCtx(ctx, a.log).Infow("paypal order created", "order_id", created.ID, "amount", order.Amount)
	// No workspace name preview here: those names come from the capture id,
	// which does not exist until the order is captured.
	return &StartPaymentResult{Handle: created.ID}, nil
}

// ConfirmPayment captures an approved order. Success requires the gateway to
// report the COMPLETED sentinel; any other status is ErrPaymentNotCompleted.
func (a *PayPalAdapter) ConfirmPayment(ctx context.Context, handle string) (*types.PaymentConfirmed, error) {
	order, err := a.client.CaptureOrder(ctx, handle)
	if err != nil {
		return nil, fmt.Errorf("failed to capture paypal order: %w", err)
	}
	if order.Status != paypal.OrderStatusCompleted {
		return nil, fmt.Errorf("%w: order %s status %s", ErrPaymentNotCompleted, handle, order.Status)
	}
	return ConfirmedFromOrder(order)
}

// ConfirmedFromOrder normalizes a captured PayPal order into the internal
// event. Shared with the PayPal webhook parser.
func ConfirmedFromOrder(order *paypal.Order) (*types.PaymentConfirmed, error) {
	if len(order.PurchaseUnits) == 0 {
		return nil, fmt.Errorf("paypal order %s has no purchase units", order.ID)
	}
	unit := order.PurchaseUnits[0]
	if unit.Payments == nil || len(unit.Payments.Captures) == 0 {
		return nil, fmt.Errorf("paypal order %s has no captures", order.ID)
	}
	capture := unit.Payments.Captures[0]
	if capture.Status != paypal.OrderStatusCompleted {
		return nil, fmt.Errorf("%w: capture %s status %s", ErrPaymentNotCompleted, capture.ID, capture.Status)
	}

	amount, err := paypal.MinorUnits(capture.Amount.Value)
	if err != nil {
		return nil, err
	}

	ev := &types.PaymentConfirmed{
		TransactionID: capture.ID,
		Gateway:       types.PaymentGatewayPayPal,
		Kind:          types.GatewayKindCapture,
		Amount:        amount,
		Currency:      capture.Amount.CurrencyCode,
	}

	tag := ParsePaymentTag(capture.CustomID)
	ev.Purpose = tag.Purpose
	if tag.Purpose == types.PaymentPurposeCancellation {
		sub := tag.SubscriptionID
		ev.SubscriptionID = &sub
	} else if unit.ReferenceID != "" {
		ev.DeliverableIDs = strings.Split(unit.ReferenceID, ",")
	}

	if order.Payer != nil {
		ev.CustomerEmail = order.Payer.EmailAddress
		ev.CustomerName = strings.TrimSpace(order.Payer.Name.GivenName + " " + order.Payer.Name.Surname)
	}
	return ev, nil
}
