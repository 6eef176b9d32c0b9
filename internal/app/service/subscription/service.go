package subscription

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lumenworks/storefront/internal/app/service/gateway"
	"github.com/lumenworks/storefront/internal/app/service/payment"
	"github.com/lumenworks/storefront/internal/models"
	"github.com/lumenworks/storefront/pkg/config"
	"github.com/lumenworks/storefront/pkg/logctx"
	"github.com/lumenworks/storefront/pkg/tool"
	"github.com/lumenworks/storefront/pkg/types"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrSubscriptionNotFound   = errors.New("subscription not found")
	ErrSubscriptionInactive   = errors.New("subscription is not active")
	ErrCancellationNotFound   = errors.New("no pending cancellation for this payment")
	ErrCancellationNotSettled = errors.New("cancellation payment was not captured")
)

// CancellationQuote is returned when a buyer requests cancellation: the
// prorated amount owed and the secondary payment opened to collect it. The
// subscription stays active until that payment is confirmed.
type CancellationQuote struct {
	SubscriptionID  string `json:"subscription_id"`
	MonthsRemaining int    `json:"months_remaining"`
	AmountDue       int64  `json:"amount_due"`
	Currency        string `json:"currency"`
	OrderID         string `json:"order_id"`
}

// Manager owns the subscription lifecycle: activation on purchase, prorated
// cancellation, and final deactivation.
type Manager interface {
	// Activate records a sold subscription; duplicate activations for the
	// same gateway subscription id are no-ops.
	Activate(ctx context.Context, ev *types.PaymentConfirmed) (*models.Subscription, error)
	Get(ctx context.Context, subscriptionID string) (*models.Subscription, error)
	// RequestCancellation computes the prorated fee and opens the secondary
	// payment leg. It never deactivates. customerEmail, when non-empty, must
	// match the subscription on record.
	RequestCancellation(ctx context.Context, subscriptionID, customerEmail string) (*CancellationQuote, error)
	// FinalizeCancellation captures the secondary payment by handle and, on
	// success, hands its confirmation to SettleCancellation.
	FinalizeCancellation(ctx context.Context, orderID string) (*models.Subscription, error)
	// SettleCancellation deactivates the subscription referenced by a
	// recorded cancellation-fee payment. Reached from FinalizeCancellation
	// or directly from a webhook-delivered confirmation.
	SettleCancellation(ctx context.Context, ev *types.PaymentConfirmed) (*models.Subscription, error)
}

// store is the persistence slice of the lifecycle, split out so the service
// is testable without a database.
type store interface {
	// upsert inserts an active subscription, reporting false when the
	// gateway subscription id is already on record.
	upsert(ctx context.Context, sub *models.Subscription) (bool, error)
	get(ctx context.Context, subscriptionID string) (*models.Subscription, error)
	createCancellationRequest(ctx context.Context, row *models.CancellationRequest) error
	// settle flips the pending cancellation request to settled and the
	// subscription to inactive in one transaction. It reports false when a
	// concurrent delivery settled first, and ErrCancellationNotFound when
	// no request was ever pending.
	settle(ctx context.Context, subscriptionID string, now time.Time) (bool, error)
}

type Service struct {
	cfg      *config.Config
	store    store
	capture  gateway.Adapter
	payments payment.Recorder
	log      *zap.SugaredLogger
	// now is swappable in tests
	now func() time.Time
}

func NewService(cfg *config.Config, db *gorm.DB, paypal *gateway.PayPalAdapter, payments payment.Recorder, log *zap.SugaredLogger) Manager {
	return &Service{cfg: cfg, store: &gormStore{db: db}, capture: paypal, payments: payments, log: log, now: time.Now}
}

func (s *Service) Activate(ctx context.Context, ev *types.PaymentConfirmed) (*models.Subscription, error) {
	if ev.SubscriptionID == nil || *ev.SubscriptionID == "" {
		return nil, fmt.Errorf("payment %s carries no subscription id", ev.TransactionID)
	}

	plan := s.cfg.GetPlanByID(ev.PlanID)
	if plan == nil {
		return nil, fmt.Errorf("unknown subscription plan: %s", ev.PlanID)
	}

	sub := &models.Subscription{
		ID:              tool.GenerateUUIDV7(),
		SubscriptionID:  *ev.SubscriptionID,
		PlanID:          plan.ID,
		CustomerEmail:   ev.CustomerEmail,
		Status:          types.SubscriptionStatusActive,
		MonthlyPrice:    plan.MonthlyPrice,
		Currency:        plan.Currency,
		BillingAnchorAt: s.now(),
		CommittedMonths: plan.CommittedMonths,
	}

	inserted, err := s.store.upsert(ctx, sub)
	if err != nil {
		return nil, fmt.Errorf("failed to activate subscription: %w", err)
	}
	if !inserted {
		return s.Get(ctx, *ev.SubscriptionID)
	}

	logctx.FromCtx(ctx, s.log).Infow("subscription activated",
		"subscription_id", sub.SubscriptionID, "plan_id", plan.ID)
	return sub, nil
}

func (s *Service) Get(ctx context.Context, subscriptionID string) (*models.Subscription, error) {
	return s.store.get(ctx, subscriptionID)
}

func (s *Service) RequestCancellation(ctx context.Context, subscriptionID, customerEmail string) (*CancellationQuote, error) {
	sub, err := s.Get(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if customerEmail != "" && !strings.EqualFold(customerEmail, sub.CustomerEmail) {
		return nil, ErrSubscriptionNotFound
	}
	if !sub.Active() {
		return nil, ErrSubscriptionInactive
	}

	months := MonthsRemaining(sub.BillingAnchorAt, sub.CommittedMonths, s.now())
	if months == 0 {
		return nil, ErrNoCommitmentRemaining
	}
	amountDue := ProratedAmountDue(sub.MonthlyPrice, months)

	start, err := s.capture.StartPayment(ctx, &gateway.PaymentIntentRequest{
		CustomerEmail:  sub.CustomerEmail,
		Purpose:        types.PaymentPurposeCancellation,
		SubscriptionID: sub.SubscriptionID,
		Amount:         amountDue,
		Currency:       sub.Currency,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open cancellation payment: %w", err)
	}

	reqRow := &models.CancellationRequest{
		ID:              tool.GenerateUUIDV7(),
		SubscriptionID:  sub.SubscriptionID,
		MonthsRemaining: months,
		AmountDue:       amountDue,
		Currency:        sub.Currency,
		OrderID:         start.Handle,
		Status:          models.CancellationRequestStatusPending,
	}
	if err := s.store.createCancellationRequest(ctx, reqRow); err != nil {
		return nil, fmt.Errorf("failed to persist cancellation request: %w", err)
	}

	logctx.FromCtx(ctx, s.log).Infow("cancellation requested",
		"subscription_id", sub.SubscriptionID,
		"months_remaining", months,
		"amount_due", amountDue,
		"order_id", start.Handle,
	)
	return &CancellationQuote{
		SubscriptionID:  sub.SubscriptionID,
		MonthsRemaining: months,
		AmountDue:       amountDue,
		Currency:        sub.Currency,
		OrderID:         start.Handle,
	}, nil
}

func (s *Service) FinalizeCancellation(ctx context.Context, orderID string) (*models.Subscription, error) {
	ev, err := s.capture.ConfirmPayment(ctx, orderID)
	if err != nil {
		// Payment failed or was abandoned: the subscription stays active.
		return nil, fmt.Errorf("%w: %v", ErrCancellationNotSettled, err)
	}
	return s.SettleCancellation(ctx, ev)
}

func (s *Service) SettleCancellation(ctx context.Context, ev *types.PaymentConfirmed) (*models.Subscription, error) {
	if ev.Purpose != types.PaymentPurposeCancellation || ev.SubscriptionID == nil {
		return nil, fmt.Errorf("payment %s is not a cancellation fee", ev.TransactionID)
	}

	// The fee is a confirmed payment like any other: it lands in the ledger
	// before anything is deactivated, and the atomic insert deduplicates
	// redelivered confirmations.
	rec, err := s.payments.Record(ctx, ev)
	if err != nil {
		return nil, fmt.Errorf("failed to record cancellation fee: %w", err)
	}

	sub, err := s.Get(ctx, *ev.SubscriptionID)
	if err != nil {
		return nil, err
	}
	if !sub.Active() {
		// already settled by an earlier delivery
		return sub, nil
	}
	if !rec.Inserted {
		logctx.FromCtx(ctx, s.log).Infow("redelivered cancellation fee, resuming settlement",
			"subscription_id", sub.SubscriptionID, "transaction_id", ev.TransactionID)
	}

	now := s.now()
	fresh, err := s.store.settle(ctx, sub.SubscriptionID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to settle cancellation: %w", err)
	}

	sub.Status = types.SubscriptionStatusInactive
	if fresh {
		sub.DeactivatedAt = lo.ToPtr(now)
		logctx.FromCtx(ctx, s.log).Infow("subscription deactivated",
			"subscription_id", sub.SubscriptionID, "transaction_id", ev.TransactionID)
	}
	return sub, nil
}
