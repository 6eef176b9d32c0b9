package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/lumenworks/storefront/internal/models"
	"github.com/lumenworks/storefront/pkg/logctx"
	"github.com/lumenworks/storefront/pkg/tool"
	"github.com/lumenworks/storefront/pkg/types"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrInvalidPaymentShape rejects events that reference neither a
	// subscription nor deliverables, or both at once.
	ErrInvalidPaymentShape = errors.New("payment must carry either a subscription id or deliverable ids, not both")

	ErrMissingTransactionID = errors.New("payment event has no transaction id")
)

// RecordResult reports whether the row was inserted by this call. A
// not-inserted result is a success per the idempotency contract: the
// transaction was recorded by an earlier (possibly concurrent) delivery.
type RecordResult struct {
	Inserted    bool
	Transaction *models.PaymentTransaction
}

// Recorder persists confirmed payments exactly once per transaction id.
type Recorder interface {
	Record(ctx context.Context, ev *types.PaymentConfirmed) (*RecordResult, error)
	GetByTransactionID(ctx context.Context, transactionID string) (*models.PaymentTransaction, error)
	// Scan serves the admin listing pages.
	Scan(ctx context.Context, req *ScanRequest) (*ScanResponse, error)
}

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) Recorder {
	return &Service{db: db, log: log}
}

// Record inserts the transaction atomically: ON CONFLICT (transaction_id) DO
// NOTHING, never read-then-write, so two concurrent deliveries of the same
// transaction resolve to exactly one row.
func (s *Service) Record(ctx context.Context, ev *types.PaymentConfirmed) (*RecordResult, error) {
	if err := validateShape(ev); err != nil {
		return nil, err
	}

	txn := &models.PaymentTransaction{
		ID:            tool.GenerateUUIDV7(),
		TransactionID: ev.TransactionID,
		Gateway:       ev.Gateway,
		Kind:          ev.Kind,
		Purpose:       ev.Purpose,
		Status:        types.PaymentStatusPaid,
		Amount:        ev.Amount,
		Currency:      ev.Currency,
		CustomerEmail: ev.CustomerEmail,
		CustomerName:  ev.CustomerName,
		PlanID:        ev.PlanID,
	}
	if ev.SubscriptionID != nil && *ev.SubscriptionID != "" {
		txn.SubscriptionID = ev.SubscriptionID
	} else {
		txn.DeliverableIDs = ev.DeliverableIDs
	}

	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "transaction_id"}},
			DoNothing: true,
		}).
		Create(txn)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to record payment transaction: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		existing, err := s.GetByTransactionID(ctx, ev.TransactionID)
		if err != nil {
			return nil, fmt.Errorf("failed to load existing transaction: %w", err)
		}
		logctx.FromCtx(ctx, s.log).Infow("duplicate payment delivery ignored", "transaction_id", ev.TransactionID)
		return &RecordResult{Inserted: false, Transaction: existing}, nil
	}

	logctx.FromCtx(ctx, s.log).Infow("payment recorded",
		"transaction_id", ev.TransactionID,
		"gateway", ev.Gateway,
		"purpose", ev.Purpose,
		"amount", ev.Amount,
		"currency", ev.Currency,
	)
	return &RecordResult{Inserted: true, Transaction: txn}, nil
}

func (s *Service) GetByTransactionID(ctx context.Context, transactionID string) (*models.PaymentTransaction, error) {
	var txn models.PaymentTransaction
	if err := s.db.WithContext(ctx).Where("transaction_id = ?", transactionID).First(&txn).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

func validateShape(ev *types.PaymentConfirmed) error {
	if ev == nil || ev.TransactionID == "" {
		return ErrMissingTransactionID
	}
	hasSubscription := ev.SubscriptionID != nil && *ev.SubscriptionID != ""
	hasDeliverables := len(ev.DeliverableIDs) > 0
	if hasSubscription == hasDeliverables {
		return ErrInvalidPaymentShape
	}
	return nil
}
