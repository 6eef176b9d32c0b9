package payment

import (
	"context"
	"testing"

	"github.com/lumenworks/storefront/pkg/types"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRecordRejectsContradictoryShape(t *testing.T) {
	svc := &Service{log: zap.NewNop().Sugar()}

	ev := &types.PaymentConfirmed{
		TransactionID:  "tx-1",
		SubscriptionID: lo.ToPtr("sub-1"),
		DeliverableIDs: []string{"svc-1"},
	}
	_, err := svc.Record(context.Background(), ev)
	require.ErrorIs(t, err, ErrInvalidPaymentShape)
}

func TestRecordRejectsEmptyShape(t *testing.T) {
	svc := &Service{log: zap.NewNop().Sugar()}

	_, err := svc.Record(context.Background(), &types.PaymentConfirmed{TransactionID: "tx-2"})
	require.ErrorIs(t, err, ErrInvalidPaymentShape)
}

func TestRecordRejectsMissingTransactionID(t *testing.T) {
	svc := &Service{log: zap.NewNop().Sugar()}

	_, err := svc.Record(context.Background(), &types.PaymentConfirmed{DeliverableIDs: []string{"svc-1"}})
	require.ErrorIs(t, err, ErrMissingTransactionID)
}

func TestValidateShapeAcceptsExactlyOne(t *testing.T) {
	require.NoError(t, validateShape(&types.PaymentConfirmed{
		TransactionID:  "tx-3",
		SubscriptionID: lo.ToPtr("sub-1"),
	}))
	require.NoError(t, validateShape(&types.PaymentConfirmed{
		TransactionID:  "tx-4",
		DeliverableIDs: []string{"svc-1", "svc-2"},
	}))
}
