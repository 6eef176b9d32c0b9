package subscription

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lumenworks/storefront/internal/app/service/gateway"
	"github.com/lumenworks/storefront/internal/app/service/payment"
	"github.com/lumenworks/storefront/internal/models"
	"github.com/lumenworks/storefront/pkg/types"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubAdapter struct {
	confirmErr error
	confirmed  *types.PaymentConfirmed
}

func (a *stubAdapter) Gateway() types.PaymentGateway { return types.PaymentGatewayPayPal }
func (a *stubAdapter) Kind() types.GatewayKind       { return types.GatewayKindCapture }

func (a *stubAdapter) StartPayment(context.Context, *gateway.PaymentIntentRequest) (*gateway.StartPaymentResult, error) {
	return nil, errors.New("not implemented")
}

func (a *stubAdapter) ConfirmPayment(context.Context, string) (*types.PaymentConfirmed, error) {
	if a.confirmErr != nil {
		return nil, a.confirmErr
	}
	return a.confirmed, nil
}

func TestFinalizeCancellationCaptureFailureKeepsSubscriptionActive(t *testing.T) {
	svc := &Service{
		capture: &stubAdapter{confirmErr: errors.New("payer abandoned checkout")},
		log:     zap.NewNop().Sugar(),
		now:     time.Now,
	}

	_, err := svc.FinalizeCancellation(context.Background(), "ORDER-1")
	require.ErrorIs(t, err, ErrCancellationNotSettled)
}

func TestSettleCancellationRejectsNonCancellationPayments(t *testing.T) {
	svc := &Service{log: zap.NewNop().Sugar(), now: time.Now}

	_, err := svc.SettleCancellation(context.Background(), &types.PaymentConfirmed{
		TransactionID:  "3XY99012AB345678C",
		Purpose:        types.PaymentPurposePurchase,
		DeliverableIDs: []string{"logo-design"},
	})
	require.Error(t, err)

	_, err = svc.SettleCancellation(context.Background(), &types.PaymentConfirmed{
		TransactionID: "9AB12345CD678901E",
		Purpose:       types.PaymentPurposeCancellation,
	})
	require.Error(t, err, "cancellation fee without a subscription id is rejected")
}

type fakeRecorder struct {
	recorded  []*types.PaymentConfirmed
	recordErr error
	duplicate bool
}

func (r *fakeRecorder) Record(_ context.Context, ev *types.PaymentConfirmed) (*payment.RecordResult, error) {
	if r.recordErr != nil {
		return nil, r.recordErr
	}
	r.recorded = append(r.recorded, ev)
	return &payment.RecordResult{Inserted: !r.duplicate}, nil
}

func (r *fakeRecorder) GetByTransactionID(context.Context, string) (*models.PaymentTransaction, error) {
	return nil, errors.New("not implemented")
}

func (r *fakeRecorder) Scan(context.Context, *payment.ScanRequest) (*payment.ScanResponse, error) {
	return nil, errors.New("not implemented")
}

type fakeStore struct {
	sub        *models.Subscription
	settleCnt  int
	settleErr  error
	settleLost bool
}

func (f *fakeStore) upsert(context.Context, *models.Subscription) (bool, error) {
	return false, errors.New("not implemented")
}

func (f *fakeStore) get(_ context.Context, subscriptionID string) (*models.Subscription, error) {
	if f.sub == nil || f.sub.SubscriptionID != subscriptionID {
		return nil, ErrSubscriptionNotFound
	}
	copied := *f.sub
	return &copied, nil
}

func (f *fakeStore) createCancellationRequest(context.Context, *models.CancellationRequest) error {
	return errors.New("not implemented")
}

func (f *fakeStore) settle(context.Context, string, time.Time) (bool, error) {
	f.settleCnt++
	if f.settleErr != nil {
		return false, f.settleErr
	}
	return !f.settleLost, nil
}

func activeSubscription() *models.Subscription {
	return &models.Subscription{
		SubscriptionID:  "sub_42",
		Status:          types.SubscriptionStatusActive,
		MonthlyPrice:    10000,
		Currency:        "USD",
		CommittedMonths: 6,
	}
}

func cancellationFee(txid string) *types.PaymentConfirmed {
	subID := "sub_42"
	return &types.PaymentConfirmed{
		TransactionID:  txid,
		Gateway:        types.PaymentGatewayPayPal,
		Kind:           types.GatewayKindCapture,
		Purpose:        types.PaymentPurposeCancellation,
		Amount:         30000,
		Currency:       "USD",
		SubscriptionID: &subID,
	}
}

func TestSettleCancellationRecordsFeeInLedger(t *testing.T) {
	recorder := &fakeRecorder{}
	st := &fakeStore{sub: activeSubscription()}
	svc := &Service{store: st, payments: recorder, log: zap.NewNop().Sugar(), now: time.Now}

	sub, err := svc.SettleCancellation(context.Background(), cancellationFee("5KJ77321GH901234D"))
	require.NoError(t, err)
	require.Equal(t, types.SubscriptionStatusInactive, sub.Status)

	require.Len(t, recorder.recorded, 1)
	require.Equal(t, "5KJ77321GH901234D", recorder.recorded[0].TransactionID)
	require.Equal(t, types.PaymentPurposeCancellation, recorder.recorded[0].Purpose)
	require.Equal(t, 1, st.settleCnt)
}

func TestSettleCancellationRecorderFailureKeepsSubscriptionActive(t *testing.T) {
	st := &fakeStore{sub: activeSubscription()}
	svc := &Service{
		store:    st,
		payments: &fakeRecorder{recordErr: errors.New("ledger unavailable")},
		log:      zap.NewNop().Sugar(),
		now:      time.Now,
	}

	_, err := svc.SettleCancellation(context.Background(), cancellationFee("5KJ77321GH901234D"))
	require.Error(t, err)
	require.Zero(t, st.settleCnt, "deactivation must not run when the fee was not recorded")
}

func TestSettleCancellationResumesAfterRedelivery(t *testing.T) {
	// Recorded on a previous delivery that crashed before settling: the
	// duplicate insert is a no-op and settlement still completes.
	recorder := &fakeRecorder{duplicate: true}
	st := &fakeStore{sub: activeSubscription()}
	svc := &Service{store: st, payments: recorder, log: zap.NewNop().Sugar(), now: time.Now}

	sub, err := svc.SettleCancellation(context.Background(), cancellationFee("5KJ77321GH901234D"))
	require.NoError(t, err)
	require.Equal(t, types.SubscriptionStatusInactive, sub.Status)
	require.Equal(t, 1, st.settleCnt)
}

func TestSettleCancellationConcurrentLoserSucceeds(t *testing.T) {
	// Two confirmations race past the active check; the loser's settle
	// reports nothing left to do and the delivery is still a success.
	st := &fakeStore{sub: activeSubscription(), settleLost: true}
	svc := &Service{store: st, payments: &fakeRecorder{duplicate: true}, log: zap.NewNop().Sugar(), now: time.Now}

	sub, err := svc.SettleCancellation(context.Background(), cancellationFee("5KJ77321GH901234D"))
	require.NoError(t, err)
	require.Equal(t, types.SubscriptionStatusInactive, sub.Status)
}

func TestSettleCancellationAlreadyInactiveIsNoOp(t *testing.T) {
	sub := activeSubscription()
	sub.Status = types.SubscriptionStatusInactive
	st := &fakeStore{sub: sub}
	svc := &Service{store: st, payments: &fakeRecorder{duplicate: true}, log: zap.NewNop().Sugar(), now: time.Now}

	got, err := svc.SettleCancellation(context.Background(), cancellationFee("5KJ77321GH901234D"))
	require.NoError(t, err)
	require.Equal(t, types.SubscriptionStatusInactive, got.Status)
	require.Zero(t, st.settleCnt)
}
