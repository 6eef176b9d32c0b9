package webhookevent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/lumenworks/storefront/internal/app/service/fulfillment"
	"github.com/lumenworks/storefront/internal/app/service/subscription"
	"github.com/lumenworks/storefront/internal/models"
	"github.com/lumenworks/storefront/pkg/logctx"
	"github.com/lumenworks/storefront/pkg/tool"
	"github.com/lumenworks/storefront/pkg/types"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrUnsupportedGateway = errors.New("no webhook parser for gateway")

// Dispatcher routes verified gateway deliveries to the right consumer.
// Everything that passes signature verification is acked: handler failures
// land in the webhook event log, not in the HTTP status.
type Dispatcher interface {
	Dispatch(ctx context.Context, g types.PaymentGateway, header http.Header, body []byte) error
}

type eventLogStore interface {
	Save(ctx context.Context, row *models.WebhookEventLog) error
}

type gormEventLogStore struct {
	db *gorm.DB
}

func (s *gormEventLogStore) Save(ctx context.Context, row *models.WebhookEventLog) error {
	return s.db.WithContext(ctx).Save(row).Error
}

// dedupGuard is the fast-path duplicate check in front of the database.
type dedupGuard interface {
	CheckAndMark(ctx context.Context, gateway, transactionID string) bool
	Release(ctx context.Context, gateway, transactionID string)
}

type Service struct {
	parsers       map[types.PaymentGateway]Parser
	guard         dedupGuard
	orchestrator  fulfillment.Orchestrator
	subscriptions subscription.Manager
	eventLog      eventLogStore
	log           *zap.SugaredLogger
}

func NewService(
	stripeParser *StripeParser,
	paypalParser *PayPalParser,
	guard *Guard,
	orchestrator fulfillment.Orchestrator,
	subscriptions subscription.Manager,
	db *gorm.DB,
	log *zap.SugaredLogger,
) Dispatcher {
	return &Service{
		parsers: map[types.PaymentGateway]Parser{
			stripeParser.Gateway(): stripeParser,
			paypalParser.Gateway(): paypalParser,
		},
		guard:         guard,
		orchestrator:  orchestrator,
		subscriptions: subscriptions,
		eventLog:      &gormEventLogStore{db: db},
		log:           log,
	}
}

func (s *Service) Dispatch(ctx context.Context, g types.PaymentGateway, header http.Header, body []byte) error {
	log := logctx.FromCtx(ctx, s.log)

	parser, ok := s.parsers[g]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedGateway, g)
	}

	ev, err := parser.Parse(header, body)
	if err != nil {
		if errors.Is(err, ErrInvalidSignature) {
			log.Warnw("webhook rejected", "gateway", g, "error", err)
			return err
		}
		// verified but undecodable or malformed; ack so the gateway stops
		// retrying a payload we will never be able to handle
		log.Errorw("webhook payload unusable", "gateway", g, "error", err)
		s.persistLog(ctx, g, &Event{Gateway: g}, body, models.WebhookEventLogStatusHandleFailed, err)
		return nil
	}

	if ev.Confirmed == nil {
		log.Infow("webhook ignored", "gateway", g, "event_id", ev.EventID, "event_type", ev.EventType)
		s.persistLog(ctx, g, ev, body, models.WebhookEventLogStatusIgnored, nil)
		return nil
	}

	txid := ev.Confirmed.TransactionID
	if !s.guard.CheckAndMark(ctx, string(g), txid) {
		log.Infow("webhook duplicate short-circuited", "gateway", g, "transaction_id", txid)
		s.persistLog(ctx, g, ev, body, models.WebhookEventLogStatusIgnored, nil)
		return nil
	}

	if err := s.handle(ctx, ev.Confirmed); err != nil {
		// give the next redelivery a chance at the fast path again
		s.guard.Release(ctx, string(g), txid)
		log.Errorw("webhook handling failed",
			"gateway", g, "event_id", ev.EventID, "transaction_id", txid, "error", err)
		s.persistLog(ctx, g, ev, body, models.WebhookEventLogStatusHandleFailed, err)
		return nil
	}

	log.Infow("webhook handled", "gateway", g, "event_id", ev.EventID, "transaction_id", txid)
	s.persistLog(ctx, g, ev, body, models.WebhookEventLogStatusHandled, nil)
	return nil
}

func (s *Service) handle(ctx context.Context, confirmed *types.PaymentConfirmed) error {
	if confirmed.Purpose == types.PaymentPurposeCancellation {
		_, err := s.subscriptions.SettleCancellation(ctx, confirmed)
		return err
	}
	_, err := s.orchestrator.Fulfill(ctx, confirmed)
	return err
}

func (s *Service) persistLog(ctx context.Context, g types.PaymentGateway, ev *Event, body []byte, status models.WebhookEventLogStatus, handleErr error) {
	row := &models.WebhookEventLog{
		ID:        tool.GenerateUUIDV7(),
		Gateway:   string(g),
		EventID:   ev.EventID,
		EventType: ev.EventType,
		Data:      datatypes.JSON(body),
		Status:    status,
	}
	if ev.Confirmed != nil {
		row.TransactionID = ev.Confirmed.TransactionID
	}
	if tid, ok := ctx.Value("traceID").(string); ok {
		row.TraceID = tid
	}
	if handleErr != nil {
		if b, err := json.Marshal(map[string]string{"error": handleErr.Error()}); err == nil {
			res := datatypes.JSON(b)
			row.Result = &res
		}
	}
	if err := s.eventLog.Save(ctx, row); err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("failed to persist webhook event log", "error", err)
	}
}
