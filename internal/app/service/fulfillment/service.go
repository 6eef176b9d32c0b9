package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lumenworks/storefront/internal/app/service/payment"
	"github.com/lumenworks/storefront/internal/app/service/project"
	"github.com/lumenworks/storefront/internal/app/service/subscription"
	"github.com/lumenworks/storefront/internal/models"
	"github.com/lumenworks/storefront/pkg/config"
	"github.com/lumenworks/storefront/pkg/logctx"
	"github.com/lumenworks/storefront/pkg/tool"
	"github.com/lumenworks/storefront/pkg/types"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Provisioning step names as they appear in the stored error ledger.
const (
	StepTrackerProject = "tracker_project"
	StepChatChannel    = "chat_channel"
	StepProjectRecord  = "project_record"
	StepInviteEmail    = "invite_email"
)

var ErrProvisioningNotFound = errors.New("no provisioning record for this transaction")

// TrackerClient creates projects on the external issue tracker.
type TrackerClient interface {
	CreateProject(ctx context.Context, key, name string) (string, error)
}

// ChatClient creates channels on the external chat collaborator.
type ChatClient interface {
	CreateChannel(ctx context.Context, name string) (string, error)
}

// InviteMailer mails the buyer their workspace links.
type InviteMailer interface {
	SendInvite(ctx context.Context, email, name, trackerURL, chatURL string) error
}

// Orchestrator runs the post-payment saga: record the payment, activate the
// subscription when one was sold, then provision the buyer's workspace
// (tracker project, chat channel, project row, invite mail). Collaborator
// steps are best effort and land in the error ledger; only the project row
// is authoritative. Duplicate confirmations return the stored ledger.
type Orchestrator interface {
	Fulfill(ctx context.Context, ev *types.PaymentConfirmed) (*types.ProvisioningResult, error)
	// Refulfill re-runs only the failed steps from a previous run.
	Refulfill(ctx context.Context, transactionID string) (*types.ProvisioningResult, error)
}

// recordStore persists the per-transaction step ledger.
type recordStore interface {
	Get(ctx context.Context, transactionID string) (*models.ProvisioningRecord, error)
	Save(ctx context.Context, rec *models.ProvisioningRecord) error
}

type gormRecordStore struct {
	db *gorm.DB
}

func (s *gormRecordStore) Get(ctx context.Context, transactionID string) (*models.ProvisioningRecord, error) {
	var rec models.ProvisioningRecord
	if err := s.db.WithContext(ctx).Where("transaction_id = ?", transactionID).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *gormRecordStore) Save(ctx context.Context, rec *models.ProvisioningRecord) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "transaction_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"project_key", "tracker_url", "chat_url", "invite_sent", "errors", "updated_at",
			}),
		}).
		Create(rec).Error
}

type Service struct {
	cfg           *config.Config
	records       recordStore
	recorder      payment.Recorder
	projects      project.Manager
	subscriptions subscription.Manager
	tracker       TrackerClient
	chat          ChatClient
	mailer        InviteMailer
	log           *zap.SugaredLogger
}

func NewService(
	cfg *config.Config,
	db *gorm.DB,
	recorder payment.Recorder,
	projects project.Manager,
	subscriptions subscription.Manager,
	tracker TrackerClient,
	chat ChatClient,
	mailer InviteMailer,
	log *zap.SugaredLogger,
) Orchestrator {
	return &Service{
		cfg:           cfg,
		records:       &gormRecordStore{db: db},
		recorder:      recorder,
		projects:      projects,
		subscriptions: subscriptions,
		tracker:       tracker,
		chat:          chat,
		mailer:        mailer,
		log:           log,
	}
}

func (s *Service) Fulfill(ctx context.Context, ev *types.PaymentConfirmed) (*types.ProvisioningResult, error) {
	log := logctx.FromCtx(ctx, s.log)

	rec, err := s.recorder.Record(ctx, ev)
	if err != nil {
		return nil, err
	}
	if !rec.Inserted {
		// Duplicate delivery. If the earlier run left a ledger, hand it back;
		// otherwise the process died between recording and provisioning and
		// we resume below.
		if stored, err := s.records.Get(ctx, ev.TransactionID); err == nil {
			log.Infow("duplicate payment confirmation, returning stored provisioning result",
				"transaction_id", ev.TransactionID)
			return stored.ToResult(), nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		log.Warnw("payment recorded but never provisioned, resuming",
			"transaction_id", ev.TransactionID)
	}

	if ev.Purpose == types.PaymentPurposePurchase && ev.SubscriptionID != nil {
		if _, err := s.subscriptions.Activate(ctx, ev); err != nil {
			return nil, fmt.Errorf("failed to activate subscription: %w", err)
		}
	}

	return s.provision(ctx, ev, newRun(ev.TransactionID))
}

func (s *Service) Refulfill(ctx context.Context, transactionID string) (*types.ProvisioningResult, error) {
	stored, err := s.records.Get(ctx, transactionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProvisioningNotFound
		}
		return nil, err
	}
	if !stored.ToResult().Failed() {
		return stored.ToResult(), nil
	}

	txn, err := s.recorder.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	ev := &types.PaymentConfirmed{
		TransactionID:  txn.TransactionID,
		Gateway:        txn.Gateway,
		Kind:           txn.Kind,
		Purpose:        txn.Purpose,
		Amount:         txn.Amount,
		Currency:       txn.Currency,
		CustomerEmail:  txn.CustomerEmail,
		CustomerName:   txn.CustomerName,
		SubscriptionID: txn.SubscriptionID,
		PlanID:         txn.PlanID,
		DeliverableIDs: txn.DeliverableIDs,
	}

	run := runFromRecord(stored)
	return s.provision(ctx, ev, run)
}

// run carries the per-transaction saga state across steps. A zero URL or a
// false flag means the step has not succeeded yet and will be (re)tried.
type run struct {
	transactionID string
	projectKey    string
	channelName   string
	trackerURL    string
	chatURL       string
	inviteSent    bool
	errs          []types.ProvisionStepError
}

func newRun(transactionID string) *run {
	return &run{
		transactionID: transactionID,
		projectKey:    tool.ProjectKeyFromTransactionID(transactionID),
		channelName:   tool.ChannelNameFromTransactionID(transactionID),
	}
}

func runFromRecord(rec *models.ProvisioningRecord) *run {
	return &run{
		transactionID: rec.TransactionID,
		projectKey:    rec.ProjectKey,
		channelName:   tool.ChannelNameFromTransactionID(rec.TransactionID),
		trackerURL:    rec.TrackerURL,
		chatURL:       rec.ChatURL,
		inviteSent:    rec.InviteSent,
	}
}

func (r *run) fail(step string, err error) {
	r.errs = append(r.errs, types.ProvisionStepError{Step: step, Message: err.Error()})
}

func (s *Service) provision(ctx context.Context, ev *types.PaymentConfirmed, r *run) (*types.ProvisioningResult, error) {
	log := logctx.FromCtx(ctx, s.log)
	description := s.describePurchase(ev)

	if r.trackerURL == "" {
		url, err := s.tracker.CreateProject(ctx, r.projectKey, description)
		if err != nil {
			log.Errorw("tracker project creation failed",
				"transaction_id", r.transactionID, "project_key", r.projectKey, "error", err)
			r.fail(StepTrackerProject, err)
		} else {
			r.trackerURL = url
		}
	}

	if r.chatURL == "" {
		url, err := s.chat.CreateChannel(ctx, r.channelName)
		if err != nil {
			log.Errorw("chat channel creation failed",
				"transaction_id", r.transactionID, "channel", r.channelName, "error", err)
			r.fail(StepChatChannel, err)
		} else {
			r.chatURL = url
		}
	}

	// The project row is the system of record: unlike the collaborators its
	// failure fails the whole run.
	_, err := s.projects.Create(ctx, &models.Project{
		ProjectKey:  r.projectKey,
		Email:       ev.CustomerEmail,
		Description: description,
		TrackerURL:  r.trackerURL,
		ChatURL:     r.chatURL,
	})
	if err != nil {
		r.fail(StepProjectRecord, err)
		if saveErr := s.saveRecord(ctx, r); saveErr != nil {
			log.Errorw("failed to persist provisioning ledger", "transaction_id", r.transactionID, "error", saveErr)
		}
		return r.result(), fmt.Errorf("failed to persist project record: %w", err)
	}

	if !r.inviteSent {
		if err := s.mailer.SendInvite(ctx, ev.CustomerEmail, ev.CustomerName, r.trackerURL, r.chatURL); err != nil {
			log.Errorw("invite mail failed",
				"transaction_id", r.transactionID, "email", ev.CustomerEmail, "error", err)
			r.fail(StepInviteEmail, err)
		} else {
			r.inviteSent = true
		}
	}

	if err := s.saveRecord(ctx, r); err != nil {
		return nil, fmt.Errorf("failed to persist provisioning ledger: %w", err)
	}

	log.Infow("fulfillment completed",
		"transaction_id", r.transactionID,
		"project_key", r.projectKey,
		"failed_steps", len(r.errs),
	)
	return r.result(), nil
}

func (r *run) result() *types.ProvisioningResult {
	return &types.ProvisioningResult{
		TransactionID:  r.transactionID,
		ProjectKey:     r.projectKey,
		TrackerURL:     r.trackerURL,
		ChatChannelURL: r.chatURL,
		InviteSent:     r.inviteSent,
		Errors:         r.errs,
	}
}

func (s *Service) describePurchase(ev *types.PaymentConfirmed) string {
	if ev.PlanID != "" {
		if plan := s.cfg.GetPlanByID(ev.PlanID); plan != nil {
			return plan.Name
		}
		return ev.PlanID
	}
	names := make([]string, 0, len(ev.DeliverableIDs))
	for _, id := range ev.DeliverableIDs {
		if d := s.cfg.GetDeliverableByID(id); d != nil {
			names = append(names, d.Name)
		} else {
			names = append(names, id)
		}
	}
	return strings.Join(names, ", ")
}

func (s *Service) saveRecord(ctx context.Context, r *run) error {
	errs := r.errs
	if errs == nil {
		errs = []types.ProvisionStepError{}
	}
	return s.records.Save(ctx, &models.ProvisioningRecord{
		ID:            tool.GenerateUUIDV7(),
		TransactionID: r.transactionID,
		ProjectKey:    r.projectKey,
		TrackerURL:    r.trackerURL,
		ChatURL:       r.chatURL,
		InviteSent:    r.inviteSent,
		Errors:        datatypes.NewJSONType(errs),
	})
}
