package fulfillment

import (
	"github.com/lumenworks/storefront/internal/platform/chat"
	"github.com/lumenworks/storefront/internal/platform/mailer"
	"github.com/lumenworks/storefront/internal/platform/tracker"
	"github.com/lumenworks/storefront/pkg/config"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

func newTrackerClient(cfg *config.Config, log *zap.SugaredLogger) TrackerClient {
	return tracker.New(tracker.Options{
		BaseURL:  cfg.Tracker.BaseURL,
		APIToken: cfg.Tracker.APIToken,
	}, log)
}

func newChatClient(cfg *config.Config, log *zap.SugaredLogger) ChatClient {
	return chat.New(chat.Options{
		BaseURL:  cfg.Chat.BaseURL,
		APIToken: cfg.Chat.APIToken,
	}, log)
}

func newInviteMailer(cfg *config.Config, log *zap.SugaredLogger) InviteMailer {
	return mailer.New(mailer.Options{
		BaseURL:     cfg.Mailer.BaseURL,
		APIToken:    cfg.Mailer.APIToken,
		FromAddress: cfg.Mailer.FromAddress,
	}, log)
}

var Module = fx.Options(
	fx.Provide(newTrackerClient),
	fx.Provide(newChatClient),
	fx.Provide(newInviteMailer),
	fx.Provide(NewService),
)
