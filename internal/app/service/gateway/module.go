package gateway

import (
	"github.com/lumenworks/storefront/internal/platform/paypal"
	"github.com/lumenworks/storefront/pkg/config"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

func newPayPalClient(cfg *config.Config, log *zap.SugaredLogger) *paypal.Client {
	return paypal.New(paypal.Options{
		BaseURL:      cfg.PayPal.BaseURL,
		ClientID:     cfg.PayPal.ClientID,
		ClientSecret: cfg.PayPal.ClientSecret,
	}, log)
}

var Module = fx.Options(
	fx.Provide(newPayPalClient),
	fx.Provide(NewPayPalAdapter),
	fx.Provide(NewStripeAdapter),
	fx.Provide(NewSelector),
)
