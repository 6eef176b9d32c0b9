package webhookevent

import (
	"github.com/lumenworks/storefront/pkg/config"

	"go.uber.org/fx"
)

func newStripeParser(cfg *config.Config) *StripeParser {
	return NewStripeParser(cfg.Stripe.WebhookSecret)
}

func newPayPalParser(cfg *config.Config) *PayPalParser {
	return NewPayPalParser(cfg.PayPal.WebhookSecret)
}

var Module = fx.Options(
	fx.Provide(newStripeParser),
	fx.Provide(newPayPalParser),
	fx.Provide(NewGuard),
	fx.Provide(NewService),
)
