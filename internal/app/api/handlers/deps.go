package handlers

import (
	"github.com/lumenworks/storefront/internal/app/service/fulfillment"
	"github.com/lumenworks/storefront/internal/app/service/gateway"
	"github.com/lumenworks/storefront/internal/app/service/payment"
	"github.com/lumenworks/storefront/internal/app/service/project"
	"github.com/lumenworks/storefront/internal/app/service/statistics"
	"github.com/lumenworks/storefront/internal/app/service/subscription"
	"github.com/lumenworks/storefront/internal/app/service/webhookevent"
	"github.com/lumenworks/storefront/pkg/config"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// RouteDeps bundles everything the route groups need so registration
// signatures stay flat.
type RouteDeps struct {
	fx.In

	Config        *config.Config
	Selector      *gateway.Selector
	Orchestrator  fulfillment.Orchestrator
	Subscriptions subscription.Manager
	Projects      project.Manager
	Payments      payment.Recorder
	Dispatcher    webhookevent.Dispatcher
	Stats         *statistics.Service
	Log           *zap.SugaredLogger
}
