package app

import (
	"time"

	"github.com/lumenworks/storefront/internal/app/api/server"
	"github.com/lumenworks/storefront/internal/app/service/fulfillment"
	"github.com/lumenworks/storefront/internal/app/service/gateway"
	"github.com/lumenworks/storefront/internal/app/service/payment"
	"github.com/lumenworks/storefront/internal/app/service/project"
	"github.com/lumenworks/storefront/internal/app/service/statistics"
	"github.com/lumenworks/storefront/internal/app/service/subscription"
	"github.com/lumenworks/storefront/internal/app/service/webhookevent"
	"github.com/lumenworks/storefront/internal/platform/db"
	"github.com/lumenworks/storefront/internal/platform/redis"
	"github.com/lumenworks/storefront/pkg/config"
	"github.com/lumenworks/storefront/pkg/logger"

	"go.uber.org/fx"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	redis.Module,
	server.Module,
	gateway.Module,
	payment.Module,
	project.Module,
	subscription.Module,
	fulfillment.Module,
	webhookevent.Module,
	statistics.Module,
)
