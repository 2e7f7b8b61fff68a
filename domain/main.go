package domain

import (
	"github.com/kuboai/waitlist-api/config"
	"github.com/kuboai/waitlist-api/domain/monitoring"
	"github.com/kuboai/waitlist-api/domain/waitlist"
)

func SetupCoreDomain(appConfig *config.ApplicationConfig) {
	// config.Cache is a superset of waitlist.Cache; keep a nil interface nil.
	var waitlistCache waitlist.Cache
	if appConfig.Cache != nil {
		waitlistCache = appConfig.Cache
	}

	var monitoringCache monitoring.MonitoringCache
	if appConfig.Cache != nil {
		monitoringCache = appConfig.Cache
	}

	appConfig.RouterService.MountController(
		monitoring.NewMonitoringControllerFactory(appConfig.DB, appConfig.Logger, monitoringCache).CreateController(),
	)
	appConfig.RouterService.MountController(
		waitlist.NewWaitlistServiceFactory(appConfig.DB, appConfig.Logger, waitlistCache, appConfig.Mailer).CreateController(),
	)
}
