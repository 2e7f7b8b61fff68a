package waitlist

import (
	"net/http"
	"time"

	"github.com/kuboai/waitlist-api/config/router"
	"github.com/kuboai/waitlist-api/internal/i18n"
	"github.com/kuboai/waitlist-api/internal/log"
	"github.com/kuboai/waitlist-api/internal/mailer"
	apperrors "github.com/kuboai/waitlist-api/pkg/errors"
	"github.com/kuboai/waitlist-api/pkg/factory"
	"github.com/kuboai/waitlist-api/pkg/ratelimit"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

const (
	// signupRequestsPerMinute keeps the public form usable while blunting scripted signups.
	signupRequestsPerMinute = 30
	// broadcastRequestsPerMinute: the launch broadcast is an admin action, once is plenty.
	broadcastRequestsPerMinute = 2
	// statsRequestsPerMinute backs the admin dashboard's polling.
	statsRequestsPerMinute = 60
)

func NewWaitlistController(
	db *gorm.DB,
	logger *log.Logger,
	cache Cache,
	mail mailer.Mailer,
) *router.RESTController {

	return router.NewVersionedRESTController(
		"WaitlistController",
		"v1",
		"/waitlist",
		func(rs *router.RouterService, c *router.RESTController) {
			service := NewWaitlistServiceFactory(db, logger, cache, mail).CreateService()

			rs.AddPostHandler(c, createRateLimiter(signupRequestsPerMinute, cache), "", joinWaitlistHandler(service))
			rs.AddPostHandler(c, createRateLimiter(broadcastRequestsPerMinute, cache), "/notify", notifyAllUsersHandler(service))
			rs.AddGetHandler(c, createRateLimiter(statsRequestsPerMinute, cache), "/stats", getStatsHandler(service))
			rs.AddGetHandler(c, nil, "", getAllUsersHandler(service))
		},
	)
}

// createRateLimiter builds a per-route limiter through the shared factory so
// a configured Redis cache upgrades it from in-memory to distributed.
func createRateLimiter(requestsPerMinute int, cache Cache) ratelimit.RateLimiter {
	var factoryCache factory.Cache
	if cache != nil {
		factoryCache = cache
	}

	return factory.NewDefaultRateLimiterFactory(requestsPerMinute, time.Minute, factoryCache, nil).CreateRateLimiter()
}

// requestLocale resolves the response language from ?lang= or Accept-Language.
func requestLocale(ctx *router.RequestContext) language.Tag {
	if lang := ctx.Query("lang"); lang != "" {
		return i18n.Match(lang)
	}
	return i18n.Match(ctx.GetHeader("Accept-Language"))
}

func joinWaitlistHandler(service WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		logger := router.GetLogger(ctx)
		loc := requestLocale(ctx)

		var req JoinWaitlistRequest

		if err := ctx.ShouldBindJSON(&req); err != nil {
			logger.Error("Failed to bind request", "error", err)

			validationErrors := apperrors.FormatValidationErrors(err, &req)
			if len(validationErrors) > 0 {
				return router.BadRequestResult("Invalid request payload", validationErrors)
			}

			return router.BadRequestResult("Invalid request body", nil)
		}

		requestCtx := i18n.WithLocale(ctx.Request.Context(), loc)

		user, err := service.JoinWaitlist(requestCtx, &req)
		if err != nil {
			return router.ErrorResult(
				apperrors.HTTPStatusCode(err),
				apperrors.GetHumanReadableMessage(err),
				nil,
			)
		}

		return &router.ServiceResult{
			StatusCode: http.StatusCreated,
			Data:       user,
			Message:    i18n.T(loc, i18n.MsgJoinSuccess),
		}
	}
}

func notifyAllUsersHandler(service WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		loc := requestLocale(ctx)
		requestCtx := i18n.WithLocale(ctx.Request.Context(), loc)

		stats, err := service.NotifyAllUsers(requestCtx)
		if err != nil {
			return router.ErrorResult(
				apperrors.HTTPStatusCode(err),
				apperrors.GetHumanReadableMessage(err),
				nil,
			)
		}

		return router.OKResult(stats, i18n.Tf(loc, i18n.MsgBroadcastSummary, stats.SuccessCount, stats.ErrorCount))
	}
}

func getStatsHandler(service WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		requestCtx := i18n.WithLocale(ctx.Request.Context(), requestLocale(ctx))

		stats, err := service.GetStats(requestCtx)
		if err != nil {
			return router.ErrorResult(
				apperrors.HTTPStatusCode(err),
				apperrors.GetHumanReadableMessage(err),
				nil,
			)
		}

		return router.OKResult(stats, "Waitlist stats retrieved successfully")
	}
}

func getAllUsersHandler(service WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		users, err := service.GetAllUsers(ctx.Request.Context())
		if err != nil {
			return router.ErrorResult(
				apperrors.HTTPStatusCode(err),
				apperrors.GetHumanReadableMessage(err),
				nil,
			)
		}

		return router.OKResult(users, "Waitlist users retrieved successfully")
	}
}
