package app

import (
	"context"
	"time"

	"github.com/poofware/submission-service/internal/config"
	"github.com/poofware/submission-service/internal/mailer"
	"github.com/poofware/submission-service/internal/ratelimit"
	"github.com/poofware/submission-service/internal/services"
	"github.com/poofware/submission-service/internal/utils"
)

const redisPingTimeout = 3 * time.Second

// App struct holds references to config, shared clients & services.
type App struct {
	Config            *config.Config
	Dispatcher        mailer.Dispatcher
	SubmissionService services.SubmissionService
	RateLimiter       *ratelimit.SlidingWindow

	rateStore ratelimit.Store
}

// NewApp builds the process-wide dependencies once; every request shares
// the same dispatcher and rate-limit store.
func NewApp(cfg *config.Config) *App {
	utils.Logger.Info("Initializing submission-service App")

	dispatcher, err := mailer.New(cfg.MailerOptions())
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to create mail dispatcher")
	}
	utils.Logger.Infof("Mail provider: %s", dispatcher.Provider())

	store := newRateStore(cfg)
	limiter, err := ratelimit.NewSlidingWindow(store, cfg.RateLimitMax, cfg.RateLimitWindow)
	if err != nil {
		_ = store.Close()
		utils.Logger.WithError(err).Fatal("Failed to create rate limiter")
	}
	utils.Logger.Infof("Rate limit: %d requests per %s per client", limiter.Limit(), limiter.Window())

	return &App{
		Config:            cfg,
		Dispatcher:        dispatcher,
		SubmissionService: services.NewSubmissionService(dispatcher, cfg.AdminEmail, utils.Logger),
		RateLimiter:       limiter,
		rateStore:         store,
	}
}

// newRateStore prefers Redis when configured and reachable; otherwise
// counters are kept per process.
func newRateStore(cfg *config.Config) ratelimit.Store {
	memory := func() ratelimit.Store {
		return ratelimit.NewMemoryStore(ratelimit.WithMaxAge(cfg.RateLimitWindow))
	}
	if cfg.RedisURL == "" {
		return memory()
	}

	rs, err := ratelimit.NewRedisStore(cfg.RedisURL)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Invalid REDIS_URL")
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := rs.Ping(ctx); err != nil {
		utils.Logger.WithError(err).Warn("Redis unreachable, using in-memory rate limit counters")
		_ = rs.Close()
		return memory()
	}
	utils.Logger.Info("Rate limit counters stored in Redis")
	return rs
}

func (a *App) Close() {
	utils.Logger.Info("submission-service app shutting down.")
	if a.rateStore != nil {
		if err := a.rateStore.Close(); err != nil {
			utils.Logger.WithError(err).Warn("Failed to close rate limit store")
		}
	}
}
