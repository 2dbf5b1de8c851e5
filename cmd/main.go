package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	_ "time/tzdata"

	"github.com/poofware/submission-service/internal/app"
	"github.com/poofware/submission-service/internal/config"
	"github.com/poofware/submission-service/internal/controllers"
	"github.com/poofware/submission-service/internal/forms"
	"github.com/poofware/submission-service/internal/middleware"
	"github.com/poofware/submission-service/internal/routes"
	"github.com/poofware/submission-service/internal/utils"
)

func main() {
	utils.InitLogger(config.AppName)

	// 1) Config
	cfg := config.LoadConfig()

	// 2) Core application (dispatcher, rate limiter, services)
	application := app.NewApp(cfg)
	defer application.Close()

	// 3) Router + middleware chain
	handler := newHandler(application)

	// 4) Serve until SIGINT / SIGTERM
	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: handler,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		utils.Logger.Infof("Starting %s on :%s (%s)", cfg.AppName, cfg.AppPort, cfg.Env)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Logger.WithError(err).Error("Server error")
		}
		return
	case <-ctx.Done():
		utils.Logger.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Logger.WithError(err).Error("Graceful shutdown failed")
		return
	}
	utils.Logger.Info("Server stopped")
}

// newHandler wires routes, per-route rate limiting and the global
// middleware chain.
func newHandler(application *app.App) http.Handler {
	cfg := application.Config
	proxies := cfg.TrustedProxyNetworks()

	// Controllers
	healthCtrl := controllers.NewHealthController(application, utils.Logger)
	formCtrl := controllers.NewFormController(application.SubmissionService, cfg.DevMode())

	// Router
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(controllers.NotFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(controllers.MethodNotAllowed)

	router.HandleFunc(routes.Health, healthCtrl.HealthCheckHandler).Methods(http.MethodGet)
	router.Handle(routes.Metrics, promhttp.Handler()).Methods(http.MethodGet)

	for _, form := range forms.All() {
		limit := middleware.RateLimit(application.RateLimiter, form.Path, proxies, utils.Logger)
		router.Handle(form.Path, limit(formCtrl.Handler(form))).Methods(http.MethodPost)
	}

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins(),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", utils.RequestIDHeader},
		ExposedHeaders:   []string{utils.RequestIDHeader, "Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
	})

	// innermost first
	var h http.Handler = router
	h = middleware.Sanitize(h)
	h = middleware.BodyLimit(cfg.BodyLimitBytes)(h)
	h = c.Handler(h)
	h = middleware.SecurityHeaders(h)
	h = middleware.RequestLogger(utils.Logger, proxies)(h)
	h = middleware.RequestID(h)
	return h
}
