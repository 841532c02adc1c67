package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/mbjewelry/appraisal-server/internal/api"
	"github.com/mbjewelry/appraisal-server/internal/config"
	"github.com/mbjewelry/appraisal-server/internal/logger"
	"github.com/mbjewelry/appraisal-server/internal/ratelimit"
	"github.com/mbjewelry/appraisal-server/internal/service"
)

// LoginLimiterHandle wraps the login rate limiter with shutdown capability.
type LoginLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *LoginLimiterHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideLoginLimiter provides the per-IP login rate limiter.
func ProvideLoginLimiter(i do.Injector) (*LoginLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	return &LoginLimiterHandle{
		KeyedRateLimiter: ratelimit.New(cfg.Login.RateLimit, cfg.Login.RateBurst),
	}, nil
}

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	authService := do.MustInvoke[*service.AuthService](i)
	valuationService := do.MustInvoke[*service.ValuationService](i)
	calculationService := do.MustInvoke[*service.CalculationService](i)
	limiterHandle := do.MustInvoke[*LoginLimiterHandle](i)

	handler := api.NewServer(
		storeHandle.Store,
		authService,
		valuationService,
		calculationService,
		limiterHandle.KeyedRateLimiter,
		cfg.Server.CORSOrigins,
		log.Logger,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr, "name", cfg.Server.Name)

	return &HTTPServerHandle{Server: srv}, nil
}
