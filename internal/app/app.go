package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/lumea-beauty/storefront/internal/backend"
	"github.com/lumea-beauty/storefront/internal/catalog"
	"github.com/lumea-beauty/storefront/internal/domain/cart"
	"github.com/lumea-beauty/storefront/internal/handler"
	"github.com/lumea-beauty/storefront/internal/notify"
	"github.com/lumea-beauty/storefront/internal/stats"
	"github.com/lumea-beauty/storefront/internal/storage/memory"
	"github.com/lumea-beauty/storefront/internal/storage/postgres"
	"github.com/lumea-beauty/storefront/internal/storage/redis"
	"github.com/lumea-beauty/storefront/pkg/health"
	"github.com/lumea-beauty/storefront/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("cart_storage", cfg.CartStorage))

	// Static product catalog, embedded in the binary.
	products, err := catalog.Load()
	if err != nil {
		return errors.Wrap(err, "load catalog")
	}
	lg.Info("Catalog loaded", zap.Int("products", len(products.List())))

	healthSvc := health.New()
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))

	// Cart storage backend.
	storage, cleanup, err := newCartStorage(ctx, cfg, healthSvc)
	if err != nil {
		return errors.Wrap(err, "create cart storage")
	}
	defer cleanup()

	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Cart change fan-out + per-session stores.
	broadcast := notify.New()
	stores := cart.NewStores(storage, broadcast, lg.Named("cart"))

	// Optional payment status relay.
	var payments *backend.Client
	if cfg.BackendBaseURL != "" {
		payments, err = backend.NewClient(cfg.BackendBaseURL)
		if err != nil {
			return errors.Wrap(err, "create backend client")
		}
	} else {
		lg.Info("Payment status relay disabled: no backend base URL")
	}

	// Unique visitor estimate, logged periodically.
	visitors := stats.NewVisitors(1_000_000, 0.01)
	visitors.LogPeriodically(ctx, time.Minute, lg.Named("stats"))

	h := handler.New(products, stores, broadcast, payments)
	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	h.Register(mux)

	// No WriteTimeout: the SSE feed holds its response open indefinitely.
	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.Session(httpmiddleware.SessionConfig{
				CookieName: cfg.Session.CookieName,
				TTL:        cfg.Session.TTL,
				Secure:     cfg.Session.Secure,
			}),
			observeVisitors(visitors),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("storefront-api", m.TracerProvider(), m.MeterProvider()),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

// newCartStorage builds the configured cart backend and registers its
// readiness probe. The returned cleanup closes backend connections.
func newCartStorage(ctx context.Context, cfg *Config, healthSvc *health.Health) (cart.Storage, func(), error) {
	switch cfg.CartStorage {
	case "memory":
		return memory.New(), func() {}, nil

	case "redis":
		store, err := redis.New(ctx, cfg.RedisURL, cfg.CartTTL)
		if err != nil {
			return nil, nil, errors.Wrap(err, "connect redis")
		}
		healthSvc.AddReadinessCheck("redis", 5*time.Second, health.PingCheck(store))
		return store, func() { _ = store.Close() }, nil

	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, errors.Wrap(err, "create db pool")
		}
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, errors.Wrap(err, "run migrations")
		}
		healthSvc.AddReadinessCheck("postgres", 5*time.Second, health.PingCheck(pool))
		return postgres.NewCartStorage(pool), pool.Close, nil

	default:
		return nil, nil, errors.Errorf("unknown cart storage backend %q", cfg.CartStorage)
	}
}

// observeVisitors feeds each request's session into the unique visitor
// estimate. Runs after the session middleware so the ID is always set.
func observeVisitors(visitors *stats.Visitors) httpmiddleware.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id := httpmiddleware.SessionFromContext(r.Context()); id != "" {
				visitors.Observe(id)
			}
			next.ServeHTTP(w, r)
		})
	}
}
