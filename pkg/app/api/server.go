// Package api implements the API server process.
package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/greenpay/aptopay-middleware/pkg/aptos"
	apphttp "github.com/greenpay/aptopay-middleware/pkg/app/http"
	"github.com/greenpay/aptopay-middleware/pkg/config"
	paymentservice "github.com/greenpay/aptopay-middleware/pkg/payment/service"
	"github.com/greenpay/aptopay-middleware/pkg/paymentstore"
	"github.com/greenpay/aptopay-middleware/pkg/pgutil"
	reconcilerpkg "github.com/greenpay/aptopay-middleware/pkg/reconciler"
	requestservice "github.com/greenpay/aptopay-middleware/pkg/request/service"
	"github.com/greenpay/aptopay-middleware/pkg/requeststore"
	"github.com/greenpay/aptopay-middleware/pkg/rewards"
	userservice "github.com/greenpay/aptopay-middleware/pkg/user/service"
	"github.com/greenpay/aptopay-middleware/pkg/userstore"
)

const defaultRequestTimeout = 60

// Server holds cfg to init the api server.
type Server struct {
	cfg *config.APIServerConfig
}

// NewServer initializes new api server.
func NewServer(cfg *config.APIServerConfig) *Server {
	return &Server{cfg: cfg}
}

func (s *Server) Run() error {
	if s.cfg == nil {
		return fmt.Errorf("api server config is nil")
	}
	cfg := s.cfg

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting API server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
	)

	db, err := pgutil.ConnectDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() { _ = db.Close() }()

	logger.Info("Connected to database",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.Database),
	)

	paymentStore := paymentstore.NewStore(db)
	requestStore := requeststore.NewStore(db)
	userStore := userstore.NewStore(db)

	chainClient := s.openChainClient(logger)

	rec := reconcilerpkg.New(paymentStore, requestStore, chainClient, logger)
	s.runInitialReconcile(ctx, rec, logger)

	stopReconcile := s.startPeriodicReconcile(rec, logger)
	// We will call stopReconcile explicitly after ServeAndWait returns for deterministic shutdown order.
	// Keep this defer as a safety net.
	defer stopReconcile()

	rewardService := rewards.NewService(
		userStore,
		s.openRewardsClient(logger),
		cfg.Rewards.CampaignID,
		cfg.Rewards.Enabled,
		logger,
	)

	paymentService := paymentservice.NewLog(
		paymentservice.NewService(paymentStore, cfg.Token.Decimals, logger), logger)
	requestService := requestservice.NewLog(
		requestservice.NewService(requestStore, rewardService, cfg.Token.Decimals, logger), logger)
	userService := userservice.NewLog(
		userservice.NewService(userStore, logger), logger)

	router := s.setupRouter(paymentService, requestService, userService, rewardService, logger)

	err = apphttp.ServeAndWait(ctx, router, logger, &cfg.Server)

	// Stop background work before deferred DB closes kick in.
	stopReconcile()

	return err
}

// openChainClient returns nil when no fullnode is configured; the reconciler
// then skips on-chain resolution.
func (s *Server) openChainClient(logger *zap.Logger) aptos.Client {
	if s.cfg.Aptos.NodeURL == "" {
		logger.Info("No Aptos fullnode configured, on-chain resolution disabled")
		return nil
	}

	logger.Info("Using Aptos fullnode", zap.String("node_url", s.cfg.Aptos.NodeURL))
	return aptos.NewClient(s.cfg.Aptos.NodeURL, s.cfg.Aptos.RequestTimeout)
}

func (s *Server) openRewardsClient(logger *zap.Logger) rewards.Client {
	if !s.cfg.Rewards.Enabled {
		return nil
	}

	apiKey := os.Getenv(s.cfg.Rewards.APIKeyEnv)
	if apiKey == "" {
		logger.Warn("Rewards enabled but API key env is empty, rewards disabled",
			zap.String("env", s.cfg.Rewards.APIKeyEnv))
		return nil
	}

	logger.Info("Rewards attribution enabled", zap.String("api_url", s.cfg.Rewards.APIURL))
	return rewards.NewClient(s.cfg.Rewards.APIURL, apiKey, s.cfg.Rewards.RequestTimeout)
}

func (s *Server) runInitialReconcile(
	ctx context.Context,
	reconciler *reconcilerpkg.Reconciler,
	logger *zap.Logger,
) {
	if s.cfg.Reconciliation.InitialTimeout <= 0 {
		return
	}

	logger.Info("Running initial ledger reconciliation",
		zap.Duration("timeout", s.cfg.Reconciliation.InitialTimeout),
	)

	startupCtx, cancel := context.WithTimeout(ctx, s.cfg.Reconciliation.InitialTimeout)
	defer cancel()

	if err := reconciler.ReconcileAll(startupCtx); err != nil {
		logger.Warn("Initial reconciliation failed (will retry periodically)", zap.Error(err))
		return
	}

	logger.Info("Initial ledger reconciliation completed")
}

func (s *Server) startPeriodicReconcile(
	reconciler *reconcilerpkg.Reconciler,
	logger *zap.Logger,
) func() {
	if s.cfg.Reconciliation.Interval <= 0 {
		return func() {}
	}

	reconciler.StartPeriodicReconciliation(s.cfg.Reconciliation.Interval)

	// Return stopper for deterministic shutdown ordering.
	return func() { reconciler.Stop() }
}

func (s *Server) setupRouter(
	paymentService paymentservice.Service,
	requestService requestservice.Service,
	userService userservice.Service,
	rewardService rewards.Service,
	logger *zap.Logger,
) chi.Router {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Second * defaultRequestTimeout))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	userservice.RegisterRoutes(r, userService, logger)
	paymentservice.RegisterRoutes(r, paymentService, logger)
	requestservice.RegisterRoutes(r, requestService, logger)
	rewards.RegisterRoutes(r, rewardService, logger)

	return r
}
