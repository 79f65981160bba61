package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/splitme/splitme/internal/auth"
	"github.com/splitme/splitme/internal/metrics"
	"github.com/splitme/splitme/internal/middleware"
	"github.com/splitme/splitme/internal/reconcile"
	"github.com/splitme/splitme/internal/service"
	"github.com/splitme/splitme/internal/storage"
	"github.com/splitme/splitme/internal/storage/sqlite"
	"github.com/splitme/splitme/pkg/api/apiconnect"
)

const apiPrefix = "/splitme.v1."

func newServeCommand(a *app) *cobra.Command {
	var noSync bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the API server and static front end",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), a, !noSync)
		},
	}
	cmd.Flags().BoolVar(&noSync, "no-sync", false, "do not reconcile contract events in the background")

	return cmd
}

func runServe(ctx context.Context, a *app, sync bool) error {
	cfg, logger := a.cfg, a.logger
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	// Initialize SQLite storage
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	logger.Info("Storage initialized", "database", cfg.DBPath)

	if sync {
		stop, err := startSync(ctx, a, store)
		if err != nil {
			// The API works without the chain; balances are then local only.
			logger.Warn("Contract sync disabled", "error", err)
		} else {
			defer stop()
		}
	}

	handler, err := newHandler(a, store)
	if err != nil {
		return err
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	stopCleanup := make(chan struct{})
	defer close(stopCleanup)
	limiter.StartCleanup(time.Minute, stopCleanup)

	// Add rate limiting, logging and CORS middleware
	wrapped := limiter.Handler(loggingMiddleware(logger, corsMiddleware(handler)))

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           h2c.NewHandler(wrapped, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Connect server starting", "address", server.Addr, "url", fmt.Sprintf("http://localhost%s", server.Addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newHandler registers the Connect services, metrics and static files.
func newHandler(a *app, store storage.Store) (http.Handler, error) {
	cfg := a.cfg

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	authenticator := auth.NewWalletAuthenticator(auth.NewChallengeStore(auth.DefaultChallengeTTL), store)

	// Auth service accepts anonymous callers; the rest require a session.
	public := connect.WithInterceptors(middleware.OptionalAuth(jwtManager), middleware.LoggingInterceptor())
	private := connect.WithInterceptors(middleware.RequireAuth(jwtManager), middleware.LoggingInterceptor())

	mux := http.NewServeMux()

	authPath, authHandler := apiconnect.NewAuthServiceHandler(
		service.NewAuthService(authenticator, jwtManager, store, a.logger), public)
	mux.Handle(authPath, authHandler)

	groupPath, groupHandler := apiconnect.NewGroupServiceHandler(service.NewGroupService(store), private)
	mux.Handle(groupPath, groupHandler)

	expensePath, expenseHandler := apiconnect.NewExpenseServiceHandler(service.NewExpenseService(store), private)
	mux.Handle(expensePath, expenseHandler)

	bookPath, bookHandler := apiconnect.NewAddressBookServiceHandler(service.NewAddressBookService(store), private)
	mux.Handle(bookPath, bookHandler)

	mux.Handle("/metrics", metrics.Handler())

	// Serve static files
	staticDir, err := filepath.Abs(cfg.StaticPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve static path: %w", err)
	}
	a.logger.Info("Serving static files", "path", staticDir)
	mux.Handle("/", staticHandler(staticDir))

	return mux, nil
}

// staticHandler serves the front end, falling back to index.html for
// unknown paths so client-side routes work.
func staticHandler(staticDir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Unknown Connect procedures must not get the front end.
		if strings.HasPrefix(r.URL.Path, apiPrefix) {
			http.NotFound(w, r)
			return
		}

		urlPath := r.URL.Path
		if urlPath == "/" {
			urlPath = "/index.html"
		}

		filePath := filepath.Join(staticDir, filepath.Clean("/"+urlPath))
		if info, err := os.Stat(filePath); err != nil || info.IsDir() {
			http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
			return
		}

		http.ServeFile(w, r, filePath)
	})
}

// startSync runs the reconciler on its schedule until the returned func is
// called.
func startSync(ctx context.Context, a *app, store storage.Store) (func(), error) {
	env, err := a.dial(ctx)
	if err != nil {
		return nil, err
	}
	record, contracts, err := a.contracts(env)
	if err != nil {
		env.Close()
		return nil, err
	}

	r := reconcile.New(env.client, contracts.SplitMe, store, common.HexToAddress(record.SplitMeAddress),
		reconcile.Options{StartBlock: a.cfg.SyncStartBlock}, a.logger)
	scheduler, err := reconcile.NewScheduler(r, a.cfg.SyncSchedule, a.cfg.SyncTimeout, a.logger)
	if err != nil {
		env.Close()
		return nil, err
	}
	scheduler.Start()
	a.logger.Info("Contract sync started",
		"network", env.network.Name, "contract", record.SplitMeAddress, "schedule", a.cfg.SyncSchedule)

	return func() {
		<-scheduler.Stop().Done()
		env.Close()
	}, nil
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		logger.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
