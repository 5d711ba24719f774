package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cosmossdk.io/log"
	"github.com/cometbft/cometbft/abci/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"spellblock/internal/app"
	"spellblock/internal/config"
	"spellblock/internal/feed"
	"spellblock/internal/httpapi"
	"spellblock/internal/state"
)

func newStartCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Run the ABCI application and the read-only HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			logger, err := config.NewLogger(cfg.Log, os.Stderr)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runNode(ctx, cfg, logger)
		},
	}

	flags := cmd.Flags()
	flags.String("addr", "tcp://127.0.0.1:26658", "ABCI listen address")
	flags.String("transport", "socket", "ABCI transport (socket|grpc)")
	flags.String("http-addr", "127.0.0.1:8080", "read API listen address (empty disables)")
	flags.String("db-backend", "goleveldb", "database backend")
	bindFlags(v, flags, map[string]string{
		"abci.addr":      "addr",
		"abci.transport": "transport",
		"http.addr":      "http-addr",
		"db.backend":     "db-backend",
	})
	return cmd
}

func runNode(ctx context.Context, cfg config.Config, logger log.Logger) error {
	db, err := state.OpenDB(cfg.Home, cfg.DB.Backend)
	if err != nil {
		return err
	}
	store := state.NewStore(db)
	defer func() { _ = store.Close() }()

	hub := feed.NewBroadcaster()
	a, err := app.New(store, logger, app.WithFeed(hub))
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}

	srv, err := server.NewServer(cfg.ABCI.Addr, cfg.ABCI.Transport, a)
	if err != nil {
		return fmt.Errorf("create abci server: %w", err)
	}
	if err := srv.Start(); err != nil {
		return fmt.Errorf("abci server start: %w", err)
	}
	defer func() { _ = srv.Stop() }()
	logger.Info("abci server listening", "addr", cfg.ABCI.Addr, "transport", cfg.ABCI.Transport)

	errCh := make(chan error, 1)
	var httpSrv *http.Server
	if cfg.HTTP.Addr != "" {
		httpSrv = &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           httpapi.NewRouter(httpapi.NewHandler(a, hub, logger)),
			ReadHeaderTimeout: 10 * time.Second,
			BaseContext:       func(net.Listener) context.Context { return ctx },
		}
		go func() {
			logger.Info("http api listening", "addr", cfg.HTTP.Addr)
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("http api: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		return err
	}

	if httpSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http api shutdown", "err", err)
		}
	}
	return nil
}
