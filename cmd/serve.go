package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/retail-presence/internal/api"
	"github.com/sells-group/retail-presence/internal/config"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		env, err := initEnv(cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		if _, err := env.Store.Load(ctx); err != nil {
			return eris.Wrap(err, "initial load")
		}

		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		defer signal.Stop(hup)
		go reloadOnSignal(ctx, env, hup)

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           buildRouter(cfg, env),
			ReadHeaderTimeout: 10 * time.Second,
		}
		return runServer(ctx, srv, time.Duration(cfg.Server.ShutdownTimeoutSecs)*time.Second)
	},
}

// buildRouter wires the API over env.
func buildRouter(c *config.Config, env *appEnv) http.Handler {
	apiCfg := api.Config{
		APIPrefix:       c.Server.APIPrefix,
		CORSOrigins:     c.Server.CORSOrigins,
		RateLimitRPM:    c.Server.RateLimitRPM,
		ReloadPerMinute: c.Server.ReloadPerMinute,
	}
	h := api.NewHandler(apiCfg, env.Service, env.Store, env.Store, env.Images)
	return api.NewRouter(apiCfg, h)
}

// reloadOnSignal reloads the snapshot on every SIGHUP until ctx ends. A
// failed reload keeps serving the previous snapshot.
func reloadOnSignal(ctx context.Context, env *appEnv, sig <-chan os.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sig:
			snap, err := env.Store.Load(ctx)
			if err != nil {
				zap.L().Error("reload on SIGHUP failed", zap.Error(err))
				continue
			}
			zap.L().Info("reloaded on SIGHUP", zap.String("snapshot_id", snap.ID))
		}
	}
}

// runServer serves until ctx is cancelled, then drains in-flight requests
// for at most timeout.
func runServer(ctx context.Context, srv *http.Server, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return eris.Wrap(err, "server listen")
		}
		return nil
	case <-ctx.Done():
	}

	zap.L().Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "server shutdown")
	}
	return nil
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
