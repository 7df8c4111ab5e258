package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-flatcms/internal/logging"
)

const shutdownTimeout = 5 * time.Second

func newCmdServe() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the site over HTTP",
		Long: `Serve pages and public assets. When cache.watch is enabled the
content index is rebuilt as files change.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.address)")

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, addr string) error {
	module, err := loadModule(cmd)
	if err != nil {
		return err
	}
	container := module.Container()
	cfg := container.Config
	logger := logging.ModuleLogger(container.LoggerProvider(), "flatcms.serve")

	if addr == "" {
		addr = cfg.Server.Address
	}
	server := &http.Server{
		Addr:         addr,
		Handler:      module.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	watcher, err := container.Watcher()
	if err != nil {
		return err
	}
	if watcher != nil {
		go func() {
			if err := watcher.Run(ctx); err != nil {
				logging.WithFields(logger, map[string]any{"error": err}).Error("serve.watcher.failed")
			}
		}()
	}

	errs := make(chan error, 1)
	go func() {
		errs <- server.ListenAndServe()
	}()
	fmt.Fprintf(cmd.ErrOrStderr(), "%s http://%s\n", color.GreenString("serving"), displayAddr(addr))

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	snap := module.Metrics()
	logging.WithFields(logger, map[string]any{
		"renders": snap.Renders,
		"errors":  snap.Errors,
	}).Info("serve.stopped")
	return nil
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
