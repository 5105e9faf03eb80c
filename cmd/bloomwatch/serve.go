package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/samijaber1/bloomwatch/internal/api"
	"github.com/samijaber1/bloomwatch/internal/metrics"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve stored analyses over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := setup(true)
			if err != nil {
				return err
			}
			defer d.close()

			if d.store == nil {
				return fmt.Errorf("serve needs a database in the configuration")
			}

			addr := fmt.Sprintf("%s:%d", d.cfg.Host, d.cfg.Port)
			apiServer := api.NewServer(d.store, d.profiles, metrics.NewRecorder(), addr, d.logger)

			serverErrors := make(chan error, 1)
			go func() {
				serverErrors <- apiServer.Start()
			}()

			shutdown := make(chan os.Signal, 1)
			signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

			select {
			case err := <-serverErrors:
				return fmt.Errorf("server error: %w", err)

			case sig := <-shutdown:
				d.logger.Info("received signal", zap.String("signal", sig.String()))

				ctx, cancel := context.WithTimeout(context.Background(), d.cfg.GracefulShutdownTimeout)
				defer cancel()

				if err := apiServer.Shutdown(ctx); err != nil {
					d.logger.Warn("error shutting down server", zap.Error(err))
				}
				d.logger.Info("shutdown complete")
			}
			return nil
		},
	}

	return cmd
}
