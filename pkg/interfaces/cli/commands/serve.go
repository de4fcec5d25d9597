package commands

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vsinha/methodtree/pkg/infrastructure/logging"
	"github.com/vsinha/methodtree/pkg/interfaces/api"
)

func newServeCommand(a *app) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve BOM and routing views over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			svc, closeFn, err := a.service(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			handler := api.NewMethodHandler(svc, a.cfg.Routing.DefaultQuantity, logging.Component(a.logger, "api"))
			router := api.NewRouter(handler, logging.Component(a.logger, "http"), a.cfg.Server.Mode)

			srv := &http.Server{
				Addr:         a.cfg.Server.Address(),
				Handler:      router,
				ReadTimeout:  a.cfg.Server.ReadTimeout,
				WriteTimeout: a.cfg.Server.WriteTimeout,
			}

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("Server starting",
					zap.String("addr", srv.Addr),
					zap.String("source", a.cfg.Source.Type))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return err
				}
			case <-ctx.Done():
			}

			a.logger.Info("Shutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.logger.Error("Server forced to shutdown", zap.Error(err))
				return err
			}

			a.logger.Info("Server exited")
			return nil
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "listen port (default from server.port)")
	return cmd
}
