package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/erazemk/inventario/internal/api"
	"github.com/erazemk/inventario/internal/auth"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the local JSON bridge for the UI shell",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, done, err := openApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer done()

		// A new secret per launch invalidates tokens from earlier runs.
		secret, err := auth.NewSecret()
		if err != nil {
			return fmt.Errorf("generating session secret: %w", err)
		}
		token, err := auth.GenerateToken(secret)
		if err != nil {
			return fmt.Errorf("generating session token: %w", err)
		}
		tokenPath := filepath.Join(a.Config.DataDir, auth.TokenFile)
		if err := auth.WriteTokenFile(tokenPath, token); err != nil {
			return err
		}

		server := &http.Server{
			Addr:              a.Config.Addr,
			Handler:           api.NewRouter(a.Commands, secret),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		}

		eg, ctx := errgroup.WithContext(cmd.Context())
		eg.Go(func() error {
			slog.Info("server starting", "addr", server.Addr, "token_file", tokenPath)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		})
		eg.Go(func() error {
			<-ctx.Done()
			slog.Info("shutting down server")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				slog.Error("server forced to shutdown", "error", err)
			}
			return nil
		})
		if err := eg.Wait(); err != nil {
			return err
		}
		slog.Info("server stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&addrOverride, "addr", "", "listen address (loopback only)")
}
