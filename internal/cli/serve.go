package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"rentexpress/internal/access"
	"rentexpress/internal/jobs"
	"rentexpress/internal/router"

	"github.com/spf13/cobra"
)

var noJobs bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and the scheduled jobs",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&noJobs, "no-jobs", false, "do not start the reminder and lease-expiry scheduler")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if a.cfg.Jobs.Enabled && !noJobs {
		runner := &jobs.Runner{
			Charges:    a.svc.Charges,
			Leases:     a.svc.Leases,
			WindowDays: a.cfg.Jobs.ReminderWindowDays,
			Logger:     a.logger,
		}
		sched, err := jobs.Schedule(a.cfg.Jobs, runner)
		if err != nil {
			return err
		}
		sched.Start()
		defer func() { <-sched.Stop().Done() }()
	}

	verifier := access.NewVerifier(a.cfg.JWT.Secret, a.db, a.cfg.JWT.VerifyWithStore)
	srv := &http.Server{
		Addr:              a.cfg.Addr(),
		Handler:           router.SetupRouter(a.cfg, a.svc, verifier, a.logger),
		ReadTimeout:       a.cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      a.cfg.Server.WriteTimeout,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("run server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
