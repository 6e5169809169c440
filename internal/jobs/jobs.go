// Package jobs runs the scheduled reminder and lease-expiry sweeps.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"rentexpress/internal/config"
	"rentexpress/internal/models"
	"rentexpress/internal/service"
	"rentexpress/internal/util"

	"github.com/robfig/cron/v3"
)

// Runner executes one sweep of each job.
type Runner struct {
	Charges    *service.ChargeService
	Leases     *service.LeaseService
	WindowDays int
	Logger     *slog.Logger
	Now        func() time.Time
}

// ReminderReport summarizes one reminder sweep.
type ReminderReport struct {
	Due     int
	Sent    int
	Skipped int
	Failed  int
}

// RunReminders sends the reminder email for every scheduled charge due
// within the window whose reminder has not gone out yet. A failed send
// leaves the reminder unsent so the next sweep retries it.
func (r *Runner) RunReminders(ctx context.Context) (ReminderReport, error) {
	var rep ReminderReport
	due, err := r.Charges.DueForReminder(ctx, r.now(), r.WindowDays)
	if err != nil {
		return rep, fmt.Errorf("find due charges: %w", err)
	}
	rep.Due = len(due)
	for _, c := range due {
		if ctx.Err() != nil {
			return rep, ctx.Err()
		}
		outcome, err := r.Charges.SendDue(ctx, c, models.NotifyReminder)
		if err != nil {
			rep.Failed++
			r.logger().WarnContext(ctx, "send reminder", "charge_id", c.ID, "err", err)
			continue
		}
		switch outcome {
		case service.OutcomeSent:
			rep.Sent++
		default:
			rep.Skipped++
		}
	}
	return rep, nil
}

// RunLeaseExpiry marks active leases whose end date has passed as expired.
func (r *Runner) RunLeaseExpiry(ctx context.Context) (int, error) {
	n, err := r.Leases.ExpireEnded(ctx, r.now().Format(util.DateLayout))
	if err != nil {
		return n, fmt.Errorf("expire leases: %w", err)
	}
	return n, nil
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// Schedule registers both sweeps on a new cron scheduler. The caller
// starts it and stops it on shutdown.
func Schedule(cfg config.JobsConfig, r *Runner) (*cron.Cron, error) {
	c := cron.New()
	log := r.logger()

	if _, err := c.AddFunc(cfg.ReminderCron, func() {
		rep, err := r.RunReminders(context.Background())
		if err != nil {
			log.Error("reminder sweep failed", "err", err)
			return
		}
		log.Info("reminder sweep done", "due", rep.Due, "sent", rep.Sent, "skipped", rep.Skipped, "failed", rep.Failed)
	}); err != nil {
		return nil, fmt.Errorf("schedule reminders %q: %w", cfg.ReminderCron, err)
	}

	if _, err := c.AddFunc(cfg.LeaseExpiryCron, func() {
		n, err := r.RunLeaseExpiry(context.Background())
		if err != nil {
			log.Error("lease expiry sweep failed", "err", err)
			return
		}
		log.Info("lease expiry sweep done", "expired", n)
	}); err != nil {
		return nil, fmt.Errorf("schedule lease expiry %q: %w", cfg.LeaseExpiryCron, err)
	}
	return c, nil
}
