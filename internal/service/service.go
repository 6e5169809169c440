// Package service implements the domain operations. Every operation takes
// the calling actor and applies its scope before reading or writing.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"rentexpress/internal/access"
	"rentexpress/internal/apperr"
	"rentexpress/internal/models"
	"rentexpress/internal/notify"
	"rentexpress/internal/scope"

	"gorm.io/gorm"
)

// Services bundles every domain service over a single store.
type Services struct {
	Accounts    *AccountService
	Properties  *PropertyService
	Leases      *LeaseService
	Payments    *PaymentService
	Charges     *ChargeService
	Maintenance *MaintenanceService
	Documents   *DocumentService
	Exports     *ExportService
	Admin       *AdminService
}

// Options carries the settings services need from configuration.
type Options struct {
	BcryptCost    int
	EncryptionKey string
	BackupDir     string
	Logger        *slog.Logger
	Now           func() time.Time
}

func New(db *gorm.DB, gw notify.Gateway, opts Options) *Services {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	b := base{db: db, scopes: scope.Resolver{DB: db}, now: opts.Now}
	charges := &ChargeService{base: b, gateway: gw, logger: opts.Logger}
	return &Services{
		Accounts:    &AccountService{base: b, bcryptCost: opts.BcryptCost},
		Properties:  &PropertyService{base: b},
		Leases:      &LeaseService{base: b},
		Payments:    &PaymentService{base: b},
		Charges:     charges,
		Maintenance: &MaintenanceService{base: b},
		Documents:   &DocumentService{base: b},
		Exports:     &ExportService{base: b},
		Admin:       &AdminService{base: b, encryptKey: opts.EncryptionKey, backupDir: opts.BackupDir},
	}
}

type base struct {
	db     *gorm.DB
	scopes scope.Resolver
	now    func() time.Time
}

// rows resolves the scope of e for a.
func (b base) rows(ctx context.Context, a access.Actor, e scope.Entity) (scope.Rows, error) {
	return b.scopes.For(ctx, a, e)
}

// find loads the row with id inside rows into dst.
func (b base) find(ctx context.Context, rows scope.Rows, table, id string, dst any, what string) error {
	if rows.Empty || id == "" {
		return apperr.NotFound(what + " not found")
	}
	err := b.db.WithContext(ctx).Scopes(rows.Apply).
		Where(table+".id = ?", id).
		First(dst).Error
	return storeErr("load "+what, what, err)
}

// activeLease returns the tenant's current lease.
func activeLease(ctx context.Context, db *gorm.DB, tenantID string) (models.Lease, error) {
	var l models.Lease
	err := db.WithContext(ctx).
		Where("tenant_id = ? AND status = ?", tenantID, models.LeaseActive).
		Order("start_date DESC, created_at DESC").
		First(&l).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return l, apperr.NotFound("no active lease")
	}
	if err != nil {
		return l, apperr.Internal("load active lease", err)
	}
	return l, nil
}

// storeErr maps gorm errors onto the error taxonomy.
func storeErr(op, what string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound(what + " not found")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return apperr.Internal(op, err)
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	return apperr.Internal(op, err)
}

func trim(s string) string { return strings.TrimSpace(s) }

// setString records a trimmed optional string update.
func setString(updates map[string]any, col string, v *string) {
	if v != nil {
		updates[col] = trim(*v)
	}
}
