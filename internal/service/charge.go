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
	"rentexpress/internal/util"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ChargeService owns the charge state machine and its notification sends.
type ChargeService struct {
	base
	gateway notify.Gateway
	logger  *slog.Logger
}

// ChargeInput creates a charge against a lease the landlord owns.
type ChargeInput struct {
	LeaseID     string          `json:"leaseId" binding:"required"`
	TenantID    string          `json:"tenantId" binding:"required"`
	Description string          `json:"description" binding:"required,max=255"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category" binding:"required"`
	ChargeDate  string          `json:"chargeDate" binding:"required"`
	DueDate     string          `json:"dueDate" binding:"required"`
}

// ChargePatch holds the only fields that may change after creation.
type ChargePatch struct {
	Status       *models.ChargeStatus `json:"status"`
	InvoiceSent  *bool                `json:"invoiceSent"`
	ReminderSent *bool                `json:"reminderSent"`
	ReceiptSent  *bool                `json:"receiptSent"`
}

// Outcome describes what a notification send did.
type Outcome string

const (
	OutcomeSent           Outcome = "sent"
	OutcomeResent         Outcome = "resent"
	OutcomeSkippedNoEmail Outcome = "skipped_no_email"
	OutcomeAlreadySent    Outcome = "already_sent"
)

// NotificationResult is returned by SendNotification.
type NotificationResult struct {
	Charge    models.Charge `json:"charge"`
	Outcome   Outcome       `json:"outcome"`
	Recipient string        `json:"recipient,omitempty"`
}

func (s *ChargeService) List(ctx context.Context, a access.Actor) ([]models.Charge, error) {
	rows, err := s.rows(ctx, a, scope.Charge)
	if err != nil {
		return nil, err
	}
	list := []models.Charge{}
	err = s.db.WithContext(ctx).Scopes(rows.Apply).
		Order("charge_date DESC, created_at DESC").
		Find(&list).Error
	return list, storeErr("list charges", "charge", err)
}

func (s *ChargeService) Get(ctx context.Context, a access.Actor, id string) (models.Charge, error) {
	var c models.Charge
	rows, err := s.rows(ctx, a, scope.Charge)
	if err != nil {
		return c, err
	}
	return c, s.find(ctx, rows, "charges", id, &c, "charge")
}

func (s *ChargeService) Create(ctx context.Context, a access.Actor, in ChargeInput) (models.Charge, error) {
	if err := a.Require(models.RoleLandlord); err != nil {
		return models.Charge{}, err
	}
	in.Description = trim(in.Description)
	in.Category = strings.ToLower(trim(in.Category))
	if in.LeaseID == "" || in.TenantID == "" {
		return models.Charge{}, apperr.Validation("leaseId and tenantId are required")
	}
	if in.Description == "" {
		return models.Charge{}, apperr.Validation("description is required")
	}
	if err := util.ValidateAmount(in.Amount); err != nil {
		return models.Charge{}, apperr.Validation("amount: " + err.Error())
	}
	if err := util.ValidateCategory(in.Category); err != nil {
		return models.Charge{}, apperr.Validation(err.Error())
	}
	if err := util.ValidateDate(in.ChargeDate); err != nil {
		return models.Charge{}, apperr.Validation("chargeDate: " + err.Error())
	}
	if err := util.ValidateDate(in.DueDate); err != nil {
		return models.Charge{}, apperr.Validation("dueDate: " + err.Error())
	}
	if in.DueDate < in.ChargeDate {
		return models.Charge{}, apperr.Validation("dueDate is before chargeDate")
	}

	lease, err := s.ownedLease(ctx, a, in.LeaseID)
	if err != nil {
		return models.Charge{}, err
	}
	if lease.TenantID != in.TenantID {
		return models.Charge{}, apperr.Validation("tenant does not hold this lease")
	}

	c := models.Charge{
		LeaseID:     lease.ID,
		TenantID:    lease.TenantID,
		LandlordID:  a.ID,
		Description: in.Description,
		Amount:      in.Amount,
		Category:    in.Category,
		ChargeDate:  in.ChargeDate,
		DueDate:     in.DueDate,
		Status:      models.ChargeScheduled,
	}
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return c, apperr.Internal("create charge", err)
	}
	return c, nil
}

func (s *ChargeService) ownedLease(ctx context.Context, a access.Actor, id string) (models.Lease, error) {
	var l models.Lease
	rows, err := s.rows(ctx, a, scope.Lease)
	if err != nil {
		return l, err
	}
	return l, s.find(ctx, rows, "leases", id, &l, "lease")
}

// Update applies a status transition and/or flag changes to an owned charge.
func (s *ChargeService) Update(ctx context.Context, a access.Actor, id string, patch ChargePatch) (models.Charge, error) {
	if err := a.Require(models.RoleLandlord); err != nil {
		return models.Charge{}, err
	}
	c, err := s.Get(ctx, a, id)
	if err != nil {
		return c, err
	}

	updates := map[string]any{}
	if patch.Status != nil {
		next := *patch.Status
		if !next.Valid() {
			return c, apperr.Validationf("invalid status %q", next)
		}
		if !c.Status.CanTransition(next) {
			return c, apperr.Validationf("cannot move charge from %s to %s", c.Status, next)
		}
		if next != c.Status {
			updates["status"] = next
			if next == models.ChargePaid {
				updates["paid_at"] = s.now().UTC()
			}
		}
	}
	flags := []struct {
		kind models.NotificationKind
		v    *bool
	}{
		{models.NotifyInvoice, patch.InvoiceSent},
		{models.NotifyReminder, patch.ReminderSent},
		{models.NotifyReceipt, patch.ReceiptSent},
	}
	for _, f := range flags {
		if f.v == nil {
			continue
		}
		if !*f.v && c.Sent(f.kind) {
			return c, apperr.Validationf("%s cannot be cleared once set", f.kind.Column())
		}
		if *f.v && !c.Sent(f.kind) {
			updates[f.kind.Column()] = true
		}
	}
	if patch.Status == nil && patch.InvoiceSent == nil && patch.ReminderSent == nil && patch.ReceiptSent == nil {
		return c, apperr.Validation("nothing to update")
	}
	if len(updates) == 0 {
		return c, nil
	}

	// status guard keeps concurrent transitions from both succeeding
	res := s.db.WithContext(ctx).Model(&models.Charge{}).
		Where("id = ? AND landlord_id = ? AND status = ?", c.ID, a.ID, c.Status).
		Updates(updates)
	if res.Error != nil {
		return c, apperr.Internal("update charge", res.Error)
	}
	if res.RowsAffected == 0 {
		return c, apperr.Conflict("charge changed concurrently")
	}
	return s.Get(ctx, a, id)
}

// Delete hard-deletes an owned charge.
func (s *ChargeService) Delete(ctx context.Context, a access.Actor, id string) error {
	if err := a.Require(models.RoleLandlord); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).
		Where("id = ? AND landlord_id = ?", id, a.ID).
		Delete(&models.Charge{})
	if res.Error != nil {
		return apperr.Internal("delete charge", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("charge not found")
	}
	return nil
}

// markPaid moves a scheduled charge to paid inside tx.
func markPaid(tx *gorm.DB, chargeID string, at time.Time) error {
	res := tx.Model(&models.Charge{}).
		Where("id = ? AND status = ?", chargeID, models.ChargeScheduled).
		Updates(map[string]any{"status": models.ChargePaid, "paid_at": at.UTC()})
	if res.Error != nil {
		return apperr.Internal("mark charge paid", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.Validation("charge is not payable")
	}
	return nil
}

// SendNotification emails the tenant about an owned charge and records it
// on the charge's flag for kind.
//
// The flag is claimed with a conditional update before the gateway is
// called, so concurrent sends of the same kind deliver at most once. A
// charge whose flag is already set is reported as already_sent unless
// force is true. When the tenant has no email on file the flag stays set
// and nothing is delivered. A gateway failure releases the claim.
func (s *ChargeService) SendNotification(ctx context.Context, a access.Actor, id string, kind models.NotificationKind, force bool) (NotificationResult, error) {
	if !kind.Valid() {
		return NotificationResult{}, apperr.Validationf("type must be invoice, reminder or receipt, got %q", kind)
	}
	if err := a.Require(models.RoleLandlord); err != nil {
		return NotificationResult{}, err
	}
	c, err := s.Get(ctx, a, id)
	if err != nil {
		return NotificationResult{}, err
	}
	if kind == models.NotifyReceipt && c.Status != models.ChargePaid {
		return NotificationResult{}, apperr.Validationf("receipt requires a paid charge, charge is %s", c.Status)
	}

	claimed, err := s.claim(ctx, c, kind)
	if err != nil {
		return NotificationResult{}, err
	}
	if !claimed && !force {
		return NotificationResult{Charge: c, Outcome: OutcomeAlreadySent}, nil
	}
	c.MarkSent(kind)

	outcome, to, sendErr := s.deliver(ctx, c, kind)
	if sendErr != nil {
		if claimed {
			s.release(ctx, c, kind)
		}
		s.logger.WarnContext(ctx, "notification failed",
			"op", "send_notification", "actor_id", a.ID, "charge_id", c.ID, "kind", kind, "err", sendErr)
		return NotificationResult{}, sendErr
	}
	if !claimed && outcome == OutcomeSent {
		outcome = OutcomeResent
	}

	c, err = s.Get(ctx, a, id)
	if err != nil {
		return NotificationResult{}, err
	}
	return NotificationResult{Charge: c, Outcome: outcome, Recipient: to}, nil
}

// SendDue is SendNotification for the scheduler, which acts on behalf of
// the charge's landlord and never forces a resend.
func (s *ChargeService) SendDue(ctx context.Context, c models.Charge, kind models.NotificationKind) (Outcome, error) {
	actor := access.Actor{ID: c.LandlordID, Role: models.RoleLandlord}
	res, err := s.SendNotification(ctx, actor, c.ID, kind, false)
	return res.Outcome, err
}

// DueForReminder lists scheduled charges due within days of today that
// have not been reminded yet.
func (s *ChargeService) DueForReminder(ctx context.Context, today time.Time, days int) ([]models.Charge, error) {
	if days < 0 {
		days = 0
	}
	from := today.Format(util.DateLayout)
	until := today.AddDate(0, 0, days).Format(util.DateLayout)
	var list []models.Charge
	err := s.db.WithContext(ctx).
		Where("status = ? AND reminder_sent = ? AND due_date >= ? AND due_date <= ?",
			models.ChargeScheduled, false, from, until).
		Order("due_date ASC").
		Find(&list).Error
	if err != nil {
		return nil, apperr.Internal("find due charges", err)
	}
	return list, nil
}

func (s *ChargeService) claim(ctx context.Context, c models.Charge, kind models.NotificationKind) (bool, error) {
	col := kind.Column()
	res := s.db.WithContext(ctx).Model(&models.Charge{}).
		Where("id = ? AND landlord_id = ? AND "+col+" = ?", c.ID, c.LandlordID, false).
		Update(col, true)
	if res.Error != nil {
		return false, apperr.Internal("claim notification", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *ChargeService) release(ctx context.Context, c models.Charge, kind models.NotificationKind) {
	col := kind.Column()
	// detached from ctx so a cancelled request still releases its claim
	err := s.db.WithContext(context.WithoutCancel(ctx)).Model(&models.Charge{}).
		Where("id = ? AND "+col+" = ?", c.ID, true).
		Update(col, false).Error
	if err != nil {
		s.logger.ErrorContext(ctx, "release notification claim",
			"charge_id", c.ID, "kind", kind, "err", err)
	}
}

func (s *ChargeService) deliver(ctx context.Context, c models.Charge, kind models.NotificationKind) (Outcome, string, error) {
	var tenant models.User
	if err := s.db.WithContext(ctx).Where("id = ?", c.TenantID).First(&tenant).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", apperr.Internal("load tenant", err)
		}
	}
	to := tenant.Profile.Email()
	if to == "" {
		return OutcomeSkippedNoEmail, "", nil
	}

	vars, err := s.vars(ctx, c, tenant)
	if err != nil {
		return "", "", err
	}
	msg, err := notify.Render(kind, to, vars)
	if err != nil {
		return "", "", apperr.Internal("render notification", err)
	}
	if err := s.gateway.Send(ctx, msg); err != nil {
		return "", "", apperr.EmailDelivery(err)
	}
	return OutcomeSent, to, nil
}

func (s *ChargeService) vars(ctx context.Context, c models.Charge, tenant models.User) (notify.Vars, error) {
	v := notify.Vars{
		TenantName:  tenant.Profile.Name(),
		Description: c.Description,
		Amount:      c.Amount.StringFixed(2),
		Category:    c.Category,
		ChargeDate:  c.ChargeDate,
		DueDate:     c.DueDate,
	}
	if v.TenantName == "" {
		v.TenantName = tenant.Username
	}
	if c.PaidAt != nil {
		v.PaidAt = c.PaidAt.Format(util.DateLayout)
	} else {
		v.PaidAt = s.now().Format(util.DateLayout)
	}

	var p models.Property
	err := s.db.WithContext(ctx).Select("properties.*").
		Joins("JOIN leases ON leases.property_id = properties.id").
		Where("leases.id = ?", c.LeaseID).
		First(&p).Error
	switch {
	case err == nil:
		v.Property = p.AddressLine1
		if p.Unit != "" {
			v.Property += " #" + p.Unit
		}
		v.Property += ", " + p.City
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return v, apperr.Internal("load property", err)
	}
	return v, nil
}
