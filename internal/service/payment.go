package service

import (
	"bytes"
	"context"
	"html/template"
	"strings"

	"rentexpress/internal/access"
	"rentexpress/internal/apperr"
	"rentexpress/internal/models"
	"rentexpress/internal/scope"
	"rentexpress/internal/util"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentService struct {
	base
}

// PaymentInput is what a tenant submits. Lease and tenant are inferred.
// When ChargeID is set the payment settles that charge and Amount may be
// omitted.
type PaymentInput struct {
	Amount   decimal.Decimal `json:"amount"`
	Method   string          `json:"method" binding:"omitempty,oneof=card ach cash check"`
	ChargeID string          `json:"chargeId"`
}

var paymentMethods = map[string]bool{"card": true, "ach": true, "cash": true, "check": true}

func (s *PaymentService) List(ctx context.Context, a access.Actor) ([]models.Payment, error) {
	rows, err := s.rows(ctx, a, scope.Payment)
	if err != nil {
		return nil, err
	}
	list := []models.Payment{}
	if rows.Empty {
		return list, nil
	}
	err = s.db.WithContext(ctx).Scopes(rows.Apply).
		Order("payments.date DESC, payments.created_at DESC").
		Find(&list).Error
	return list, storeErr("list payments", "payment", err)
}

func (s *PaymentService) Get(ctx context.Context, a access.Actor, id string) (models.Payment, error) {
	var p models.Payment
	rows, err := s.rows(ctx, a, scope.Payment)
	if err != nil {
		return p, err
	}
	return p, s.find(ctx, rows, "payments", id, &p, "payment")
}

// Create records a successful payment against the caller's active lease.
func (s *PaymentService) Create(ctx context.Context, a access.Actor, in PaymentInput) (models.Payment, error) {
	if err := a.Require(models.RoleTenant); err != nil {
		return models.Payment{}, err
	}
	in.Method = strings.ToLower(trim(in.Method))
	if in.Method == "" {
		in.Method = "card"
	}
	if !paymentMethods[in.Method] {
		return models.Payment{}, apperr.Validationf("unsupported payment method %q", in.Method)
	}

	if in.ChargeID == "" {
		if err := util.ValidateAmount(in.Amount); err != nil {
			return models.Payment{}, apperr.Validation("amount: " + err.Error())
		}
		lease, err := activeLease(ctx, s.db, a.ID)
		if err != nil {
			return models.Payment{}, err
		}
		p := s.newPayment(a, lease, in)
		if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
			return p, apperr.Internal("create payment", err)
		}
		return p, nil
	}

	var p models.Payment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lease, err := activeLease(ctx, tx, a.ID)
		if err != nil {
			return err
		}
		var c models.Charge
		if err := tx.Where("id = ? AND tenant_id = ? AND lease_id = ?", in.ChargeID, a.ID, lease.ID).
			First(&c).Error; err != nil {
			return storeErr("load charge", "charge", err)
		}
		if c.Status != models.ChargeScheduled {
			return apperr.Validationf("charge is %s", c.Status)
		}
		if in.Amount.IsZero() {
			in.Amount = c.Amount
		} else if !in.Amount.Equal(c.Amount) {
			return apperr.Validationf("amount must equal the charge amount %s", c.Amount.StringFixed(2))
		}

		p = s.newPayment(a, lease, in)
		p.ChargeID = &c.ID
		if err := tx.Create(&p).Error; err != nil {
			return apperr.Internal("create payment", err)
		}
		return markPaid(tx, c.ID, p.Date)
	})
	return p, err
}

func (s *PaymentService) newPayment(a access.Actor, lease models.Lease, in PaymentInput) models.Payment {
	return models.Payment{
		LeaseID:  lease.ID,
		TenantID: a.ID,
		Amount:   in.Amount,
		Date:     s.now().UTC(),
		Status:   models.PaymentPaid,
		Method:   in.Method,
	}
}

var receiptTmpl = template.Must(template.New("receipt").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Receipt {{.ID}}</title></head>
<body>
<h1>Payment receipt</h1>
<table>
<tr><th>Receipt</th><td>{{.ID}}</td></tr>
<tr><th>Date</th><td>{{.Date}}</td></tr>
<tr><th>Tenant</th><td>{{.Tenant}}</td></tr>
{{if .Property}}<tr><th>Property</th><td>{{.Property}}</td></tr>{{end}}
{{if .Charge}}<tr><th>For</th><td>{{.Charge}}</td></tr>{{end}}
<tr><th>Method</th><td>{{.Method}}</td></tr>
<tr><th>Status</th><td>{{.Status}}</td></tr>
<tr><th>Amount</th><td>${{.Amount}}</td></tr>
</table>
</body>
</html>
`))

type receiptView struct {
	ID       string
	Date     string
	Tenant   string
	Property string
	Charge   string
	Method   string
	Status   models.PaymentStatus
	Amount   string
}

// Receipt renders an HTML receipt for one of the caller's own payments.
func (s *PaymentService) Receipt(ctx context.Context, a access.Actor, id string) ([]byte, error) {
	if err := a.Require(models.RoleTenant); err != nil {
		return nil, err
	}
	p, err := s.Get(ctx, a, id)
	if err != nil {
		return nil, err
	}

	view := receiptView{
		ID:     p.ID,
		Date:   p.Date.Format(util.DateLayout),
		Tenant: a.Username,
		Method: p.Method,
		Status: p.Status,
		Amount: p.Amount.StringFixed(2),
	}
	db := s.db.WithContext(ctx)
	var u models.User
	if err := db.Where("id = ?", p.TenantID).First(&u).Error; err == nil {
		if name := u.Profile.Name(); name != "" {
			view.Tenant = name
		} else {
			view.Tenant = u.Username
		}
	}
	var prop models.Property
	if err := db.Select("properties.*").
		Joins("JOIN leases ON leases.property_id = properties.id").
		Where("leases.id = ?", p.LeaseID).
		First(&prop).Error; err == nil {
		view.Property = prop.AddressLine1 + ", " + prop.City
	}
	if p.ChargeID != nil {
		var c models.Charge
		if err := db.Where("id = ?", *p.ChargeID).First(&c).Error; err == nil {
			view.Charge = c.Description
		}
	}

	var buf bytes.Buffer
	if err := receiptTmpl.Execute(&buf, view); err != nil {
		return nil, apperr.Internal("render receipt", err)
	}
	return buf.Bytes(), nil
}
