package service_test

import (
	"sync"
	"testing"

	"rentexpress/internal/access"
	"rentexpress/internal/apperr"
	"rentexpress/internal/models"
	"rentexpress/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chargeEnv struct {
	*env
	landlord access.Actor
	tenant   access.Actor
	lease    models.Lease
}

func newChargeEnv(t *testing.T, tenantEmail string) chargeEnv {
	e := newEnv(t)
	l := e.fx.Landlord("lina")
	tenant := e.fx.Tenant("tom", tenantEmail)
	lease := e.fx.Lease(e.fx.Property(l, "1 Elm St"), tenant, models.LeaseActive)
	return chargeEnv{env: e, landlord: l, tenant: tenant, lease: lease}
}

func (ce chargeEnv) input() service.ChargeInput {
	return service.ChargeInput{
		LeaseID:     ce.lease.ID,
		TenantID:    ce.tenant.ID,
		Description: "January rent",
		Amount:      decimal.NewFromInt(1200),
		Category:    "rent",
		ChargeDate:  "2026-01-01",
		DueDate:     "2026-01-05",
	}
}

func TestChargeService_RoundTrip(t *testing.T) {
	ce := newChargeEnv(t, "tom@example.com")

	created, err := ce.svc.Charges.Create(ce.ctx, ce.landlord, ce.input())
	require.NoError(t, err)

	list, err := ce.svc.Charges.List(ce.ctx, ce.landlord)
	require.NoError(t, err)
	require.Len(t, list, 1)
	got := list[0]
	assert.Equal(t, created.ID, got.ID)
	assert.True(t, decimal.NewFromInt(1200).Equal(got.Amount))
	assert.Equal(t, "rent", got.Category)
	assert.Equal(t, "2026-01-01", got.ChargeDate)
	assert.Equal(t, "2026-01-05", got.DueDate)
	assert.Equal(t, models.ChargeScheduled, got.Status)
	assert.Equal(t, ce.landlord.ID, got.LandlordID)
	assert.False(t, got.InvoiceSent)
	assert.False(t, got.ReminderSent)
	assert.False(t, got.ReceiptSent)

	tenantView, err := ce.svc.Charges.List(ce.ctx, ce.tenant)
	require.NoError(t, err)
	require.Len(t, tenantView, 1)
}

func TestChargeService_CreateValidation(t *testing.T) {
	ce := newChargeEnv(t, "")

	cases := map[string]func(in *service.ChargeInput){
		"zero amount":       func(in *service.ChargeInput) { in.Amount = decimal.Zero },
		"no description":    func(in *service.ChargeInput) { in.Description = " " },
		"bad date":          func(in *service.ChargeInput) { in.ChargeDate = "01/01/2026" },
		"due before charge": func(in *service.ChargeInput) { in.DueDate = "2025-12-31" },
		"no category":       func(in *service.ChargeInput) { in.Category = "" },
		"wrong tenant":      func(in *service.ChargeInput) { in.TenantID = ce.landlord.ID },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := ce.input()
			mutate(&in)
			_, err := ce.svc.Charges.Create(ce.ctx, ce.landlord, in)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}

	t.Run("lease of another landlord", func(t *testing.T) {
		_, err := ce.svc.Charges.Create(ce.ctx, ce.fx.Landlord("lars"), ce.input())
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("tenant cannot create", func(t *testing.T) {
		_, err := ce.svc.Charges.Create(ce.ctx, ce.tenant, ce.input())
		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})
}

func TestChargeService_Update(t *testing.T) {
	ce := newChargeEnv(t, "")
	c := ce.fx.Charge(ce.lease, 500)
	paid, void, scheduled := models.ChargePaid, models.ChargeVoid, models.ChargeScheduled
	yes, no := true, false

	_, err := ce.svc.Charges.Update(ce.ctx, ce.landlord, c.ID, service.ChargePatch{})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = ce.svc.Charges.Update(ce.ctx, ce.fx.Landlord("lars"), c.ID, service.ChargePatch{Status: &paid})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = ce.svc.Charges.Update(ce.ctx, ce.tenant, c.ID, service.ChargePatch{Status: &paid})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	got, err := ce.svc.Charges.Update(ce.ctx, ce.landlord, c.ID, service.ChargePatch{Status: &scheduled, InvoiceSent: &yes})
	require.NoError(t, err)
	assert.Equal(t, models.ChargeScheduled, got.Status)
	assert.True(t, got.InvoiceSent)

	_, err = ce.svc.Charges.Update(ce.ctx, ce.landlord, c.ID, service.ChargePatch{InvoiceSent: &no})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	got, err = ce.svc.Charges.Update(ce.ctx, ce.landlord, c.ID, service.ChargePatch{Status: &paid})
	require.NoError(t, err)
	assert.Equal(t, models.ChargePaid, got.Status)
	require.NotNil(t, got.PaidAt)
	assert.True(t, fixedNow.Equal(*got.PaidAt))

	// paid is terminal
	_, err = ce.svc.Charges.Update(ce.ctx, ce.landlord, c.ID, service.ChargePatch{Status: &void})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	bogus := models.ChargeStatus("refunded")
	_, err = ce.svc.Charges.Update(ce.ctx, ce.landlord, c.ID, service.ChargePatch{Status: &bogus})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestChargeService_Delete(t *testing.T) {
	ce := newChargeEnv(t, "")
	c := ce.fx.Charge(ce.lease, 500)

	assert.ErrorIs(t, ce.svc.Charges.Delete(ce.ctx, ce.tenant, c.ID), apperr.ErrForbidden)
	assert.ErrorIs(t, ce.svc.Charges.Delete(ce.ctx, ce.fx.Landlord("lars"), c.ID), apperr.ErrNotFound)
	require.NoError(t, ce.svc.Charges.Delete(ce.ctx, ce.landlord, c.ID))
	assert.ErrorIs(t, ce.svc.Charges.Delete(ce.ctx, ce.landlord, c.ID), apperr.ErrNotFound)
}

func TestSendNotification_Invoice(t *testing.T) {
	ce := newChargeEnv(t, "tom@example.com")
	c := ce.fx.Charge(ce.lease, 1200)

	res, err := ce.svc.Charges.SendNotification(ce.ctx, ce.landlord, c.ID, models.NotifyInvoice, false)
	require.NoError(t, err)
	assert.Equal(t, service.OutcomeSent, res.Outcome)
	assert.Equal(t, "tom@example.com", res.Recipient)
	assert.True(t, res.Charge.InvoiceSent)
	assert.False(t, res.Charge.ReminderSent)

	require.Equal(t, 1, ce.gw.count())
	msg := ce.gw.sent[0]
	assert.Equal(t, "tom@example.com", msg.To)
	assert.Equal(t, models.NotifyInvoice, msg.Kind)
	assert.Contains(t, msg.Text, "$1200.00")
	assert.Contains(t, msg.Text, "2026-01-05")
	assert.Contains(t, msg.Text, "Monthly rent")
}

func TestSendNotification_AlreadySentIsIdempotent(t *testing.T) {
	ce := newChargeEnv(t, "tom@example.com")
	c := ce.fx.Charge(ce.lease, 1200)
	require.NoError(t, ce.db.Model(&c).Update("invoice_sent", true).Error)

	var before models.Charge
	require.NoError(t, ce.db.First(&before, "id = ?", c.ID).Error)

	res, err := ce.svc.Charges.SendNotification(ce.ctx, ce.landlord, c.ID, models.NotifyInvoice, false)
	require.NoError(t, err)
	assert.Equal(t, service.OutcomeAlreadySent, res.Outcome)
	assert.Zero(t, ce.gw.count())

	var after models.Charge
	require.NoError(t, ce.db.First(&after, "id = ?", c.ID).Error)
	assert.Equal(t, before, after)
}

func TestSendNotification_ForceResends(t *testing.T) {
	ce := newChargeEnv(t, "tom@example.com")
	c := ce.fx.Charge(ce.lease, 1200)

	_, err := ce.svc.Charges.SendNotification(ce.ctx, ce.landlord, c.ID, models.NotifyReminder, false)
	require.NoError(t, err)
	res, err := ce.svc.Charges.SendNotification(ce.ctx, ce.landlord, c.ID, models.NotifyReminder, true)
	require.NoError(t, err)
	assert.Equal(t, service.OutcomeResent, res.Outcome)
	assert.True(t, res.Charge.ReminderSent)
	assert.Equal(t, 2, ce.gw.count())

	// a failed forced resend leaves the earlier send recorded
	ce.gw.err = errProvider
	_, err = ce.svc.Charges.SendNotification(ce.ctx, ce.landlord, c.ID, models.NotifyReminder, true)
	assert.ErrorIs(t, err, apperr.ErrEmailDelivery)
	var stored models.Charge
	require.NoError(t, ce.db.First(&stored, "id = ?", c.ID).Error)
	assert.True(t, stored.ReminderSent)
}

func TestSendNotification_NoEmailOnFile(t *testing.T) {
	ce := newChargeEnv(t, "")
	c := ce.fx.Charge(ce.lease, 1200)

	res, err := ce.svc.Charges.SendNotification(ce.ctx, ce.landlord, c.ID, models.NotifyReminder, false)
	require.NoError(t, err)
	assert.Equal(t, service.OutcomeSkippedNoEmail, res.Outcome)
	assert.True(t, res.Charge.ReminderSent)
	assert.Zero(t, ce.gw.count())

	var stored models.Charge
	require.NoError(t, ce.db.First(&stored, "id = ?", c.ID).Error)
	assert.True(t, stored.ReminderSent)
	assert.False(t, stored.InvoiceSent)
}

func TestSendNotification_GatewayFailureKeepsFlag(t *testing.T) {
	ce := newChargeEnv(t, "tom@example.com")
	c := ce.fx.Charge(ce.lease, 1200)
	ce.gw.err = errProvider

	_, err := ce.svc.Charges.SendNotification(ce.ctx, ce.landlord, c.ID, models.NotifyInvoice, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrEmailDelivery)
	assert.Contains(t, apperr.MessageOf(err), "mailbox unavailable")

	var stored models.Charge
	require.NoError(t, ce.db.First(&stored, "id = ?", c.ID).Error)
	assert.False(t, stored.InvoiceSent)

	// the released claim can be retried
	ce.gw.err = nil
	res, err := ce.svc.Charges.SendNotification(ce.ctx, ce.landlord, c.ID, models.NotifyInvoice, false)
	require.NoError(t, err)
	assert.Equal(t, service.OutcomeSent, res.Outcome)
}

func TestSendNotification_Receipt(t *testing.T) {
	ce := newChargeEnv(t, "tom@example.com")
	c := ce.fx.Charge(ce.lease, 1200)
	_, err := ce.svc.Payments.Create(ce.ctx, ce.tenant, service.PaymentInput{ChargeID: c.ID})
	require.NoError(t, err)

	res, err := ce.svc.Charges.SendNotification(ce.ctx, ce.landlord, c.ID, models.NotifyReceipt, false)
	require.NoError(t, err)
	assert.True(t, res.Charge.ReceiptSent)
	require.Equal(t, 1, ce.gw.count())
	assert.Equal(t, "Payment received: Monthly rent", ce.gw.sent[0].Subject)
	assert.Contains(t, ce.gw.sent[0].Text, "Paid: 2026-01-03")
}

func TestSendNotification_ReceiptRequiresPaidCharge(t *testing.T) {
	ce := newChargeEnv(t, "tom@example.com")
	scheduled := ce.fx.Charge(ce.lease, 1200)
	void := ce.fx.Charge(ce.lease, 300)
	require.NoError(t, ce.db.Model(&void).Update("status", models.ChargeVoid).Error)

	for _, c := range []models.Charge{scheduled, void} {
		_, err := ce.svc.Charges.SendNotification(ce.ctx, ce.landlord, c.ID, models.NotifyReceipt, true)
		assert.ErrorIs(t, err, apperr.ErrValidation, c.ID)

		var stored models.Charge
		require.NoError(t, ce.db.First(&stored, "id = ?", c.ID).Error)
		assert.False(t, stored.ReceiptSent)
	}
	assert.Zero(t, ce.gw.count())
}

func TestSendNotification_ConcurrentSendsDeliverOnce(t *testing.T) {
	ce := newChargeEnv(t, "tom@example.com")
	c := ce.fx.Charge(ce.lease, 1200)

	const n = 8
	var (
		wg       sync.WaitGroup
		start    = make(chan struct{})
		outcomes = make([]service.Outcome, n)
		errs     = make([]error, n)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			res, err := ce.svc.Charges.SendNotification(ce.ctx, ce.landlord, c.ID, models.NotifyInvoice, false)
			outcomes[i], errs[i] = res.Outcome, err
		}(i)
	}
	close(start)
	wg.Wait()

	counts := map[service.Outcome]int{}
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		counts[outcomes[i]]++
	}
	assert.Equal(t, 1, counts[service.OutcomeSent])
	assert.Equal(t, n-1, counts[service.OutcomeAlreadySent])
	assert.Equal(t, 1, ce.gw.count())

	var stored models.Charge
	require.NoError(t, ce.db.First(&stored, "id = ?", c.ID).Error)
	assert.True(t, stored.InvoiceSent)
}

func TestSendNotification_Errors(t *testing.T) {
	ce := newChargeEnv(t, "tom@example.com")
	c := ce.fx.Charge(ce.lease, 1200)

	_, err := ce.svc.Charges.SendNotification(ce.ctx, ce.landlord, c.ID, "statement", false)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = ce.svc.Charges.SendNotification(ce.ctx, ce.fx.Landlord("lars"), c.ID, models.NotifyInvoice, false)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = ce.svc.Charges.SendNotification(ce.ctx, ce.tenant, c.ID, models.NotifyInvoice, false)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	assert.Zero(t, ce.gw.count())
}

func TestChargeService_DueForReminder(t *testing.T) {
	ce := newChargeEnv(t, "tom@example.com")
	due := ce.fx.Charge(ce.lease, 100) // due 2026-01-05
	reminded := ce.fx.Charge(ce.lease, 200)
	require.NoError(t, ce.db.Model(&reminded).Update("reminder_sent", true).Error)
	later := ce.fx.Charge(ce.lease, 300)
	require.NoError(t, ce.db.Model(&later).Update("due_date", "2026-02-01").Error)

	list, err := ce.svc.Charges.DueForReminder(ce.ctx, fixedNow, 3)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, due.ID, list[0].ID)

	out, err := ce.svc.Charges.SendDue(ce.ctx, list[0], models.NotifyReminder)
	require.NoError(t, err)
	assert.Equal(t, service.OutcomeSent, out)
}
