package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ChargeStatus string

const (
	ChargeScheduled ChargeStatus = "scheduled"
	ChargePaid      ChargeStatus = "paid"
	ChargeVoid      ChargeStatus = "void"
)

func (s ChargeStatus) Valid() bool {
	switch s {
	case ChargeScheduled, ChargePaid, ChargeVoid:
		return true
	}
	return false
}

// CanTransition reports whether the charge state machine allows s -> next.
// scheduled is the only non-terminal state; same-state updates are no-ops.
func (s ChargeStatus) CanTransition(next ChargeStatus) bool {
	if s == next {
		return true
	}
	return s == ChargeScheduled && (next == ChargePaid || next == ChargeVoid)
}

// NotificationKind names one of the three emails tracked per charge.
type NotificationKind string

const (
	NotifyInvoice  NotificationKind = "invoice"
	NotifyReminder NotificationKind = "reminder"
	NotifyReceipt  NotificationKind = "receipt"
)

func (k NotificationKind) Valid() bool {
	switch k {
	case NotifyInvoice, NotifyReminder, NotifyReceipt:
		return true
	}
	return false
}

// Column is the flag column tracking whether this kind was sent.
func (k NotificationKind) Column() string {
	return string(k) + "_sent"
}

// Charge is a scheduled obligation from tenant to landlord.
type Charge struct {
	Model
	LeaseID      string          `gorm:"size:36;index;not null" json:"leaseId"`
	TenantID     string          `gorm:"size:36;index;not null" json:"tenantId"`
	LandlordID   string          `gorm:"size:36;index;not null" json:"landlordId"`
	Description  string          `gorm:"size:255;not null" json:"description"`
	Amount       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Category     string          `gorm:"size:32;not null" json:"category"`
	ChargeDate   string          `gorm:"size:10;index;not null" json:"chargeDate"`
	DueDate      string          `gorm:"size:10;index;not null" json:"dueDate"`
	Status       ChargeStatus    `gorm:"size:16;index;not null" json:"status"`
	PaidAt       *time.Time      `json:"paidAt,omitempty"`
	InvoiceSent  bool            `gorm:"not null" json:"invoiceSent"`
	ReminderSent bool            `gorm:"not null" json:"reminderSent"`
	ReceiptSent  bool            `gorm:"not null" json:"receiptSent"`
}

// Sent reports the flag for the given notification kind.
func (c *Charge) Sent(kind NotificationKind) bool {
	switch kind {
	case NotifyInvoice:
		return c.InvoiceSent
	case NotifyReminder:
		return c.ReminderSent
	case NotifyReceipt:
		return c.ReceiptSent
	}
	return false
}

// MarkSent sets the in-memory flag for kind.
func (c *Charge) MarkSent(kind NotificationKind) {
	switch kind {
	case NotifyInvoice:
		c.InvoiceSent = true
	case NotifyReminder:
		c.ReminderSent = true
	case NotifyReceipt:
		c.ReceiptSent = true
	}
}
