package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "paid"
	PaymentPending PaymentStatus = "pending"
	PaymentOverdue PaymentStatus = "overdue"
)

// Payment records a tenant paying against a lease. Gateway integration is
// mocked, so rows are created directly as paid.
type Payment struct {
	Model
	LeaseID  string          `gorm:"size:36;index;not null" json:"leaseId"`
	TenantID string          `gorm:"size:36;index;not null" json:"tenantId"`
	ChargeID *string         `gorm:"size:36;index" json:"chargeId,omitempty"`
	Amount   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Date     time.Time       `gorm:"index;not null" json:"date"`
	Status   PaymentStatus   `gorm:"size:16;not null" json:"status"`
	Method   string          `gorm:"size:32;not null" json:"method"`
}
