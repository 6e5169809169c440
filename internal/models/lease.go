package models

import "github.com/shopspring/decimal"

type LeaseStatus string

const (
	LeaseActive     LeaseStatus = "active"
	LeaseExpired    LeaseStatus = "expired"
	LeaseTerminated LeaseStatus = "terminated"
)

// Lease binds a tenant to a property. LandlordID is denormalized from the
// property at creation.
type Lease struct {
	Model
	PropertyID string          `gorm:"size:36;index;not null" json:"propertyId"`
	TenantID   string          `gorm:"size:36;index;not null" json:"tenantId"`
	LandlordID string          `gorm:"size:36;index;not null" json:"landlordId"`
	StartDate  string          `gorm:"size:10;not null" json:"startDate"`
	EndDate    string          `gorm:"size:10" json:"endDate"`
	RentAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"rentAmount"`
	Deposit    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"deposit"`
	Status     LeaseStatus     `gorm:"size:16;index;not null" json:"status"`
	Autopay    bool            `gorm:"not null" json:"autopay"`
}
