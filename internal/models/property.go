package models

import "github.com/shopspring/decimal"

type PropertyStatus string

const (
	PropertyVacant      PropertyStatus = "Vacant"
	PropertyOccupied    PropertyStatus = "Occupied"
	PropertyMaintenance PropertyStatus = "Maintenance"
)

func (s PropertyStatus) Valid() bool {
	switch s {
	case PropertyVacant, PropertyOccupied, PropertyMaintenance:
		return true
	}
	return false
}

// Property is a rentable unit owned by exactly one landlord.
// LandlordID is set on insert and never written again.
type Property struct {
	Model
	LandlordID   string          `gorm:"size:36;index;not null" json:"landlordId"`
	AddressLine1 string          `gorm:"size:255;not null" json:"addressLine1"`
	AddressLine2 string          `gorm:"size:255" json:"addressLine2"`
	City         string          `gorm:"size:128;not null" json:"city"`
	State        string          `gorm:"size:64" json:"state"`
	PostalCode   string          `gorm:"size:16" json:"postalCode"`
	Unit         string          `gorm:"size:32" json:"unit"`
	Bedrooms     int             `json:"bedrooms"`
	Bathrooms    float64         `json:"bathrooms"`
	SquareFeet   int             `json:"squareFeet"`
	RentAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"rentAmount"`
	Status       PropertyStatus  `gorm:"size:16;index;not null" json:"status"`
}
