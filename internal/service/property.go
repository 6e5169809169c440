package service

import (
	"context"

	"rentexpress/internal/access"
	"rentexpress/internal/apperr"
	"rentexpress/internal/models"
	"rentexpress/internal/scope"
	"rentexpress/internal/util"

	"github.com/shopspring/decimal"
)

type PropertyService struct {
	base
}

// PropertyInput is the payload for creating a property. Ownership is
// never part of it.
type PropertyInput struct {
	AddressLine1 string                `json:"addressLine1" binding:"required,max=255"`
	AddressLine2 string                `json:"addressLine2" binding:"max=255"`
	City         string                `json:"city" binding:"required,max=128"`
	State        string                `json:"state" binding:"max=64"`
	PostalCode   string                `json:"postalCode" binding:"max=16"`
	Unit         string                `json:"unit" binding:"max=32"`
	Bedrooms     int                   `json:"bedrooms" binding:"gte=0,lte=100"`
	Bathrooms    float64               `json:"bathrooms" binding:"gte=0,lte=100"`
	SquareFeet   int                   `json:"squareFeet" binding:"gte=0"`
	RentAmount   decimal.Decimal       `json:"rentAmount"`
	Status       models.PropertyStatus `json:"status"`
}

// PropertyPatch lists the mutable fields; nil means unchanged.
type PropertyPatch struct {
	AddressLine1 *string                `json:"addressLine1"`
	AddressLine2 *string                `json:"addressLine2"`
	City         *string                `json:"city"`
	State        *string                `json:"state"`
	PostalCode   *string                `json:"postalCode"`
	Unit         *string                `json:"unit"`
	Bedrooms     *int                   `json:"bedrooms"`
	Bathrooms    *float64               `json:"bathrooms"`
	SquareFeet   *int                   `json:"squareFeet"`
	RentAmount   *decimal.Decimal       `json:"rentAmount"`
	Status       *models.PropertyStatus `json:"status"`
}

func (s *PropertyService) List(ctx context.Context, a access.Actor) ([]models.Property, error) {
	rows, err := s.rows(ctx, a, scope.Property)
	if err != nil {
		return nil, err
	}
	list := []models.Property{}
	err = s.db.WithContext(ctx).Scopes(rows.Apply).
		Order("created_at DESC").
		Find(&list).Error
	return list, storeErr("list properties", "property", err)
}

func (s *PropertyService) Get(ctx context.Context, a access.Actor, id string) (models.Property, error) {
	var p models.Property
	rows, err := s.rows(ctx, a, scope.Property)
	if err != nil {
		return p, err
	}
	return p, s.find(ctx, rows, "properties", id, &p, "property")
}

func (s *PropertyService) Create(ctx context.Context, a access.Actor, in PropertyInput) (models.Property, error) {
	if err := a.Require(models.RoleLandlord); err != nil {
		return models.Property{}, err
	}
	if trim(in.AddressLine1) == "" || trim(in.City) == "" {
		return models.Property{}, apperr.Validation("addressLine1 and city are required")
	}
	if err := util.ValidateAmount(in.RentAmount); err != nil {
		return models.Property{}, apperr.Validation("rentAmount: " + err.Error())
	}
	if in.Status == "" {
		in.Status = models.PropertyVacant
	}
	if !in.Status.Valid() {
		return models.Property{}, apperr.Validationf("invalid status %q", in.Status)
	}
	if in.Status == models.PropertyOccupied {
		return models.Property{}, apperr.Validation("a new property cannot be Occupied; creating a lease occupies it")
	}

	p := models.Property{
		LandlordID:   a.ID,
		AddressLine1: trim(in.AddressLine1),
		AddressLine2: trim(in.AddressLine2),
		City:         trim(in.City),
		State:        trim(in.State),
		PostalCode:   trim(in.PostalCode),
		Unit:         trim(in.Unit),
		Bedrooms:     in.Bedrooms,
		Bathrooms:    in.Bathrooms,
		SquareFeet:   in.SquareFeet,
		RentAmount:   in.RentAmount,
		Status:       in.Status,
	}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return p, apperr.Internal("create property", err)
	}
	return p, nil
}

// Update applies patch to an owned property. landlord_id is not among the
// writable columns.
func (s *PropertyService) Update(ctx context.Context, a access.Actor, id string, patch PropertyPatch) (models.Property, error) {
	rows, err := s.rows(ctx, a, scope.Property)
	if err != nil {
		return models.Property{}, err
	}

	updates := map[string]any{}
	setString(updates, "address_line1", patch.AddressLine1)
	setString(updates, "address_line2", patch.AddressLine2)
	setString(updates, "city", patch.City)
	setString(updates, "state", patch.State)
	setString(updates, "postal_code", patch.PostalCode)
	setString(updates, "unit", patch.Unit)
	if v, ok := updates["address_line1"]; ok && v == "" {
		return models.Property{}, apperr.Validation("addressLine1 cannot be empty")
	}
	if v, ok := updates["city"]; ok && v == "" {
		return models.Property{}, apperr.Validation("city cannot be empty")
	}
	if patch.Bedrooms != nil {
		if *patch.Bedrooms < 0 {
			return models.Property{}, apperr.Validation("bedrooms cannot be negative")
		}
		updates["bedrooms"] = *patch.Bedrooms
	}
	if patch.Bathrooms != nil {
		if *patch.Bathrooms < 0 {
			return models.Property{}, apperr.Validation("bathrooms cannot be negative")
		}
		updates["bathrooms"] = *patch.Bathrooms
	}
	if patch.SquareFeet != nil {
		if *patch.SquareFeet < 0 {
			return models.Property{}, apperr.Validation("squareFeet cannot be negative")
		}
		updates["square_feet"] = *patch.SquareFeet
	}
	if patch.RentAmount != nil {
		if err := util.ValidateAmount(*patch.RentAmount); err != nil {
			return models.Property{}, apperr.Validation("rentAmount: " + err.Error())
		}
		updates["rent_amount"] = *patch.RentAmount
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return models.Property{}, apperr.Validationf("invalid status %q", *patch.Status)
		}
		if err := s.checkOccupancy(ctx, a, id, *patch.Status); err != nil {
			return models.Property{}, err
		}
		updates["status"] = *patch.Status
	}
	if len(updates) == 0 {
		return models.Property{}, apperr.Validation("nothing to update")
	}

	res := s.db.WithContext(ctx).Model(&models.Property{}).
		Scopes(rows.Apply).
		Where("properties.id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return models.Property{}, apperr.Internal("update property", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.Property{}, apperr.NotFound("property not found")
	}
	return s.Get(ctx, a, id)
}

// checkOccupancy keeps Occupied in step with the active lease: a leased
// property stays Occupied and only a lease can make a property Occupied.
func (s *PropertyService) checkOccupancy(ctx context.Context, a access.Actor, id string, status models.PropertyStatus) error {
	p, err := s.Get(ctx, a, id)
	if err != nil {
		return err
	}
	var active int64
	if err := s.db.WithContext(ctx).Model(&models.Lease{}).
		Where("property_id = ? AND status = ?", p.ID, models.LeaseActive).
		Count(&active).Error; err != nil {
		return apperr.Internal("count active leases", err)
	}
	switch {
	case active > 0 && status != models.PropertyOccupied:
		return apperr.Validationf("property has an active lease and cannot be %s", status)
	case active == 0 && status == models.PropertyOccupied:
		return apperr.Validation("only an active lease can make a property Occupied")
	}
	return nil
}

// Delete removes an owned property that has no active lease.
func (s *PropertyService) Delete(ctx context.Context, a access.Actor, id string) error {
	p, err := s.Get(ctx, a, id)
	if err != nil {
		return err
	}
	var active int64
	if err := s.db.WithContext(ctx).Model(&models.Lease{}).
		Where("property_id = ? AND status = ?", p.ID, models.LeaseActive).
		Count(&active).Error; err != nil {
		return apperr.Internal("count leases", err)
	}
	if active > 0 {
		return apperr.Validation("property has an active lease")
	}
	res := s.db.WithContext(ctx).
		Where("id = ? AND landlord_id = ?", p.ID, a.ID).
		Delete(&models.Property{})
	if res.Error != nil {
		return apperr.Internal("delete property", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("property not found")
	}
	return nil
}
