package service_test

import (
	"testing"

	"rentexpress/internal/apperr"
	"rentexpress/internal/models"
	"rentexpress/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropertyService_ListIsolatedPerLandlord(t *testing.T) {
	e := newEnv(t)
	l1 := e.fx.Landlord("lina")
	l2 := e.fx.Landlord("lars")
	p1 := e.fx.Property(l1, "1 Elm St")
	e.fx.Property(l1, "2 Elm St")
	e.fx.Property(l2, "9 Oak Ave")

	list, err := e.svc.Properties.List(e.ctx, l1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, p := range list {
		assert.Equal(t, l1.ID, p.LandlordID)
	}

	_, err = e.svc.Properties.Get(e.ctx, l2, p1.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestPropertyService_RoleChecks(t *testing.T) {
	e := newEnv(t)
	tenant := e.fx.Tenant("tom", "tom@example.com")
	admin := e.fx.Admin("ada")

	_, err := e.svc.Properties.List(e.ctx, tenant)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	_, err = e.svc.Properties.List(e.ctx, admin)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	_, err = e.svc.Properties.Create(e.ctx, tenant, service.PropertyInput{AddressLine1: "x", City: "y", RentAmount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestPropertyService_Create(t *testing.T) {
	e := newEnv(t)
	l := e.fx.Landlord("lina")

	p, err := e.svc.Properties.Create(e.ctx, l, service.PropertyInput{
		AddressLine1: " 12 Birch Rd ",
		City:         "Springfield",
		Bedrooms:     2,
		Bathrooms:    1.5,
		RentAmount:   decimal.RequireFromString("1450.00"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, l.ID, p.LandlordID)
	assert.Equal(t, "12 Birch Rd", p.AddressLine1)
	assert.Equal(t, models.PropertyVacant, p.Status)

	_, err = e.svc.Properties.Create(e.ctx, l, service.PropertyInput{AddressLine1: "x", City: "y", RentAmount: decimal.Zero})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	bad := models.PropertyStatus("Sold")
	_, err = e.svc.Properties.Create(e.ctx, l, service.PropertyInput{AddressLine1: "x", City: "y", RentAmount: decimal.NewFromInt(5), Status: bad})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestPropertyService_UpdateNeverReassignsOwner(t *testing.T) {
	e := newEnv(t)
	l1 := e.fx.Landlord("lina")
	l2 := e.fx.Landlord("lars")
	p := e.fx.Property(l1, "1 Elm St")

	city := "Shelbyville"
	_, err := e.svc.Properties.Update(e.ctx, l2, p.ID, service.PropertyPatch{City: &city})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	rent := decimal.NewFromInt(1300)
	status := models.PropertyMaintenance
	got, err := e.svc.Properties.Update(e.ctx, l1, p.ID, service.PropertyPatch{City: &city, RentAmount: &rent, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "Shelbyville", got.City)
	assert.True(t, rent.Equal(got.RentAmount))
	assert.Equal(t, models.PropertyMaintenance, got.Status)

	var stored models.Property
	require.NoError(t, e.db.First(&stored, "id = ?", p.ID).Error)
	assert.Equal(t, l1.ID, stored.LandlordID)
}

func TestPropertyService_UpdateValidation(t *testing.T) {
	e := newEnv(t)
	l := e.fx.Landlord("lina")
	p := e.fx.Property(l, "1 Elm St")

	_, err := e.svc.Properties.Update(e.ctx, l, p.ID, service.PropertyPatch{})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	empty := "  "
	_, err = e.svc.Properties.Update(e.ctx, l, p.ID, service.PropertyPatch{City: &empty})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	neg := -1
	_, err = e.svc.Properties.Update(e.ctx, l, p.ID, service.PropertyPatch{Bedrooms: &neg})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestPropertyService_StatusFollowsActiveLease(t *testing.T) {
	e := newEnv(t)
	l := e.fx.Landlord("lina")
	other := e.fx.Landlord("lars")
	tenant := e.fx.Tenant("tom", "")
	free := e.fx.Property(l, "2 Elm St")

	lease, err := e.svc.Leases.Create(e.ctx, l, service.LeaseInput{PropertyID: free.ID, TenantID: tenant.ID, StartDate: "2026-01-01"})
	require.NoError(t, err)

	for _, st := range []models.PropertyStatus{models.PropertyVacant, models.PropertyMaintenance} {
		_, err := e.svc.Properties.Update(e.ctx, l, free.ID, service.PropertyPatch{Status: &st})
		assert.ErrorIs(t, err, apperr.ErrValidation, st)
	}
	occupied := models.PropertyOccupied
	_, err = e.svc.Properties.Update(e.ctx, other, free.ID, service.PropertyPatch{Status: &occupied})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	var stored models.Property
	require.NoError(t, e.db.First(&stored, "id = ?", free.ID).Error)
	assert.Equal(t, models.PropertyOccupied, stored.Status)

	_, err = e.svc.Leases.UpdateStatus(e.ctx, l, lease.ID, models.LeaseTerminated)
	require.NoError(t, err)
	_, err = e.svc.Properties.Update(e.ctx, l, free.ID, service.PropertyPatch{Status: &occupied})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	maintenance := models.PropertyMaintenance
	got, err := e.svc.Properties.Update(e.ctx, l, free.ID, service.PropertyPatch{Status: &maintenance})
	require.NoError(t, err)
	assert.Equal(t, models.PropertyMaintenance, got.Status)

	_, err = e.svc.Properties.Create(e.ctx, l, service.PropertyInput{AddressLine1: "3 Elm St", City: "Springfield", RentAmount: decimal.NewFromInt(900), Status: occupied})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestPropertyService_Delete(t *testing.T) {
	e := newEnv(t)
	l1 := e.fx.Landlord("lina")
	l2 := e.fx.Landlord("lars")
	tenant := e.fx.Tenant("tom", "")
	leased := e.fx.Property(l1, "1 Elm St")
	free := e.fx.Property(l1, "2 Elm St")
	e.fx.Lease(leased, tenant, models.LeaseActive)

	assert.ErrorIs(t, e.svc.Properties.Delete(e.ctx, l1, leased.ID), apperr.ErrValidation)
	assert.ErrorIs(t, e.svc.Properties.Delete(e.ctx, l2, free.ID), apperr.ErrNotFound)
	require.NoError(t, e.svc.Properties.Delete(e.ctx, l1, free.ID))

	_, err := e.svc.Properties.Get(e.ctx, l1, free.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
