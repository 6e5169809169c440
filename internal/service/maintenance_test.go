package service_test

import (
	"testing"

	"rentexpress/internal/apperr"
	"rentexpress/internal/models"
	"rentexpress/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaintenanceService_CreateInfersProperty(t *testing.T) {
	e := newEnv(t)
	l := e.fx.Landlord("lina")
	tenant := e.fx.Tenant("tom", "")

	_, err := e.svc.Maintenance.Create(e.ctx, tenant, service.MaintenanceInput{Title: "Leak"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	p := e.fx.Property(l, "1 Elm St")
	e.fx.Lease(p, tenant, models.LeaseActive)

	m, err := e.svc.Maintenance.Create(e.ctx, tenant, service.MaintenanceInput{Title: " Leak ", Category: "plumbing"})
	require.NoError(t, err)
	assert.Equal(t, p.ID, m.PropertyID)
	assert.Equal(t, tenant.ID, m.TenantID)
	assert.Equal(t, "Leak", m.Title)
	assert.Equal(t, "Medium", m.Priority)
	assert.Equal(t, models.MaintenanceOpen, m.Status)

	_, err = e.svc.Maintenance.Create(e.ctx, tenant, service.MaintenanceInput{Title: "Leak", Priority: "Whenever"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = e.svc.Maintenance.Create(e.ctx, l, service.MaintenanceInput{Title: "Leak"})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestMaintenanceService_ListNewestFirst(t *testing.T) {
	e := newEnv(t)
	l1 := e.fx.Landlord("lina")
	l2 := e.fx.Landlord("lars")
	t1 := e.fx.Tenant("tom", "")
	t2 := e.fx.Tenant("tia", "")
	e.fx.Lease(e.fx.Property(l1, "1 Elm St"), t1, models.LeaseActive)
	e.fx.Lease(e.fx.Property(l2, "9 Oak Ave"), t2, models.LeaseActive)

	first, err := e.svc.Maintenance.Create(e.ctx, t1, service.MaintenanceInput{Title: "Leak"})
	require.NoError(t, err)
	second, err := e.svc.Maintenance.Create(e.ctx, t1, service.MaintenanceInput{Title: "Heater"})
	require.NoError(t, err)
	_, err = e.svc.Maintenance.Create(e.ctx, t2, service.MaintenanceInput{Title: "Door"})
	require.NoError(t, err)

	list, err := e.svc.Maintenance.List(e.ctx, l1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	list, err = e.svc.Maintenance.List(e.ctx, t2)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Door", list[0].Title)
}

func TestMaintenanceService_UpdateStatus(t *testing.T) {
	e := newEnv(t)
	l := e.fx.Landlord("lina")
	tenant := e.fx.Tenant("tom", "")
	e.fx.Lease(e.fx.Property(l, "1 Elm St"), tenant, models.LeaseActive)
	m, err := e.svc.Maintenance.Create(e.ctx, tenant, service.MaintenanceInput{Title: "Leak"})
	require.NoError(t, err)

	_, err = e.svc.Maintenance.UpdateStatus(e.ctx, tenant, m.ID, models.MaintenanceCompleted)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	_, err = e.svc.Maintenance.UpdateStatus(e.ctx, e.fx.Landlord("lars"), m.ID, models.MaintenanceCompleted)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	got, err := e.svc.Maintenance.UpdateStatus(e.ctx, l, m.ID, models.MaintenanceInProgress)
	require.NoError(t, err)
	assert.Equal(t, models.MaintenanceInProgress, got.Status)

	_, err = e.svc.Maintenance.UpdateStatus(e.ctx, l, m.ID, models.MaintenanceOpen)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	got, err = e.svc.Maintenance.UpdateStatus(e.ctx, l, m.ID, models.MaintenanceCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.MaintenanceCompleted, got.Status)
}
