package service

import (
	"context"

	"rentexpress/internal/access"
	"rentexpress/internal/apperr"
	"rentexpress/internal/models"
	"rentexpress/internal/scope"
)

type MaintenanceService struct {
	base
}

type MaintenanceInput struct {
	Title       string `json:"title" binding:"required,max=128"`
	Description string `json:"description" binding:"max=4000"`
	Priority    string `json:"priority"`
	Category    string `json:"category" binding:"max=32"`
}

var priorities = map[string]bool{"Low": true, "Medium": true, "High": true, "Emergency": true}

// List returns requests in scope, newest first.
func (s *MaintenanceService) List(ctx context.Context, a access.Actor) ([]models.MaintenanceRequest, error) {
	rows, err := s.rows(ctx, a, scope.Maintenance)
	if err != nil {
		return nil, err
	}
	list := []models.MaintenanceRequest{}
	if rows.Empty {
		return list, nil
	}
	err = s.db.WithContext(ctx).Scopes(rows.Apply).
		Order("created_at DESC").
		Find(&list).Error
	return list, storeErr("list maintenance", "maintenance request", err)
}

// Create files a request against the property of the caller's active lease.
func (s *MaintenanceService) Create(ctx context.Context, a access.Actor, in MaintenanceInput) (models.MaintenanceRequest, error) {
	if err := a.Require(models.RoleTenant); err != nil {
		return models.MaintenanceRequest{}, err
	}
	in.Title = trim(in.Title)
	if in.Title == "" {
		return models.MaintenanceRequest{}, apperr.Validation("title is required")
	}
	if in.Priority == "" {
		in.Priority = "Medium"
	}
	if !priorities[in.Priority] {
		return models.MaintenanceRequest{}, apperr.Validationf("invalid priority %q", in.Priority)
	}

	lease, err := activeLease(ctx, s.db, a.ID)
	if err != nil {
		return models.MaintenanceRequest{}, err
	}
	m := models.MaintenanceRequest{
		PropertyID:  lease.PropertyID,
		TenantID:    a.ID,
		Title:       in.Title,
		Description: trim(in.Description),
		Priority:    in.Priority,
		Status:      models.MaintenanceOpen,
		Category:    trim(in.Category),
	}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return m, apperr.Internal("create maintenance request", err)
	}
	return m, nil
}

// UpdateStatus advances a request on one of the landlord's properties.
func (s *MaintenanceService) UpdateStatus(ctx context.Context, a access.Actor, id string, status models.MaintenanceStatus) (models.MaintenanceRequest, error) {
	var m models.MaintenanceRequest
	if err := a.Require(models.RoleLandlord); err != nil {
		return m, err
	}
	if !status.Valid() {
		return m, apperr.Validationf("invalid status %q", status)
	}
	rows, err := s.rows(ctx, a, scope.Maintenance)
	if err != nil {
		return m, err
	}
	if err := s.find(ctx, rows, "maintenance_requests", id, &m, "maintenance request"); err != nil {
		return m, err
	}
	if !m.Status.CanAdvance(status) {
		return m, apperr.Validationf("cannot move request from %s to %s", m.Status, status)
	}

	res := s.db.WithContext(ctx).Model(&models.MaintenanceRequest{}).
		Scopes(rows.Apply).
		Where("maintenance_requests.id = ? AND maintenance_requests.status = ?", m.ID, m.Status).
		Update("status", status)
	if res.Error != nil {
		return m, apperr.Internal("update maintenance request", res.Error)
	}
	if res.RowsAffected == 0 {
		return m, apperr.Conflict("request changed concurrently")
	}
	m.Status = status
	return m, nil
}
