package service

import (
	"context"
	"errors"

	"rentexpress/internal/access"
	"rentexpress/internal/apperr"
	"rentexpress/internal/models"
	"rentexpress/internal/scope"
	"rentexpress/internal/util"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type LeaseService struct {
	base
}

// LeaseInput creates a lease on an owned property for an existing tenant.
type LeaseInput struct {
	PropertyID string          `json:"propertyId" binding:"required"`
	TenantID   string          `json:"tenantId" binding:"required"`
	StartDate  string          `json:"startDate" binding:"required"`
	EndDate    string          `json:"endDate"`
	RentAmount decimal.Decimal `json:"rentAmount"`
	Deposit    decimal.Decimal `json:"deposit"`
	Autopay    bool            `json:"autopay"`
}

func (s *LeaseService) List(ctx context.Context, a access.Actor) ([]models.Lease, error) {
	rows, err := s.rows(ctx, a, scope.Lease)
	if err != nil {
		return nil, err
	}
	list := []models.Lease{}
	if rows.Empty {
		return list, nil
	}
	err = s.db.WithContext(ctx).Scopes(rows.Apply).
		Order("created_at DESC").
		Find(&list).Error
	return list, storeErr("list leases", "lease", err)
}

func (s *LeaseService) Get(ctx context.Context, a access.Actor, id string) (models.Lease, error) {
	var l models.Lease
	rows, err := s.rows(ctx, a, scope.Lease)
	if err != nil {
		return l, err
	}
	return l, s.find(ctx, rows, "leases", id, &l, "lease")
}

// Current returns the caller's active lease.
func (s *LeaseService) Current(ctx context.Context, a access.Actor) (models.Lease, error) {
	if err := a.Require(models.RoleTenant); err != nil {
		return models.Lease{}, err
	}
	return activeLease(ctx, s.db, a.ID)
}

// Create opens a lease and marks the property occupied.
func (s *LeaseService) Create(ctx context.Context, a access.Actor, in LeaseInput) (models.Lease, error) {
	if err := a.Require(models.RoleLandlord); err != nil {
		return models.Lease{}, err
	}
	if err := util.ValidateDate(in.StartDate); err != nil {
		return models.Lease{}, apperr.Validation("startDate: " + err.Error())
	}
	if in.EndDate != "" {
		if err := util.ValidateDate(in.EndDate); err != nil {
			return models.Lease{}, apperr.Validation("endDate: " + err.Error())
		}
		if in.EndDate < in.StartDate {
			return models.Lease{}, apperr.Validation("endDate is before startDate")
		}
	}
	if err := util.ValidateNonNegative(in.Deposit); err != nil {
		return models.Lease{}, apperr.Validation("deposit: " + err.Error())
	}

	var lease models.Lease
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Property
		if err := tx.Where("id = ? AND landlord_id = ?", in.PropertyID, a.ID).First(&p).Error; err != nil {
			return storeErr("load property", "property", err)
		}

		var tenant models.User
		if err := tx.Where("id = ? AND role = ?", in.TenantID, models.RoleTenant).First(&tenant).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Validation("tenant does not exist")
			}
			return apperr.Internal("load tenant", err)
		}

		var n int64
		if err := tx.Model(&models.Lease{}).
			Where("tenant_id = ? AND status = ?", tenant.ID, models.LeaseActive).
			Count(&n).Error; err != nil {
			return apperr.Internal("count tenant leases", err)
		}
		if n > 0 {
			return apperr.Conflict("tenant already has an active lease")
		}
		if err := tx.Model(&models.Lease{}).
			Where("property_id = ? AND status = ?", p.ID, models.LeaseActive).
			Count(&n).Error; err != nil {
			return apperr.Internal("count property leases", err)
		}
		if n > 0 {
			return apperr.Conflict("property already has an active lease")
		}

		rent := in.RentAmount
		if rent.IsZero() {
			rent = p.RentAmount
		}
		if err := util.ValidateAmount(rent); err != nil {
			return apperr.Validation("rentAmount: " + err.Error())
		}

		lease = models.Lease{
			PropertyID: p.ID,
			TenantID:   tenant.ID,
			LandlordID: a.ID,
			StartDate:  in.StartDate,
			EndDate:    in.EndDate,
			RentAmount: rent,
			Deposit:    in.Deposit,
			Status:     models.LeaseActive,
			Autopay:    in.Autopay,
		}
		if err := tx.Create(&lease).Error; err != nil {
			return apperr.Internal("create lease", err)
		}
		if err := tx.Model(&models.Property{}).Where("id = ?", p.ID).
			Update("status", models.PropertyOccupied).Error; err != nil {
			return apperr.Internal("occupy property", err)
		}
		return nil
	})
	return lease, err
}

// UpdateStatus ends an active lease in scope and frees its property.
func (s *LeaseService) UpdateStatus(ctx context.Context, a access.Actor, id string, status models.LeaseStatus) (models.Lease, error) {
	if err := a.Require(models.RoleLandlord); err != nil {
		return models.Lease{}, err
	}
	if status != models.LeaseExpired && status != models.LeaseTerminated {
		return models.Lease{}, apperr.Validationf("status must be %q or %q", models.LeaseExpired, models.LeaseTerminated)
	}
	l, err := s.Get(ctx, a, id)
	if err != nil {
		return l, err
	}
	if l.Status != models.LeaseActive {
		return l, apperr.Validationf("lease is already %s", l.Status)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Lease{}).
			Where("id = ? AND status = ?", l.ID, models.LeaseActive).
			Update("status", status)
		if res.Error != nil {
			return apperr.Internal("update lease", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.Conflict("lease changed concurrently")
		}
		return vacate(tx, l.PropertyID)
	})
	if err != nil {
		return l, err
	}
	l.Status = status
	return l, nil
}

// SetAutopay toggles autopay on the caller's active lease.
func (s *LeaseService) SetAutopay(ctx context.Context, a access.Actor, enabled bool) (models.Lease, error) {
	if err := a.Require(models.RoleTenant); err != nil {
		return models.Lease{}, err
	}
	l, err := activeLease(ctx, s.db, a.ID)
	if err != nil {
		return l, err
	}
	if err := s.db.WithContext(ctx).Model(&models.Lease{}).
		Where("id = ? AND tenant_id = ?", l.ID, a.ID).
		Update("autopay", enabled).Error; err != nil {
		return l, apperr.Internal("update autopay", err)
	}
	l.Autopay = enabled
	return l, nil
}

// ExpireEnded moves active leases whose end date is before today to expired.
// It runs without an actor and is invoked by the scheduler.
func (s *LeaseService) ExpireEnded(ctx context.Context, today string) (int, error) {
	if err := util.ValidateDate(today); err != nil {
		return 0, apperr.Validation("today: " + err.Error())
	}
	var ended []models.Lease
	if err := s.db.WithContext(ctx).
		Where("status = ? AND end_date <> '' AND end_date < ?", models.LeaseActive, today).
		Find(&ended).Error; err != nil {
		return 0, apperr.Internal("find ended leases", err)
	}

	expired := 0
	for _, l := range ended {
		changed := false
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&models.Lease{}).
				Where("id = ? AND status = ?", l.ID, models.LeaseActive).
				Update("status", models.LeaseExpired)
			if res.Error != nil || res.RowsAffected == 0 {
				return res.Error
			}
			changed = true
			return vacate(tx, l.PropertyID)
		})
		if err != nil {
			return expired, apperr.Internal("expire lease", err)
		}
		if changed {
			expired++
		}
	}
	return expired, nil
}

func vacate(tx *gorm.DB, propertyID string) error {
	if err := tx.Model(&models.Property{}).
		Where("id = ? AND status = ?", propertyID, models.PropertyOccupied).
		Update("status", models.PropertyVacant).Error; err != nil {
		return apperr.Internal("vacate property", err)
	}
	return nil
}
