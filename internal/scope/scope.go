// Package scope computes, per entity, the rows an actor may read or write.
//
// Every list, get, update and delete in the service layer applies one of
// these predicates before touching the store, so the ownership rules live in
// exactly one place:
//
//	entity       landlord                         tenant
//	property     landlord_id = actor              -
//	lease        property owned by actor          tenant_id = actor
//	payment      lease.property owned by actor    tenant_id = actor
//	charge       landlord_id = actor              tenant_id = actor
//	maintenance  property owned by actor          tenant_id = actor
//	document     -                                tenant_id = actor
//
// Admins hold no domain scope.
package scope

import (
	"context"
	"fmt"

	"rentexpress/internal/access"
	"rentexpress/internal/apperr"
	"rentexpress/internal/models"

	"gorm.io/gorm"
)

// Entity names a scoped table.
type Entity string

const (
	Property    Entity = "property"
	Lease       Entity = "lease"
	Payment     Entity = "payment"
	Charge      Entity = "charge"
	Maintenance Entity = "maintenance"
	Document    Entity = "document"
)

var readers = map[Entity][]models.Role{
	Property:    {models.RoleLandlord},
	Lease:       {models.RoleLandlord, models.RoleTenant},
	Payment:     {models.RoleLandlord, models.RoleTenant},
	Charge:      {models.RoleLandlord, models.RoleTenant},
	Maintenance: {models.RoleLandlord, models.RoleTenant},
	Document:    {models.RoleTenant},
}

// Rows is a resolved scope. When Empty is set the actor can see nothing
// and callers must return an empty result without querying.
type Rows struct {
	Empty bool
	where func(*gorm.DB) *gorm.DB
}

// Apply narrows db to the scope. Use with db.Scopes(rows.Apply).
func (r Rows) Apply(db *gorm.DB) *gorm.DB {
	if r.Empty {
		// never reached by well-behaved callers; fail closed
		return db.Where("1 = 0")
	}
	return r.where(db)
}

func empty() Rows { return Rows{Empty: true} }

func column(col string, id string) Rows {
	return Rows{where: func(db *gorm.DB) *gorm.DB { return db.Where(col+" = ?", id) }}
}

// Resolver computes scopes; landlord scopes derived from property
// ownership need one store read for the owned property ids.
type Resolver struct {
	DB *gorm.DB
}

// Permit returns Forbidden unless a's role may access e at all.
func Permit(a access.Actor, e Entity) error {
	return a.Require(readers[e]...)
}

// For resolves the scope of entity e for actor a.
func (r Resolver) For(ctx context.Context, a access.Actor, e Entity) (Rows, error) {
	if err := Permit(a, e); err != nil {
		return Rows{}, err
	}

	switch e {
	case Property:
		return column("properties.landlord_id", a.ID), nil

	case Charge:
		if a.Role == models.RoleLandlord {
			return column("charges.landlord_id", a.ID), nil
		}
		return column("charges.tenant_id", a.ID), nil

	case Document:
		return column("documents.tenant_id", a.ID), nil

	case Lease:
		if a.Role == models.RoleTenant {
			return column("leases.tenant_id", a.ID), nil
		}
		return r.ownedProperties(ctx, a, func(db *gorm.DB, ids []string) *gorm.DB {
			return db.Where("leases.property_id IN ?", ids)
		})

	case Maintenance:
		if a.Role == models.RoleTenant {
			return column("maintenance_requests.tenant_id", a.ID), nil
		}
		return r.ownedProperties(ctx, a, func(db *gorm.DB, ids []string) *gorm.DB {
			return db.Where("maintenance_requests.property_id IN ?", ids)
		})

	case Payment:
		if a.Role == models.RoleTenant {
			return column("payments.tenant_id", a.ID), nil
		}
		return r.ownedProperties(ctx, a, func(db *gorm.DB, ids []string) *gorm.DB {
			return db.Select("payments.*").
				Joins("JOIN leases ON leases.id = payments.lease_id").
				Where("leases.property_id IN ?", ids)
		})
	}
	return Rows{}, fmt.Errorf("scope: unknown entity %q", e)
}

func (r Resolver) ownedProperties(ctx context.Context, a access.Actor, where func(*gorm.DB, []string) *gorm.DB) (Rows, error) {
	ids, err := r.PropertyIDs(ctx, a.ID)
	if err != nil {
		return Rows{}, err
	}
	if len(ids) == 0 {
		return empty(), nil
	}
	return Rows{where: func(db *gorm.DB) *gorm.DB { return where(db, ids) }}, nil
}

// PropertyIDs lists the ids of properties owned by landlordID.
func (r Resolver) PropertyIDs(ctx context.Context, landlordID string) ([]string, error) {
	var ids []string
	if err := r.DB.WithContext(ctx).Model(&models.Property{}).
		Where("landlord_id = ?", landlordID).
		Pluck("id", &ids).Error; err != nil {
		return nil, apperr.Internal("load owned properties", err)
	}
	return ids, nil
}
