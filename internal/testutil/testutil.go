// Package testutil builds throwaway stores and fixtures for package tests.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"rentexpress/internal/access"
	"rentexpress/internal/config"
	"rentexpress/internal/database"
	"rentexpress/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var seq atomic.Int64

// NewDB returns a migrated, private in-memory SQLite store.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	path := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, seq.Add(1))

	db, err := database.Init(config.DatabaseConfig{Driver: "sqlite", Path: path})
	if err != nil {
		t.Fatalf("init db: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

// QueryCounter counts SELECT statements issued through db.
type QueryCounter struct {
	n atomic.Int64
}

func (q *QueryCounter) Count() int64 { return q.n.Load() }
func (q *QueryCounter) Reset()       { q.n.Store(0) }

// CountQueries registers a callback counting every query executed by db.
func CountQueries(t testing.TB, db *gorm.DB) *QueryCounter {
	t.Helper()
	q := &QueryCounter{}
	name := fmt.Sprintf("testutil:count_%d", seq.Add(1))
	if err := db.Callback().Query().After("gorm:query").Register(name, func(*gorm.DB) {
		q.n.Add(1)
	}); err != nil {
		t.Fatalf("register callback: %v", err)
	}
	return q
}

// Fixtures creates domain rows directly, bypassing the scoped services.
type Fixtures struct {
	T  testing.TB
	DB *gorm.DB
}

func (f Fixtures) user(role models.Role, username string, profile models.Profile) access.Actor {
	f.T.Helper()
	u := models.User{Username: username, PasswordHash: "x", Role: role, Profile: profile}
	if err := f.DB.Create(&u).Error; err != nil {
		f.T.Fatalf("create %s: %v", role, err)
	}
	return access.Actor{ID: u.ID, Role: role, Username: username}
}

func (f Fixtures) Landlord(username string) access.Actor {
	return f.user(models.RoleLandlord, username, models.Profile{"fullName": username, "email": username + "@landlords.test"})
}

// Tenant creates a tenant; an empty email leaves the profile without one.
func (f Fixtures) Tenant(username, email string) access.Actor {
	p := models.Profile{"fullName": username}
	if email != "" {
		p["email"] = email
	}
	return f.user(models.RoleTenant, username, p)
}

func (f Fixtures) Admin(username string) access.Actor {
	return f.user(models.RoleAdmin, username, models.Profile{"fullName": username})
}

func (f Fixtures) Property(landlord access.Actor, street string) models.Property {
	f.T.Helper()
	p := models.Property{
		LandlordID:   landlord.ID,
		AddressLine1: street,
		City:         "Springfield",
		RentAmount:   decimal.NewFromInt(1200),
		Status:       models.PropertyVacant,
	}
	if err := f.DB.Create(&p).Error; err != nil {
		f.T.Fatalf("create property: %v", err)
	}
	return p
}

func (f Fixtures) Lease(p models.Property, tenant access.Actor, status models.LeaseStatus) models.Lease {
	f.T.Helper()
	l := models.Lease{
		PropertyID: p.ID,
		TenantID:   tenant.ID,
		LandlordID: p.LandlordID,
		StartDate:  "2026-01-01",
		EndDate:    "2026-12-31",
		RentAmount: p.RentAmount,
		Deposit:    decimal.NewFromInt(500),
		Status:     status,
	}
	if err := f.DB.Create(&l).Error; err != nil {
		f.T.Fatalf("create lease: %v", err)
	}
	return l
}

func (f Fixtures) Charge(l models.Lease, amount int64) models.Charge {
	f.T.Helper()
	c := models.Charge{
		LeaseID:     l.ID,
		TenantID:    l.TenantID,
		LandlordID:  l.LandlordID,
		Description: "Monthly rent",
		Amount:      decimal.NewFromInt(amount),
		Category:    "rent",
		ChargeDate:  "2026-01-01",
		DueDate:     "2026-01-05",
		Status:      models.ChargeScheduled,
	}
	if err := f.DB.Create(&c).Error; err != nil {
		f.T.Fatalf("create charge: %v", err)
	}
	return c
}

func (f Fixtures) Payment(l models.Lease, amount int64) models.Payment {
	f.T.Helper()
	p := models.Payment{
		LeaseID:  l.ID,
		TenantID: l.TenantID,
		Amount:   decimal.NewFromInt(amount),
		Date:     l.CreatedAt,
		Status:   models.PaymentPaid,
		Method:   "card",
	}
	if err := f.DB.Create(&p).Error; err != nil {
		f.T.Fatalf("create payment: %v", err)
	}
	return p
}
