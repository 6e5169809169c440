package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Role is the authorization role carried by every actor.
type Role string

const (
	RoleTenant   Role = "tenant"
	RoleLandlord Role = "landlord"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleTenant, RoleLandlord, RoleAdmin:
		return true
	}
	return false
}

// Profile is the free-form, role-shaped part of an actor record.
type Profile map[string]any

// Value stores the profile as a JSON object.
func (p Profile) Value() (driver.Value, error) {
	if p == nil {
		return "{}", nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan reads a JSON object written by Value.
func (p *Profile) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*p = Profile{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("profile: unsupported type %T", src)
	}
	out := Profile{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return fmt.Errorf("profile: %w", err)
		}
	}
	*p = out
	return nil
}

// Email returns the contact address on file, or "" when there is none.
func (p Profile) Email() string {
	if p == nil {
		return ""
	}
	s, _ := p["email"].(string)
	return strings.TrimSpace(s)
}

// Name returns the display name stored in the profile.
func (p Profile) Name() string {
	if p == nil {
		return ""
	}
	if s, ok := p["fullName"].(string); ok && s != "" {
		return s
	}
	s, _ := p["companyName"].(string)
	return s
}

// User represents an actor of the platform.
type User struct {
	Model
	Username     string  `gorm:"size:64;uniqueIndex;not null" json:"username"`
	PasswordHash string  `gorm:"size:255;not null" json:"-"`
	Role         Role    `gorm:"size:16;index;not null" json:"role"`
	Profile      Profile `gorm:"type:text" json:"profile"`

	FailedLoginAttempts int        `gorm:"default:0" json:"-"`
	LockedUntil         *time.Time `gorm:"index" json:"-"`
	LastLoginAt         *time.Time `json:"lastLoginAt,omitempty"`
	LastLoginIP         string     `gorm:"size:64" json:"-"`
}
