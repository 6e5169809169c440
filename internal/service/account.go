package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"rentexpress/internal/access"
	"rentexpress/internal/apperr"
	"rentexpress/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	maxFailedLogins = 5
	lockoutDuration = 10 * time.Minute
)

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]{3,32}$`)

// AccountService handles registration, login and profile maintenance.
type AccountService struct {
	base
	bcryptCost int
}

type RegisterInput struct {
	Username        string         `json:"username" binding:"required"`
	Password        string         `json:"password" binding:"required"`
	ConfirmPassword string         `json:"confirmPassword" binding:"required"`
	Role            models.Role    `json:"role" binding:"required"`
	Profile         models.Profile `json:"profile"`
}

// profileField describes one allowed key of a role's profile.
type profileField struct {
	required bool
	email    bool
	max      int
}

var profileSchemas = map[models.Role]map[string]profileField{
	models.RoleTenant: {
		"fullName": {required: true, max: 128},
		"email":    {email: true, max: 254},
		"phone":    {max: 32},
	},
	models.RoleLandlord: {
		"fullName":    {required: true, max: 128},
		"companyName": {max: 128},
		"email":       {email: true, max: 254},
		"phone":       {max: 32},
	},
	models.RoleAdmin: {
		"fullName": {max: 128},
		"email":    {email: true, max: 254},
	},
}

// ValidateProfile checks p against the schema of role and returns a
// normalized copy.
func ValidateProfile(role models.Role, p models.Profile) (models.Profile, error) {
	schema, ok := profileSchemas[role]
	if !ok {
		return nil, apperr.Validationf("invalid role %q", role)
	}
	out := models.Profile{}
	for k, v := range p {
		f, ok := schema[k]
		if !ok {
			return nil, apperr.Validationf("unknown profile field %q", k)
		}
		if v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return nil, apperr.Validationf("profile field %q must be a string", k)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if len(s) > f.max {
			return nil, apperr.Validationf("profile field %q is too long", k)
		}
		if f.email {
			addr, err := mail.ParseAddress(s)
			if err != nil || addr.Address != s {
				return nil, apperr.Validationf("profile field %q is not a valid email", k)
			}
		}
		out[k] = s
	}
	for k, f := range schema {
		if _, set := out[k]; f.required && !set {
			return nil, apperr.Validationf("profile field %q is required", k)
		}
	}
	return out, nil
}

// StrongPassword requires 8-64 characters with upper, lower and digit.
func StrongPassword(pwd string) bool {
	if len(pwd) < 8 || len(pwd) > 64 {
		return false
	}
	var hasUpper, hasLower, hasDigit bool
	for _, ch := range pwd {
		switch {
		case ch >= 'A' && ch <= 'Z':
			hasUpper = true
		case ch >= 'a' && ch <= 'z':
			hasLower = true
		case ch >= '0' && ch <= '9':
			hasDigit = true
		}
	}
	return hasUpper && hasLower && hasDigit
}

// UsernameAvailable reports whether no account uses name, ignoring case.
func (s *AccountService) UsernameAvailable(ctx context.Context, name string) (bool, error) {
	name = trim(name)
	if !usernameRe.MatchString(name) {
		return false, apperr.Validation("username must be 3-32 letters, digits or underscores")
	}
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("LOWER(username) = LOWER(?)", name).
		Count(&n).Error; err != nil {
		return false, apperr.Internal("check username", err)
	}
	return n == 0, nil
}

// Register creates a tenant or landlord account.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	if in.Role != models.RoleTenant && in.Role != models.RoleLandlord {
		return models.User{}, apperr.Validation("role must be tenant or landlord")
	}
	if in.Password != in.ConfirmPassword {
		return models.User{}, apperr.Validation("passwords do not match")
	}
	return s.create(ctx, in.Username, in.Password, in.Role, in.Profile)
}

// CreateAdmin provisions an admin account. It is not reachable over HTTP.
func (s *AccountService) CreateAdmin(ctx context.Context, username, password string, profile models.Profile) (models.User, error) {
	return s.create(ctx, username, password, models.RoleAdmin, profile)
}

func (s *AccountService) create(ctx context.Context, username, password string, role models.Role, profile models.Profile) (models.User, error) {
	username = trim(username)
	if !usernameRe.MatchString(username) {
		return models.User{}, apperr.Validation("username must be 3-32 letters, digits or underscores")
	}
	if !StrongPassword(password) {
		return models.User{}, apperr.Validation("password must be 8-64 characters with upper, lower case letters and digits")
	}
	profile, err := ValidateProfile(role, profile)
	if err != nil {
		return models.User{}, err
	}
	available, err := s.UsernameAvailable(ctx, username)
	if err != nil {
		return models.User{}, err
	}
	if !available {
		return models.User{}, apperr.Conflict("username already taken")
	}
	hash, err := s.hash(password)
	if err != nil {
		return models.User{}, err
	}

	u := models.User{Username: username, PasswordHash: hash, Role: role, Profile: profile}
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return u, apperr.Conflict("username already taken")
		}
		return u, apperr.Internal("create user", err)
	}
	return u, nil
}

func (s *AccountService) hash(password string) (string, error) {
	cost := s.bcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", apperr.Internal("hash password", err)
	}
	return string(b), nil
}

// Authenticate checks credentials with lockout after repeated failures.
func (s *AccountService) Authenticate(ctx context.Context, username, password, ip string) (models.User, error) {
	var u models.User
	db := s.db.WithContext(ctx)
	err := db.Where("LOWER(username) = LOWER(?)", trim(username)).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return u, apperr.Authentication("invalid username or password")
	}
	if err != nil {
		return u, apperr.Internal("load user", err)
	}

	now := s.now()
	if u.LockedUntil != nil && now.Before(*u.LockedUntil) {
		return u, apperr.Authentication("account locked, try again later")
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		updates := map[string]any{"failed_login_attempts": u.FailedLoginAttempts + 1}
		if u.FailedLoginAttempts+1 >= maxFailedLogins {
			updates["failed_login_attempts"] = 0
			updates["locked_until"] = now.Add(lockoutDuration)
		}
		if err := db.Model(&u).Updates(updates).Error; err != nil {
			return u, apperr.Internal("record failed login", err)
		}
		return u, apperr.Authentication("invalid username or password")
	}

	if err := db.Model(&u).Updates(map[string]any{
		"failed_login_attempts": 0,
		"locked_until":          nil,
		"last_login_at":         now,
		"last_login_ip":         ip,
	}).Error; err != nil {
		return u, apperr.Internal("record login", err)
	}
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
	u.LastLoginAt = &now
	u.LastLoginIP = ip
	return u, nil
}

// Me loads the caller's account.
func (s *AccountService) Me(ctx context.Context, a access.Actor) (models.User, error) {
	var u models.User
	if a.ID == "" {
		return u, apperr.Authentication("not authenticated")
	}
	err := s.db.WithContext(ctx).Where("id = ?", a.ID).First(&u).Error
	return u, storeErr("load user", "user", err)
}

// UpdateProfile merges patch into the caller's profile. A null value
// removes an optional field.
func (s *AccountService) UpdateProfile(ctx context.Context, a access.Actor, patch models.Profile) (models.User, error) {
	u, err := s.Me(ctx, a)
	if err != nil {
		return u, err
	}
	if len(patch) == 0 {
		return u, apperr.Validation("nothing to update")
	}
	merged := models.Profile{}
	for k, v := range u.Profile {
		merged[k] = v
	}
	for k, v := range patch {
		if v == nil {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}
	merged, err = ValidateProfile(u.Role, merged)
	if err != nil {
		return u, err
	}
	if err := s.db.WithContext(ctx).Model(&u).Update("profile", merged).Error; err != nil {
		return u, apperr.Internal("update profile", err)
	}
	u.Profile = merged
	return u, nil
}

// ChangePassword replaces the caller's password after checking the old one.
func (s *AccountService) ChangePassword(ctx context.Context, a access.Actor, oldPassword, newPassword string) error {
	u, err := s.Me(ctx, a)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(oldPassword)) != nil {
		return apperr.Validation("current password is incorrect")
	}
	if !StrongPassword(newPassword) {
		return apperr.Validation("password must be 8-64 characters with upper, lower case letters and digits")
	}
	if oldPassword == newPassword {
		return apperr.Validation("new password must differ from the current one")
	}
	hash, err := s.hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(&u).Update("password_hash", hash).Error; err != nil {
		return apperr.Internal("update password", fmt.Errorf("user %s: %w", u.ID, err))
	}
	return nil
}
