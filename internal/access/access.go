// Package access resolves bearer credentials into actors.
//
// Verification is an injected capability: handlers and middleware receive a
// Verifier rather than reaching for a global, so tests can pass a fake.
package access

import (
	"context"
	"errors"

	"rentexpress/internal/apperr"
	"rentexpress/internal/models"
	"rentexpress/internal/util"

	"gorm.io/gorm"
)

// Actor is an authenticated identity and its role.
type Actor struct {
	ID       string      `json:"id"`
	Role     models.Role `json:"role"`
	Username string      `json:"username,omitempty"`
}

// Is reports whether the actor holds one of roles.
func (a Actor) Is(roles ...models.Role) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

// Require returns Forbidden unless the actor holds one of roles.
func (a Actor) Require(roles ...models.Role) error {
	if a.ID == "" {
		return apperr.Authentication("not authenticated")
	}
	if !a.Is(roles...) {
		return apperr.Forbidden("role " + string(a.Role) + " may not perform this operation")
	}
	return nil
}

// Verifier maps a presented credential to a live actor.
type Verifier interface {
	Verify(ctx context.Context, credential string) (Actor, error)
}

// VerifierFunc adapts a function to Verifier.
type VerifierFunc func(ctx context.Context, credential string) (Actor, error)

func (f VerifierFunc) Verify(ctx context.Context, credential string) (Actor, error) {
	return f(ctx, credential)
}

// TokenVerifier trusts the claims of any token whose signature and expiry validate.
type TokenVerifier struct {
	Secret string
}

func (v TokenVerifier) Verify(_ context.Context, credential string) (Actor, error) {
	if credential == "" {
		return Actor{}, apperr.Authentication("missing credential")
	}
	claims, err := util.ParseToken(v.Secret, credential)
	if err != nil {
		return Actor{}, &apperr.Error{Kind: apperr.KindAuthentication, Message: "invalid or expired credential", Err: err}
	}
	role := models.Role(claims.Role)
	if !role.Valid() {
		return Actor{}, apperr.Authentication("invalid or expired credential")
	}
	return Actor{ID: claims.UserID, Role: role}, nil
}

// StoreVerifier validates the token and then re-reads the user, so role
// changes and removed accounts take effect immediately.
type StoreVerifier struct {
	Tokens TokenVerifier
	DB     *gorm.DB
}

func (v StoreVerifier) Verify(ctx context.Context, credential string) (Actor, error) {
	claimed, err := v.Tokens.Verify(ctx, credential)
	if err != nil {
		return Actor{}, err
	}
	var user models.User
	if err := v.DB.WithContext(ctx).First(&user, "id = ?", claimed.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Actor{}, apperr.Authentication("account no longer exists")
		}
		return Actor{}, apperr.Internal("load actor", err)
	}
	return Actor{ID: user.ID, Role: user.Role, Username: user.Username}, nil
}

// NewVerifier picks the store-backed verifier when withStore is set.
func NewVerifier(secret string, db *gorm.DB, withStore bool) Verifier {
	tv := TokenVerifier{Secret: secret}
	if withStore && db != nil {
		return StoreVerifier{Tokens: tv, DB: db}
	}
	return tv
}

type ctxKey struct{}

// WithActor stores the actor in ctx.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

// FromContext extracts the actor stored by WithActor.
func FromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(ctxKey{}).(Actor)
	return a, ok && a.ID != ""
}
