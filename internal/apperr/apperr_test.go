package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(NotFound("no active lease")))
	assert.Equal(t, KindForbidden, KindOf(fmt.Errorf("wrapped: %w", Forbidden("nope"))))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestIsMatchesSentinelByKind(t *testing.T) {
	err := fmt.Errorf("list leases: %w", NotFound("lease not found"))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrForbidden))
}

func TestMessageOfHidesInternalCause(t *testing.T) {
	err := Internal("list charges", errors.New("dial tcp 10.0.0.1:5432: connection refused"))
	assert.Equal(t, "internal server error", MessageOf(err))
	assert.Equal(t, "internal server error", MessageOf(errors.New("raw")))
	assert.Equal(t, "bad kind", MessageOf(Validation("bad kind")))
}

func TestEmailDeliveryKeepsGatewayMessage(t *testing.T) {
	err := EmailDelivery(errors.New("mailbox unavailable"))
	assert.Equal(t, KindEmailDelivery, KindOf(err))
	assert.Contains(t, MessageOf(err), "mailbox unavailable")
}
