package domain

import (
	"errors"
	"fmt"
	"testing"

	"cashgame/domain/money"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrAlreadyResolved(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("failed to approve buy-in 7: %w", ErrAlreadyResolved)

	assert.ErrorIs(t, wrapped, ErrAlreadyResolved)
	assert.ErrorIs(t, wrapped, ErrNotFound)
	assert.NotErrorIs(t, ErrNotFound, ErrAlreadyResolved)
}

func TestDerivedInvalidInputErrors(t *testing.T) {
	t.Parallel()

	for _, err := range []error{ErrSessionNotActive, ErrNonPositiveAmount, ErrNotSeated} {
		assert.ErrorIs(t, err, ErrInvalidInput)
	}
	assert.NotErrorIs(t, ErrSessionNotActive, ErrNonPositiveAmount)
}

func TestAuditMismatchError(t *testing.T) {
	t.Parallel()

	var err error = &AuditMismatchError{
		SessionID: 3,
		Pool:      money.FromUnits(300),
		TotalOut:  money.FromUnits(250),
	}
	wrapped := fmt.Errorf("close failed: %w", err)

	assert.ErrorIs(t, wrapped, ErrAuditMismatch)

	var mismatch *AuditMismatchError
	require.True(t, errors.As(wrapped, &mismatch))
	assert.Equal(t, money.FromUnits(50), mismatch.Discrepancy())
	assert.Contains(t, mismatch.Error(), "pool 300.00, total out 250.00, discrepancy 50.00")
}
