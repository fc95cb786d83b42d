package pserrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPairsDisplayWithCode(t *testing.T) {
	err := New(KindInvalidAmount, "corr-1", "amount out of range")
	assert.Equal(t, 9201, err.Code)
	assert.Equal(t, "There was an error (9201), please contact support.", err.Display)
	assert.Equal(t, "corr-1", err.CorrelationID)
}

func TestIsMatchesOnKind(t *testing.T) {
	err := New(KindPayPalUserCancelled, "corr-2", "user closed browser")
	wrapped := fmt.Errorf("tokenize: %w", err)
	assert.True(t, errors.Is(wrapped, New(KindPayPalUserCancelled, "", "")))
	assert.False(t, errors.Is(wrapped, New(KindPayPalFailedAuthorization, "", "")))
}

func TestFromForeignError(t *testing.T) {
	err := From(errors.New("boom"), "corr-3")
	require.NotNil(t, err)
	assert.Equal(t, KindGenericAPIError, err.Kind)
	assert.Equal(t, "corr-3", err.CorrelationID)
}

func TestIsUserCancelled(t *testing.T) {
	for _, k := range []Kind{KindApplePayUserCancelled, KindPayPalUserCancelled, KindVenmoUserCancelled, KindThreeDSUserCancelled} {
		if !IsUserCancelled(New(k, "", "")) {
			t.Fatalf("expected %v to be user cancellation", k)
		}
	}
	if IsUserCancelled(New(KindTimeoutError, "", "")) {
		t.Fatalf("timeout must not count as user cancellation")
	}
}

func TestEveryKindHasAUniqueCode(t *testing.T) {
	seen := map[int]Kind{}
	for kind, code := range kindCodes {
		prev, dup := seen[code]
		require.Falsef(t, dup, "code %d shared by %v and %v", code, prev, kind)
		seen[code] = kind
	}
}
