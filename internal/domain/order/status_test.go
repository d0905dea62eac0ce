package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_Valid(t *testing.T) {
	for _, s := range []Status{StatusUnpaid, StatusPreparing, StatusReady, StatusCollected, StatusCancelled, StatusRejected} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, Status("pending").Valid())
	assert.False(t, Status("").Valid())
}

func TestStatus_Active(t *testing.T) {
	assert.True(t, StatusUnpaid.Active())
	assert.True(t, StatusPreparing.Active())
	assert.True(t, StatusReady.Active())
	assert.True(t, StatusCollected.Active())
	assert.False(t, StatusCancelled.Active())
	assert.False(t, StatusRejected.Active())
}

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		// Happy path, forward only.
		{StatusUnpaid, StatusPreparing, true},
		{StatusPreparing, StatusReady, true},
		{StatusReady, StatusCollected, true},

		// No skipping, no backward.
		{StatusUnpaid, StatusReady, false},
		{StatusUnpaid, StatusCollected, false},
		{StatusReady, StatusPreparing, false},
		{StatusPreparing, StatusUnpaid, false},

		// Terminal exits from any non-terminal state.
		{StatusUnpaid, StatusCancelled, true},
		{StatusUnpaid, StatusRejected, true},
		{StatusPreparing, StatusCancelled, true},
		{StatusReady, StatusRejected, true},

		// Terminal states are final.
		{StatusCollected, StatusCancelled, false},
		{StatusCancelled, StatusUnpaid, false},
		{StatusRejected, StatusPreparing, false},
		{StatusCollected, StatusReady, false},

		// Unknown values never transition.
		{Status("pending"), StatusPreparing, false},
		{StatusUnpaid, Status("paid"), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}
