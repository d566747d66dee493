package basket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusActive, StatusSubmitted, true},
		{StatusActive, StatusCancelled, true},
		{StatusActive, StatusCheckedOut, false},
		{StatusSubmitted, StatusCheckedOut, true},
		{StatusSubmitted, StatusActive, true},
		{StatusSubmitted, StatusCancelled, true},
		{StatusSubmitted, StatusShipped, false},
		{StatusCheckedOut, StatusProcessing, true},
		{StatusCheckedOut, StatusCancelled, true},
		{StatusCheckedOut, StatusDelivered, false},
		{StatusProcessing, StatusShipped, true},
		{StatusProcessing, StatusCancelled, true},
		{StatusShipped, StatusDelivered, true},
		{StatusShipped, StatusCancelled, false},
		{StatusDelivered, StatusRefunded, true},
		{StatusDelivered, StatusActive, false},
		{StatusCancelled, StatusActive, false},
		{StatusRefunded, StatusActive, false},
	}

	for _, tc := range cases {
		got := tc.from.CanTransitionTo(tc.to)
		assert.Equalf(t, tc.allowed, got, "%s -> %s", tc.from.Description(), tc.to.Description())
	}
}

func TestStatusTerminalStatesHaveNoExits(t *testing.T) {
	assert.Empty(t, StatusCancelled.NextPossible())
	assert.Empty(t, StatusRefunded.NextPossible())
}

func TestStatusPredicates(t *testing.T) {
	assert.True(t, StatusActive.IsModifiable())
	assert.True(t, StatusSubmitted.IsModifiable())
	assert.False(t, StatusCheckedOut.IsModifiable())

	assert.False(t, StatusActive.IsOrdered())
	assert.True(t, StatusSubmitted.IsOrdered())

	assert.True(t, StatusProcessing.IsInShipping())
	assert.True(t, StatusShipped.IsInShipping())
	assert.False(t, StatusDelivered.IsInShipping())

	for _, s := range []Status{StatusDelivered, StatusCancelled, StatusRefunded} {
		assert.Truef(t, s.IsCompleted(), "%s should be completed", s.Description())
	}
	for _, s := range []Status{StatusActive, StatusSubmitted, StatusCheckedOut, StatusProcessing, StatusShipped} {
		assert.Falsef(t, s.IsCompleted(), "%s should not be completed", s.Description())
	}

	assert.True(t, StatusProcessing.CanCancel())
	assert.False(t, StatusShipped.CanCancel())
}

func TestStatusFromCode(t *testing.T) {
	s, err := StatusFromCode(4)
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, s)

	_, err = StatusFromCode(8)
	assert.Error(t, err)

	_, err = StatusFromCode(-1)
	assert.Error(t, err)
}

func TestStatusDescriptions(t *testing.T) {
	assert.Equal(t, "Checked Out", StatusCheckedOut.Description())
	assert.Equal(t, "Unknown", Status(42).Description())
}
