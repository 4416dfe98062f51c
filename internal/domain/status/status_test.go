package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitions(t *testing.T) {
	tests := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusApproved, true},
		{StatusPending, StatusDeclined, true},
		{StatusPending, StatusPending, false},
		{StatusApproved, StatusDeclined, false},
		{StatusDeclined, StatusApproved, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			next, err := tt.from.TransitionTo(tt.to)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, tt.to, next)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidTransition)
			assert.Equal(t, tt.from, next)
		})
	}
}

func TestParse(t *testing.T) {
	s, err := Parse("approved")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, s)
	assert.True(t, s.IsTerminal())

	_, err = Parse("archived")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}
