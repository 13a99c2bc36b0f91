package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBookingState(t *testing.T) {
	for _, raw := range []string{"ALL", "CURRENT", "PAST", "FUTURE", "WAITING", "APPROVED", "REJECTED"} {
		state, err := ParseBookingState(raw)
		require.NoError(t, err)
		assert.Equal(t, BookingState(raw), state)
	}
}

func TestParseBookingState_Unknown(t *testing.T) {
	cases := []string{"BOGUS", "all", "Current", "", " ALL"}
	for _, raw := range cases {
		_, err := ParseBookingState(raw)
		require.Error(t, err, raw)
		assert.EqualError(t, err, "Unknown state: "+raw)
	}
}
