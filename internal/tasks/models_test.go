package tasks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePriority(t *testing.T) {
	cases := []struct {
		in      string
		want    Priority
		wantErr bool
	}{
		{"Low", PriorityLow, false},
		{"low", PriorityLow, false},
		{"LOW", PriorityLow, false},
		{"medium", PriorityMedium, false},
		{"Medium", PriorityMedium, false},
		{"HIGH", PriorityHigh, false},
		{" high ", PriorityHigh, false},
		{"", "", true},
		{"urgent", "", true},
		{"Highest", "", true},
		{"med", "", true},
	}

	for _, tc := range cases {
		got, err := ParsePriority(tc.in)
		if tc.wantErr {
			assert.ErrorIs(t, err, ErrBadPriority, "input %q", tc.in)
		} else {
			require.NoError(t, err, "input %q", tc.in)
			assert.Equal(t, tc.want, got)
		}
	}
}

func TestParseDueDate(t *testing.T) {
	got, err := parseDueDate("2026-01-02")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), *got)

	// RFC3339 values are normalized to UTC.
	got, err = parseDueDate("2026-01-02T10:00:00+02:00")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2026, 1, 2, 8, 0, 0, 0, time.UTC), *got)

	got, err = parseDueDate("")
	require.NoError(t, err)
	assert.Nil(t, got)

	for _, bad := range []string{"02-01-2026", "2026/01/02", "tomorrow", "2026-1-2"} {
		_, err := parseDueDate(bad)
		assert.Error(t, err, "input %q", bad)
	}
}
