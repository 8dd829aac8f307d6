package client_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/climaborough/go-platform-client/client"
)

func TestDeriveTimeWindowMonth(t *testing.T) {
	tests := []struct {
		name  string
		token string
		start time.Time
		end   time.Time
	}{
		{
			"non-leap february",
			"2025-02",
			time.Date(2025, 2, 1, 0, 0, 0, 0, time.Local),
			time.Date(2025, 2, 28, 23, 59, 59, 999000000, time.Local),
		},
		{
			"leap february",
			"2024-02",
			time.Date(2024, 2, 1, 0, 0, 0, 0, time.Local),
			time.Date(2024, 2, 29, 23, 59, 59, 999000000, time.Local),
		},
		{
			"december rolls into next year",
			"2025-12",
			time.Date(2025, 12, 1, 0, 0, 0, 0, time.Local),
			time.Date(2025, 12, 31, 23, 59, 59, 999000000, time.Local),
		},
		{
			"unpadded month",
			"2025-7",
			time.Date(2025, 7, 1, 0, 0, 0, 0, time.Local),
			time.Date(2025, 7, 31, 23, 59, 59, 999000000, time.Local),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			start, end, err := client.DeriveTimeWindow(tc.token)
			require.NoError(t, err)
			require.Equal(t, tc.start, start)
			require.Equal(t, tc.end, end)
		})
	}
}

func TestDeriveTimeWindowPaddedAndUnpaddedAgree(t *testing.T) {
	paddedStart, paddedEnd, err := client.DeriveTimeWindow("2025-07")
	require.NoError(t, err)
	unpaddedStart, unpaddedEnd, err := client.DeriveTimeWindow("2025-7")
	require.NoError(t, err)
	require.Equal(t, paddedStart, unpaddedStart)
	require.Equal(t, paddedEnd, unpaddedEnd)
}

func TestDeriveTimeWindowRange(t *testing.T) {
	start, end, err := client.DeriveTimeWindow("2025-03-10|2025-03-12")
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.Local), start)
	require.Equal(t, time.Date(2025, 3, 12, 23, 59, 59, 999000000, time.Local), end)
}

func TestDeriveTimeWindowSingleDayRange(t *testing.T) {
	start, end, err := client.DeriveTimeWindow("2025-03-10|2025-03-10")
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.Local), start)
	require.Equal(t, time.Date(2025, 3, 10, 23, 59, 59, 999000000, time.Local), end)
}

func TestDeriveTimeWindowInvalid(t *testing.T) {
	for _, token := range []string{"", "2025", "2025-13", "2025-00", "july-2025", "2025-03-10|nonsense", "x|y"} {
		t.Run(token, func(t *testing.T) {
			_, _, err := client.DeriveTimeWindow(token)
			require.Error(t, err)
		})
	}
}
