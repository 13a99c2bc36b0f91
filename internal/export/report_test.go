package export

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingsReport(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	rows := []Row{
		{BookingID: 2, ItemName: "Drill", BookerName: "Alice", Start: now, End: now.Add(24 * time.Hour), Status: "APPROVED"},
		{BookingID: 1, ItemName: "Saw", BookerName: "Bob", Start: now.Add(-48 * time.Hour), End: now.Add(-24 * time.Hour), Status: "REJECTED"},
	}

	f, err := BookingsReport(rows)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	require.Equal(t, []string{"Bookings"}, sheets)

	header, err := f.GetCellValue("Bookings", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Booking ID", header)

	item, err := f.GetCellValue("Bookings", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Drill", item)

	status, err := f.GetCellValue("Bookings", "F3")
	require.NoError(t, err)
	assert.Equal(t, "REJECTED", status)

	start, err := f.GetCellValue("Bookings", "D2")
	require.NoError(t, err)
	assert.Equal(t, now.Format(time.RFC3339), start)
}

func TestBookingsReport_Empty(t *testing.T) {
	f, err := BookingsReport(nil)
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue("Bookings", "F1")
	require.NoError(t, err)
	assert.Equal(t, "Status", header)
}
