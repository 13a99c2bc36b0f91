package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Bookings"

// Row is one booking line in the owner report.
type Row struct {
	BookingID  int64
	ItemName   string
	BookerName string
	Start      time.Time
	End        time.Time
	Status     string
}

// BookingsReport renders an owner's bookings into a spreadsheet, one row per
// booking, newest start first as supplied by the caller.
func BookingsReport(rows []Row) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}

	headers := []string{"Booking ID", "Item", "Booker", "Start", "End", "Status"}
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err == nil {
		lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
		_ = f.SetCellStyle(sheetName, "A1", lastHeader, headerStyle)
	}

	for i, row := range rows {
		values := []any{
			row.BookingID,
			row.ItemName,
			row.BookerName,
			row.Start.Format(time.RFC3339),
			row.End.Format(time.RFC3339),
			row.Status,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
			}
		}
	}

	_ = f.SetColWidth(sheetName, "A", "F", 22)

	return f, nil
}
