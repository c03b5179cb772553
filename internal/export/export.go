// Package export renders admin data as Excel workbooks.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"concierge/internal/models"
	"concierge/internal/pricing"
)

// Workbook builds a multi-sheet Excel file.
type Workbook struct {
	file         *excelize.File
	currentSheet string
	currentRow   int
}

// NewWorkbook creates an empty workbook.
func NewWorkbook() *Workbook {
	return &Workbook{file: excelize.NewFile()}
}

// AddSheet adds a sheet and makes it current.
func (w *Workbook) AddSheet(name string) error {
	// Excel limits sheet names to 31 chars.
	if len(name) > 31 {
		name = name[:31]
	}

	if w.currentSheet == "" {
		w.file.SetSheetName("Sheet1", name)
	} else {
		if _, err := w.file.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	w.currentSheet = name
	w.currentRow = 1
	return nil
}

// WriteHeader writes bold column headers to the current sheet.
func (w *Workbook) WriteHeader(columns []string) error {
	if w.currentSheet == "" {
		return fmt.Errorf("no active sheet")
	}

	for i, col := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, w.currentRow)
		if err != nil {
			return err
		}
		if err := w.file.SetCellValue(w.currentSheet, cell, col); err != nil {
			return err
		}
	}

	style, err := w.file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		startCell, _ := excelize.CoordinatesToCellName(1, w.currentRow)
		endCell, _ := excelize.CoordinatesToCellName(len(columns), w.currentRow)
		_ = w.file.SetCellStyle(w.currentSheet, startCell, endCell, style)
	}

	w.currentRow++
	return nil
}

// WriteRow writes a data row to the current sheet.
func (w *Workbook) WriteRow(row []interface{}) error {
	if w.currentSheet == "" {
		return fmt.Errorf("no active sheet")
	}

	for i, val := range row {
		cell, err := excelize.CoordinatesToCellName(i+1, w.currentRow)
		if err != nil {
			return err
		}
		if err := w.file.SetCellValue(w.currentSheet, cell, val); err != nil {
			return err
		}
	}

	w.currentRow++
	return nil
}

// Save writes the workbook to the writer.
func (w *Workbook) Save(wr io.Writer) error {
	return w.file.Write(wr)
}

// Close releases resources.
func (w *Workbook) Close() error {
	return w.file.Close()
}

// WriteReport renders users, rooms and reservations as one workbook.
func WriteReport(wr io.Writer, users []models.User, rooms []models.Room, reservations []models.Reservation) error {
	wb := NewWorkbook()
	defer wb.Close()

	if err := writeUsersSheet(wb, users); err != nil {
		return err
	}
	if err := writeRoomsSheet(wb, rooms); err != nil {
		return err
	}
	if err := writeReservationsSheet(wb, reservations); err != nil {
		return err
	}
	return wb.Save(wr)
}

func writeUsersSheet(wb *Workbook, users []models.User) error {
	if err := wb.AddSheet("Users"); err != nil {
		return err
	}
	if err := wb.WriteHeader([]string{"ID", "Email", "Role", "Enabled"}); err != nil {
		return err
	}
	for _, u := range users {
		if err := wb.WriteRow([]interface{}{u.ID, u.Email, string(u.Role), u.Enabled}); err != nil {
			return err
		}
	}
	return nil
}

func writeRoomsSheet(wb *Workbook, rooms []models.Room) error {
	if err := wb.AddSheet("Rooms"); err != nil {
		return err
	}
	if err := wb.WriteHeader([]string{"Number", "Type", "Capacity", "Price/Night", "Description", "Amenities"}); err != nil {
		return err
	}
	for _, r := range rooms {
		if err := wb.WriteRow([]interface{}{
			r.RoomNumber, string(r.Type), r.Capacity, r.PricePerNight,
			r.Description, strings.Join(r.Amenities, ", "),
		}); err != nil {
			return err
		}
	}
	return nil
}

func writeReservationsSheet(wb *Workbook, reservations []models.Reservation) error {
	if err := wb.AddSheet("Reservations"); err != nil {
		return err
	}
	if err := wb.WriteHeader([]string{"ID", "Room", "Check-in", "Check-out", "Status", "Total"}); err != nil {
		return err
	}
	for _, res := range reservations {
		total, err := pricing.Total(res)
		if err != nil {
			// A malformed interval from the backend should not sink
			// the whole export; leave the cell empty.
			if werr := wb.WriteRow([]interface{}{
				res.ID, res.RoomNumber, res.CheckInDate.String(), res.CheckOutDate.String(),
				string(res.Status), "",
			}); werr != nil {
				return werr
			}
			continue
		}
		if err := wb.WriteRow([]interface{}{
			res.ID, res.RoomNumber, res.CheckInDate.String(), res.CheckOutDate.String(),
			string(res.Status), total,
		}); err != nil {
			return err
		}
	}
	return nil
}
