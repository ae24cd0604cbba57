package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"staybook/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Bookings"

// Exporter writes a booking list to an .xlsx itinerary file.
type Exporter struct {
	path   string
	logger *zerolog.Logger
}

func NewExporter(path string, logger *zerolog.Logger) *Exporter {
	return &Exporter{
		path:   path,
		logger: logger,
	}
}

// Bookings writes the list to a new file under the export path and returns
// the file path.
func (e *Exporter) Bookings(bookings []models.Booking) (string, error) {
	if err := os.MkdirAll(e.path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	headers := []string{"Booking ID", "Hotel", "Address", "Room", "Check-In", "Check-Out", "Nights"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
	_ = f.SetCellStyle(sheetName, "A1", lastHeader, headerStyle)

	for i, booking := range bookings {
		row := i + 2
		nights := int(booking.CheckOutDate.Sub(booking.CheckInDate).Hours() / 24)

		_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), booking.ID)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), booking.Hotel.Name)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), booking.Hotel.Address)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), booking.RoomID)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), booking.CheckInDate.Format("2006-01-02"))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), booking.CheckOutDate.Format("2006-01-02"))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), nights)
	}

	_ = f.SetColWidth(sheetName, "A", "A", 26)
	_ = f.SetColWidth(sheetName, "B", "C", 24)
	_ = f.SetColWidth(sheetName, "D", "D", 26)
	_ = f.SetColWidth(sheetName, "E", "G", 12)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("bookings_export_%s.xlsx", time.Now().Format("2006-01-02_15-04-05"))
	filePath := filepath.Join(e.path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}

	e.logger.Info().Str("file_path", filePath).Int("bookings", len(bookings)).Msg("Excel file created")
	return filePath, nil
}
