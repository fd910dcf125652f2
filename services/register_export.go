package services

import (
	"fmt"
	"io"

	"kanzlei_app_go/models"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportCaseRegister writes the full case register as an XLSX workbook:
// one row per case with file number, status, parties and lifecycle dates.
func ExportCaseRegister(db *gorm.DB, w io.Writer) error {
	var cases []models.Case
	if err := db.Preload("Client").
		Preload("Opponent").
		Order("file_number ASC").
		Find(&cases).Error; err != nil {
		return &WriteError{Op: "failed to load cases for register export", Err: err}
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Aktenregister"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name register sheet: %w", err)
	}

	headers := []string{"Aktenzeichen", "Status", "Mandant", "Gegner", "Angelegt am", "Geschlossen am"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("failed to compute header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("failed to write register header: %w", err)
		}
	}

	for row, kase := range cases {
		opponentName := ""
		if kase.Opponent != nil {
			opponentName = kase.Opponent.Name
		}
		closedAt := ""
		if kase.ClosedAt != nil {
			closedAt = kase.ClosedAt.Format("02.01.2006")
		}
		values := []interface{}{
			kase.FileNumber,
			kase.Status,
			kase.Client.Name,
			opponentName,
			kase.CreatedAt.Format("02.01.2006"),
			closedAt,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return fmt.Errorf("failed to compute register cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("failed to write register row: %w", err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write register workbook: %w", err)
	}
	return nil
}
