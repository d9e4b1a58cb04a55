package phonebook

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/DJKwan1228/phonebook/internal/storage/db"
)

// ExportFilename is the attachment name offered for spreadsheet downloads.
const ExportFilename = "phonebook.xlsx"

const exportSheet = "Phonebook"

// labeledValue is one (label, value) row of the export.
type labeledValue struct {
	Label string
	Value string
}

// exportRows flattens an account's identifier and contact record into the
// ordered rows of the export, identifier first.
func exportRows(identifier string, record db.Contact) []labeledValue {
	return []labeledValue{
		{Label: "Identifier", Value: identifier},
		{Label: "Name", Value: record.Name},
		{Label: "Mobile", Value: record.Mobile},
		{Label: "Email", Value: record.Email},
	}
}

// exportWorkbook writes the rows into a single-sheet xlsx workbook and
// returns its bytes.
func exportWorkbook(rows []labeledValue) ([]byte, error) {
	wb := excelize.NewFile()
	defer func() { _ = wb.Close() }()

	index, err := wb.NewSheet(exportSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create export sheet: %w", err)
	}
	wb.SetActiveSheet(index)
	if err := wb.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := wb.SetSheetRow(exportSheet, cell, &[]any{row.Label, row.Value}); err != nil {
			return nil, fmt.Errorf("failed to write export row %d: %w", i+1, err)
		}
	}

	buf, err := wb.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
