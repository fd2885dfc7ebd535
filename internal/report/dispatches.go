// Package report renders dispatch requests as spreadsheets.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/blockedby/dosimetria-portal/internal/models"
)

// SheetDispatches is the name of the item sheet.
const SheetDispatches = "Despachos"

var headers = []string{
	"ID", "Fecha de creación", "Cliente", "NIT", "Correo",
	"Fecha solicitada", "Marca", "Modelo", "Serie", "Estado",
}

// WriteDispatches writes one row per item. Requests without items still get a
// row so they show up in the export.
func WriteDispatches(w io.Writer, dispatches []*models.DispatchRequest) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetDispatches); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetDispatches, cell, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	last, _ := excelize.ColumnNumberToName(len(headers))
	if err := f.SetCellStyle(SheetDispatches, "A1", last+"1", bold); err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	row := 2
	for _, d := range dispatches {
		items := d.Items
		if len(items) == 0 {
			items = []models.DispatchItem{{}}
		}
		for _, it := range items {
			values := []any{
				d.ID.String(),
				d.CreatedAt.Format("2006-01-02 15:04"),
				deref(d.Cliente),
				deref(d.NIT),
				deref(d.Email),
				deref(d.FechaSolicitada),
				deref(it.Marca),
				deref(it.Modelo),
				deref(it.Serie),
				string(d.Status),
			}
			cell, _ := excelize.CoordinatesToCellName(1, row)
			if err := f.SetSheetRow(SheetDispatches, cell, &values); err != nil {
				return fmt.Errorf("write row %d: %w", row, err)
			}
			row++
		}
	}

	if err := f.SetColWidth(SheetDispatches, "A", last, 20); err != nil {
		return fmt.Errorf("column width: %w", err)
	}
	if err := f.AutoFilter(SheetDispatches, "A1:"+last+"1", nil); err != nil {
		return fmt.Errorf("autofilter: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
