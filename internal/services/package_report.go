package services

import (
	"bytes"
	"fmt"

	"encomendas_backend/internal/models"
	"encomendas_backend/internal/utils"

	"github.com/xuri/excelize/v2"
)

const reportSheet = "Encomendas"

var reportColumnWidths = []float64{18, 32, 12, 14, 20, 12, 18, 32, 40}

// buildPackageReport - xlsx с посылками за период. Колонки блока/квартиры подписаны так, как их называет кондоминиум.
func buildPackageReport(condominium *models.Condominium, packages []models.Package) ([]byte, error) {
	groupLabel, unitLabel := condominium.Labels()
	headers := []string{
		"Recebida em",
		"Morador",
		groupLabel,
		unitLabel,
		"Transportadora",
		"Status",
		"Retirada em",
		"Retirada por",
		"Observações",
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(reportSheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(reportSheet, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}

		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(reportSheet, name, name, reportColumnWidths[col]); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i := range packages {
		row := i + 2
		for col, value := range reportRow(&packages[i]) {
			if value == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(reportSheet, cell, value); err != nil {
				return nil, fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	if err := f.SetPanes(reportSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}
	return buf.Bytes(), nil
}

func reportRow(pkg *models.Package) []string {
	row := make([]string, 9)
	row[0] = utils.FormatDateTimeBR(pkg.ReceivedAt)
	if pkg.Resident != nil {
		row[1] = pkg.Resident.FullName
		row[2] = pkg.Resident.Block
		row[3] = pkg.Resident.Apartment
	}
	row[4] = deref(pkg.Carrier)
	row[5] = statusLabel(pkg.Status)
	if pkg.PickedUpAt != nil {
		row[6] = utils.FormatDateTimeBR(*pkg.PickedUpAt)
	}
	row[7] = deref(pkg.PickedUpBy)
	row[8] = deref(pkg.Notes)
	return row
}

func statusLabel(status models.PackageStatus) string {
	switch status {
	case models.PackageStatusPending:
		return "Aguardando"
	case models.PackageStatusPickedUp:
		return "Retirada"
	default:
		return string(status)
	}
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
