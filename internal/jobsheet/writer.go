package jobsheet

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/andresuchdata/eximdesk/internal/domain"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Jobs"

// ExportHeader is the header row of exported sheets. The names are accepted
// back by the importer.
var ExportHeader = []string{
	"Job No", "Year", "Importer", "Importer Address", "Custom House", "AWB/BL No", "AWB/BL Date",
	"Shipping Line", "Port Of Reporting", "Gross Weight", "Consignment Type", "Type Of BE",
	"BE No", "BE Date", "ETA", "Gateway IGM Date", "Discharge Date", "PCV Date", "Out Of Charge",
	"Container No", "Size", "Arrival Date", "Rail Out Date", "Empty Offload Date", "Delivery Date",
	"Detailed Status", "Status", "Bill No", "Bill Date", "Remarks",
}

// rowFills maps row colors to XLSX fill colors.
var rowFills = map[string]string{
	"bg-blue":       "#CFE2FF",
	"bg-green":      "#D1E7DD",
	"bg-lightgreen": "#E8F5E9",
	"bg-purple":     "#E2D9F3",
	"bg-yellow":     "#FFF3CD",
	"bg-red":        "#F8D7DA",
	"bg-teal":       "#D2F4EA",
	"bg-orange":     "#FFE5D0",
	"bg-gray":       "#E2E3E5",
	"bg-lightgray":  "#F1F3F5",
}

// exportRows flattens jobs into one row per container; a job without
// containers still gets one row.
func exportRows(jobs []*domain.Job) ([][]string, []string) {
	var (
		rows   [][]string
		colors []string
	)
	for _, j := range jobs {
		containers := j.Containers
		if len(containers) == 0 {
			containers = domain.Containers{{}}
		}
		for _, c := range containers {
			rows = append(rows, []string{
				j.JobNo, j.Year, j.Importer, j.ImporterAddress, j.CustomHouse, j.AwbBlNo, j.AwbBlDate,
				j.ShippingLine, j.PortOfReporting, j.GrossWeight, j.ConsignmentType, j.TypeOfBE,
				j.BENo, j.BEDate, j.VesselBerthing, j.GatewayIGMDate, j.DischargeDate, j.PCVDate, j.OutOfCharge,
				c.Number, c.Size, c.ArrivalDate, c.RailOutDate, c.EmptyOffloadDate, c.DeliveryDate,
				j.DetailedStatus, string(j.Status), j.BillNo, j.BillDate, j.Remarks,
			})
			colors = append(colors, j.RowColor)
		}
	}
	return rows, colors
}

// WriteCSV writes jobs as CSV.
func WriteCSV(w io.Writer, jobs []*domain.Job) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	rows, _ := exportRows(jobs)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write csv rows: %w", err)
	}
	return nil
}

// WriteXLSX writes jobs as a single sheet workbook with rows filled by status color.
func WriteXLSX(w io.Writer, jobs []*domain.Job) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	fillStyles := map[string]int{}
	for color, hex := range rowFills {
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{hex}},
		})
		if err != nil {
			return fmt.Errorf("failed to create %s style: %w", color, err)
		}
		fillStyles[color] = id
	}

	if err := f.SetSheetRow(exportSheet, "A1", toCells(ExportHeader)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(ExportHeader))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(exportSheet, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	rows, colors := exportRows(jobs)
	for i, row := range rows {
		rowNum := i + 2
		start := fmt.Sprintf("A%d", rowNum)
		if err := f.SetSheetRow(exportSheet, start, toCells(row)); err != nil {
			return fmt.Errorf("failed to write row %d: %w", rowNum, err)
		}
		if style, ok := fillStyles[colors[i]]; ok {
			if err := f.SetCellStyle(exportSheet, start, fmt.Sprintf("%s%d", lastCol, rowNum), style); err != nil {
				return fmt.Errorf("failed to style row %d: %w", rowNum, err)
			}
		}
	}

	if err := f.SetPanes(exportSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write xlsx: %w", err)
	}
	return nil
}

func toCells(values []string) *[]interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return &cells
}
