package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	"mailsift/internal"
)

// ExportRows writes parsed records to one file. CSV and XLSX flatten line
// items into itemN_* column groups padded to the widest record in the batch;
// JSON keeps the records in their native shape.
func ExportRows(rows []internal.ExportRow, outputPath, format string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	switch format {
	case "csv":
		return exportCSV(rows, outputPath)
	case "json":
		return exportJSON(rows, outputPath)
	case "xlsx":
		return exportXLSX(rows, outputPath)
	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}
}

var itemSubColumns = []string{"name", "quantity", "unit_price", "total_price"}

func exportHeaders(rows []internal.ExportRow) []string {
	headers := []string{"email_id", "message_id", "subject", "sender", "received_at"}
	for _, f := range internal.FieldOrder {
		headers = append(headers, string(f))
	}
	for i := 0; i < maxItems(rows); i++ {
		for _, sub := range itemSubColumns {
			headers = append(headers, fmt.Sprintf("item%d_%s", i+1, sub))
		}
	}
	return headers
}

func exportValues(row internal.ExportRow, width int) []string {
	values := []string{
		strconv.Itoa(row.EmailID), row.MessageID, row.Subject, row.Sender, row.ReceivedAt,
	}
	for _, f := range internal.FieldOrder {
		v, _ := row.Record.Get(f)
		values = append(values, v)
	}
	for i := 0; i < width; i++ {
		if i >= len(row.Record.Items) {
			values = append(values, "", "", "", "")
			continue
		}
		item := row.Record.Items[i]
		qty := ""
		if item.Quantity != nil {
			qty = strconv.Itoa(*item.Quantity)
		}
		values = append(values, item.Name, qty, derefString(item.UnitPrice), derefString(item.TotalPrice))
	}
	return values
}

func maxItems(rows []internal.ExportRow) int {
	width := 0
	for _, row := range rows {
		if len(row.Record.Items) > width {
			width = len(row.Record.Items)
		}
	}
	return width
}

func exportCSV(rows []internal.ExportRow, outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(exportHeaders(rows)); err != nil {
		return err
	}
	width := maxItems(rows)
	for _, row := range rows {
		if err := w.Write(exportValues(row, width)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func exportJSON(rows []internal.ExportRow, outputPath string) error {
	records := make([]internal.ExtractedRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.Record)
	}
	blob, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(outputPath, append(blob, '\n'), 0o644)
}

func exportXLSX(rows []internal.ExportRow, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, h := range exportHeaders(rows) {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	width := maxItems(rows)
	for i, row := range rows {
		for j, value := range exportValues(row, width) {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			_ = f.SetCellValue(sheet, cell, value)
		}
	}

	return f.SaveAs(outputPath)
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
