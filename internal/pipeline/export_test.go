package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"mailsift/internal"
	"mailsift/internal/util"
)

func exportFixture() []internal.ExportRow {
	return []internal.ExportRow{
		{
			EmailID:    1,
			MessageID:  "<a@example.com>",
			Subject:    "Order A-1001",
			Sender:     "orders@acme.example",
			ReceivedAt: "2026-08-10T10:00:00Z",
			Record: internal.ExtractedRecord{
				Fields: map[internal.Field]string{
					internal.FieldVendorName:  "Acme Corp",
					internal.FieldOrderNumber: "A-1001",
				},
				Items: []internal.LineItem{
					{Name: "Widget", Quantity: util.IntPtr(3), UnitPrice: util.StringPtr("9.99")},
					{Name: "Gadget", Quantity: util.IntPtr(1), UnitPrice: util.StringPtr("4.50"), TotalPrice: util.StringPtr("4.50")},
				},
			},
		},
		{
			EmailID:    2,
			MessageID:  "<b@example.com>",
			Subject:    "Receipt",
			Sender:     "shop@example.com",
			ReceivedAt: "2026-08-11T09:00:00Z",
			Record: internal.ExtractedRecord{
				Fields: map[internal.Field]string{
					internal.FieldTotalAmount: "10.00",
				},
			},
		},
	}
}

func TestExportCSVFlattensItems(t *testing.T) {
	out := filepath.Join(t.TempDir(), "records.csv")
	if err := ExportRows(exportFixture(), out, "csv"); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	lines, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 3 {
		t.Fatalf("csv lines = %d", len(lines))
	}

	header := lines[0]
	idx := map[string]int{}
	for i, h := range header {
		idx[h] = i
	}
	for _, want := range []string{"email_id", "vendor_name", "item1_name", "item2_total_price"} {
		if _, ok := idx[want]; !ok {
			t.Fatalf("missing column %q in %v", want, header)
		}
	}
	if _, ok := idx["item3_name"]; ok {
		t.Fatal("columns should stop at the widest record")
	}

	if lines[1][idx["item2_name"]] != "Gadget" || lines[1][idx["item2_total_price"]] != "4.50" {
		t.Fatalf("row1 item columns wrong: %v", lines[1])
	}
	// The second record has no items; its item columns are padding.
	if lines[2][idx["item1_name"]] != "" || lines[2][idx["total_amount"]] != "10.00" {
		t.Fatalf("row2 wrong: %v", lines[2])
	}
}

func TestExportJSONKeepsRecordShape(t *testing.T) {
	out := filepath.Join(t.TempDir(), "records.json")
	if err := ExportRows(exportFixture(), out, "json"); err != nil {
		t.Fatal(err)
	}

	blob, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var records []internal.ExtractedRecord
	if err := json.Unmarshal(blob, &records); err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d", len(records))
	}
	if v, _ := records[0].Get(internal.FieldVendorName); v != "Acme Corp" {
		t.Fatalf("vendor_name = %q", v)
	}
	if len(records[0].Items) != 2 || len(records[1].Items) != 0 {
		t.Fatalf("items round trip wrong: %+v", records)
	}
}

func TestExportXLSX(t *testing.T) {
	out := filepath.Join(t.TempDir(), "records.xlsx")
	if err := ExportRows(exportFixture(), out, "xlsx"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatal(err)
	}
}

func TestExportUnknownFormat(t *testing.T) {
	out := filepath.Join(t.TempDir(), "records.yaml")
	if err := ExportRows(exportFixture(), out, "yaml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
