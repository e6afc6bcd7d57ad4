package internal

import (
	"encoding/json"
	"testing"
)

func intp(v int) *int       { return &v }
func strp(v string) *string { return &v }

func TestExtractedRecordJSONShape(t *testing.T) {
	rec := ExtractedRecord{
		Fields: map[Field]string{
			FieldOrderNumber: "A-1001",
			FieldVendorName:  "Acme Corp",
		},
		Items: []LineItem{{Name: "Widget", Quantity: intp(3), UnitPrice: strp("9.99")}},
	}

	blob, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"vendor_name":"Acme Corp","order_number":"A-1001","items":[{"name":"Widget","quantity":3,"unit_price":"9.99"}]}`
	if string(blob) != want {
		t.Fatalf("got %s", blob)
	}

	var back ExtractedRecord
	if err := json.Unmarshal(blob, &back); err != nil {
		t.Fatal(err)
	}
	if v, _ := back.Get(FieldVendorName); v != "Acme Corp" {
		t.Fatalf("vendor_name = %q", v)
	}
	if len(back.Items) != 1 || back.Items[0].TotalPrice != nil {
		t.Fatalf("items = %+v", back.Items)
	}
}

func TestExtractedRecordJSONOmitsEmptyItems(t *testing.T) {
	rec := ExtractedRecord{Fields: map[Field]string{FieldTotalAmount: "10.00"}}
	blob, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	if string(blob) != `{"total_amount":"10.00"}` {
		t.Fatalf("got %s", blob)
	}
}
