package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func docFromHTML(t *testing.T, markup string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func TestTableLineItemsBasicRow(t *testing.T) {
	doc := docFromHTML(t, `
<table>
  <tr><th>Item</th><th>Qty</th><th>Price</th></tr>
  <tr><td>Widget</td><td>3</td><td>$9.99</td></tr>
</table>`)
	items := tableLineItems(doc.Find("table").First())
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	it := items[0]
	if it.Name != "Widget" {
		t.Fatalf("name = %q", it.Name)
	}
	if it.Quantity == nil || *it.Quantity != 3 {
		t.Fatalf("quantity = %v", it.Quantity)
	}
	if it.UnitPrice == nil || *it.UnitPrice != "9.99" {
		t.Fatalf("unit price = %v", it.UnitPrice)
	}
	if it.TotalPrice != nil {
		t.Fatalf("total price should be unset, got %q", *it.TotalPrice)
	}
}

func TestTableLineItemsAllColumns(t *testing.T) {
	doc := docFromHTML(t, `
<table>
  <tr><th>Product</th><th>Quantity</th><th>Unit Price</th><th>Subtotal</th></tr>
  <tr><td>Widget</td><td>3</td><td>$9.99</td><td>$29.97</td></tr>
  <tr><td>Gadget</td><td>1</td><td>&euro;4.50</td><td>&euro;4.50</td></tr>
</table>`)
	items := tableLineItems(doc.Find("table").First())
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].TotalPrice == nil || *items[0].TotalPrice != "29.97" {
		t.Fatalf("total price = %v", items[0].TotalPrice)
	}
	if items[1].Name != "Gadget" || items[1].UnitPrice == nil || *items[1].UnitPrice != "4.50" {
		t.Fatalf("second item = %+v", items[1])
	}
}

func TestTableLineItemsNoNameColumn(t *testing.T) {
	doc := docFromHTML(t, `
<table>
  <tr><th>Qty</th><th>Price</th><th>Total</th></tr>
  <tr><td>3</td><td>$9.99</td><td>$29.97</td></tr>
</table>`)
	if items := tableLineItems(doc.Find("table").First()); items != nil {
		t.Fatalf("expected nil without a name column, got %v", items)
	}
}

func TestTableLineItemsSkipsShortAndEmptyRows(t *testing.T) {
	doc := docFromHTML(t, `
<table>
  <tr><th>Item</th><th>Qty</th><th>Price</th></tr>
  <tr><td>Widget</td></tr>
  <tr><td></td><td>2</td><td>$5.00</td></tr>
  <tr><td>Gadget</td><td>1</td><td>$4.00</td></tr>
</table>`)
	items := tableLineItems(doc.Find("table").First())
	if len(items) != 1 || items[0].Name != "Gadget" {
		t.Fatalf("expected only the complete row, got %v", items)
	}
}

func TestTableLineItemsHeaderOnly(t *testing.T) {
	doc := docFromHTML(t, `<table><tr><th>Item</th><th>Qty</th><th>Price</th></tr></table>`)
	if items := tableLineItems(doc.Find("table").First()); items != nil {
		t.Fatalf("expected nil for header-only table, got %v", items)
	}
}

func TestHeaderRolePriority(t *testing.T) {
	cases := []struct {
		header string
		role   columnRole
		ok     bool
	}{
		{"item", colName, true},
		{"product description", colName, true},
		{"item total", colName, true},
		{"qty", colQuantity, true},
		{"quantity ordered", colQuantity, true},
		{"unit price", colPrice, true},
		{"cost", colPrice, true},
		{"subtotal", colTotal, true},
		{"amount", colTotal, true},
		{"sku", "", false},
	}
	for _, tc := range cases {
		role, ok := headerRole(tc.header)
		if role != tc.role || ok != tc.ok {
			t.Fatalf("headerRole(%q) = %q, %v; want %q, %v", tc.header, role, ok, tc.role, tc.ok)
		}
	}
}

func TestMapColumnsFirstClaimWins(t *testing.T) {
	cols := mapColumns([]string{"item", "description", "qty", "price"})
	if cols[colName] != 0 {
		t.Fatalf("name column = %d, want 0", cols[colName])
	}
	if cols[colQuantity] != 2 || cols[colPrice] != 3 {
		t.Fatalf("columns = %v", cols)
	}
}

func TestItemLikeness(t *testing.T) {
	if got := itemLikeness("Item Qty Price"); got != 2 {
		t.Fatalf("score = %d, want 2", got)
	}
	if got := itemLikeness("Product Quantity Unit Price Subtotal"); got != 4 {
		t.Fatalf("score = %d, want 4", got)
	}
}

func TestTableItemsFirstQualifyingTableOnly(t *testing.T) {
	// The first qualifying table has no name column, so the table path yields
	// nothing even though a later table would parse cleanly.
	doc := docFromHTML(t, `
<table>
  <tr><th>Quantity</th><th>Price</th><th>Amount</th><th>Subtotal</th></tr>
  <tr><td>3</td><td>$9.99</td><td>$29.97</td><td>$29.97</td></tr>
</table>
<table>
  <tr><th>Product</th><th>Quantity</th><th>Price</th><th>Subtotal</th></tr>
  <tr><td>Widget</td><td>3</td><td>$9.99</td><td>$29.97</td></tr>
</table>`)
	if items := TableItems(doc); items != nil {
		t.Fatalf("expected nil from the first qualifying table, got %v", items)
	}
}

func TestTableItemsSkipsLowScoringTables(t *testing.T) {
	doc := docFromHTML(t, `
<table>
  <tr><th>Name</th><th>Role</th></tr>
  <tr><td>Alice</td><td>Support</td></tr>
</table>
<table>
  <tr><th>Product</th><th>Quantity</th><th>Price</th><th>Subtotal</th></tr>
  <tr><td>Widget</td><td>3</td><td>$9.99</td><td>$29.97</td></tr>
</table>`)
	items := TableItems(doc)
	if len(items) != 1 || items[0].Name != "Widget" {
		t.Fatalf("expected item from the second table, got %v", items)
	}
}
