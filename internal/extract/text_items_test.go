package extract

import (
	"reflect"
	"testing"

	"mailsift/internal"
	"mailsift/internal/util"
)

func TestTextItemsQtyTimesName(t *testing.T) {
	items := TextItems("2 x Blue Shirt, $15.00")
	want := []internal.LineItem{
		{Name: "Blue Shirt", Quantity: util.IntPtr(2), UnitPrice: util.StringPtr("15.00")},
	}
	if !reflect.DeepEqual(items, want) {
		t.Fatalf("items = %+v, want %+v", items, want)
	}
}

func TestTextItemsQtyNameAtPrice(t *testing.T) {
	items := TextItems("3 Coffee Mug @ $4.50")
	want := []internal.LineItem{
		{Name: "Coffee Mug", Quantity: util.IntPtr(3), UnitPrice: util.StringPtr("4.50")},
	}
	if !reflect.DeepEqual(items, want) {
		t.Fatalf("items = %+v, want %+v", items, want)
	}
}

func TestTextItemsNameParenQty(t *testing.T) {
	items := TextItems("Desk Lamp (2) $24.00")
	want := []internal.LineItem{
		{Name: "Desk Lamp", Quantity: util.IntPtr(2), UnitPrice: util.StringPtr("24.00")},
	}
	if !reflect.DeepEqual(items, want) {
		t.Fatalf("items = %+v, want %+v", items, want)
	}
}

func TestTextItemsGrammarsAreAdditive(t *testing.T) {
	text := "2 x Blue Shirt, $15.00\nDesk Lamp (2) $24.00\n"
	items := TextItems(text)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d: %+v", len(items), items)
	}
	// Grammar order, not line order: every match of the first grammar comes
	// before any match of the third.
	if items[0].Name != "Blue Shirt" || items[1].Name != "Desk Lamp" {
		t.Fatalf("items = %+v", items)
	}
}

func TestTextItemsSectionFallbackSingleLine(t *testing.T) {
	items := TextItems("Order Details: Deluxe Widget 19.99")
	want := []internal.LineItem{
		{Name: "Order Details: Deluxe Widget", Quantity: util.IntPtr(1), UnitPrice: util.StringPtr("19.99")},
	}
	if !reflect.DeepEqual(items, want) {
		t.Fatalf("items = %+v, want %+v", items, want)
	}
}

func TestTextItemsSectionFallbackLines(t *testing.T) {
	// None of the grammars match, so the heading-scoped line scan runs. The
	// price is the first numeric token on the line, which here is the
	// leading count.
	text := "Your Order:\n2 Widget Blue 9.99\n4 Gadget Green 4.50\n\nThanks"
	items := TextItems(text)
	want := []internal.LineItem{
		{Name: "2 Widget Blue", Quantity: util.IntPtr(1), UnitPrice: util.StringPtr("2")},
		{Name: "4 Gadget Green", Quantity: util.IntPtr(1), UnitPrice: util.StringPtr("4")},
	}
	if !reflect.DeepEqual(items, want) {
		t.Fatalf("items = %+v, want %+v", items, want)
	}
}

func TestTextItemsNothingMatches(t *testing.T) {
	if items := TextItems("hello there\nhow are you"); items != nil {
		t.Fatalf("expected nil, got %+v", items)
	}
}
