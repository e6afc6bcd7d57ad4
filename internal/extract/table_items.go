package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"mailsift/internal"
	"mailsift/internal/util"
)

// itemIndicators are the keywords counted into a table's item-likeness
// score; a table qualifies as an item table at 3 or more hits.
var itemIndicators = []string{"item", "product", "description", "quantity", "price", "amount", "subtotal"}

const itemLikenessThreshold = 3

type columnRole string

const (
	colName     columnRole = "name"
	colQuantity columnRole = "quantity"
	colPrice    columnRole = "price"
	colTotal    columnRole = "total"
)

var intPattern = regexp.MustCompile(`(\d+)`)

// TableItems scans the document's tables in order and extracts line items
// from the first one that looks like an order-item table. Only that table is
// consulted: when its header row maps no name column the whole table path
// yields nothing, it does not move on to the next table.
func TableItems(doc *goquery.Document) []internal.LineItem {
	if doc == nil {
		return nil
	}
	var items []internal.LineItem
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		if itemLikeness(table.Text()) < itemLikenessThreshold {
			return true
		}
		items = tableLineItems(table)
		return false
	})
	return items
}

func itemLikeness(text string) int {
	text = strings.ToLower(text)
	score := 0
	for _, kw := range itemIndicators {
		if strings.Contains(text, kw) {
			score++
		}
	}
	return score
}

// headerRole resolves one header cell to a column role. Keyword sets are
// probed in a fixed order and the first hit wins, so "Item Total" is a name
// column, not a total column.
func headerRole(header string) (columnRole, bool) {
	switch {
	case containsAny(header, "item", "product", "description"):
		return colName, true
	case containsAny(header, "qty", "quantity"):
		return colQuantity, true
	case containsAny(header, "price", "unit", "cost"):
		return colPrice, true
	case containsAny(header, "total", "amount", "subtotal"):
		return colTotal, true
	}
	return "", false
}

func containsAny(s string, probes ...string) bool {
	for _, p := range probes {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// mapColumns derives the role -> column index map from the header row. The
// first header claiming a role keeps it; later same-role headers are
// ignored.
func mapColumns(headers []string) map[columnRole]int {
	cols := map[columnRole]int{}
	for i, h := range headers {
		role, ok := headerRole(h)
		if !ok {
			continue
		}
		if _, taken := cols[role]; taken {
			continue
		}
		cols[role] = i
	}
	return cols
}

func tableLineItems(table *goquery.Selection) []internal.LineItem {
	rows := table.Find("tr")
	if rows.Length() < 2 {
		return nil
	}

	headers := []string{}
	rows.First().Find("th,td").Each(func(_ int, cell *goquery.Selection) {
		headers = append(headers, strings.ToLower(util.NormalizeSpaces(cell.Text())))
	})

	cols := mapColumns(headers)
	nameIdx, ok := cols[colName]
	if !ok {
		return nil
	}
	maxIdx := nameIdx
	for _, idx := range cols {
		if idx > maxIdx {
			maxIdx = idx
		}
	}

	var items []internal.LineItem
	rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
		cells := []string{}
		row.Find("td,th").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, util.NormalizeSpaces(cell.Text()))
		})
		if len(cells) <= maxIdx {
			return
		}

		name := cells[nameIdx]
		if name == "" {
			return
		}
		item := internal.LineItem{Name: name}
		if idx, ok := cols[colQuantity]; ok {
			if m := intPattern.FindStringSubmatch(cells[idx]); len(m) > 1 {
				if qty, err := strconv.Atoi(m[1]); err == nil {
					item.Quantity = util.IntPtr(qty)
				}
			}
		}
		if idx, ok := cols[colPrice]; ok {
			if m := cellAmountPattern.FindStringSubmatch(cells[idx]); len(m) > 1 {
				item.UnitPrice = util.StringPtr(m[1])
			}
		}
		if idx, ok := cols[colTotal]; ok {
			if m := cellAmountPattern.FindStringSubmatch(cells[idx]); len(m) > 1 {
				item.TotalPrice = util.StringPtr(m[1])
			}
		}
		items = append(items, item)
	})
	return items
}
