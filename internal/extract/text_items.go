package extract

import (
	"regexp"
	"strconv"
	"strings"

	"mailsift/internal"
	"mailsift/internal/util"
)

// itemGrammar is one free-text line-item shape. All three grammars run over
// the whole text and every match is kept; unlike the scalar fields this
// path is additive, not first-match-wins.
type itemGrammar struct {
	re                        *regexp.Regexp
	nameIdx, qtyIdx, priceIdx int
}

var itemGrammars = []itemGrammar{
	// 2 x Blue Shirt, $15.00
	{regexp.MustCompile(`(\d+)\s*x\s*([^,\n]+)[\s,]*(?:\$|EUR|£)?([0-9][0-9,.]*)`), 2, 1, 3},
	// 2 Blue Shirt @ $15.00
	{regexp.MustCompile(`(\d+)\s+([^@\n]+)@\s*(?:\$|EUR|£)?([0-9][0-9,.]*)`), 2, 1, 3},
	// Blue Shirt (2) $15.00
	{regexp.MustCompile(`([^()\n]+)\s*\((\d+)\)\s*(?:\$|EUR|£)?([0-9][0-9,.]*)`), 1, 2, 3},
}

var (
	itemSectionPattern  = regexp.MustCompile(`(?is)((?:Your Order|Order Details|Items|Products).*?)(?:\n\n|\n[A-Za-z]|$)`)
	lineCurrencyPattern = regexp.MustCompile(`(?:\$|EUR|£)?([0-9][0-9,.]*)`)
	lineNamePattern     = regexp.MustCompile(`^(.*?)(?:\$|EUR|£|[0-9]{1,3},[0-9]{3}|[0-9]+\.[0-9]+)`)
	leadingQtyPattern   = regexp.MustCompile(`(\d+)\s*x`)
	qtyPrefixPattern    = regexp.MustCompile(`\d+\s*x\s*`)
)

// TextItems extracts line items from free text. The three grammars are
// tried first; when none of them produce anything it falls back to scanning
// the lines of an item section introduced by a known heading.
func TextItems(text string) []internal.LineItem {
	var items []internal.LineItem
	for _, g := range itemGrammars {
		for _, m := range g.re.FindAllStringSubmatch(text, -1) {
			name := strings.TrimSpace(m[g.nameIdx])
			if name == "" {
				continue
			}
			item := internal.LineItem{
				Name:      name,
				UnitPrice: util.StringPtr(strings.TrimSpace(m[g.priceIdx])),
			}
			if qty, err := strconv.Atoi(m[g.qtyIdx]); err == nil {
				item.Quantity = util.IntPtr(qty)
			}
			items = append(items, item)
		}
	}
	if len(items) > 0 {
		return items
	}
	return sectionItems(text)
}

// sectionItems scans a "Your Order"/"Order Details"/"Items"/"Products"
// section line by line. A line qualifies when it carries a currency-like
// numeric token and is longer than 10 characters; the name is whatever
// precedes the first such token, with a leading "<N> x" pulled out as the
// quantity (default 1).
func sectionItems(text string) []internal.LineItem {
	section := itemSectionPattern.FindStringSubmatch(text)
	if len(section) < 2 {
		return nil
	}

	var items []internal.LineItem
	for _, line := range strings.Split(section[1], "\n") {
		line = strings.TrimSpace(line)
		if len(line) <= 10 {
			continue
		}
		price := lineCurrencyPattern.FindStringSubmatch(line)
		if len(price) < 2 {
			continue
		}
		nameMatch := lineNamePattern.FindStringSubmatch(line)
		if len(nameMatch) < 2 {
			continue
		}
		name := strings.TrimSpace(nameMatch[1])
		quantity := 1
		if qm := leadingQtyPattern.FindStringSubmatch(name); len(qm) > 1 {
			if qty, err := strconv.Atoi(qm[1]); err == nil {
				quantity = qty
			}
			name = strings.TrimSpace(qtyPrefixPattern.ReplaceAllString(name, ""))
		}
		if name == "" {
			continue
		}
		items = append(items, internal.LineItem{
			Name:      name,
			Quantity:  util.IntPtr(quantity),
			UnitPrice: util.StringPtr(price[1]),
		})
	}
	return items
}
