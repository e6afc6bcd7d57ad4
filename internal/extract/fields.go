package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"mailsift/internal"
)

// Field extractors. Each one is a pure function over the body text (and,
// for the two amount fields, the parsed HTML document when one exists) and
// returns the winning rule's capture. Fields never see each other's results
// except for the amount_due -> total_amount fallback.

var vendorRules = []fieldRule{
	{re: regexp.MustCompile(`(?i)(?:From|Vendor|Seller|Company)[:\s]+([A-Za-z0-9 ,.]+)[\n<(,]`)},
	{re: regexp.MustCompile(`(?i)Thank you for (?:your order|shopping) (?:from|with|at) ([A-Za-z0-9 ,.&]+)`)},
	{re: regexp.MustCompile(`(?i)([A-Za-z0-9 ,.&]+) Order Confirmation`)},
	{re: regexp.MustCompile(`(?i)Welcome to ([A-Za-z0-9 ,.&]+)`)},
}

var (
	vendorNoisePattern = regexp.MustCompile(`(?i)@|http|www|subject|dear|hi\s|hello`)
	copyrightPattern   = regexp.MustCompile(`(?i)(?:©|copyright|all rights reserved)[,\s]+([A-Za-z0-9 ,.&]+)`)
)

func extractVendorName(text string) (string, bool) {
	if v, ok := firstMatch(text, vendorRules); ok {
		return v, true
	}

	// A short opening line without address or greeting markers is usually
	// the sender's display line.
	lines := strings.Split(text, "\n")
	head := lines
	if len(head) > 5 {
		head = head[:5]
	}
	for _, line := range head {
		line = strings.TrimSpace(line)
		if line == "" || len(line) >= 50 {
			continue
		}
		if vendorNoisePattern.MatchString(line) {
			continue
		}
		return line, true
	}

	// Copyright notice in the signature area.
	for i := len(lines) - 1; i >= 0 && i >= len(lines)-10; i-- {
		if m := copyrightPattern.FindStringSubmatch(lines[i]); len(m) > 1 {
			return strings.TrimSpace(m[1]), true
		}
	}

	return "", false
}

var amountDueRules = []fieldRule{
	amountRule(`Amount\s*Due|Balance\s*Due|Total\s*Due|Payment\s*Due`),
	amountRule(`Total\s*Amount\s*Due|Payment\s*Amount`),
	amountRule(`Please\s*Pay|Pay\s*Now`),
	amountRule(`Total\s*Balance|Outstanding\s*Balance`),
}

var amountDueLabel = regexp.MustCompile(`(?i)amount\s*due`)

func extractAmountDue(text string, doc *goquery.Document) (string, bool) {
	if v, ok := firstMatch(text, amountDueRules); ok {
		return v, true
	}
	if v, ok := labeledCellValue(doc, amountDueLabel); ok {
		return v, true
	}
	return extractTotalAmount(text, doc)
}

var dateDueRules = []fieldRule{
	dateRule(`Due\s*Date|Payment\s*Due\s*(?:Date|By|On)|Date\s*Due`),
	dateRule(`Pay\s*By|Payment\s*Deadline`),
	dateRule(`due\s*on|due\s*by`),
}

func extractDateDue(text string) (string, bool) {
	return firstMatch(text, dateDueRules)
}

var orderNumberRules = []fieldRule{
	tokenRule(`Order\s*(?:Number|#|No\.)`),
	tokenRule(`(?:order|confirmation)`),
	tokenRule(`Reference\s*(?:Number|#)`),
	tokenRule(`(?:Invoice|Receipt)\s*(?:Number|#)`),
}

func extractOrderNumber(text string) (string, bool) {
	return firstMatch(text, orderNumberRules)
}

var orderDateRules = []fieldRule{
	dateRule(`Order\s*Date`),
	dateRule(`Date\s*(?:of|on)[:\s]*Order`),
	dateRule(`Ordered\s*on`),
	dateRule(`Purchase\s*Date`),
}

func extractOrderDate(text string) (string, bool) {
	return firstMatch(text, orderDateRules)
}

var totalAmountRules = []fieldRule{
	amountRule(`Order\s*Total|Total`),
	amountRule(`Total\s*Amount|Grand\s*Total`),
	amountRule(`Amount|Payment`),
	amountRule(`Charged|Price`),
}

var totalAmountLabel = regexp.MustCompile(`(?i)order\s*total|total\s*amount|grand\s*total`)

func extractTotalAmount(text string, doc *goquery.Document) (string, bool) {
	if v, ok := firstMatch(text, totalAmountRules); ok {
		return v, true
	}
	return labeledCellValue(doc, totalAmountLabel)
}

var shippingAddressRules = []fieldRule{
	blockRule(`(?:Shipping|Delivery)\s*Address`),
	blockRule(`Ship\s*To|Deliver\s*To`),
	blockRule(`Shipped\s*To|Delivered\s*To`),
}

var reNewlineRuns = regexp.MustCompile(`\n+`)

func extractShippingAddress(text string) (string, bool) {
	block, ok := firstMatch(text, shippingAddressRules)
	if !ok {
		return "", false
	}
	address := reNewlineRuns.ReplaceAllString(block, ", ")
	address = reWhitespaceRuns.ReplaceAllString(address, " ")
	return strings.TrimSpace(address), true
}

var trackingNumberRules = []fieldRule{
	{re: regexp.MustCompile(`(?i)(?:Tracking\s*(?:Number|#)|Track\s*Your\s*Package)[:\s]*([A-Za-z0-9]+)`)},
	{re: regexp.MustCompile(`(?i)(?:Tracking\s*ID|Shipment\s*ID)[:\s]*([A-Za-z0-9]+)`)},
	{re: regexp.MustCompile(`(?i)Your\s*package\s*can\s*be\s*tracked\s*with[:\s]*([A-Za-z0-9]+)`)},
	{re: regexp.MustCompile(`(?i)Track[:\s]*.*?number[:\s]*([A-Za-z0-9]+)`)},
}

func extractTrackingNumber(text string) (string, bool) {
	return firstMatch(text, trackingNumberRules)
}

var emailFromRules = []fieldRule{
	{re: regexp.MustCompile(`(?i)From:[\s:]*([A-Za-z0-9 ,.@<>_+-]+)`)},
	{re: regexp.MustCompile(`(?i)Sender:[\s:]*([A-Za-z0-9 ,.@<>_+-]+)`)},
	{re: regexp.MustCompile(`([A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,})`)},
}

var bracketedAddressPattern = regexp.MustCompile(`<([^>]+)>`)

func extractEmailFrom(text string) (string, bool) {
	captured, ok := firstMatch(text, emailFromRules)
	if !ok {
		return "", false
	}
	// "Name <addr>" collapses to just the bracketed address.
	if m := bracketedAddressPattern.FindStringSubmatch(captured); len(m) > 1 {
		return strings.TrimSpace(m[1]), true
	}
	return captured, true
}

// cellAmountPattern pulls the first currency-like numeric substring out of a
// table cell, symbol stripped.
var cellAmountPattern = regexp.MustCompile(`[$€£]?\s*([0-9][0-9,.]*)`)

// labeledCellValue finds a th/td whose text matches label and reads the
// amount from the next td in the same row.
func labeledCellValue(doc *goquery.Document, label *regexp.Regexp) (string, bool) {
	if doc == nil {
		return "", false
	}
	value := ""
	doc.Find("th,td").EachWithBreak(func(_ int, cell *goquery.Selection) bool {
		if !label.MatchString(cell.Text()) {
			return true
		}
		next := cell.NextAllFiltered("td").First()
		if next.Length() == 0 {
			return true
		}
		if m := cellAmountPattern.FindStringSubmatch(next.Text()); len(m) > 1 {
			value = strings.TrimSpace(m[1])
			return false
		}
		return true
	})
	return value, value != ""
}

// FieldValues runs all nine field extractors over the body text. doc is the
// parsed HTML document when the body was HTML, nil otherwise. A failed
// extractor contributes nothing; it never aborts the rest.
func FieldValues(text string, doc *goquery.Document) map[internal.Field]string {
	fields := map[internal.Field]string{}
	if v, ok := extractVendorName(text); ok {
		fields[internal.FieldVendorName] = v
	}
	if v, ok := extractAmountDue(text, doc); ok {
		fields[internal.FieldAmountDue] = v
	}
	if v, ok := extractDateDue(text); ok {
		fields[internal.FieldDateDue] = v
	}
	if v, ok := extractOrderNumber(text); ok {
		fields[internal.FieldOrderNumber] = v
	}
	if v, ok := extractOrderDate(text); ok {
		fields[internal.FieldOrderDate] = v
	}
	if v, ok := extractTotalAmount(text, doc); ok {
		fields[internal.FieldTotalAmount] = v
	}
	if v, ok := extractShippingAddress(text); ok {
		fields[internal.FieldShippingAddress] = v
	}
	if v, ok := extractTrackingNumber(text); ok {
		fields[internal.FieldTrackingNumber] = v
	}
	if v, ok := extractEmailFrom(text); ok {
		fields[internal.FieldEmailFrom] = v
	}
	return fields
}
