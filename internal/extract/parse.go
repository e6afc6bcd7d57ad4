package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"mailsift/internal"
)

// Parse extracts a structured record from one email body. It is a pure
// function: identical input yields identical output, nothing is shared
// between invocations, and it is safe to call concurrently.
//
// Plain text runs the field extractors and the text item extractor.
// HTML is normalized first; the field extractors then see both the text
// and the parsed document, the table item extractor runs on the document,
// and the text item extractor is the fallback when no table qualifies.
func Parse(body internal.RawEmailBody) internal.ExtractedRecord {
	var (
		text  string
		doc   *goquery.Document
		items []internal.LineItem
	)

	switch body.Kind {
	case internal.BodyHTML:
		doc = parseDocument(body.Content)
		text = Normalize(body.Content)
		items = TableItems(doc)
		if len(items) == 0 {
			items = TextItems(text)
		}
	default:
		text = body.Content
		items = TextItems(text)
	}

	record := internal.ExtractedRecord{Fields: FieldValues(text, doc)}
	if len(items) > 0 {
		record.Items = items
	}
	return record
}

// parseDocument returns nil on unparseable input; every consumer treats a
// nil document as "no structured HTML available".
func parseDocument(input string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(input))
	if err != nil {
		return nil
	}
	return doc
}
