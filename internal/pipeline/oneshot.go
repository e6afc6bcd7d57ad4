package pipeline

import (
	"fmt"
	"os"

	"mailsift/internal"
	"mailsift/internal/extract"
)

// ParseFile runs the rule extractor over one local file without touching the
// database, for ad-hoc inspection of a saved body.
func ParseFile(path, inputType string) (internal.ExtractedRecord, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return internal.ExtractedRecord{}, err
	}

	switch inputType {
	case "text":
		return extract.Parse(internal.RawEmailBody{Kind: internal.BodyText, Content: string(blob)}), nil
	case "html":
		return extract.Parse(internal.RawEmailBody{Kind: internal.BodyHTML, Content: string(blob)}), nil
	case "eml":
		decoded, err := DecodeEmail(blob)
		if err != nil {
			return internal.ExtractedRecord{}, err
		}
		return extract.Parse(decoded.Body()), nil
	default:
		return internal.ExtractedRecord{}, fmt.Errorf("unsupported input type: %s", inputType)
	}
}
