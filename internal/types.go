package internal

import (
	"bytes"
	"encoding/json"
)

type BodyKind string

const (
	BodyText BodyKind = "text"
	BodyHTML BodyKind = "html"
)

// RawEmailBody is one decoded email body as handed over by a mail connector.
// Kind selects the extraction path; Content is never mutated by extraction.
type RawEmailBody struct {
	Kind    BodyKind
	Content string
}

// Field names the nine canonical commerce fields.
type Field string

const (
	FieldVendorName      Field = "vendor_name"
	FieldAmountDue       Field = "amount_due"
	FieldDateDue         Field = "date_due"
	FieldOrderNumber     Field = "order_number"
	FieldOrderDate       Field = "order_date"
	FieldTotalAmount     Field = "total_amount"
	FieldShippingAddress Field = "shipping_address"
	FieldTrackingNumber  Field = "tracking_number"
	FieldEmailFrom       Field = "email_from"
)

// FieldOrder is the canonical column order used by exports and JSON output.
var FieldOrder = []Field{
	FieldVendorName,
	FieldAmountDue,
	FieldDateDue,
	FieldOrderNumber,
	FieldOrderDate,
	FieldTotalAmount,
	FieldShippingAddress,
	FieldTrackingNumber,
	FieldEmailFrom,
}

// LineItem is one order line. Name is required; an item without a name is
// invalid and never emitted. Prices stay strings, currency symbol stripped.
type LineItem struct {
	Name       string  `json:"name"`
	Quantity   *int    `json:"quantity,omitempty"`
	UnitPrice  *string `json:"unit_price,omitempty"`
	TotalPrice *string `json:"total_price,omitempty"`
}

// ExtractedRecord is the result of parsing one email body. Fields holds only
// the fields some rule matched; a missing key means no rule fired, which is
// distinct from an empty capture. Items is nil when no extractor found any.
type ExtractedRecord struct {
	Fields map[Field]string
	Items  []LineItem
}

func (r ExtractedRecord) Get(f Field) (string, bool) {
	v, ok := r.Fields[f]
	return v, ok
}

// MarshalJSON flattens the record into one object: present fields in
// canonical order, then "items" when non-empty.
func (r ExtractedRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	write := func(key string, value any) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		k, err := json.Marshal(key)
		if err != nil {
			return err
		}
		v, err := json.Marshal(value)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
		return nil
	}
	for _, f := range FieldOrder {
		if v, ok := r.Fields[f]; ok {
			if err := write(string(f), v); err != nil {
				return nil, err
			}
		}
	}
	if len(r.Items) > 0 {
		if err := write("items", r.Items); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r *ExtractedRecord) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	rec := ExtractedRecord{Fields: map[Field]string{}}
	for _, f := range FieldOrder {
		blob, ok := raw[string(f)]
		if !ok {
			continue
		}
		var v string
		if err := json.Unmarshal(blob, &v); err != nil {
			continue
		}
		rec.Fields[f] = v
	}
	if blob, ok := raw["items"]; ok {
		_ = json.Unmarshal(blob, &rec.Items)
	}
	*r = rec
	return nil
}

type EmailRow struct {
	ID         int
	Provider   string
	MessageID  string
	Subject    string
	Sender     string
	ReceivedAt string
	Hash       string
	Status     string
	RawRef     string
}

type FetchedMailMessage struct {
	Provider   string
	MessageID  string
	Subject    string
	From       string
	ReceivedAt string
	Raw        []byte
}

// ExportRow pairs an email's metadata with its parsed record for export.
type ExportRow struct {
	EmailID    int
	MessageID  string
	Subject    string
	Sender     string
	ReceivedAt string
	Record     ExtractedRecord
}
