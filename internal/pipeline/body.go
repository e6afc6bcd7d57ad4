package pipeline

import (
	"bytes"

	"github.com/jhillyerd/enmime"

	"mailsift/internal"
)

// DecodedEmail is one MIME message reduced to the parts the parser needs.
type DecodedEmail struct {
	Subject string
	Text    string
	HTML    string
}

func DecodeEmail(raw []byte) (DecodedEmail, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return DecodedEmail{}, err
	}
	return DecodedEmail{
		Subject: env.GetHeader("Subject"),
		Text:    env.Text,
		HTML:    env.HTML,
	}, nil
}

// Body picks the richer representation: HTML when present, since the table
// extractor and cell probes only work on markup, otherwise the text part.
func (e DecodedEmail) Body() internal.RawEmailBody {
	if e.HTML != "" {
		return internal.RawEmailBody{Kind: internal.BodyHTML, Content: e.HTML}
	}
	return internal.RawEmailBody{Kind: internal.BodyText, Content: e.Text}
}
