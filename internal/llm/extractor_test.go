package llm

import (
	"context"
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"mailsift/internal"
)

type stubClient struct {
	content string
	err     error
	request openai.ChatCompletionRequest
}

func (s *stubClient) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.request = req
	if s.err != nil {
		return openai.ChatCompletionResponse{}, s.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: s.content}},
		},
	}, nil
}

func TestExtractorParse(t *testing.T) {
	stub := &stubClient{content: `{"vendor_name": "Acme Corp", "total_amount": "42.50", "items": [{"name": "Widget", "quantity": 3, "unit_price": "9.99"}]}`}
	e := &Extractor{Client: stub, Model: "gpt-4o-mini"}

	rec, err := e.Parse(context.Background(), "Thank you for your order from Acme Corp")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if v, _ := rec.Get(internal.FieldVendorName); v != "Acme Corp" {
		t.Fatalf("vendor_name = %q", v)
	}
	if v, _ := rec.Get(internal.FieldTotalAmount); v != "42.50" {
		t.Fatalf("total_amount = %q", v)
	}
	if len(rec.Items) != 1 || rec.Items[0].Name != "Widget" || *rec.Items[0].Quantity != 3 {
		t.Fatalf("items = %+v", rec.Items)
	}
	if len(stub.request.Messages) != 2 || stub.request.Messages[0].Role != openai.ChatMessageRoleSystem {
		t.Fatalf("unexpected request messages: %+v", stub.request.Messages)
	}
}

func TestExtractorParseFencedReply(t *testing.T) {
	stub := &stubClient{content: "```json\n{\"order_number\": \"A-1001\"}\n```"}
	e := &Extractor{Client: stub, Model: "gpt-4o-mini"}

	rec, err := e.Parse(context.Background(), "Order Number: A-1001")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if v, _ := rec.Get(internal.FieldOrderNumber); v != "A-1001" {
		t.Fatalf("order_number = %q", v)
	}
}

func TestExtractorParseBadJSON(t *testing.T) {
	stub := &stubClient{content: "Sure! Here is the data you asked for."}
	e := &Extractor{Client: stub, Model: "gpt-4o-mini"}

	if _, err := e.Parse(context.Background(), "anything"); err == nil {
		t.Fatal("expected error for non-JSON reply")
	}
}

func TestExtractorParseCallError(t *testing.T) {
	stub := &stubClient{err: errors.New("boom")}
	e := &Extractor{Client: stub, Model: "gpt-4o-mini"}

	if _, err := e.Parse(context.Background(), "anything"); err == nil {
		t.Fatal("expected error when the call fails")
	}
}

func TestExtractorNotConfigured(t *testing.T) {
	e := &Extractor{}
	if _, err := e.Parse(context.Background(), "anything"); err == nil {
		t.Fatal("expected error for unconfigured extractor")
	}
}
