package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"mailsift/internal"
	"mailsift/internal/config"
)

// Client is the minimal interface needed to call a chat model. It mirrors the
// CreateChatCompletion method of the OpenAI client so any compatible backend
// can be substituted, tests included.
type Client interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Extractor parses email text through an OpenAI-compatible endpoint instead
// of the rule cascades. It honors the same output contract: a flat JSON
// object of present fields plus an optional items array.
type Extractor struct {
	Client Client
	Model  string
}

const systemMessage = "You are an email parsing assistant. Respond with strict JSON only, no narration. " +
	"Extract commerce data from the email below into this schema: " +
	`{"vendor_name": string?, "amount_due": string?, "date_due": string?, "order_number": string?, "order_date": string?, "total_amount": string?, "shipping_address": string?, "tracking_number": string?, "email_from": string?, ` +
	`"items": [{"name": string, "quantity": int?, "unit_price": string?, "total_price": string?}]?}. ` +
	"Omit any field you cannot find; never invent values. Amounts are bare numeric strings without currency symbols."

func NewExtractor(cfg config.Config) (*Extractor, error) {
	if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
		return nil, errors.New("llm extractor requires OPENAI_API_KEY")
	}
	clientCfg := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		clientCfg.BaseURL = cfg.OpenAIBaseURL
	}
	return &Extractor{
		Client: openai.NewClientWithConfig(clientCfg),
		Model:  cfg.OpenAIModel,
	}, nil
}

// Parse sends the normalized email text to the model and decodes its JSON
// reply. A malformed reply is an error; the caller decides what an empty
// record means, this layer never retries or falls back.
func (e *Extractor) Parse(ctx context.Context, text string) (internal.ExtractedRecord, error) {
	if e.Client == nil || e.Model == "" {
		return internal.ExtractedRecord{}, errors.New("llm extractor not configured")
	}

	resp, err := e.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemMessage},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: 0.1,
		N:           1,
	})
	if err != nil {
		return internal.ExtractedRecord{}, fmt.Errorf("llm call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return internal.ExtractedRecord{}, errors.New("no choices")
	}

	raw := stripFences(strings.TrimSpace(resp.Choices[0].Message.Content))
	var record internal.ExtractedRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return internal.ExtractedRecord{}, fmt.Errorf("parse llm json: %w", err)
	}
	return record, nil
}

// stripFences unwraps a ```json ... ``` block some models emit despite the
// JSON-only instruction.
func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
