package pipeline

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"mailsift/internal"
	"mailsift/internal/config"
	"mailsift/internal/extract"
	"mailsift/internal/llm"
	"mailsift/internal/storage"
)

type ProcessingService struct {
	db    *storage.DB
	cfg   config.Config
	model *llm.Extractor
}

// NewProcessingService wires the parse pipeline. The LLM extractor is only
// constructed when PARSE_MODE=llm; in rules mode no API key is needed.
func NewProcessingService(db *storage.DB, cfg config.Config) (*ProcessingService, error) {
	s := &ProcessingService{db: db, cfg: cfg}
	if cfg.ParseMode == "llm" {
		model, err := llm.NewExtractor(cfg)
		if err != nil {
			return nil, err
		}
		s.model = model
	}
	return s, nil
}

type ProcessResult struct {
	EmailID int
	Fields  int
	Items   int
	Skipped bool
}

func (s *ProcessingService) ProcessByProviderMessageID(provider, messageID string) (ProcessResult, error) {
	email, err := s.db.MustEmailByProviderMessageID(provider, messageID)
	if err != nil {
		return ProcessResult{}, err
	}
	return s.ProcessEmail(email, true)
}

func (s *ProcessingService) ProcessPending(limit int, provider string) (int, int, error) {
	pending, err := s.db.ListEmailsByStatus("fetched", limit)
	if err != nil {
		return 0, 0, err
	}
	processedEmails := 0
	skippedEmails := 0
	for _, email := range pending {
		if provider != "" && email.Provider != provider {
			continue
		}
		res, err := s.ProcessEmail(email, false)
		if err != nil {
			return processedEmails, skippedEmails, err
		}
		if res.Skipped {
			skippedEmails++
			continue
		}
		processedEmails++
	}
	return processedEmails, skippedEmails, nil
}

// ProcessEmail parses one stored message into a record. With force set the
// commerce detection gate is bypassed; unattended batches leave it on so
// newsletters and such are marked skipped instead of producing junk records.
func (s *ProcessingService) ProcessEmail(email internal.EmailRow, force bool) (ProcessResult, error) {
	start := time.Now()
	raw, err := os.ReadFile(email.RawRef)
	if err != nil {
		return ProcessResult{}, err
	}

	decoded, err := DecodeEmail(raw)
	if err != nil {
		return ProcessResult{}, err
	}

	if err := s.db.ClearEmailRecord(email.ID); err != nil {
		return ProcessResult{}, err
	}

	if !force {
		detect := DetectCommerceEmail(firstNonEmpty(decoded.Subject, email.Subject), decoded.Text, decoded.HTML, s.cfg.DetectThreshold)
		if !detect.IsCommerce {
			log.Debug().Int("emailId", email.ID).Float64("score", detect.Score).Msg("skipping non-commerce email")
			_ = s.db.UpdateEmailStatus(email.ID, "skipped")
			_ = s.db.InsertRun(traceID(), email.ID, map[string]float64{"totalMs": float64(time.Since(start).Milliseconds())}, map[string]int{"fields": 0, "items": 0})
			return ProcessResult{EmailID: email.ID, Skipped: true}, nil
		}
	}

	record, extractor := s.parse(decoded)
	if err := s.db.InsertRecord(email.ID, record, extractor); err != nil {
		return ProcessResult{}, err
	}
	if err := s.db.UpdateEmailStatus(email.ID, "parsed"); err != nil {
		return ProcessResult{}, err
	}
	_ = s.db.InsertRun(traceID(), email.ID, map[string]float64{"totalMs": float64(time.Since(start).Milliseconds())}, map[string]int{"fields": len(record.Fields), "items": len(record.Items)})

	return ProcessResult{EmailID: email.ID, Fields: len(record.Fields), Items: len(record.Items)}, nil
}

// parse runs the configured extractor. An LLM failure yields an empty record
// for this email rather than an error or a silent switch to the rule path;
// both extractors share one output contract and are never mixed.
func (s *ProcessingService) parse(decoded DecodedEmail) (internal.ExtractedRecord, string) {
	body := decoded.Body()
	if s.model == nil {
		return extract.Parse(body), "rules"
	}

	text := body.Content
	if body.Kind == internal.BodyHTML {
		text = extract.Normalize(body.Content)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(s.cfg.OpenAITimeoutMs)*time.Millisecond)
	defer cancel()
	record, err := s.model.Parse(ctx, text)
	if err != nil {
		log.Warn().Err(err).Msg("llm extraction failed, storing empty record")
		return internal.ExtractedRecord{Fields: map[internal.Field]string{}}, "llm"
	}
	return record, "llm"
}

func traceID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
