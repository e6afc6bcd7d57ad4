package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"mailsift/internal/config"
	"mailsift/internal/connectors"
	gmailconnector "mailsift/internal/connectors/gmail"
	imapconnector "mailsift/internal/connectors/imap"
	"mailsift/internal/listener"
	"mailsift/internal/pipeline"
	"mailsift/internal/storage"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]

	// The one-shot parse needs no database.
	if cmd == "parse" {
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "input file path")
		inType := fs.String("type", "text", "text|html|eml")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" {
			must(fmt.Errorf("--input is required"))
		}
		record, err := pipeline.ParseFile(*input, *inType)
		must(err)
		blob, err := json.MarshalIndent(record, "", "  ")
		must(err)
		fmt.Println(string(blob))
		return
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	switch cmd {
	case "mail:fetch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", "gmail", "gmail|imap")
		label := fs.String("label", "INBOX", "mailbox/label")
		criteria := fs.String("criteria", "UNSEEN", "UNSEEN|ALL")
		max := fs.Int("max", 50, "max messages")
		_ = fs.Parse(os.Args[2:])
		conn, err := makeConnector(cfg, *provider)
		must(err)
		fetch := connectors.NewFetchService(db, cfg.RawMailDir, conn)
		result, err := fetch.FetchAndStore(*label, *criteria, *max)
		must(err)
		fmt.Printf("mail fetch done provider=%s fetched=%d stored=%d\n", *provider, result.Fetched, result.Stored)
	case "mail:parse":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", "gmail", "gmail|imap")
		messageID := fs.String("messageId", "", "specific message-id")
		batch := fs.Int("batch", 20, "batch size")
		_ = fs.Parse(os.Args[2:])
		processor, err := pipeline.NewProcessingService(db, cfg)
		must(err)
		if strings.TrimSpace(*messageID) != "" {
			res, err := processor.ProcessByProviderMessageID(*provider, *messageID)
			must(err)
			fmt.Printf("parsed email id=%d fields=%d items=%d\n", res.EmailID, res.Fields, res.Items)
			return
		}
		parsedEmails, skippedEmails, err := processor.ProcessPending(*batch, *provider)
		must(err)
		fmt.Printf("parsed pending emails=%d skipped=%d\n", parsedEmails, skippedEmails)
	case "export":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		emailID := fs.Int("emailId", 0, "internal email id, 0 for all parsed emails")
		format := fs.String("format", "csv", "csv|json|xlsx")
		out := fs.String("out", "", "output file path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--out is required"))
		}
		rows, err := db.ListExportRows(*emailID)
		must(err)
		if len(rows) == 0 {
			must(fmt.Errorf("no records to export"))
		}
		must(pipeline.ExportRows(rows, *out, *format))
		fmt.Printf("exported %d records to %s\n", len(rows), *out)
	case "mail:listen":
		s := listener.NewService(db, cfg)
		must(s.Run(context.Background()))
	default:
		usage()
		os.Exit(1)
	}
}

func makeConnector(cfg config.Config, provider string) (connectors.MailConnector, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "gmail":
		return gmailconnector.NewConnector(cfg)
	case "imap":
		return imapconnector.NewConnector(cfg)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func usage() {
	fmt.Println("usage: mailsift <command>")
	fmt.Println("commands:")
	fmt.Println("  mail:fetch --provider=gmail|imap --label=INBOX --criteria=UNSEEN|ALL --max=50")
	fmt.Println("  mail:parse --provider=gmail|imap [--messageId=...] [--batch=20]")
	fmt.Println("  mail:listen")
	fmt.Println("  parse --input=body.html --type=text|html|eml")
	fmt.Println("  export --format=csv|json|xlsx --out=./out/records.csv [--emailId=1]")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
