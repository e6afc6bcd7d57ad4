package pipeline

import "strings"

type DetectResult struct {
	IsCommerce bool
	Score      float64
	Reason     string
}

var detectKeywords = []string{"order", "invoice", "receipt", "tracking", "shipment", "payment", "total", "qty"}

// DetectCommerceEmail scores how likely a message is a commerce email worth
// parsing. Unattended processing skips messages below the threshold; forced
// or one-shot parsing bypasses the gate entirely.
func DetectCommerceEmail(subject, text, html string, threshold float64) DetectResult {
	subject = strings.ToLower(subject)
	text = strings.ToLower(text)
	html = strings.ToLower(html)

	score := 0.0
	for _, kw := range detectKeywords {
		if strings.Contains(subject, kw) {
			score += 0.2
		}
		if strings.Contains(text, kw) || strings.Contains(html, kw) {
			score += 0.1
		}
	}

	currencyHits := countCurrencyTokens(text)
	if currencyHits >= 2 {
		score += 0.4
	} else if currencyHits == 1 {
		score += 0.2
	}

	if strings.Contains(html, "<table") {
		score += 0.25
	}
	if score > 1 {
		score = 1
	}

	isCommerce := score >= threshold
	reason := "rules_negative"
	if isCommerce {
		reason = "rules_positive"
	}

	return DetectResult{IsCommerce: isCommerce, Score: score, Reason: reason}
}

// countCurrencyTokens counts currency-marked amounts like "$12.50" or
// "EUR 30".
func countCurrencyTokens(text string) int {
	count := 0
	for _, marker := range []string{"$", "€", "£", "eur ", "usd "} {
		count += strings.Count(text, marker)
	}
	return count
}
