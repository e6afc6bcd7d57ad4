package extract

import (
	"regexp"
	"strings"
)

// fieldRule binds one pattern to a field. The value of a rule is the trimmed
// first capture group; accept, when set, can reject a capture so the cascade
// moves on to the next rule.
type fieldRule struct {
	re     *regexp.Regexp
	accept func(string) bool
}

// firstMatch runs an ordered rule list and returns the first accepted
// capture. Later rules are never consulted once one wins; values are never
// coalesced across rules.
func firstMatch(text string, rules []fieldRule) (string, bool) {
	for _, rule := range rules {
		m := rule.re.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		value := strings.TrimSpace(m[1])
		if rule.accept != nil && !rule.accept(value) {
			continue
		}
		return value, true
	}
	return "", false
}

var reWhitespaceRuns = regexp.MustCompile(`\s+`)

func containsDigit(s string) bool {
	return strings.ContainsAny(s, "0123456789")
}

// amountRule captures a currency amount after a label, symbol stripped.
func amountRule(label string) fieldRule {
	return fieldRule{re: regexp.MustCompile(`(?i)(?:` + label + `)[:\s]*[$€£]?\s*([0-9][0-9,.]*)`)}
}

// dateRule captures free-form date text after a label; captures without a
// single digit are rejected and the cascade continues.
func dateRule(label string) fieldRule {
	return fieldRule{
		re:     regexp.MustCompile(`(?i)(?:` + label + `)[:\s]*([A-Za-z0-9, ]+)`),
		accept: containsDigit,
	}
}

// tokenRule captures a single identifier-like token after a label.
func tokenRule(label string) fieldRule {
	return fieldRule{re: regexp.MustCompile(`(?i)(?:` + label + `)[:\s]*#?\s*([A-Za-z0-9_-]+)`)}
}

// blockRule captures everything after a label up to a blank line, the next
// line starting with a letter, or end of text. The terminator is consumed by
// a non-capturing group because RE2 has no lookahead; only the capture is
// ever used.
func blockRule(label string) fieldRule {
	return fieldRule{re: regexp.MustCompile(`(?is)(?:` + label + `)[:\s]*(.*?)(?:\n\n|\n[A-Za-z]|$)`)}
}
