package validate

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"
)

var (
	strict = bluemonday.StrictPolicy()

	nameDisallowed     = regexp.MustCompile(`[^a-zA-Z0-9\s\-'.]`)
	menuNameDisallowed = regexp.MustCompile(`[^a-zA-Z0-9\s\-'&(),.!]`)
	whitespaceRun      = regexp.MustCompile(`\s+`)
	entity             = regexp.MustCompile(`&[a-zA-Z]+;`)
	jsProtocol         = regexp.MustCompile(`(?i)javascript:`)
	eventHandler       = regexp.MustCompile(`(?i)on\w+=`)
	emailShape         = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

const (
	MaxNameLength       = 100
	MaxTextLength       = 500
	MaxEmailLength      = 254
	UnknownItemName     = "Unknown Item"
	UnknownModifierName = "Unknown"
)

// stripTags drops all markup and any stray angle brackets.
func stripTags(s string) string {
	s = strict.Sanitize(s)
	s = html.UnescapeString(s)
	return strings.NewReplacer("<", "", ">", "").Replace(s)
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:max]))
}

// Name keeps letters, digits, spaces, hyphens, apostrophes and periods.
func Name(s string) string {
	s = nameDisallowed.ReplaceAllString(s, "")
	s = whitespaceRun.ReplaceAllString(s, " ")
	return truncate(strings.TrimSpace(s), MaxNameLength)
}

// MenuItemName allows common menu punctuation. Empty input yields fallback.
func MenuItemName(s, fallback string) string {
	s = stripTags(s)
	s = menuNameDisallowed.ReplaceAllString(s, "")
	s = whitespaceRun.ReplaceAllString(s, " ")
	s = truncate(strings.TrimSpace(s), MaxNameLength)
	if s == "" {
		return fallback
	}
	return s
}

// Text strips markup, entities and script vectors from free text.
func Text(s string) string {
	s = stripTags(s)
	s = entity.ReplaceAllString(s, "")
	s = jsProtocol.ReplaceAllString(s, "")
	s = eventHandler.ReplaceAllString(s, "")
	return truncate(strings.TrimSpace(s), MaxTextLength)
}

// Instructions strips markup from special instructions.
func Instructions(s string) string {
	return truncate(strings.TrimSpace(stripTags(s)), MaxTextLength)
}

// Email lower-cases and trims; malformed addresses become "".
func Email(s string) string {
	s = truncate(strings.ToLower(strings.TrimSpace(s)), MaxEmailLength)
	if !emailShape.MatchString(s) {
		return ""
	}
	return s
}

// Price clamps negatives and out-of-range amounts to zero and rounds to cents.
func Price(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() || !Amount(d) {
		return decimal.Zero
	}
	return d.Round(2)
}
