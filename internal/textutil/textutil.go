// Package textutil provides small text helpers for operator-facing output:
// chat-message product names and CLI display values.
package textutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// ShortenProductName compresses long product names for chat summaries.
// Names of three or more words keep the first word plus the last two; shorter
// names pass through unchanged.
func ShortenProductName(name string) string {
	words := strings.Fields(strings.TrimSpace(name))
	if len(words) < 3 {
		return strings.TrimSpace(name)
	}
	return words[0] + " " + strings.Join(words[len(words)-2:], " ")
}

// DisplayTitle normalizes free-form vendor values (platform names, shipping
// methods) into title case for tables and notifications.
func DisplayTitle(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "-"
	}
	return titleCaser.String(strings.ToLower(trimmed))
}

// DisplayCourier renders courier codes the way vendors print them: upper case.
func DisplayCourier(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "-"
	}
	return strings.ToUpper(trimmed)
}
