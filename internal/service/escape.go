package service

import (
	"strings"

	"datachat-cli/internal/api"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// EscapeHTML converts v to text and escapes the five HTML-significant
// characters. nil becomes the empty string. Escaping is not idempotent:
// each value must pass through here exactly once.
func EscapeHTML(v any) string {
	return htmlEscaper.Replace(api.FormatValue(v))
}
