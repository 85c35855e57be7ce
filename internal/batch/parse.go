package batch

import (
	"strings"
	"unicode"
)

// ParseCodes turns free-form coupon input (newline, comma, or whitespace
// separated) into normalized uppercase codes, dropping empty tokens and
// preserving input order.
func ParseCodes(input string) []string {
	tokens := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})

	codes := make([]string, 0, len(tokens))
	for _, token := range tokens {
		code := strings.ToUpper(strings.TrimSpace(token))
		if code == "" {
			continue
		}
		codes = append(codes, code)
	}
	return codes
}
