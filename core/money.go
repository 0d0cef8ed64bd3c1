package core

import (
	"strconv"
	"strings"
)

// ParseMoney converts an annotated monetary string to a float.
// Upstream sources decorate levels with currency symbols, thousands
// separators and reference markers ("$1,234.56 (ref)"); only the first
// token before whitespace is considered. A string that still fails to
// parse after normalization is a skip condition for batch callers.
func ParseMoney(value string) (float64, error) {
	token := strings.TrimSpace(value)
	if token == "" {
		return 0, ErrMalformedPrice
	}

	// Take the first token, dropping trailing annotations
	if idx := strings.IndexAny(token, " \t"); idx != -1 {
		token = token[:idx]
	}

	token = strings.TrimPrefix(token, "$")
	token = strings.ReplaceAll(token, ",", "")

	parsed, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, ErrMalformedPrice
	}
	return parsed, nil
}
