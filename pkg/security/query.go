package security

import (
	"errors"
	"strings"
	"unicode"
)

const (
	// MaxSearchQueryLength defines the maximum allowed length for search queries
	MaxSearchQueryLength = 100
)

// ValidateSearchQuery validates a free-text search query before it is
// turned into a database pattern match. The query ends up inside a
// case-insensitive regular expression, so the concern here is length
// and control characters, not quoting.
func ValidateSearchQuery(query string) (string, error) {
	if query == "" {
		return "", nil
	}

	if len(query) > MaxSearchQueryLength {
		return "", errors.New("search query too long")
	}

	query = strings.TrimSpace(query)

	for _, char := range query {
		if unicode.IsControl(char) {
			return "", errors.New("search query contains invalid characters")
		}
	}

	return query, nil
}
