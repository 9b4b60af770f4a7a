package service

import "strings"

// NormalizeISBN keeps only digits and the check character X. A lower-case x
// counts as the check character only in the final position.
func NormalizeISBN(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasSuffix(raw, "x") {
		raw = strings.TrimSuffix(raw, "x") + "X"
	}

	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == 'X' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// validISBNLength reports whether a normalized ISBN has the length of an ISBN-10 or ISBN-13.
func validISBNLength(isbn string) bool {
	return len(isbn) == 10 || len(isbn) == 13
}
