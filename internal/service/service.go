package service

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"gorm.io/gorm"

	"libraryapi/internal/errors"
)

const entityCacheTTL = 5 * time.Minute

// minLen reports whether s has at least n characters after trimming.
func minLen(s string, n int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) >= n
}

// capitalize trims s and upper-cases its first letter.
func capitalize(s string) string {
	s = strings.TrimSpace(s)
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// lookupError turns a repository read failure into a domain error.
func lookupError(err error, notFound string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.NotFound(notFound)
	}
	return errors.Storage(err)
}

// writeError turns a repository write failure into a domain error. Duplicate keys
// become conflicts carrying duplicate; foreign key violations carry referenced.
func writeError(err error, duplicate, referenced string) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey) && duplicate != "":
		return errors.Conflict(duplicate)
	case errors.Is(err, gorm.ErrForeignKeyViolated) && referenced != "":
		return errors.Conflict(referenced)
	default:
		return errors.Storage(err)
	}
}

// present reports whether an optional id field was supplied with a usable value.
func present(id *uint) bool {
	return id != nil && *id != 0
}

// deleteError turns a repository delete failure into a domain error.
func deleteError(err error, notFound, referenced string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.NotFound(notFound)
	}
	return writeError(err, "", referenced)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
