// Package sqlutil provides identifier quoting for the SQL checkpoint backends.
package sqlutil

import (
	"regexp"
	"strings"
)

// Dialect selects the identifier quote character.
type Dialect string

const (
	MySQL  Dialect = "mysql"
	SQLite Dialect = "sqlite"
)

// Quote returns the dialect's identifier quote character.
func (d Dialect) Quote() string {
	if d == SQLite {
		return `"`
	}
	return "`"
}

// QuoteIdentifier quotes name for the dialect, doubling any embedded quote.
//
//	MySQL.QuoteIdentifier("checkpoints")  -> `checkpoints`
//	SQLite.QuoteIdentifier("checkpoints") -> "checkpoints"
func (d Dialect) QuoteIdentifier(name string) string {
	q := d.Quote()
	return q + strings.ReplaceAll(name, q, q+q) + q
}

// QuoteIdentifierSafe validates name before quoting it. Table names come from
// user configuration, so anything outside [A-Za-z0-9_] is rejected.
func (d Dialect) QuoteIdentifierSafe(name string) (string, error) {
	if !IsValidIdentifier(name) {
		return "", &InvalidIdentifierError{Name: name}
	}
	return d.QuoteIdentifier(name), nil
}

var validIdentifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,63}$`)

// IsValidIdentifier reports whether name is a plain identifier of at most 64
// characters that does not start with a digit.
func IsValidIdentifier(name string) bool {
	return validIdentifierRegex.MatchString(name)
}

// InvalidIdentifierError is returned when an identifier fails validation.
type InvalidIdentifierError struct {
	Name string
}

func (e *InvalidIdentifierError) Error() string {
	return "invalid identifier: " + e.Name + " (letters, digits and underscores only, not starting with a digit)"
}
