// Package videoid extracts canonical 11-character YouTube video identifiers.
package videoid

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ErrInvalidIdentifier is returned when no valid identifier can be extracted.
var ErrInvalidIdentifier = errors.New("invalid video identifier")

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// Valid reports whether s is itself a well-formed identifier.
func Valid(s string) bool {
	return idPattern.MatchString(s)
}

// Parse resolves a raw identifier, a youtu.be short link or a URL carrying a
// "v" query parameter to the 11-character video id.
func Parse(input string) (string, error) {
	s := strings.Trim(strings.TrimSpace(input), `"'`)
	if Valid(s) {
		return s, nil
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, input)
	}

	var candidate string
	if strings.Contains(u.Host, "youtu.be") {
		candidate = strings.Split(strings.Trim(u.Path, "/"), "/")[0]
	} else {
		candidate = u.Query().Get("v")
	}

	if !Valid(candidate) {
		return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, input)
	}
	return candidate, nil
}
