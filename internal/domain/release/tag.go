package release

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// ShortRevisionLength is the number of revision characters embedded in a tag.
	ShortRevisionLength = 7

	// tagDateLayout renders the UTC build date portion of a tag.
	tagDateLayout = "2006-01-02"
)

var (
	errRevisionTooShort = errors.New("revision identifier is shorter than the short form")
	errRevisionNotHex   = errors.New("revision identifier is not hexadecimal")
)

// FormatTag derives the release tag from the UTC build date and the
// triggering source revision: YYYY-MM-DD-xxxxxxx. The revision prefix is
// lowercased so tags stay stable regardless of how the revision was quoted.
func FormatTag(buildDate time.Time, revision string) (string, error) {
	short, err := ShortRevision(revision)
	if err != nil {
		return "", err
	}

	return buildDate.UTC().Format(tagDateLayout) + "-" + short, nil
}

// ShortRevision returns the fixed-length lowercase prefix of a revision identifier.
func ShortRevision(revision string) (string, error) {
	revision = strings.ToLower(strings.TrimSpace(revision))
	if len(revision) < ShortRevisionLength {
		return "", fmt.Errorf("%w: %q", errRevisionTooShort, revision)
	}

	short := revision[:ShortRevisionLength]
	for _, r := range short {
		if !isHexDigit(r) {
			return "", fmt.Errorf("%w: %q", errRevisionNotHex, short)
		}
	}

	return short, nil
}
