package release

import (
	"errors"
	"fmt"
	"strings"
)

// Digest is a SHA-256 hash encoded as 64 lowercase hexadecimal characters.
type Digest string

// DigestHexLength is the length of a hex-encoded SHA-256 digest.
const DigestHexLength = 64

var (
	errDigestLength   = errors.New("digest must be 64 hexadecimal characters")
	errDigestAlphabet = errors.New("digest contains non-hexadecimal characters")
)

// ParseDigest validates and normalizes digest text to its lowercase form.
// Published digests are always lowercase, but consumers may paste either case.
func ParseDigest(s string) (Digest, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != DigestHexLength {
		return "", fmt.Errorf("%w, got %d", errDigestLength, len(s))
	}

	for _, r := range s {
		if !isHexDigit(r) {
			return "", errDigestAlphabet
		}
	}

	return Digest(s), nil
}

// Equal compares two digests case-insensitively.
// The trust decision of the verifier hinges on this comparison alone.
func (d Digest) Equal(other Digest) bool {
	return strings.EqualFold(string(d), string(other))
}

// String returns the digest text.
func (d Digest) String() string {
	return string(d)
}

// isHexDigit reports whether r belongs to the lowercase hex alphabet.
func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')
}
