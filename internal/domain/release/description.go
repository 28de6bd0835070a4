package release

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
)

const (
	// ExecutableHeading labels the raw executable digest in a release description.
	ExecutableHeading = "### Executable SHA256:"

	// ArchiveHeading labels the archive digest in a release description.
	ArchiveHeading = "### Archive SHA256:"
)

var (
	errMissingExecutableDigest = errors.New("description has no executable digest")
	errMissingArchiveDigest    = errors.New("description has no archive digest")
)

// Description carries the two digests published with every release.
type Description struct {
	// Executable is the digest of the raw updater executable.
	Executable Digest
	// Archive is the digest of the zipped updater executable.
	Archive Digest
}

// Render produces the fixed two-heading release body. The layout is a
// published contract: consumers copy-compare the values under each heading.
func (d Description) Render() string {
	var builder strings.Builder

	builder.WriteString(ExecutableHeading)
	builder.WriteString("\n")
	builder.WriteString(d.Executable.String())
	builder.WriteString("\n")
	builder.WriteString(ArchiveHeading)
	builder.WriteString("\n")
	builder.WriteString(d.Archive.String())
	builder.WriteString("\n")

	return builder.String()
}

// ParseDescription extracts both digests from release body text. It is the
// inverse of Render but tolerates surrounding lines, so a consumer can feed
// it a saved release page as-is.
func ParseDescription(body string) (Description, error) {
	var (
		desc    Description
		current *Digest
	)

	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == ExecutableHeading:
			current = &desc.Executable
		case line == ArchiveHeading:
			current = &desc.Archive
		case current != nil && line != "":
			digest, err := ParseDigest(line)
			if err != nil {
				return Description{}, fmt.Errorf("digest under heading: %w", err)
			}

			*current = digest
			current = nil
		}
	}

	if desc.Executable == "" {
		return Description{}, errMissingExecutableDigest
	}

	if desc.Archive == "" {
		return Description{}, errMissingArchiveDigest
	}

	return desc, nil
}
