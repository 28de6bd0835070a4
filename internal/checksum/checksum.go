package checksum

import (
	"crypto"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	domain "github.com/dreamio-app/dreamio-release/internal/domain/release"

	// Ensure SHA256 is available for digest calculation.
	_ "crypto/sha256"
)

// Function is the digest algorithm every published checksum uses.
// Changing it breaks verification of every previously published release.
const Function crypto.Hash = crypto.SHA256

var errHashUnavailable = errors.New("hash function unavailable")

// Sum streams the reader through the digest function and returns the
// lowercase hex digest. Identical bytes always yield identical digest text.
func Sum(r io.Reader) (domain.Digest, error) {
	if !Function.Available() {
		return "", fmt.Errorf("digest calculation not possible: %w", errHashUnavailable)
	}

	hasher := Function.New()
	if _, err := io.Copy(hasher, r); err != nil {
		return "", fmt.Errorf("calculate digest: %w", err)
	}

	return domain.Digest(hex.EncodeToString(hasher.Sum(nil))), nil
}

// File computes the digest of a file's raw bytes.
// An unreadable file is an error; the pipeline treats it as fatal.
func File(path string) (domain.Digest, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}

	// Best-effort cleanup; the file is only read.
	defer func() {
		_ = f.Close()
	}()

	digest, err := Sum(f)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}

	return digest, nil
}
