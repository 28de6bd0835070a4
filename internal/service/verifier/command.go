package verifier

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dreamio-app/dreamio-release/internal/checksum"
	domain "github.com/dreamio-app/dreamio-release/internal/domain/release"
	"github.com/dreamio-app/dreamio-release/internal/logger"
)

// ErrIntegrityCheckFailed means the downloaded file's digest does not match
// the published one. The file must be treated as corrupted or tampered with
// and must not be executed.
var ErrIntegrityCheckFailed = errors.New("integrity check failed")

var (
	errExpectedDigestMissing = errors.New("either a digest or a release description must be provided")
	errUnknownAssetKind      = errors.New("asset kind must be executable or archive")
)

// Options are inputs accepted by the verifier entry point.
type Options struct {
	// FilePath is the downloaded file to verify.
	FilePath string
	// Digest is the published digest text to compare against.
	Digest string
	// DescriptionPath points at a saved release description to take the digest from.
	// Used when Digest is empty.
	DescriptionPath string
	// AssetKind selects which digest to take from a description:
	// "executable" or "archive". Empty means guess from the file extension.
	AssetKind string
}

// Run verifies a downloaded artifact against its published digest and is the
// public entry point for the CLI. A mismatch is not a pipeline error but a
// trust decision: the caller gets ErrIntegrityCheckFailed and must not run
// the file.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "dreamio-verify")

	expected, err := expectedDigest(opts)
	if err != nil {
		return err
	}

	actual, err := checksum.File(opts.FilePath)
	if err != nil {
		return fmt.Errorf("digest downloaded file: %w", err)
	}

	if !actual.Equal(expected) {
		logger.ErrorKV(ctx, "Digest mismatch, do not execute the file",
			"file", opts.FilePath,
			"published", expected.String(),
			"computed", actual.String())

		return fmt.Errorf("%w: %s", ErrIntegrityCheckFailed, opts.FilePath)
	}

	logger.InfoKV(ctx, "File is trusted", "file", opts.FilePath, "sha256", actual.String())

	return nil
}

// expectedDigest resolves the published digest from the options.
func expectedDigest(opts *Options) (domain.Digest, error) {
	if opts.Digest != "" {
		digest, err := domain.ParseDigest(opts.Digest)
		if err != nil {
			return "", fmt.Errorf("published digest: %w", err)
		}

		return digest, nil
	}

	if opts.DescriptionPath == "" {
		return "", errExpectedDigestMissing
	}

	body, err := os.ReadFile(filepath.Clean(opts.DescriptionPath))
	if err != nil {
		return "", fmt.Errorf("read release description: %w", err)
	}

	desc, err := domain.ParseDescription(string(body))
	if err != nil {
		return "", fmt.Errorf("parse release description: %w", err)
	}

	switch assetKind(opts) {
	case "executable":
		return desc.Executable, nil
	case "archive":
		return desc.Archive, nil
	default:
		return "", fmt.Errorf("%w: %q", errUnknownAssetKind, opts.AssetKind)
	}
}

// assetKind picks the digest to compare against. Zip downloads default to
// the archive digest, anything else to the executable digest.
func assetKind(opts *Options) string {
	if opts.AssetKind != "" {
		return strings.ToLower(strings.TrimSpace(opts.AssetKind))
	}

	if strings.EqualFold(filepath.Ext(opts.FilePath), ".zip") {
		return "archive"
	}

	return "executable"
}
