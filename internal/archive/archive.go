package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/flate"
)

var (
	errNotSingleEntry = errors.New("archive must contain exactly one entry")
	errUnsafeEntry    = errors.New("archive entry name is not a plain filename")
)

// Pack writes a zip archive containing exactly one entry: the file at
// srcPath, stored under its base name. The input file is never modified.
func Pack(srcPath, archivePath string) error {
	src, err := os.Open(filepath.Clean(srcPath))
	if err != nil {
		return fmt.Errorf("open artifact: %w", err)
	}

	defer func() {
		_ = src.Close()
	}()

	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("stat artifact: %w", err)
	}

	out, err := os.Create(filepath.Clean(archivePath))
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}

	writer := zip.NewWriter(out)
	writer.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.BestCompression)
	})

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		_ = out.Close()
		return fmt.Errorf("archive header: %w", err)
	}

	header.Name = filepath.Base(srcPath)
	header.Method = zip.Deflate

	entry, err := writer.CreateHeader(header)
	if err != nil {
		_ = out.Close()
		return fmt.Errorf("create archive entry: %w", err)
	}

	if _, err = io.Copy(entry, src); err != nil {
		_ = out.Close()
		return fmt.Errorf("write archive entry: %w", err)
	}

	if err = writer.Close(); err != nil {
		_ = out.Close()
		return fmt.Errorf("finish archive: %w", err)
	}

	if err = out.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}

	return nil
}

// Extract restores the archive's single entry into destDir and returns the
// extracted file's path. Archives with any other entry count are rejected,
// as are entry names that would escape destDir.
func Extract(archivePath, destDir string) (string, error) {
	reader, err := zip.OpenReader(filepath.Clean(archivePath))
	if err != nil {
		// OpenReader can hand back a live reader together with ErrInsecurePath.
		if reader != nil {
			_ = reader.Close()
		}

		return "", fmt.Errorf("open archive: %w", err)
	}

	defer func() {
		_ = reader.Close()
	}()

	if len(reader.File) != 1 {
		return "", fmt.Errorf("%w, found %d", errNotSingleEntry, len(reader.File))
	}

	entry := reader.File[0]
	if entry.Name != filepath.Base(entry.Name) || entry.Name == "." || entry.Name == ".." {
		return "", fmt.Errorf("%w: %q", errUnsafeEntry, entry.Name)
	}

	src, err := entry.Open()
	if err != nil {
		return "", fmt.Errorf("open archive entry: %w", err)
	}

	defer func() {
		_ = src.Close()
	}()

	destPath := filepath.Join(destDir, entry.Name)

	out, err := os.OpenFile(filepath.Clean(destPath), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, entry.Mode())
	if err != nil {
		return "", fmt.Errorf("create extracted file: %w", err)
	}

	if _, err = io.Copy(out, src); err != nil { //nolint:gosec // Single trusted entry, size bounded by the artifact.
		_ = out.Close()
		return "", fmt.Errorf("extract entry: %w", err)
	}

	if err = out.Close(); err != nil {
		return "", fmt.Errorf("close extracted file: %w", err)
	}

	return destPath, nil
}
