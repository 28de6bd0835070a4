package archive

import (
	"archive/zip"
	"bytes"
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestPackExtractRoundtrip checks that the archive restores the artifact
// byte-for-byte and leaves the input untouched.
func TestPackExtractRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	srcPath := filepath.Join(dir, "DreamioUpdater.exe")

	// Random content compresses poorly, which also exercises the deflate path honestly.
	content := make([]byte, 128*1024)
	_, err := rand.Read(content)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(srcPath, content, 0o755))

	archivePath := filepath.Join(dir, "DreamioUpdater.zip")
	require.NoError(t, Pack(srcPath, archivePath))

	// Input unchanged.
	after, err := os.ReadFile(srcPath)
	require.NoError(t, err)
	require.True(t, bytes.Equal(content, after))

	extractDir := t.TempDir()

	extracted, err := Extract(archivePath, extractDir)
	require.NoError(t, err)
	require.Equal(t, "DreamioUpdater.exe", filepath.Base(extracted))

	restored, err := os.ReadFile(extracted)
	require.NoError(t, err)
	require.True(t, bytes.Equal(content, restored))
}

// TestPackSingleEntry verifies the archive layout: one entry under the artifact's base name.
func TestPackSingleEntry(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	srcPath := filepath.Join(dir, "DreamioUpdater.exe")
	require.NoError(t, os.WriteFile(srcPath, []byte("updater"), 0o755))

	archivePath := filepath.Join(dir, "DreamioUpdater.zip")
	require.NoError(t, Pack(srcPath, archivePath))

	reader, err := zip.OpenReader(archivePath)
	require.NoError(t, err)

	defer func() {
		_ = reader.Close()
	}()

	require.Len(t, reader.File, 1)
	require.Equal(t, "DreamioUpdater.exe", reader.File[0].Name)
}

// TestExtractRejectsMultipleEntries guards the single-entry invariant on the consumer side.
func TestExtractRejectsMultipleEntries(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	archivePath := filepath.Join(dir, "bad.zip")

	out, err := os.Create(archivePath)
	require.NoError(t, err)

	writer := zip.NewWriter(out)

	for _, name := range []string{"one.bin", "two.bin"} {
		entry, createErr := writer.Create(name)
		require.NoError(t, createErr)

		_, writeErr := entry.Write([]byte(name))
		require.NoError(t, writeErr)
	}

	require.NoError(t, writer.Close())
	require.NoError(t, out.Close())

	_, err = Extract(archivePath, t.TempDir())
	require.Error(t, err)
}

// TestExtractRejectsTraversal refuses entry names that point outside the destination.
func TestExtractRejectsTraversal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	archivePath := filepath.Join(dir, "evil.zip")

	out, err := os.Create(archivePath)
	require.NoError(t, err)

	writer := zip.NewWriter(out)

	entry, err := writer.Create("../escape.bin")
	require.NoError(t, err)

	_, err = entry.Write([]byte("nope"))
	require.NoError(t, err)

	require.NoError(t, writer.Close())
	require.NoError(t, out.Close())

	_, err = Extract(archivePath, t.TempDir())
	require.Error(t, err)
}

// TestPackMissingInput fails fast when the artifact does not exist.
func TestPackMissingInput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	err := Pack(filepath.Join(dir, "missing.exe"), filepath.Join(dir, "out.zip"))
	require.Error(t, err)
}
