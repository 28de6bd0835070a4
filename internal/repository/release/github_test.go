package release

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-github/v66/github"
	"github.com/stretchr/testify/require"

	domain "github.com/dreamio-app/dreamio-release/internal/domain/release"
)

// fakeReleaseAPI is a minimal in-memory stand-in for the Releases endpoints.
type fakeReleaseAPI struct {
	// existingTags are tags that already have a published release.
	existingTags map[string]bool
	// createdBody is the description of the release created during the test.
	createdBody string
	// createdTag is the tag of the release created during the test.
	createdTag string
	// createdAsDraft records whether the release was created as a draft.
	createdAsDraft bool
	// uploadedAssets collects asset names in upload order.
	uploadedAssets []string
	// createCalls counts release creation attempts.
	createCalls int
	// uploadsAtFlip is how many assets existed when the draft went live.
	uploadsAtFlip int
	// flipCalls counts draft-to-live transitions.
	flipCalls int
	// flipConflict makes the draft-to-live transition fail like a taken tag.
	flipConflict bool
	// failUpload makes uploads of the named asset fail.
	failUpload string
	// deletedReleases collects ids of removed releases.
	deletedReleases []int64
}

func (f *fakeReleaseAPI) handler(t *testing.T) http.Handler {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("GET /repos/dreamio-app/dreamio-updater/releases/tags/{tag}", func(w http.ResponseWriter, r *http.Request) {
		if f.existingTags[r.PathValue("tag")] {
			_ = json.NewEncoder(w).Encode(map[string]any{"id": 7, "tag_name": r.PathValue("tag")})
			return
		}

		w.WriteHeader(http.StatusNotFound)
	})

	mux.HandleFunc("POST /repos/dreamio-app/dreamio-updater/releases", func(w http.ResponseWriter, r *http.Request) {
		f.createCalls++

		var payload struct {
			TagName string `json:"tag_name"`
			Body    string `json:"body"`
			Draft   bool   `json:"draft"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))

		if f.existingTags[payload.TagName] {
			// Same shape GitHub uses for a tag collision.
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = fmt.Fprint(w, `{"message":"Validation Failed","errors":[{"code":"already_exists","field":"tag_name"}]}`)

			return
		}

		f.createdTag = payload.TagName
		f.createdBody = payload.Body
		f.createdAsDraft = payload.Draft

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 1, "tag_name": payload.TagName})
	})

	mux.HandleFunc("POST /repos/dreamio-app/dreamio-updater/releases/1/assets", func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		if name == f.failUpload && f.failUpload != "" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		f.uploadedAssets = append(f.uploadedAssets, name)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": len(f.uploadedAssets)})
	})

	mux.HandleFunc("PATCH /repos/dreamio-app/dreamio-updater/releases/1", func(w http.ResponseWriter, _ *http.Request) {
		if f.flipConflict {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = fmt.Fprint(w, `{"message":"Validation Failed","errors":[{"code":"already_exists","field":"tag_name"}]}`)

			return
		}

		f.flipCalls++
		f.uploadsAtFlip = len(f.uploadedAssets)

		_ = json.NewEncoder(w).Encode(map[string]any{"id": 1, "tag_name": f.createdTag, "draft": false})
	})

	mux.HandleFunc("DELETE /repos/dreamio-app/dreamio-updater/releases/1", func(w http.ResponseWriter, _ *http.Request) {
		f.deletedReleases = append(f.deletedReleases, 1)

		w.WriteHeader(http.StatusNoContent)
	})

	return mux
}

// newTestPublisher wires a GitHubPublisher at a local fake API.
func newTestPublisher(t *testing.T, api *fakeReleaseAPI) *GitHubPublisher {
	t.Helper()

	server := httptest.NewServer(api.handler(t))
	t.Cleanup(server.Close)

	client := github.NewClient(nil)

	base, err := url.Parse(server.URL + "/")
	require.NoError(t, err)

	client.BaseURL = base
	client.UploadURL = base

	return NewGitHubPublisher(client, "dreamio-app", "dreamio-updater")
}

// testRelease builds a release backed by real temp files.
func testRelease(t *testing.T, tag string) *domain.Release {
	t.Helper()

	dir := t.TempDir()

	exePath := filepath.Join(dir, "DreamioUpdater.exe")
	require.NoError(t, os.WriteFile(exePath, []byte("executable"), 0o755))

	zipPath := filepath.Join(dir, "DreamioUpdater.zip")
	require.NoError(t, os.WriteFile(zipPath, []byte("archive"), 0o644))

	return &domain.Release{
		Tag:        tag,
		Executable: domain.Asset{Name: "DreamioUpdater.exe", Path: exePath},
		Archive:    domain.Asset{Name: "DreamioUpdater.zip", Path: zipPath},
		Description: domain.Description{
			Executable: domain.Digest(strings.Repeat("a1", 32)),
			Archive:    domain.Digest(strings.Repeat("b2", 32)),
		},
	}
}

// TestPublishCreatesReleaseWithAssets covers the happy path: one release,
// the rendered description and both assets under fixed names, attached
// while the record was still a draft.
func TestPublishCreatesReleaseWithAssets(t *testing.T) {
	t.Parallel()

	api := &fakeReleaseAPI{existingTags: map[string]bool{}}
	publisher := newTestPublisher(t, api)
	release := testRelease(t, "2024-03-05-abcdef1")

	require.NoError(t, publisher.Publish(context.Background(), release))

	require.Equal(t, "2024-03-05-abcdef1", api.createdTag)
	require.Equal(t, release.Description.Render(), api.createdBody)
	require.Equal(t, []string{"DreamioUpdater.exe", "DreamioUpdater.zip"}, api.uploadedAssets)

	// Created as draft, went live exactly once with both assets in place.
	require.True(t, api.createdAsDraft)
	require.Equal(t, 1, api.flipCalls)
	require.Equal(t, 2, api.uploadsAtFlip)
	require.Empty(t, api.deletedReleases)
}

// TestPublishUploadFailureDiscardsDraft removes the draft when an asset
// upload fails, so no half-populated release survives the run.
func TestPublishUploadFailureDiscardsDraft(t *testing.T) {
	t.Parallel()

	api := &fakeReleaseAPI{
		existingTags: map[string]bool{},
		failUpload:   "DreamioUpdater.zip",
	}
	publisher := newTestPublisher(t, api)
	release := testRelease(t, "2024-03-05-abcdef1")

	err := publisher.Publish(context.Background(), release)
	require.Error(t, err)

	// The draft never went live and was cleaned up.
	require.Zero(t, api.flipCalls)
	require.Equal(t, []int64{1}, api.deletedReleases)
}

// TestPublishFlipConflict maps a conflict at publication time to ErrTagExists.
func TestPublishFlipConflict(t *testing.T) {
	t.Parallel()

	api := &fakeReleaseAPI{
		existingTags: map[string]bool{},
		flipConflict: true,
	}
	publisher := newTestPublisher(t, api)
	release := testRelease(t, "2024-03-05-abcdef1")

	err := publisher.Publish(context.Background(), release)
	require.ErrorIs(t, err, ErrTagExists)
	require.Equal(t, []int64{1}, api.deletedReleases)
}

// TestPublishExistingTag fails without creating anything or touching the old release.
func TestPublishExistingTag(t *testing.T) {
	t.Parallel()

	api := &fakeReleaseAPI{existingTags: map[string]bool{"2024-03-05-abcdef1": true}}
	publisher := newTestPublisher(t, api)
	release := testRelease(t, "2024-03-05-abcdef1")

	err := publisher.Publish(context.Background(), release)
	require.ErrorIs(t, err, ErrTagExists)

	require.Zero(t, api.createCalls)
	require.Empty(t, api.uploadedAssets)
}

// TestPublishLostRace maps the API's conflict response to ErrTagExists when
// another run claims the tag between the pre-check and the create call.
func TestPublishLostRace(t *testing.T) {
	t.Parallel()

	api := &fakeReleaseAPI{existingTags: map[string]bool{}}
	_ = newTestPublisher(t, api)
	release := testRelease(t, "2024-03-05-abcdef1")

	// The tag shows up as free on lookup but collides on create.
	handler := api.handler(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		api.existingTags[release.Tag] = true
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)

	client := github.NewClient(nil)

	base, err := url.Parse(server.URL + "/")
	require.NoError(t, err)

	client.BaseURL = base
	client.UploadURL = base

	racing := NewGitHubPublisher(client, "dreamio-app", "dreamio-updater")

	err = racing.Publish(context.Background(), release)
	require.ErrorIs(t, err, ErrTagExists)
	require.Empty(t, api.uploadedAssets)
}

// TestTagExists checks both lookup outcomes.
func TestTagExists(t *testing.T) {
	t.Parallel()

	api := &fakeReleaseAPI{existingTags: map[string]bool{"2024-03-05-abcdef1": true}}
	publisher := newTestPublisher(t, api)

	exists, err := publisher.TagExists(context.Background(), "2024-03-05-abcdef1")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = publisher.TagExists(context.Background(), "2024-03-06-1234567")
	require.NoError(t, err)
	require.False(t, exists)
}
