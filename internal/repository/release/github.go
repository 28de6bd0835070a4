package release

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/go-github/v66/github"

	domain "github.com/dreamio-app/dreamio-release/internal/domain/release"
	"github.com/dreamio-app/dreamio-release/internal/logger"
)

// Publisher defines the publication operations the releaser service depends on.
type Publisher interface {
	TagExists(ctx context.Context, tag string) (bool, error)
	Publish(ctx context.Context, release *domain.Release) error
}

// ErrTagExists is returned when a release with the requested tag is already
// published. The pre-existing release is left exactly as it was.
var ErrTagExists = errors.New("release tag already exists")

// GitHubPublisher publishes releases through the GitHub Releases API.
type GitHubPublisher struct {
	// client is a configured go-github client. Base and upload URLs are
	// whatever the client carries, so tests can point it at a local server.
	client *github.Client
	// owner is the repository owner.
	owner string
	// repo is the repository name.
	repo string
}

// NewGitHubPublisher creates a publisher for the given repository.
func NewGitHubPublisher(client *github.Client, owner, repo string) *GitHubPublisher {
	return &GitHubPublisher{
		client: client,
		owner:  owner,
		repo:   repo,
	}
}

// TagExists reports whether a release with the tag is already published.
func (p *GitHubPublisher) TagExists(ctx context.Context, tag string) (bool, error) {
	_, resp, err := p.client.Repositories.GetReleaseByTag(ctx, p.owner, p.repo, tag)
	if err == nil {
		return true, nil
	}

	if resp != nil && resp.StatusCode == http.StatusNotFound {
		return false, nil
	}

	return false, fmt.Errorf("look up release %s: %w", tag, err)
}

// Publish creates the release record and attaches both assets.
// The record starts as a draft and only flips live once both assets are
// attached, so consumers never see a release with missing assets. It fails
// with ErrTagExists when the tag is taken, both via a pre-check and by
// mapping the API's conflict responses, so a lost race between two runs
// still cannot touch the earlier release.
func (p *GitHubPublisher) Publish(ctx context.Context, release *domain.Release) error {
	exists, err := p.TagExists(ctx, release.Tag)
	if err != nil {
		return err
	}

	if exists {
		return fmt.Errorf("%w: %s", ErrTagExists, release.Tag)
	}

	body := release.Description.Render()

	created, _, err := p.client.Repositories.CreateRelease(ctx, p.owner, p.repo, &github.RepositoryRelease{
		TagName:    github.String(release.Tag),
		Name:       github.String(release.Tag),
		Body:       github.String(body),
		Draft:      github.Bool(true),
		Prerelease: github.Bool(false),
	})
	if err != nil {
		if isTagConflict(err) {
			return fmt.Errorf("%w: %s", ErrTagExists, release.Tag)
		}

		return fmt.Errorf("create release %s: %w", release.Tag, err)
	}

	logger.InfoKV(ctx, "Created draft release", "tag", release.Tag, "id", created.GetID())

	for _, asset := range []domain.Asset{release.Executable, release.Archive} {
		if err = p.uploadAsset(ctx, created.GetID(), asset); err != nil {
			p.discardDraft(ctx, created.GetID())
			return err
		}
	}

	// Publication proper: the draft becomes the immutable public release.
	if _, _, err = p.client.Repositories.EditRelease(ctx, p.owner, p.repo, created.GetID(), &github.RepositoryRelease{
		Draft: github.Bool(false),
	}); err != nil {
		p.discardDraft(ctx, created.GetID())

		if isTagConflict(err) {
			return fmt.Errorf("%w: %s", ErrTagExists, release.Tag)
		}

		return fmt.Errorf("publish release %s: %w", release.Tag, err)
	}

	logger.InfoKV(ctx, "Release published", "tag", release.Tag, "id", created.GetID())

	return nil
}

// isTagConflict reports whether the API rejected the request because the
// tag is already taken.
func isTagConflict(err error) bool {
	var apiErr *github.ErrorResponse

	return errors.As(err, &apiErr) && apiErr.Response != nil &&
		apiErr.Response.StatusCode == http.StatusUnprocessableEntity
}

// discardDraft removes a draft that never became a release, so failed runs
// leave no orphaned records behind. Best-effort: the draft is invisible to
// consumers either way.
func (p *GitHubPublisher) discardDraft(ctx context.Context, releaseID int64) {
	if _, err := p.client.Repositories.DeleteRelease(ctx, p.owner, p.repo, releaseID); err != nil {
		logger.WarnKV(ctx, "Unable to remove draft release", "id", releaseID, "error", err)
	}
}

// uploadAsset attaches one binary file to the created release.
func (p *GitHubPublisher) uploadAsset(ctx context.Context, releaseID int64, asset domain.Asset) error {
	file, err := os.Open(filepath.Clean(asset.Path))
	if err != nil {
		return fmt.Errorf("open asset %s: %w", asset.Name, err)
	}

	defer func() {
		_ = file.Close()
	}()

	opts := &github.UploadOptions{Name: asset.Name}

	if _, _, err = p.client.Repositories.UploadReleaseAsset(ctx, p.owner, p.repo, releaseID, opts, file); err != nil {
		return fmt.Errorf("upload asset %s: %w", asset.Name, err)
	}

	logger.InfoKV(ctx, "Uploaded release asset", "name", asset.Name)

	return nil
}
