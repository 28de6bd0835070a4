package releaser

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/go-github/v66/github"

	"github.com/dreamio-app/dreamio-release/internal/archive"
	"github.com/dreamio-app/dreamio-release/internal/checksum"
	"github.com/dreamio-app/dreamio-release/internal/config"
	domain "github.com/dreamio-app/dreamio-release/internal/domain/release"
	"github.com/dreamio-app/dreamio-release/internal/logger"
	repository "github.com/dreamio-app/dreamio-release/internal/repository/release"
	"github.com/dreamio-app/dreamio-release/internal/toolchain"
)

// NotesFilename is the local copy of the rendered release description.
const NotesFilename = "dreamio-release-notes.txt"

// artifactFileMode is used for the staged executable copy.
const artifactFileMode os.FileMode = 0o755

// Options contains inputs for the releaser entry point.
type Options struct {
	// ConfigPath is an optional path to the pipeline settings YAML.
	ConfigPath string
	// ArtifactPath, when set, skips the compile and uses a prebuilt executable.
	ArtifactPath string
}

// Builder produces the updater executable and returns its path.
type Builder interface {
	Build(ctx context.Context) (string, error)
}

// Pipeline is one strictly sequential release run:
// build, package, hash, publish. Failure at any stage aborts the rest,
// so a failed run can never leave a partial release behind.
type Pipeline struct {
	cfg       *config.Config
	builder   Builder
	publisher repository.Publisher
	trigger   domain.Trigger
	buildDate time.Time
	progress  *domain.Progress
}

// Run executes the release pipeline with real dependencies and is the
// public entry point for the CLI.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "dreamio-release")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	var builder Builder

	if opts.ArtifactPath != "" {
		builder = prebuiltArtifact(opts.ArtifactPath)
	} else {
		builder, err = toolchain.NewBuilder(toolchain.Config{
			Toolchain: cfg.Toolchain,
			Target:    cfg.Target,
			Binary:    cfg.ExecutableName,
		})
		if err != nil {
			return fmt.Errorf("initialize builder: %w", err)
		}
	}

	client := github.NewClient(nil)
	if token := cfg.Token(); token != "" {
		client = client.WithAuthToken(token)
	}

	publisher := repository.NewGitHubPublisher(client, cfg.RepositoryOwner, cfg.RepositoryName)
	pipeline := NewPipeline(cfg, builder, publisher, domain.TriggerFromEnvironment(), time.Now())

	if _, err = pipeline.Execute(ctx); err != nil {
		return fmt.Errorf("release pipeline failed: %w", err)
	}

	logger.Info(ctx, "Release pipeline completed successfully")

	return nil
}

// NewPipeline assembles a pipeline run. The build date is passed explicitly
// because the release tag is derived from it.
func NewPipeline(
	cfg *config.Config,
	builder Builder,
	publisher repository.Publisher,
	trigger domain.Trigger,
	buildDate time.Time,
) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		builder:   builder,
		publisher: publisher,
		trigger:   trigger,
		buildDate: buildDate,
		progress:  domain.NewProgress(),
	}
}

// Execute runs the stages in order and returns the assembled release.
// When the trigger does not authorize publication, the run stops after
// hashing: artifacts and digests exist locally, but no release is created.
// The whole run is bounded by the configured timeout, so a hung compile or
// upload fails the pipeline instead of stalling it forever.
func (p *Pipeline) Execute(ctx context.Context) (*domain.Release, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	exePath, err := p.buildStage(ctx)
	if err != nil {
		return nil, err
	}

	archivePath, err := p.packageStage(ctx, exePath)
	if err != nil {
		return nil, err
	}

	release, err := p.hashStage(ctx, exePath, archivePath)
	if err != nil {
		return nil, err
	}

	if err = p.publishStage(ctx, release); err != nil {
		return nil, err
	}

	return release, nil
}

// Progress exposes the stage machine for inspection after a run.
func (p *Pipeline) Progress() *domain.Progress {
	return p.progress
}

// buildStage compiles the executable and stages it under the published name.
func (p *Pipeline) buildStage(ctx context.Context) (string, error) {
	builtPath, err := p.builder.Build(ctx)
	if err != nil {
		p.progress.Fail(domain.StageBuilt)
		return "", fmt.Errorf("build: %w", err)
	}

	if err = os.MkdirAll(p.cfg.OutputDir, 0o750); err != nil {
		p.progress.Fail(domain.StageBuilt)
		return "", fmt.Errorf("create output directory: %w", err)
	}

	exePath := filepath.Join(p.cfg.OutputDir, p.cfg.ExecutableName)
	if err = copyFile(builtPath, exePath); err != nil {
		p.progress.Fail(domain.StageBuilt)
		return "", fmt.Errorf("stage executable: %w", err)
	}

	if err = p.progress.Advance(domain.StageBuilt); err != nil {
		return "", err
	}

	logger.InfoKV(ctx, "Executable ready", "path", exePath)

	return exePath, nil
}

// packageStage wraps the executable into the single-entry archive.
func (p *Pipeline) packageStage(ctx context.Context, exePath string) (string, error) {
	archivePath := filepath.Join(p.cfg.OutputDir, p.cfg.ArchiveName)

	if err := archive.Pack(exePath, archivePath); err != nil {
		p.progress.Fail(domain.StagePackaged)
		return "", fmt.Errorf("package: %w", err)
	}

	if err := p.progress.Advance(domain.StagePackaged); err != nil {
		return "", err
	}

	logger.InfoKV(ctx, "Archive ready", "path", archivePath)

	return archivePath, nil
}

// hashStage digests both artifacts and writes the release notes locally.
// The two digests are independent sub-steps; both must complete before
// the pipeline may move on.
func (p *Pipeline) hashStage(ctx context.Context, exePath, archivePath string) (*domain.Release, error) {
	exeDigest, err := checksum.File(exePath)
	if err != nil {
		p.progress.Fail(domain.StageHashed)
		return nil, fmt.Errorf("hash executable: %w", err)
	}

	archiveDigest, err := checksum.File(archivePath)
	if err != nil {
		p.progress.Fail(domain.StageHashed)
		return nil, fmt.Errorf("hash archive: %w", err)
	}

	release := &domain.Release{
		Executable: domain.Asset{Name: p.cfg.ExecutableName, Path: exePath},
		Archive:    domain.Asset{Name: p.cfg.ArchiveName, Path: archivePath},
		Description: domain.Description{
			Executable: exeDigest,
			Archive:    archiveDigest,
		},
	}

	notesPath := filepath.Join(p.cfg.OutputDir, NotesFilename)
	if err = os.WriteFile(notesPath, []byte(release.Description.Render()), 0o600); err != nil {
		p.progress.Fail(domain.StageHashed)
		return nil, fmt.Errorf("write release notes: %w", err)
	}

	if err = p.progress.Advance(domain.StageHashed); err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Digests computed",
		"executable_sha256", exeDigest.String(),
		"archive_sha256", archiveDigest.String())

	return release, nil
}

// publishStage creates the release when the trigger authorizes it.
func (p *Pipeline) publishStage(ctx context.Context, release *domain.Release) error {
	if !p.trigger.ShouldPublish(p.cfg.TrunkBranch) {
		logger.InfoKV(ctx, "Publication skipped: trigger is not a trunk push",
			"event", p.trigger.Event,
			"ref", p.trigger.Ref)

		return nil
	}

	tag, err := domain.FormatTag(p.buildDate, p.trigger.Revision)
	if err != nil {
		p.progress.Fail(domain.StagePublished)
		return fmt.Errorf("form release tag: %w", err)
	}

	release.Tag = tag

	if err = p.publisher.Publish(ctx, release); err != nil {
		p.progress.Fail(domain.StagePublished)
		return fmt.Errorf("publish %s: %w", tag, err)
	}

	if err = p.progress.Advance(domain.StagePublished); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Release published", "tag", tag)

	return nil
}

// prebuiltArtifact is a Builder that hands back an existing executable.
type prebuiltArtifact string

// Build verifies the prebuilt artifact exists and returns its path.
func (a prebuiltArtifact) Build(_ context.Context) (string, error) {
	path := string(a)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("prebuilt artifact: %w", err)
	}

	return path, nil
}

// copyFile duplicates src into dst with executable permissions.
// A no-op when both names resolve to the same file.
func copyFile(src, dst string) error {
	if filepath.Clean(src) == filepath.Clean(dst) {
		return nil
	}

	in, err := os.Open(filepath.Clean(src))
	if err != nil {
		return err
	}

	defer func() {
		_ = in.Close()
	}()

	out, err := os.OpenFile(filepath.Clean(dst), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, artifactFileMode)
	if err != nil {
		return err
	}

	if _, err = io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}

	return out.Close()
}
