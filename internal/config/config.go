package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by the release pipeline binaries.
type Config struct {
	// RepositoryOwner is the owner of the GitHub repository releases are published to.
	RepositoryOwner string `yaml:"repository_owner"`
	// RepositoryName is the name of the GitHub repository releases are published to.
	RepositoryName string `yaml:"repository_name"`
	// TrunkBranch is the only branch whose pushes are allowed to publish.
	TrunkBranch string `yaml:"trunk_branch"`
	// Toolchain is the compiler channel used to build the updater executable.
	Toolchain string `yaml:"toolchain"`
	// Target is the platform triple the updater executable is built for.
	Target string `yaml:"target"`
	// ExecutableName is the fixed filename of the published raw executable asset.
	ExecutableName string `yaml:"executable_name"`
	// ArchiveName is the fixed filename of the published archive asset.
	ArchiveName string `yaml:"archive_name"`
	// OutputDir is where packaged artifacts and release notes are written.
	OutputDir string `yaml:"output_dir"`
	// TokenEnv names the environment variable holding the publish token.
	TokenEnv string `yaml:"token_env"`
	// Timeout bounds a whole pipeline run, compile and uploads included.
	Timeout time.Duration `yaml:"timeout"`
}

const (
	// DefaultConfigFilename is the default filename for pipeline settings.
	DefaultConfigFilename = "dreamio-release.yaml"

	// DefaultTrunkBranch is the branch authorized to trigger publication.
	DefaultTrunkBranch = "master"

	// DefaultToolchain is the compiler channel used for size-optimized builds.
	DefaultToolchain = "nightly"

	// DefaultTarget is the platform triple the updater ships for.
	DefaultTarget = "x86_64-pc-windows-gnu"

	// DefaultExecutableName is the published name of the raw updater executable.
	DefaultExecutableName = "DreamioUpdater.exe"

	// DefaultArchiveName is the published name of the zipped updater executable.
	DefaultArchiveName = "DreamioUpdater.zip"

	// DefaultOutputDir collects local pipeline outputs.
	DefaultOutputDir = "dist"

	// DefaultTokenEnv is the environment variable consulted for the publish token.
	DefaultTokenEnv = "GITHUB_TOKEN"

	// DefaultTimeout bounds a whole pipeline run.
	DefaultTimeout = 10 * time.Minute

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errRepositoryRequired is returned when the target repository is missing.
	errRepositoryRequired = errors.New("repository owner and name must be provided")
	// errAssetNamesEqual is returned when both assets would share one filename.
	errAssetNamesEqual = errors.New("executable and archive asset names must differ")
)

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and fills defaults.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if strings.TrimSpace(cfg.RepositoryOwner) == "" || strings.TrimSpace(cfg.RepositoryName) == "" {
		return errRepositoryRequired
	}

	if cfg.TrunkBranch == "" {
		cfg.TrunkBranch = DefaultTrunkBranch
	}

	if cfg.Toolchain == "" {
		cfg.Toolchain = DefaultToolchain
	}

	if cfg.Target == "" {
		cfg.Target = DefaultTarget
	}

	if cfg.ExecutableName == "" {
		cfg.ExecutableName = DefaultExecutableName
	}

	if cfg.ArchiveName == "" {
		cfg.ArchiveName = DefaultArchiveName
	}

	if cfg.ExecutableName == cfg.ArchiveName {
		return errAssetNamesEqual
	}

	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}

	if cfg.TokenEnv == "" {
		cfg.TokenEnv = DefaultTokenEnv
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return nil
}

// Token reads the publish token from the configured environment variable.
// An empty token is fine for runs that never reach the publish stage.
func (c *Config) Token() string {
	return os.Getenv(c.TokenEnv)
}
