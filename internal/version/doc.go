// Package version carries the build metadata stamped into the pipeline
// binaries. Version, Commit and BuildTime are injected through Go ldflags;
// local builds fall back to placeholder values.
package version
