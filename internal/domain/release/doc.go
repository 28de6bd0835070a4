// Package release contains core domain types for the release pipeline.
//
// It defines Digest (hex-encoded SHA-256 text), Tag formatting from build
// date and source revision, the fixed release Description template, the
// CI Trigger gate and the sequential pipeline Progress state machine.
// All types are plain values with no I/O.
package release
