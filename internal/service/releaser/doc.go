// Package releaser orchestrates the release pipeline: build the updater
// executable, wrap it into the single-entry archive, digest both artifacts
// and publish a dated, immutable release.
//
// The stages run strictly in order through an explicit state machine.
// Any failure is terminal for the run: nothing is published, nothing is
// retried, and the only recovery path is a fresh trigger.
package releaser
