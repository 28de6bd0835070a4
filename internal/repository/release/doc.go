// Package release implements publication of releases to GitHub.
//
// The GitHubPublisher creates an immutable, uniquely tagged release record,
// uploads the executable and its archive as assets while the record is still
// a draft, and flips it live only once both assets are attached. It exposes
// a Publisher interface the releaser service depends on. Existing releases
// are never edited: a taken tag surfaces as ErrTagExists.
package release
