package release

// Asset is one binary file attached to a release.
type Asset struct {
	// Name is the fixed, human-readable filename published with the release.
	Name string
	// Path is the local filesystem location of the asset content.
	Path string
}

// Release is an immutable publication event: a unique tag, the two attached
// assets and the description embedding their digests. Once published it is
// never edited; later builds supersede it with new tags.
type Release struct {
	// Tag uniquely identifies the release (YYYY-MM-DD-xxxxxxx).
	Tag string
	// Executable is the raw updater executable asset.
	Executable Asset
	// Archive is the single-entry zip asset wrapping the executable.
	Archive Asset
	// Description carries the digests of both assets.
	Description Description
}

// Clone returns a copy so callers cannot alter a release handed out earlier.
func (r *Release) Clone() *Release {
	if r == nil {
		return nil
	}

	copied := *r

	return &copied
}
