// Package checksum computes the SHA-256 digests published with every
// release. Digests are deterministic functions of input bytes only and are
// the mechanism by which consumers detect corruption or tampering.
package checksum
