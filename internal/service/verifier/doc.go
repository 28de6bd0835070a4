// Package verifier implements the consumer-side integrity check: recompute
// SHA-256 over a downloaded file and trust it only on exact, case-insensitive
// equality with the published digest. Any mismatch means the file is
// corrupted or tampered with and must not be executed.
package verifier
