// Package config defines the YAML-backed settings shared by the release
// pipeline binaries: target repository, trunk branch, build target, fixed
// asset names and operation timeout, plus Load/Save/Validate helpers.
package config
