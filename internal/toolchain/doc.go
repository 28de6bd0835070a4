// Package toolchain invokes the nightly cross-compiler that produces the
// updater executable. The build configuration is an explicit immutable
// struct rather than ambient environment state, so one invocation cannot
// leak flags into another.
package toolchain
