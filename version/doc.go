// Package version reports build information for nativefetch binaries.
//
// Version, git commit and build time are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/nativefetch/version.Version=1.0.0"
//
// Unset values fall back to the VCS data embedded by the Go toolchain.
package version
