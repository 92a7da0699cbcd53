// Package version reports the build of a binary assembled with tdd-di.
//
// Version, commit and build time are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/wulawulu/tdd-di/version.Version=1.0.0"
package version
