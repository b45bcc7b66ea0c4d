// Package version holds the awxmon version string.
package version

// Version is the current awxmon version. Overridden at build time with
// -ldflags "-X github.com/awxmon/awxmon/internal/version.Version=...".
var Version = "0.3.0"
