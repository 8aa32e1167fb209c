// Package version holds build version information.
package version

// Version is overridden at build time via -ldflags.
var Version = "0.4.0-dev"
