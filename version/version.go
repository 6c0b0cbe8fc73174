package version

// Overridden at build time via -ldflags "-X github.com/sagan/aimeta/version.Version=..."
var Version = "v0.1.0-dev"
