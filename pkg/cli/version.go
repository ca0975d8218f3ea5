package cli

// Version is the build-time application version, compared against the
// latest GitHub release by CheckForUpdates. Overridden at build time via
// -ldflags "-X github.com/Fepozopo/inpaint/pkg/cli.Version=1.2.3".
var Version = "0.1.0"
