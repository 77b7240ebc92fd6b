package version

// Build metadata injected via ldflags
var (
	// Version is set via -ldflags "-X aerograph/version.Version=x.x.x"
	Version = "0.1.0"

	// CommitHash is set via -ldflags "-X aerograph/version.CommitHash=xxx"
	CommitHash = "unknown"

	// BuildTime is set via -ldflags "-X aerograph/version.BuildTime=xxx"
	BuildTime = "unknown"
)

// GetFullVersion returns the version including the short commit hash
func GetFullVersion() string {
	if CommitHash == "unknown" || len(CommitHash) < 7 {
		return Version
	}
	return Version + " (" + CommitHash[:7] + ")"
}

// GetBuildInfo returns build metadata
func GetBuildInfo() string {
	return "AeroGraph " + Version + "\nCommit: " + CommitHash + "\nBuild Time: " + BuildTime
}
