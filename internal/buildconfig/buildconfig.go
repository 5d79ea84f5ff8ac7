package buildconfig

import "fmt"

// Build-time variables injected via ldflags:
//
//	-X github.com/Harshitk-cp/groundcheck/internal/buildconfig.version=v1.2.0
var (
	version = "dev"
	commit  = "unknown"
)

func Version() string {
	return version
}

func Commit() string {
	return commit
}

// VersionInfo returns full version information
func VersionInfo() map[string]string {
	return map[string]string{
		"version": version,
		"commit":  commit,
	}
}

// UserAgent identifies outbound provider requests.
func UserAgent() string {
	return fmt.Sprintf("groundcheck/%s (+%s)", version, commit)
}
