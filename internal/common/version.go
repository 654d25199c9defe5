package common

import (
	"fmt"
	"runtime"
)

// ServiceName identifies the portal in version output, logs and MCP.
const ServiceName = "finplan-portal"

// Stamped with -ldflags "-X github.com/bobmcallan/finplan-portal/internal/common.Version=...".
var (
	Version   = "dev"
	Build     = "unknown"
	GitCommit = "unknown"
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Service   string `json:"service"`
	Version   string `json:"version"`
	Build     string `json:"build"`
	GitCommit string `json:"git_commit"`
	GoVersion string `json:"go_version"`
}

// CurrentBuild returns the stamped build information.
func CurrentBuild() BuildInfo {
	return BuildInfo{
		Service:   ServiceName,
		Version:   Version,
		Build:     Build,
		GitCommit: GitCommit,
		GoVersion: runtime.Version(),
	}
}

func (b BuildInfo) String() string {
	return fmt.Sprintf("%s %s (build: %s, commit: %s, %s)", b.Service, b.Version, b.Build, b.GitCommit, b.GoVersion)
}
