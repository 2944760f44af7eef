// Package version carries the build identity of the realtime server binary.
package version

import "runtime"

// ServiceName identifies this binary in version output and dashboards.
const ServiceName = "itcook-realtime"

// Stamped through -ldflags at release build time; the zero values mark a
// local development build.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Info is the payload of the version endpoint.
type Info struct {
	Service   string `json:"service"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

// Get reports the identity of the running binary.
func Get() Info {
	return Info{
		Service:   ServiceName,
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
}
