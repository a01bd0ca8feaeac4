// Package version carries build metadata injected at link time:
//
//	go build -ldflags "-X git.home.luguber.info/inful/docrefactor/internal/version.Version=v0.3.0 \
//	  -X git.home.luguber.info/inful/docrefactor/internal/version.GitCommit=$(git rev-parse --short HEAD)"
package version

import "fmt"

var (
	Version   = "dev"
	GitCommit = ""
	BuildTime = ""
)

// String renders the version for --version and the health endpoint.
func String() string {
	s := Version
	if GitCommit != "" {
		s += " (" + GitCommit + ")"
	}
	if BuildTime != "" {
		s = fmt.Sprintf("%s built %s", s, BuildTime)
	}
	return s
}
