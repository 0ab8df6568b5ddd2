// Package version carries build-time version metadata, overwritten via
// -ldflags by the release process, mirroring the teacher's pkg/version.
package version

import (
	"fmt"
	"runtime"
	"time"
)

var (
	BuildTime = time.Time{}
	GitSHA    = ""
	SemVer    = ""
)

const devel = "devel"

// Version returns a human-readable build description for logs and the
// version subcommand.
func Version() string {
	semver := SemVer
	if semver == "" {
		semver = devel
	}
	if GitSHA == "" {
		return fmt.Sprintf("ipfixd %s (%s)", semver, runtime.Version())
	}
	return fmt.Sprintf("ipfixd %s - %s (built %s, %s)",
		semver, Short(), BuildTime.In(time.UTC).Format(time.RFC3339), runtime.Version())
}

// Short returns an abbreviated git hash, prefixed with SemVer if set.
func Short() string {
	if len(GitSHA) < 8 {
		return devel
	}
	short := GitSHA[:8]
	if SemVer != "" {
		short = SemVer + "-" + short
	}
	return short
}
