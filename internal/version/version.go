// Package version holds build metadata stamped in with -ldflags, e.g.
//
//	go build -ldflags "-X github.com/oukeidos/dbdesk/internal/version.Commit=$(git rev-parse --short HEAD)"
package version

import (
	"fmt"
	"strings"
)

var (
	Version   = "0.1.0"
	Commit    = ""
	BuildDate = ""
)

// Info is the text printed by `dbdesk about` and `dbdesk --version`.
// Build fields that were not stamped are left out.
func Info() string {
	var b strings.Builder
	fmt.Fprintf(&b, "dbdesk %s", Version)
	if Commit != "" {
		fmt.Fprintf(&b, "\ncommit: %s", Commit)
	}
	if BuildDate != "" {
		fmt.Fprintf(&b, "\nbuilt:  %s", BuildDate)
	}
	return b.String()
}

// Label is the short form shown in the main window.
func Label() string {
	if Commit == "" {
		return "Version " + Version
	}
	return fmt.Sprintf("Version %s (%s)", Version, Commit)
}
