package notesync

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the release version of notesync.
var Version = strings.TrimSpace(version)
