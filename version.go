package lazychess

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var rawVersion string

// Version is the release version of lazychess.
var Version = strings.TrimSpace(rawVersion)
