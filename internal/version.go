package internal

import (
	"fmt"
	"runtime"
)

var (
	CurrentVersion = "v0.1.0" // Will be overwritten by ldflags during build
	Commit         = ""
)

// VersionString describes the running binary.
func VersionString() string {
	s := fmt.Sprintf("credctl %s", CurrentVersion)
	if Commit != "" {
		s += fmt.Sprintf(" (%s)", Commit)
	}
	return fmt.Sprintf("%s %s/%s", s, runtime.GOOS, runtime.GOARCH)
}
