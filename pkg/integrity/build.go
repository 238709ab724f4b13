package integrity

import (
	"runtime/debug"
	"strings"
	"sync"
)

var (
	strippedOnce sync.Once
	stripped     bool
)

// LooksStripped reports whether the running binary appears to be a release
// build: linked with -s or -w, or built with -trimpath. The answer is
// computed once per process.
func LooksStripped() bool {
	strippedOnce.Do(func() {
		info, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		stripped = strippedSettings(info.Settings)
	})
	return stripped
}

func strippedSettings(settings []debug.BuildSetting) bool {
	for _, s := range settings {
		switch s.Key {
		case "-trimpath":
			if s.Value == "true" {
				return true
			}
		case "-ldflags":
			for _, flag := range strings.Fields(s.Value) {
				if flag == "-s" || flag == "-w" {
					return true
				}
			}
		}
	}
	return false
}
