// Package host identifies the platform the pipeline runs on.
package host

import (
	"fmt"
	"os"
	"runtime"
)

// Platform is the closed set of build hosts.
type Platform int

const (
	Unknown Platform = iota
	Linux
	OSX
	Windows
)

var goosPlatforms = map[string]Platform{
	"linux":   Linux,
	"darwin":  OSX,
	"windows": Windows,
}

var platformNames = map[Platform]string{
	Unknown: "unknown",
	Linux:   "linux",
	OSX:     "osx",
	Windows: "win",
}

// FromGOOS maps a GOOS value to its Platform.
func FromGOOS(goos string) Platform {
	if p, ok := goosPlatforms[goos]; ok {
		return p
	}
	return Unknown
}

// Current returns the platform of the running process.
func Current() Platform {
	return FromGOOS(runtime.GOOS)
}

func (p Platform) String() string {
	if s, ok := platformNames[p]; ok {
		return s
	}
	return fmt.Sprintf("Platform(%d)", int(p))
}

// ExecutableName appends the platform's executable suffix to name.
func (p Platform) ExecutableName(name string) string {
	if p == Windows {
		return name + ".exe"
	}
	return name
}

// CheckExecutable reports an error if path does not name a runnable file.
func CheckExecutable(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	if fi.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return checkExecutable(path)
}
