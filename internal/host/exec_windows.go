//go:build windows

package host

import (
	"fmt"
	"path/filepath"
	"strings"
)

func checkExecutable(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".exe", ".bat", ".cmd", ".com":
		return nil
	}
	return fmt.Errorf("%s is not executable", path)
}
