// Package cachedir resolves the cache directory for a model identifier.
// Precedence: an existing local path wins outright; then an explicit
// override directory, adjusted so the model name is not appended twice;
// then the source-specific default; then the generic default.
package cachedir

import (
	"os"
	"path/filepath"
	"strings"
)

// #region defaults

// homeEnv overrides the root all defaults hang off.
const homeEnv = "LAYERTRACK_HOME"

func home() string {
	if h := os.Getenv(homeEnv); h != "" {
		return h
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		userHome = "."
	}
	return filepath.Join(userHome, ".layertrack")
}

// ModelHome is the generic default cache root.
func ModelHome() string { return filepath.Join(home(), "models") }

// HubCacheHome is the default cache root for hub downloads. The hub client
// appends the model name itself, so Resolve never does.
func HubCacheHome() string { return filepath.Join(home(), "hub") }

// #endregion defaults

// #region resolve

// isDir is swapped in tests.
var isDir = func(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Resolve returns the cache directory for nameOrPath. fromHub selects the
// hub layout; cacheDir is the optional override.
func Resolve(nameOrPath string, fromHub bool, cacheDir string) string {
	if isDir(nameOrPath) {
		return nameOrPath
	}
	if fromHub {
		if cacheDir != "" {
			return cacheDir
		}
		return HubCacheHome()
	}
	if cacheDir != "" {
		// model loading resolves the config dir first, so the name may
		// already have been appended once
		if strings.HasSuffix(cacheDir, nameOrPath) {
			return cacheDir
		}
		return filepath.Join(cacheDir, nameOrPath)
	}
	return filepath.Join(ModelHome(), nameOrPath)
}

// #endregion resolve
