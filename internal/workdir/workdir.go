package workdir

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// EnvSearchPath is the environment variable holding the initial module
// search path, as a list of directories separated by the OS path list
// separator (":" on Unix).
const EnvSearchPath = "GANTRY_MODULE_PATH"

// Setup resolves dir to an absolute path, makes it the process working
// directory, and returns that path together with the search path with the
// directory prepended.
//
// The chdir happens before application resolution so that modules are
// found relative to the requested directory and the application sees the
// working directory it expects.
func Setup(dir string, searchPath []string) (string, []string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", nil, fmt.Errorf("resolving working directory %q: %w", dir, err)
	}

	if err := os.Chdir(abs); err != nil {
		return "", nil, fmt.Errorf("changing working directory to %s: %w", abs, err)
	}

	return abs, Prepend(abs, searchPath), nil
}

// Prepend inserts dir at the front of the search path unless it is
// already present. The presence check is the de-duplication guard:
// prepending the same directory twice yields exactly one occurrence.
func Prepend(dir string, searchPath []string) []string {
	if slices.Contains(searchPath, dir) {
		return searchPath
	}
	return append([]string{dir}, searchPath...)
}

// SearchPathFromEnv reads the initial module search path from
// EnvSearchPath. Empty entries are dropped; an unset or empty variable
// yields an empty path.
func SearchPathFromEnv() []string {
	raw := os.Getenv(EnvSearchPath)
	if raw == "" {
		return nil
	}

	var path []string
	for _, entry := range strings.Split(raw, string(os.PathListSeparator)) {
		if entry != "" {
			path = append(path, entry)
		}
	}
	return path
}
