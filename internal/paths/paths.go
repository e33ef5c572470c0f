// Package paths validates user supplied file paths so reads and writes stay
// inside the working directory.
package paths

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/snyk-labs/orgscale/internal/errors"
)

// Resolve canonicalizes path and verifies it sits under baseDir, returning
// the absolute path. Paths escaping baseDir through traversal segments or an
// absolute prefix are rejected.
func Resolve(path, baseDir string) (string, error) {
	if path == "" {
		return "", errors.NewPathError(nil, "no path given")
	}

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", errors.NewPathError(err, fmt.Sprintf("cannot resolve base directory %q", baseDir))
	}

	absPath := path
	if !filepath.IsAbs(absPath) {
		absPath = filepath.Join(absBase, path)
	}
	absPath = filepath.Clean(absPath)

	rel, err := filepath.Rel(absBase, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.NewPathError(nil,
			fmt.Sprintf("path %q is outside %s", path, absBase),
			"Choose an output path inside the current working directory")
	}

	return absPath, nil
}

// RequireExt verifies the path carries one of the allowed extensions
func RequireExt(path string, exts ...string) error {
	for _, ext := range exts {
		if strings.HasSuffix(path, ext) {
			return nil
		}
	}
	return errors.NewPathError(nil,
		fmt.Sprintf("%q must have one of the extensions %s", path, strings.Join(exts, ", ")))
}
