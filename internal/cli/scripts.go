package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// scriptExts are the file extensions treated as scripts.
var scriptExts = map[string]bool{
	".yaml": true,
	".yml":  true,
	".cue":  true,
}

// findScriptFiles returns the script files under path. A file path is
// returned as-is; a directory is walked recursively, skipping golden/
// directories. filter is a glob matched against the file name without its
// extension.
func findScriptFiles(path string, filter string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if p != path && info.Name() == "golden" {
				return filepath.SkipDir
			}
			return nil
		}

		ext := filepath.Ext(p)
		if !scriptExts[ext] {
			return nil
		}

		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(p), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, p)
		return nil
	})

	return files, err
}
