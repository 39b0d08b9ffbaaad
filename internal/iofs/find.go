package iofs

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// FindFiles resolves glob patterns relative to root and adds every
// file under the extra dirs whose extension is in exts. The result is
// absolute paths, deduplicated and sorted.
func FindFiles(
	root string, globs, dirs []string, exts []string,
) ([]string, error) {
	seen := map[string]bool{}

	fsys := os.DirFS(root)
	for _, pattern := range globs {
		matches, err := doublestar.Glob(
			fsys, pattern, doublestar.WithFilesOnly(),
		)
		if err != nil {
			return nil, ReadFileError(pattern, err)
		}
		for _, m := range matches {
			seen[filepath.Join(root, filepath.FromSlash(m))] = true
		}
	}

	for _, dir := range dirs {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(root, dir)
		}
		err := filepath.WalkDir(dir,
			func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() {
					return nil
				}
				if hasExt(path, exts) {
					seen[path] = true
				}
				return nil
			})
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, ReadFileError(dir, err)
		}
	}

	files := make([]string, 0, len(seen))
	for f := range seen {
		files = append(files, f)
	}
	sort.Strings(files)
	return files, nil
}

func hasExt(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
