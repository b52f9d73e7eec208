package main

import (
	"os"
	"path/filepath"
)

// rootDocumentName is the conventional filename a store's root
// CommerceTXT document carries; a descendant file inherits from the
// nearest one found in its own directory or any ancestor directory.
const rootDocumentName = "commerce.txt"

// discoverAncestors walks from path's directory up to the filesystem
// root looking for rootDocumentName, returning the paths found in
// root-most-first order so callers can merge them in inheritance
// order before merging in the descendant itself. path's own directory
// is included in the walk; if path itself is the root document, it is
// excluded from its own ancestor list.
func discoverAncestors(path string) []string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	var found []string
	dir := filepath.Dir(abs)
	for {
		candidate := filepath.Join(dir, rootDocumentName)
		if candidate != abs {
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				found = append(found, candidate)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	for i, j := 0, len(found)-1; i < j; i, j = i+1, j-1 {
		found[i], found[j] = found[j], found[i]
	}
	return found
}
