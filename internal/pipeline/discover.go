package pipeline

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// Supported sticker file extensions (lowercase, with leading dot). Plain
// .json is accepted because the decoder sniffs the gzip magic.
var stickerExtensions = map[string]bool{
	".tgs":  true,
	".json": true,
}

// Discover walks inputDir, collects files with sticker extensions, skips
// hidden directories, and returns the paths sorted lexicographically for
// deterministic processing order.
func Discover(inputDir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != inputDir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if stickerExtensions[ext] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
