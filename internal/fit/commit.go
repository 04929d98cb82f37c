package fit

import (
	"fmt"
	"os"
	"path/filepath"
)

// Commit writes data to path atomically: the bytes go to a temp file in the
// destination directory first and are renamed into place only after a
// successful write, so a crash or error never leaves a partial output file.
func Commit(path string, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("refusing to commit an empty buffer to %s", path)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".stickerpress-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
