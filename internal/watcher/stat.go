package watcher

import (
	"errors"
	"io/fs"
	"os"
	"time"
)

// StatFunc returns the last modification time of path.
type StatFunc func(path string) (time.Time, error)

// ModTime is the default StatFunc. A missing path yields a *FileNotFoundError.
func ModTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return time.Time{}, &FileNotFoundError{Path: path, Err: err}
		}
		return time.Time{}, err
	}
	return info.ModTime(), nil
}
