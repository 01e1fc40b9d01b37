// Package detector decides, once per tick, whether the watched file changed.
//
// It polls file metadata instead of subscribing to file system events. The
// watch state is a plain value: Poll takes the previous State and returns the
// next one, so callers own it and tests need neither a clock nor a real file.
package detector

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
)

// ErrNoModTime is returned when the platform reports no modification time.
var ErrNoModTime = errors.New("detector: modification time unavailable")

// MetadataError wraps a failure to read the watched file's metadata.
// It is fatal for the watch loop.
type MetadataError struct {
	Path string
	Err  error
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("cannot read metadata of %s: %v", e.Path, e.Err)
}

func (e *MetadataError) Unwrap() error {
	return e.Err
}

// Source reports the last modification time of a path.
type Source interface {
	ModTime(path string) (time.Time, error)
}

// OSSource reads modification times from the local file system.
type OSSource struct{}

// ModTime implements Source using os.Stat.
func (OSSource) ModTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return modTime(info)
}

func modTime(info fs.FileInfo) (time.Time, error) {
	t := info.ModTime()
	if t.IsZero() {
		return time.Time{}, ErrNoModTime
	}
	return t, nil
}

// State is the watch state carried between ticks.
type State struct {
	LastModified time.Time
	FirstTick    bool
}

// Initial returns the state before the first poll.
func Initial() State {
	return State{FirstTick: true}
}

// Poll reads the current modification time of path and reports whether a
// recompilation is warranted. The first poll always reports a change; later
// polls report one only when the new timestamp is strictly newer.
func Poll(src Source, path string, prev State) (bool, State, error) {
	modified, err := src.ModTime(path)
	if err != nil {
		return false, prev, &MetadataError{Path: path, Err: err}
	}

	changed := prev.FirstTick || modified.After(prev.LastModified)

	return changed, State{LastModified: modified}, nil
}
