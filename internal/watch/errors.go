package watch

import "errors"

var (
	// ErrWatcherClosed is returned when operating on a closed watcher.
	ErrWatcherClosed = errors.New("watcher closed")

	// ErrPathNotExist is returned when the path does not exist.
	ErrPathNotExist = errors.New("path does not exist")

	// ErrAlreadyWatching is returned when the path is already watched.
	ErrAlreadyWatching = errors.New("already watching path")
)
