// Package watch reports changes to a set of files.
//
// Directories containing the files are watched with fsnotify so that
// editors which save by renaming a temporary file are still observed.
// Bursts of events are coalesced: an Event is emitted once no further
// change has arrived for the debounce delay.
package watch
