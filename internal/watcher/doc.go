// Package watcher implements polling-based external-edit detection.
//
// A Session owns the watch registry, the last-observed modification times and
// the monitoring state. Poll cycles run on a serial Dispatcher (normally an
// EventLoop), so registry and timestamp state are confined to one goroutine
// and need no locking. Callers on other goroutines post work through
// EventLoop.Do or EventLoop.Post.
package watcher
