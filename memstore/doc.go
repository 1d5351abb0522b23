// Package memstore provides a thread-safe, in-memory implementation of the
// nodegraph.Store interface. It is suitable for development, tests and
// single-process hosts where documents do not need to survive a restart.
package memstore
