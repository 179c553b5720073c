// Package inmemorytopology provides a thread-safe, in-memory implementation
// of the topologystore.Store interface. Plans are small and live for one
// run, so nothing is persisted.
package inmemorytopology
