// Package dispatch routes operations to local execution or, after
// syncing project state, to a remote target running the same binary.
package dispatch
