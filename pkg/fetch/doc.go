/*
Package fetch materializes a project's repository and dataset locally.

Both operations implement skip-if-already-present idempotency: clones key
off the presence of version-control metadata, dataset downloads off the
project's state store (with the legacy marker file still honored). The
dataset command is an arbitrary shell line from the project record and
runs via "sh -c" in the target directory with its output streamed.
*/
package fetch
