/*
Package state centralizes idempotency tracking for expensive preparation
steps.

Instead of scattering marker files and directory-existence checks across
the packages that need skip-if-done behavior, one bolt-backed Store per
project records step outcomes. Checks return a three-state answer (Done,
Needed, or NeededFailed) so callers can tell "never attempted" apart
from "attempted and failed" and decide whether to retry, surface the
recorded failure, or move on.

Typical steps: a one-time dataset download, a repository clone, a
container image conversion.
*/
package state
