/*
Package runner spawns the external binaries sweepctl depends on and
normalizes their failures into the shared error taxonomy.

Two modes exist. Stream relays merged stdout/stderr line by line as the
process produces it, so long-running remote jobs and container builds are
observable live; this is a blocking read loop, not a background task.
Capture buffers output to completion and is used for short transfers
(rsync, git) where the stderr tail is the useful diagnostic.

Failure mapping is uniform: a binary missing from PATH becomes a
ToolNotFoundError, a non-zero exit becomes an ExecError carrying the exact
exit code plus a tail of the last output lines.

Fault detectors handle a third case: a tracked sub-tool (for example an
experiment tracker inside the job) printing a known failure signature
while the parent process keeps running. On a match the runner stops
passing lines through (the rest of the stream is noise) but still waits
for and reports the parent's real exit code. Matches are returned as
StreamFault records, not errors.
*/
package runner
