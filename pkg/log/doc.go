/*
Package log provides structured logging for sweepctl using zerolog.

The package wraps zerolog behind a small surface: Init configures the
global logger once at startup (level, console vs JSON, output writer), and
context helpers build child loggers tagged for this domain:

	log.Init(log.Config{Level: log.InfoLevel})

	projLog := log.WithProject("mnist-sweep")
	projLog.Info().Str("cluster", "alps").Msg("generating jobs")

	runLog := log.WithRun(runID)
	runLog.Error().Err(err).Msg("submission failed")

Console output goes to stderr by default so streamed subprocess output on
stdout stays clean for piping. JSON output is available for non-interactive
use.

# Levels

Debug for subprocess argument vectors and per-file details, Info for the
operation narrative, Warn for non-fatal conditions (missing local sync
source, muted stream faults), Error for failed operations. Fatal exits the
process and is reserved for the CLI entry point.
*/
package log
