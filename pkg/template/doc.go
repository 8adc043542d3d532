/*
Package template performs placeholder substitution into scheduler script
templates.

This is deliberately not a template language: a placeholder is a name
wrapped in double braces, substitution is literal string replacement, and
there is no expression syntax, no conditionals, no escaping. Placeholders
with no corresponding variable pass through verbatim so an incomplete
variable set shows up as a visible {{TOKEN}} in the generated script
instead of a silent mangling.

The built-in DefaultSlurm template covers the common batch-scheduler
fields (job name, account, partition, time, GPU request, CPUs, memory,
modules) plus the final command.
*/
package template
