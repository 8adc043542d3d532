/*
Package container wraps the docker and singularity binaries for image
builds, containerized test runs, and image-to-artifact conversion.

These are deliberately thin subprocess wrappers: the binaries own all
image mechanics, this package owns argument construction, output
streaming, idempotent conversion, and the threading of GPU and
experiment-tracking configuration into test runs.
*/
package container
