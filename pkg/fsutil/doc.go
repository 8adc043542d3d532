// Package fsutil repairs permissions and ownership of output trees that
// container builds leave behind as root-owned files.
package fsutil
