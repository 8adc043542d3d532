package fsutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/calligo/sweepctl/pkg/log"
)

// FixTree recursively sets mode on every regular file under path and
// mode plus the execute bits on every directory, so a tree written by a
// privileged process stays usable by the invoking user. Entries that
// cannot be updated are collected rather than aborting the walk.
func FixTree(path string, mode os.FileMode) error {
	var result *multierror.Error

	err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "walk %s", p))
			return nil
		}
		m := mode
		if d.IsDir() {
			m |= 0o111
		}
		if err := os.Chmod(p, m); err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "chmod %s", p))
		}
		return nil
	})
	if err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

// RestoreOwner hands ownership of every entry under path back to the
// user who invoked sudo, read from SUDO_UID and SUDO_GID. It is a no-op
// when those variables are absent or malformed.
func RestoreOwner(path string) error {
	uid, gid, ok := sudoIDs()
	if !ok {
		return nil
	}
	logger := log.WithComponent("fsutil")
	logger.Debug().Int("uid", uid).Int("gid", gid).Str("path", path).Msg("restoring ownership")

	var result *multierror.Error
	err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "walk %s", p))
			return nil
		}
		if err := os.Chown(p, uid, gid); err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "chown %s", p))
		}
		return nil
	})
	if err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

func sudoIDs() (uid, gid int, ok bool) {
	uid, err := strconv.Atoi(os.Getenv("SUDO_UID"))
	if err != nil {
		return 0, 0, false
	}
	gid, err = strconv.Atoi(os.Getenv("SUDO_GID"))
	if err != nil {
		return 0, 0, false
	}
	return uid, gid, true
}
