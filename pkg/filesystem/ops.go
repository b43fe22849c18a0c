package filesystem

import (
	"io/fs"
	"os"

	"github.com/arthur-debert/postinstall/pkg/errors"
	"github.com/arthur-debert/postinstall/pkg/types"
)

// DirExists reports whether path exists and is a directory
func DirExists(fsys types.FS, path string) bool {
	info, err := fsys.Stat(path)
	return err == nil && info.IsDir()
}

// EnsureDir creates dir and its parents when dir is missing. It reports
// whether anything was created.
func EnsureDir(fsys types.FS, dir string, perm fs.FileMode) (bool, error) {
	info, err := fsys.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return false, errors.Newf(errors.ErrDirCreate, "path exists and is not a directory: %s", dir).
				WithDetail("path", dir)
		}
		return false, nil
	}
	if !os.IsNotExist(err) {
		return false, errors.Wrapf(err, errors.ErrFileAccess, "failed to stat %s", dir).
			WithDetail("path", dir)
	}

	if err := fsys.MkdirAll(dir, perm); err != nil {
		return false, errors.Wrapf(err, errors.ErrDirCreate, "failed to create directory %s", dir).
			WithDetail("path", dir)
	}
	return true, nil
}

// LinkState describes what currently sits at a symlink target
type LinkState struct {
	Exists    bool
	IsSymlink bool
	IsDir     bool
	Points    string
}

// InspectLink reports what is at target without following a final symlink
func InspectLink(fsys types.FS, target string) (LinkState, error) {
	info, err := fsys.Lstat(target)
	if err != nil {
		if os.IsNotExist(err) {
			return LinkState{}, nil
		}
		return LinkState{}, errors.Wrapf(err, errors.ErrFileAccess, "failed to lstat %s", target)
	}

	state := LinkState{
		Exists:    true,
		IsSymlink: info.Mode()&os.ModeSymlink != 0,
		IsDir:     info.IsDir(),
	}
	if state.IsSymlink {
		points, err := fsys.Readlink(target)
		if err != nil {
			return state, errors.Wrapf(err, errors.ErrFileAccess, "failed to read link %s", target)
		}
		state.Points = points
	}
	return state, nil
}

// ReplaceSymlink makes target a symlink to source, removing any existing
// non-directory entry first. The source does not need to exist. An existing
// directory at target is left alone and reported as ErrSymlinkExists.
// It reports whether the filesystem was changed.
//
// This behaves like `ln -sfn`, not `ln -sf`: a symlink to a directory at
// target is replaced, never followed, so the link is not created inside it.
func ReplaceSymlink(fsys types.FS, source, target string) (bool, error) {
	state, err := InspectLink(fsys, target)
	if err != nil {
		return false, err
	}

	if state.IsSymlink && state.Points == source {
		return false, nil
	}

	if state.Exists {
		if state.IsDir {
			return false, errors.Newf(errors.ErrSymlinkExists,
				"refusing to replace directory with symlink: %s", target).
				WithDetail("target", target)
		}
		if err := fsys.Remove(target); err != nil {
			return false, errors.Wrapf(err, errors.ErrSymlinkCreate,
				"failed to remove existing %s", target).
				WithDetail("target", target)
		}
	}

	if err := fsys.Symlink(source, target); err != nil {
		return false, errors.Wrapf(err, errors.ErrSymlinkCreate,
			"failed to link %s -> %s", target, source).
			WithDetail("source", source).
			WithDetail("target", target)
	}
	return true, nil
}
