// Package filesystem provides the OS implementation of types.FS and the two
// filesystem operations a run performs: creating the binary directory when it
// is missing, and replacing the launcher symlink the way `ln -s -f` does.
package filesystem
