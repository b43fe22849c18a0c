// Package types defines the core types and interfaces shared by the
// post-install packages: the filesystem interface, and the step kinds and
// statuses a run is made of.
package types
