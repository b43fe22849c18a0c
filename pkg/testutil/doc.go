// Package testutil provides utilities for testing postinstall components.
//
// Key components:
//   - FakeRunner: records external commands instead of running them, with
//     scripted failures per command name
//   - InstallTree: builds a throwaway data/bin directory layout under t.TempDir()
package testutil
