package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// InstallTree is a scratch install prefix
type InstallTree struct {
	Root    string
	DataDir string
	BinDir  string
}

// NewInstallTree creates <tmp>/usr/share and returns the layout. The bin
// directory is not created so tests can check that a run creates it.
func NewInstallTree(t *testing.T) *InstallTree {
	t.Helper()
	root := t.TempDir()
	tree := &InstallTree{
		Root:    root,
		DataDir: filepath.Join(root, "usr", "share"),
		BinDir:  filepath.Join(root, "usr", "bin"),
	}
	if err := os.MkdirAll(tree.DataDir, 0755); err != nil {
		t.Fatalf("failed to create data dir: %v", err)
	}
	return tree
}

// WriteFile writes content below the data directory, creating parents
func (tr *InstallTree) WriteFile(t *testing.T, rel, content string) string {
	t.Helper()
	path := filepath.Join(tr.DataDir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}
