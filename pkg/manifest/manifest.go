// Package manifest records the files a post-install run created, so that
// packaging or uninstall tooling can remove them later. Build systems do not
// track files created by install scripts.
package manifest

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/arthur-debert/postinstall/pkg/errors"
	"github.com/arthur-debert/postinstall/pkg/types"
	gotoml "github.com/pelletier/go-toml/v2"
	"github.com/samber/lo"
)

// Entry kinds
const (
	KindSymlink   = "symlink"
	KindDirectory = "directory"
)

// Entry is one created filesystem entry
type Entry struct {
	Path   string `toml:"path" json:"path" yaml:"path"`
	Kind   string `toml:"kind" json:"kind" yaml:"kind"`
	Target string `toml:"target,omitempty" json:"target,omitempty" yaml:"target,omitempty"`
}

// Manifest is the document written after a run
type Manifest struct {
	AppID     string    `toml:"app_id" json:"appId" yaml:"appId"`
	Launcher  string    `toml:"launcher" json:"launcher" yaml:"launcher"`
	DestDir   string    `toml:"destdir,omitempty" json:"destDir,omitempty" yaml:"destDir,omitempty"`
	CreatedAt time.Time `toml:"created_at" json:"createdAt" yaml:"createdAt"`
	Entries   []Entry   `toml:"entry" json:"entries" yaml:"entries"`
}

// Add appends an entry
func (m *Manifest) Add(e Entry) {
	m.Entries = append(m.Entries, e)
}

// Paths returns the recorded paths, sorted
func (m *Manifest) Paths() []string {
	out := make([]string, 0, len(m.Entries))
	for _, e := range m.Entries {
		out = append(out, e.Path)
	}
	sort.Strings(out)
	return out
}

// Has reports whether path is already recorded
func (m *Manifest) Has(path string) bool {
	return lo.ContainsBy(m.Entries, func(e Entry) bool { return e.Path == path })
}

// Carry copies the entries of prev that keep accepts and that m does not
// already record. Carried entries go first, in their previous order.
func (m *Manifest) Carry(prev *Manifest, keep func(Entry) bool) {
	if prev == nil {
		return
	}
	carried := lo.Filter(prev.Entries, func(e Entry, _ int) bool {
		return !m.Has(e.Path) && keep(e)
	})
	m.Entries = append(carried, m.Entries...)
}

// Marshal renders the manifest as TOML
func (m *Manifest) Marshal() ([]byte, error) {
	out, err := gotoml.Marshal(m)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrManifest, "failed to encode manifest")
	}
	return out, nil
}

// Unmarshal parses a TOML manifest
func Unmarshal(data []byte) (*Manifest, error) {
	var m Manifest
	if err := gotoml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, errors.ErrManifest, "failed to decode manifest")
	}
	return &m, nil
}

// Read loads the manifest at path. A missing file is not an error and
// returns nil.
func Read(fsys types.FS, path string) (*Manifest, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrManifest, "failed to read manifest %s", path).
			WithDetail("path", path)
	}
	return Unmarshal(data)
}

// FileWriter writes a complete file
type FileWriter interface {
	WriteFile(ctx context.Context, target string, content []byte, mode fs.FileMode) error
}

// Write encodes m and stores it at path, creating the parent directory
func Write(ctx context.Context, fsys types.FS, w FileWriter, path string, m *Manifest) error {
	data, err := m.Marshal()
	if err != nil {
		return err
	}

	if err := fsys.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrManifest, "failed to create manifest directory for %s", path)
	}

	if err := w.WriteFile(ctx, path, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrManifest, "failed to write manifest %s", path).
			WithDetail("path", path)
	}
	return nil
}
