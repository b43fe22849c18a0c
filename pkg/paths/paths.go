package paths

import (
	"path/filepath"
	"strings"

	"github.com/arthur-debert/postinstall/pkg/errors"
)

// Environment variable names
const (
	// EnvDestDir is the staging root set by build systems for staged installs
	EnvDestDir = "DESTDIR"
)

// Directory names below the data directory. These mirror the freedesktop
// layout the refreshed caches live in and are not configurable.
const (
	IconsDir        = "icons"
	HicolorTheme    = "hicolor"
	GlibDir         = "glib-2.0"
	SchemasDir      = "schemas"
	ApplicationsDir = "applications"
)

// Invocation holds the raw values a run was started with
type Invocation struct {
	DataDir string `json:"dataDir" yaml:"dataDir" toml:"dataDir"`
	BinDir  string `json:"binDir" yaml:"binDir" toml:"binDir"`
	AppID   string `json:"appId" yaml:"appId" toml:"appId"`

	// DestDir is the staging root, empty when installing in place
	DestDir string `json:"destDir,omitempty" yaml:"destDir,omitempty" toml:"destDir,omitempty"`
}

// Layout is the set of paths derived from an Invocation
type Layout struct {
	DataDir    string `json:"dataDir" yaml:"dataDir" toml:"dataDir"`
	BinDir     string `json:"binDir" yaml:"binDir" toml:"binDir"`
	AppID      string `json:"appId" yaml:"appId" toml:"appId"`
	Launcher   string `json:"launcher" yaml:"launcher" toml:"launcher"`
	DestDir    string `json:"destDir,omitempty" yaml:"destDir,omitempty" toml:"destDir,omitempty"`
	LinkSource string `json:"linkSource" yaml:"linkSource" toml:"linkSource"`
	LinkTarget string `json:"linkTarget" yaml:"linkTarget" toml:"linkTarget"`
	IconDir    string `json:"iconDir" yaml:"iconDir" toml:"iconDir"`
	SchemaDir  string `json:"schemaDir" yaml:"schemaDir" toml:"schemaDir"`
	DesktopDir string `json:"desktopDir" yaml:"desktopDir" toml:"desktopDir"`
}

// Staged reports whether the layout targets a staging root
func (l Layout) Staged() bool {
	return l.DestDir != ""
}

// StagingRoot returns the staging root from the environment, or "" when unset.
// getenv is usually os.Getenv.
func StagingRoot(getenv func(string) string) string {
	if getenv == nil {
		return ""
	}
	return getenv(EnvDestDir)
}

// Resolve derives the Layout for an invocation and launcher name
func Resolve(inv Invocation, launcher string) (Layout, error) {
	required := []struct {
		name  string
		value string
	}{
		{"data directory", inv.DataDir},
		{"binary directory", inv.BinDir},
		{"application id", inv.AppID},
		{"launcher name", launcher},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return Layout{}, errors.Newf(errors.ErrInvalidInput, "%s is required", r.name).
				WithDetail("field", r.name)
		}
	}

	if strings.ContainsRune(launcher, filepath.Separator) {
		return Layout{}, errors.Newf(errors.ErrInvalidInput,
			"launcher name must not contain a path separator: %s", launcher)
	}

	binDir := StagedPath(inv.DestDir, inv.BinDir)

	return Layout{
		DataDir:    inv.DataDir,
		BinDir:     binDir,
		AppID:      inv.AppID,
		Launcher:   launcher,
		DestDir:    inv.DestDir,
		LinkSource: filepath.Join(inv.DataDir, launcher, inv.AppID),
		LinkTarget: filepath.Join(binDir, launcher),
		IconDir:    filepath.Join(inv.DataDir, IconsDir, HicolorTheme),
		SchemaDir:  filepath.Join(inv.DataDir, GlibDir, SchemasDir),
		DesktopDir: filepath.Join(inv.DataDir, ApplicationsDir),
	}, nil
}

// StagedPath prefixes path with the staging root. The root is concatenated as
// a string with a separator in between and the result cleaned, so a relative
// path becomes rooted even when no staging root is set.
func StagedPath(destDir, path string) string {
	return filepath.Clean(destDir + string(filepath.Separator) + path)
}
