package styles_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/postinstall/pkg/errors"
	"github.com/arthur-debert/postinstall/pkg/ui/styles"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedStylesCoverAllNames(t *testing.T) {
	for _, name := range styles.Names {
		_, ok := styles.StyleRegistry[name]
		assert.True(t, ok, "style %s missing", name)
	}
}

func TestRenderUnknownStyle(t *testing.T) {
	assert.Equal(t, "plain", styles.Render("NoSuchStyle", "plain"))
}

func TestRenderKeepsText(t *testing.T) {
	assert.Contains(t, styles.Render("Success", "done"), "done")
}

func TestLoadStyles(t *testing.T) {
	t.Cleanup(func() {
		path := filepath.Join(".", "styles.yaml")
		require.NoError(t, styles.LoadStyles(path))
	})

	t.Run("custom file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "styles.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
colors:
  pink: {light: "#ff00ff", dark: "#ff88ff"}
styles:
  Custom:
    bold: true
    foreground: pink
`), 0644))

		require.NoError(t, styles.LoadStyles(path))
		_, ok := styles.StyleRegistry["Custom"]
		assert.True(t, ok)
	})

	t.Run("missing file", func(t *testing.T) {
		err := styles.LoadStyles(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrFileAccess))
	})

	t.Run("malformed data", func(t *testing.T) {
		err := styles.LoadStylesFromData([]byte("styles: [unclosed"))
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrConfigParse))
	})
}
