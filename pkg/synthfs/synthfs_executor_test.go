package synthfs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileWriterWritesFile(t *testing.T) {
	target := filepath.Join(t.TempDir(), "manifest.toml")

	err := NewFileWriter(false).WriteFile(context.Background(), target, []byte("app_id = \"x\"\n"), 0644)
	require.NoError(t, err)

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "app_id = \"x\"\n", string(got))
}

func TestFileWriterReplacesExisting(t *testing.T) {
	target := filepath.Join(t.TempDir(), "manifest.toml")
	require.NoError(t, os.WriteFile(target, []byte("old"), 0644))

	err := NewFileWriter(false).WriteFile(context.Background(), target, []byte("new"), 0644)
	require.NoError(t, err)

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
}

func TestFileWriterDryRun(t *testing.T) {
	target := filepath.Join(t.TempDir(), "manifest.toml")

	err := NewFileWriter(true).WriteFile(context.Background(), target, []byte("x"), 0644)
	require.NoError(t, err)

	_, err = os.Stat(target)
	assert.True(t, os.IsNotExist(err))
}

func TestFileWriterRequiresTarget(t *testing.T) {
	err := NewFileWriter(false).WriteFile(context.Background(), "", nil, 0644)
	assert.Error(t, err)
}
