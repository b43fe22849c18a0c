package synthfs

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/arthur-debert/postinstall/pkg/errors"
	"github.com/arthur-debert/postinstall/pkg/logging"
	"github.com/arthur-debert/synthfs/pkg/synthfs"
	"github.com/arthur-debert/synthfs/pkg/synthfs/core"
	"github.com/arthur-debert/synthfs/pkg/synthfs/filesystem"
	"github.com/arthur-debert/synthfs/pkg/synthfs/operations"
	"github.com/rs/zerolog"
)

// FileWriter writes whole files through a synthfs pipeline
type FileWriter struct {
	logger     zerolog.Logger
	dryRun     bool
	filesystem synthfs.FileSystem
}

// NewFileWriter creates a writer rooted at the OS root filesystem
func NewFileWriter(dryRun bool) *FileWriter {
	return &FileWriter{
		logger:     logging.GetLogger("synthfs"),
		dryRun:     dryRun,
		filesystem: filesystem.NewOSFileSystem("/"),
	}
}

// WriteFile replaces target with content. The parent directory must exist.
func (w *FileWriter) WriteFile(ctx context.Context, target string, content []byte, mode fs.FileMode) error {
	if target == "" {
		return errors.New(errors.ErrInvalidInput, "write file operation requires target")
	}

	absTarget, err := filepath.Abs(target)
	if err != nil {
		return errors.Wrapf(err, errors.ErrInvalidInput, "failed to normalize path: %s", target)
	}

	if w.dryRun {
		w.logger.Info().
			Str("target", absTarget).
			Int("contentLen", len(content)).
			Msg("Would write file")
		return nil
	}

	// synthfs validation rejects existing targets, so clear the way first
	if _, err := os.Lstat(absTarget); err == nil {
		w.logger.Debug().Str("target", absTarget).Msg("Removing existing file before rewrite")
		if err := os.Remove(absTarget); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "failed to remove existing %s", absTarget)
		}
	}

	// synthfs works with paths relative to its root
	relPath, err := filepath.Rel("/", absTarget)
	if err != nil {
		return errors.Wrapf(err, errors.ErrInvalidInput, "failed to convert path: %s", absTarget)
	}

	opID := core.OperationID(fmt.Sprintf("write-file-%s", absTarget))
	createOp := operations.NewCreateFileOperation(opID, relPath)
	createOp.SetItem(&fileItem{
		path:    relPath,
		content: content,
		mode:    mode,
	})

	pipeline := synthfs.NewMemPipeline()
	if err := pipeline.Add(synthfs.NewOperationsPackageAdapter(createOp)); err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "failed to add operation to pipeline")
	}

	w.logger.Debug().
		Str("target", absTarget).
		Str("mode", mode.String()).
		Int("contentLen", len(content)).
		Msg("Writing file")

	result := synthfs.NewExecutor().Run(ctx, pipeline, w.filesystem)
	if result.GetError() != nil {
		return errors.Wrapf(result.GetError(), errors.ErrFileWrite, "failed to write %s", absTarget)
	}
	return nil
}

// fileItem implements the interface needed for file operations
type fileItem struct {
	path    string
	content []byte
	mode    fs.FileMode
}

func (f *fileItem) Path() string       { return f.path }
func (f *fileItem) Type() string       { return "file" }
func (f *fileItem) Content() []byte    { return f.content }
func (f *fileItem) Mode() fs.FileMode  { return f.mode }
func (f *fileItem) IsDir() bool        { return false }
func (f *fileItem) ModTime() time.Time { return time.Now() }
func (f *fileItem) Size() int64        { return int64(len(f.content)) }
