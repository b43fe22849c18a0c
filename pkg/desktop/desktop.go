// Package desktop finds the desktop entries installed for an application.
package desktop

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/postinstall/pkg/errors"
	"github.com/arthur-debert/postinstall/pkg/types"
	"github.com/samber/lo"
)

// EntrySuffix is the suffix of desktop entry files
const EntrySuffix = ".desktop"

// Find returns the desktop entries directly inside dir, sorted. Sub
// directories are not searched. A missing directory yields no entries.
func Find(fsys types.FS, dir string) ([]string, error) {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", dir)
	}

	files := lo.Filter(entries, func(e fs.DirEntry, _ int) bool {
		return !e.IsDir() && strings.HasSuffix(e.Name(), EntrySuffix)
	})
	out := lo.Map(files, func(e fs.DirEntry, _ int) string {
		return filepath.Join(dir, e.Name())
	})
	sort.Strings(out)
	return out, nil
}
