// Package schemas inventories the gsettings schema sources that
// glib-compile-schemas will compile.
package schemas

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/postinstall/pkg/errors"
	"github.com/arthur-debert/postinstall/pkg/types"
	"github.com/beevik/etree"
	"github.com/samber/lo"
)

// SourceSuffix is the file suffix glib-compile-schemas reads
const SourceSuffix = ".gschema.xml"

// Schema is one <schema> element of a schema source file
type Schema struct {
	ID   string `json:"id" yaml:"id" toml:"id"`
	Path string `json:"path,omitempty" yaml:"path,omitempty" toml:"path,omitempty"`
	File string `json:"file" yaml:"file" toml:"file"`
	Keys int    `json:"keys" yaml:"keys" toml:"keys"`
}

// Scan parses every schema source in dir. A missing directory yields no
// schemas and no error.
func Scan(fsys types.FS, dir string) ([]Schema, error) {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read schema directory %s", dir)
	}

	var out []Schema
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), SourceSuffix) {
			continue
		}

		file := filepath.Join(dir, entry.Name())
		found, err := ParseFile(fsys, file)
		if err != nil {
			return out, err
		}
		out = append(out, found...)
	}
	return out, nil
}

// ParseFile parses a single schema source file
func ParseFile(fsys types.FS, file string) ([]Schema, error) {
	data, err := fsys.ReadFile(file)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", file)
	}
	return Parse(file, data)
}

// Parse parses schema source bytes. file is only used for reporting.
func Parse(file string, data []byte) ([]Schema, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, errors.Wrapf(err, errors.ErrSchemaParse, "malformed schema file %s", file).
			WithDetail("file", file)
	}

	root := doc.Root()
	if root == nil || root.Tag != "schemalist" {
		return nil, errors.Newf(errors.ErrSchemaParse, "%s has no <schemalist> root element", file).
			WithDetail("file", file)
	}

	var out []Schema
	for _, el := range root.SelectElements("schema") {
		id := el.SelectAttrValue("id", "")
		if id == "" {
			return out, errors.Newf(errors.ErrSchemaParse, "%s contains a <schema> without id", file).
				WithDetail("file", file)
		}
		out = append(out, Schema{
			ID:   id,
			Path: el.SelectAttrValue("path", ""),
			File: file,
			Keys: len(el.SelectElements("key")),
		})
	}
	return out, nil
}

// IDs returns the schema ids in scan order
func IDs(list []Schema) []string {
	return lo.Map(list, func(s Schema, _ int) string { return s.ID })
}
