// Package catalog enumerates the source images available to the engine.
//
// The catalog is a read-only view over one input directory. Listings are
// lexicographically sorted so that repeated calls within a session see the
// same order; the exporter's sequential output naming depends on this.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	// ErrUnavailable indicates the input directory cannot be read. Fatal for
	// any operation that depends on the catalog.
	ErrUnavailable = errors.New("input directory unavailable")

	// ErrNotFound indicates a file name that is not a catalog entry.
	ErrNotFound = errors.New("image not found in catalog")
)

// allowedExtensions is the fixed allow-list of source formats, matched
// case-insensitively against the file extension.
var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// Catalog enumerates image files in a single input directory.
type Catalog struct {
	dir string
}

// New creates a catalog over dir. The directory is not touched until the
// first listing.
func New(dir string) *Catalog {
	return &Catalog{dir: dir}
}

// Dir returns the input directory the catalog reads from.
func (c *Catalog) Dir() string {
	return c.dir
}

// List returns the names of all image files in the input directory, sorted
// lexicographically. Only regular files with an allowed extension (.png, .jpg,
// .jpeg, case-insensitive) are included.
func (c *Catalog) List() ([]string, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if allowedExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Contains reports whether name is a catalog entry. Names with path
// separators never match; catalog entries are bare file names.
func (c *Catalog) Contains(name string) (bool, error) {
	if name == "" || name != filepath.Base(name) {
		return false, nil
	}
	if !allowedExtensions[strings.ToLower(filepath.Ext(name))] {
		return false, nil
	}

	info, err := os.Stat(filepath.Join(c.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return info.Mode().IsRegular(), nil
}

// Path returns the full path of a catalog entry.
func (c *Catalog) Path(name string) string {
	return filepath.Join(c.dir, name)
}
