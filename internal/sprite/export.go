package sprite

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/nebulator/internal/catalog"
	"github.com/ironsheep/nebulator/internal/settings"
)

// Exporter writes mapped sprites for the whole catalog to the output
// directory under sequential names.
type Exporter struct {
	catalog *catalog.Catalog
	store   *settings.Store
	cache   *Cache
	outDir  string
}

// NewExporter creates an exporter writing to outDir.
func NewExporter(cat *catalog.Catalog, store *settings.Store, cache *Cache, outDir string) *Exporter {
	return &Exporter{
		catalog: cat,
		store:   store,
		cache:   cache,
		outDir:  outDir,
	}
}

// FileError records a per-file export failure.
type FileError struct {
	// Source is the catalog name of the image that failed.
	Source string `json:"source"`

	// Error is the failure description.
	Error string `json:"error"`
}

// ExportResult reports what an export pass produced. Exported and Errors
// together distinguish full success (no errors), partial success (some of
// each) and an empty catalog (both empty).
type ExportResult struct {
	// Exported lists the generated output file names, in the order written.
	Exported []string `json:"exported"`

	// Errors lists per-file failures. Failed images are skipped; they do not
	// consume an output index.
	Errors []FileError `json:"errors"`
}

// ExportAll maps every catalog image through its effective window and writes
// the results to the output directory as nebula_001.png, nebula_002.png and
// so on, in catalog order. The index starts at 1 and advances only on
// success, so failures leave no gaps in the output sequence.
//
// The catalog is listed exactly once at the start of the call; that snapshot
// drives the whole pass regardless of concurrent changes to the input
// directory. Output naming is positional: re-running with an unchanged
// catalog and settings overwrites the same files identically, while adding or
// removing a source image shifts every downstream index.
//
// An unreadable catalog or an uncreatable output directory is fatal and
// aborts before any write. Per-file failures (unreadable source, encode
// error) are recorded in the result and the pass continues.
func (e *Exporter) ExportAll() (*ExportResult, error) {
	names, err := e.catalog.List()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(e.outDir, 0o755); err != nil {
		return nil, fmt.Errorf("output directory unwritable: %w", err)
	}

	result := &ExportResult{
		Exported: []string{},
		Errors:   []FileError{},
	}

	index := 1
	for _, name := range names {
		window, _ := e.store.Resolve(name)

		img, err := e.cache.Load(e.catalog.Path(name))
		if err != nil {
			log.Printf("export: skipping %s: %v", name, err)
			result.Errors = append(result.Errors, FileError{Source: name, Error: err.Error()})
			continue
		}

		mapped := MapImage(img, window.MinGray, window.MaxGray)

		outName := fmt.Sprintf("nebula_%03d.png", index)
		if err := imaging.Save(mapped, filepath.Join(e.outDir, outName)); err != nil {
			log.Printf("export: skipping %s: %v", name, err)
			result.Errors = append(result.Errors, FileError{Source: name, Error: err.Error()})
			continue
		}

		result.Exported = append(result.Exported, outName)
		index++
	}

	return result, nil
}
