package cleaner

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/nebulator/internal/catalog"
)

// BatchResult reports the outcome of a directory cleaning pass.
type BatchResult struct {
	// Cleaned lists files where an artifact was found and patched.
	Cleaned []string `json:"cleaned"`

	// Unchanged lists files where no artifact matched.
	Unchanged []string `json:"unchanged"`

	// Errors lists per-file failures; failed files are skipped and the pass
	// continues.
	Errors []FileError `json:"errors"`
}

// FileError records a per-file cleaning failure.
type FileError struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

// CleanDirectory runs RemoveArtifact over every image in inDir, writing
// results to outDir under the original file names. An empty outDir cleans in
// place. Files without a detected artifact are not rewritten.
//
// Listing failures and an uncreatable output directory are fatal; per-file
// decode, detection and save failures are recorded and skipped.
func CleanDirectory(inDir, outDir string, opts Options) (*BatchResult, error) {
	cat := catalog.New(inDir)
	names, err := cat.List()
	if err != nil {
		return nil, err
	}

	inPlace := outDir == ""
	if !inPlace {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return nil, fmt.Errorf("output directory unwritable: %w", err)
		}
	}

	result := &BatchResult{
		Cleaned:   []string{},
		Unchanged: []string{},
		Errors:    []FileError{},
	}

	for _, name := range names {
		img, err := imaging.Open(cat.Path(name))
		if err != nil {
			log.Printf("clean: skipping %s: %v", name, err)
			result.Errors = append(result.Errors, FileError{Source: name, Error: err.Error()})
			continue
		}

		cleaned, report, err := RemoveArtifact(img, opts)
		if err != nil {
			result.Errors = append(result.Errors, FileError{Source: name, Error: err.Error()})
			continue
		}
		if !report.Found {
			result.Unchanged = append(result.Unchanged, name)
			continue
		}

		dest := cat.Path(name)
		if !inPlace {
			dest = filepath.Join(outDir, name)
		}
		if err := imaging.Save(cleaned, dest); err != nil {
			log.Printf("clean: skipping %s: %v", name, err)
			result.Errors = append(result.Errors, FileError{Source: name, Error: err.Error()})
			continue
		}
		result.Cleaned = append(result.Cleaned, name)
	}

	return result, nil
}
