package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rezonia/invoice-extractor/internal/processor"
)

func collectFiles(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		// Check if it's a glob pattern
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", arg, err)
		}

		if len(matches) == 0 {
			if _, err := os.Stat(arg); err != nil {
				return nil, fmt.Errorf("file not found: %s", arg)
			}
			matches = []string{arg}
		}

		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				continue
			}
			if !info.IsDir() {
				// explicit names are taken as given, glob hits are filtered
				if match == arg || isSupportedFile(match) {
					files = append(files, match)
				}
				continue
			}

			found, err := walkSupported(match)
			if err != nil {
				return nil, err
			}
			files = append(files, found...)
		}
	}

	return files, nil
}

// walkSupported returns every supported file below dir
func walkSupported(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && isSupportedFile(path) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func isSupportedFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml", ".html", ".htm", ".txt", ".tsv", ".csv":
		return true
	default:
		return false
	}
}

// readDocuments loads every file. Files that cannot be read come back as
// failed results keyed by their position in files.
func readDocuments(files []string) ([]processor.Document, map[int]*processor.DocumentResult) {
	docs := make([]processor.Document, 0, len(files))
	failed := make(map[int]*processor.DocumentResult)

	for i, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			failed[i] = &processor.DocumentResult{
				Document: file,
				Err:      fmt.Errorf("failed to read file: %w", err),
			}
			continue
		}
		docs = append(docs, processor.Document{Name: file, Content: data})
	}

	return docs, failed
}

// mergeResults puts failed reads back at their input positions. processed
// must be in the order readDocuments returned the documents.
func mergeResults(processed []*processor.DocumentResult, failed map[int]*processor.DocumentResult) []*processor.DocumentResult {
	total := len(processed) + len(failed)
	results := make([]*processor.DocumentResult, 0, total)

	next := 0
	for i := 0; i < total; i++ {
		if r, ok := failed[i]; ok {
			results = append(results, r)
			continue
		}
		results = append(results, processed[next])
		next++
	}
	return results
}
