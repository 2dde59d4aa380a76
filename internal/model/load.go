package model

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// LoadDocuments reads document records from every *.json file under the
// given directories. A file may hold a single record or an array of records
// (bill dumps arrive as arrays). Files that fail to parse are logged and
// skipped; a missing directory is a warning, not an error.
func LoadDocuments(dirs []string, logger *slog.Logger) ([]Document, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var documents []Document
	for _, dir := range dirs {
		if _, err := os.Stat(dir); err != nil {
			logger.Warn("input directory does not exist", "dir", dir)
			continue
		}

		paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", dir, err)
		}

		for _, path := range paths {
			docs, err := loadFile(path, filepath.Base(dir))
			if err != nil {
				logger.Error("failed to load document file", "path", path, "error", err)
				continue
			}
			documents = append(documents, docs...)
		}
	}

	logger.Info("loaded documents", "count", len(documents), "dirs", len(dirs))
	return documents, nil
}

func loadFile(path, sourceType string) ([]Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	stamp := func(d *Document) {
		d.SourceFile = path
		if d.SourceType == "" {
			d.SourceType = sourceType
		}
		d.EnsureID()
	}

	// Try an array first, then a single record
	var list []Document
	if err := json.Unmarshal(data, &list); err == nil {
		for i := range list {
			stamp(&list[i])
		}
		return list, nil
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	stamp(&doc)
	return []Document{doc}, nil
}
