package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Duy-Thong/CopyCheck/internal/plagiarism"
	"github.com/Duy-Thong/CopyCheck/internal/preprocess"
)

var extractor = preprocess.NewExtractor(nil)

func supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".txt":
		return true
	}
	return false
}

// readDocument loads one file; the path is its ID and the modification time
// its upload time
func readDocument(ctx context.Context, path string) (plagiarism.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return plagiarism.Document{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return plagiarism.Document{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	text, _ := extractor.Extract(ctx, filepath.Base(path), data)
	return plagiarism.Document{
		ID:          filepath.Clean(path),
		DisplayName: filepath.Base(path),
		Text:        text,
		UploadedAt:  info.ModTime(),
	}, nil
}

// readCorpus loads every supported file directly under dir in corpus order
func readCorpus(ctx context.Context, dir string) ([]plagiarism.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus dir: %w", err)
	}

	var docs []plagiarism.Document
	for _, entry := range entries {
		if entry.IsDir() || !supported(entry.Name()) {
			continue
		}
		doc, err := readDocument(ctx, filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return plagiarism.SortDocuments(docs), nil
}
