// Package inbox finds report files waiting to be processed.
package inbox

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"tsreminder/internal/storage"
)

const (
	StatusProcessed = "processed"
	StatusFailed    = "failed"
)

type Report struct {
	Name string
	Path string
	Hash string
	Data []byte
}

type Source interface {
	List() ([]Report, error)
}

var reportExtensions = map[string]bool{
	".xlsx": true,
	".xls":  true,
	".csv":  true,
	".html": true,
	".htm":  true,
}

// DirSource lists report files directly inside a directory, sorted by name.
// Hidden files and editor lock files are ignored.
type DirSource struct {
	Dir string
}

func (s DirSource) List() ([]Report, error) {
	entries, err := os.ReadDir(s.Dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
			continue
		}
		if !reportExtensions[strings.ToLower(filepath.Ext(name))] {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Report, 0, len(names))
	for _, name := range names {
		r, err := ReadReport(filepath.Join(s.Dir, name))
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// ReadReport loads one report file and hashes its content.
func ReadReport(path string) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Report{}, err
	}
	sum := sha256.Sum256(data)
	return Report{Name: filepath.Base(path), Path: path, Hash: hex.EncodeToString(sum[:]), Data: data}, nil
}

// Collector hands out reports whose content has not been seen before. A
// report is keyed by its hash, so renaming a file does not reprocess it and
// editing one does.
type Collector struct {
	db     *storage.DB
	source Source
}

type CollectResult struct {
	Listed  int
	Pending []Report
}

func NewCollector(db *storage.DB, source Source) *Collector {
	return &Collector{db: db, source: source}
}

func (c *Collector) Collect() (CollectResult, error) {
	reports, err := c.source.List()
	if err != nil {
		return CollectResult{}, err
	}

	result := CollectResult{Listed: len(reports)}
	for _, r := range reports {
		seen, err := c.db.GetReport(r.Hash)
		if err != nil {
			return CollectResult{}, err
		}
		if seen != nil {
			continue
		}
		result.Pending = append(result.Pending, r)
	}
	return result, nil
}
