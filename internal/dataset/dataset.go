package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/agenthands/stargraph/internal/core/graph"
)

var ErrMalformedDataset = errors.New("malformed dataset")

// Save writes graphs as one JSON array, replacing any existing file.
func Save(path string, graphs []*graph.StarGraph) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	var buf bytes.Buffer
	if err := Encode(&buf, graphs); err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write dataset: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write dataset: %w", err)
	}
	return nil
}

func Encode(w io.Writer, graphs []*graph.StarGraph) error {
	records := make([]graph.GraphRecord, len(graphs))
	for i, g := range graphs {
		records[i] = g.Record()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to encode dataset: %w", err)
	}
	return nil
}

func Load(path string) ([]*graph.StarGraph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads a JSON array of graph records. A single bad graph fails the
// whole load.
func Decode(r io.Reader) ([]*graph.StarGraph, error) {
	var records []graph.GraphRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDataset, err)
	}

	graphs := make([]*graph.StarGraph, len(records))
	for i, rec := range records {
		g, err := graph.FromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("%w: graph %d: %w", ErrMalformedDataset, i, err)
		}
		graphs[i] = g
	}
	return graphs, nil
}
