package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// Source loads one collection at a time.
type Source interface {
	Load(ctx context.Context, kind Kind) ([]Entry, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, kind Kind) ([]Entry, error)

// Load calls f.
func (f SourceFunc) Load(ctx context.Context, kind Kind) ([]Entry, error) {
	return f(ctx, kind)
}

// File is the on-disk catalog document.
type File struct {
	Destinations   []Entry `yaml:"destinations"`
	Accommodations []Entry `yaml:"accommodations"`
	Guides         []Entry `yaml:"guides"`
}

// Collection returns the list held for kind.
func (f File) Collection(kind Kind) ([]Entry, error) {
	switch kind {
	case KindDestination:
		return f.Destinations, nil
	case KindAccommodation:
		return f.Accommodations, nil
	case KindGuide:
		return f.Guides, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// ReadFile parses a YAML catalog document. A missing file reads as empty.
func ReadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return File{}, nil
		}
		return File{}, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	var doc File
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return File{}, fmt.Errorf("catalog: parse %s: %w", path, err)
	}
	return doc, nil
}

// FileSource serves collections from a YAML catalog file, re-reading it on
// every load so edits show up without restarting.
type FileSource struct {
	path string
}

// NewFileSource returns a source backed by path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Path returns the file backing the source.
func (s *FileSource) Path() string {
	return s.path
}

// Load implements Source.
func (s *FileSource) Load(ctx context.Context, kind Kind) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	return doc.Collection(kind)
}

// LoadAll fetches every collection concurrently and applies each one that
// succeeded. The first failure is returned after all loads have finished.
func LoadAll(ctx context.Context, src Source, c *Catalog) error {
	if src == nil {
		return fmt.Errorf("catalog: source is nil")
	}
	kinds := Kinds()
	results := make([][]Entry, len(kinds))
	loaded := make([]bool, len(kinds))
	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		g.Go(func() error {
			entries, err := src.Load(gctx, kind)
			if err != nil {
				return fmt.Errorf("catalog: load %s: %w", kind.Plural(), err)
			}
			results[i] = entries
			loaded[i] = true
			return nil
		})
	}
	err := g.Wait()
	for i, kind := range kinds {
		if loaded[i] {
			c.Set(kind, results[i])
		}
	}
	return err
}
