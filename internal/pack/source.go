package pack

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"
)

// maxConcurrentReads bounds the number of files [ReadDir] reads at once.
const maxConcurrentReads = 8

// Source is the undecoded content of one package file.
type Source struct {
	// Name is the file's base name. Packages load in Name order, which is
	// why authors prefix files with "01_", "02_" and so on.
	Name string

	// Path is where the bytes came from, used as the package origin.
	Path string

	Data []byte
}

// Decode decodes the source with [Decode].
func (s Source) Decode() (*Package, error) {
	return Decode(s.Name, s.Data)
}

// ReadFile reads a single package file.
func ReadFile(path string) (Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Source{}, fmt.Errorf("pack: read %q: %w", path, err)
	}
	return Source{Name: filepath.Base(path), Path: path, Data: data}, nil
}

// ReadDir reads every package file directly inside dir, skipping
// subdirectories and files whose extension is not a package format. Files
// are read concurrently; the result is sorted by Name.
func ReadDir(ctx context.Context, dir string) ([]Source, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("pack: list %q: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := FormatOf(e.Name()); !ok {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}

	sources := make([]Source, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentReads)
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			src, err := ReadFile(p)
			if err != nil {
				return err
			}
			sources[i] = src
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	SortSources(sources)
	return sources, nil
}

// SortSources orders sources by Name, then Path.
func SortSources(sources []Source) {
	sort.SliceStable(sources, func(i, j int) bool {
		if sources[i].Name != sources[j].Name {
			return sources[i].Name < sources[j].Name
		}
		return sources[i].Path < sources[j].Path
	})
}
