package registry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/norcalsbdc/advisorflow"
)

// extensions are tried in this order when resolving a name
var extensions = []string{".json", ".yaml", ".yml"}

// DirSource reads workflow definitions from *.json, *.yaml and *.yml files in one
// directory. The conventional name of a definition is its file stem.
type DirSource struct {
	dir string
}

// NewDirSource creates a source over dir. A missing directory lists as empty.
func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

var _ advisorflow.DefinitionSource = (*DirSource)(nil)

// Dir returns the directory being read
func (s *DirSource) Dir() string {
	return s.dir
}

func (s *DirSource) List(ctx context.Context) ([]advisorflow.RawDefinition, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read workflows dir %s: %w", s.dir, err)
	}

	var raws []advisorflow.RawDefinition
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		format, ok := formatFor(entry.Name())
		if !ok {
			continue
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := filepath.Join(s.dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		raws = append(raws, advisorflow.RawDefinition{
			Name:   stem(entry.Name()),
			Format: format,
			Data:   data,
		})
	}

	return raws, nil
}

func (s *DirSource) Get(ctx context.Context, name string) (advisorflow.RawDefinition, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return advisorflow.RawDefinition{}, fmt.Errorf("%w: %q", advisorflow.ErrDefinitionNotFound, name)
	}

	for _, ext := range extensions {
		path := filepath.Join(s.dir, name+ext)
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return advisorflow.RawDefinition{}, fmt.Errorf("failed to read %s: %w", path, err)
		}

		format, _ := formatFor(path)
		return advisorflow.RawDefinition{Name: name, Format: format, Data: data}, nil
	}

	return advisorflow.RawDefinition{}, fmt.Errorf("%w: %q", advisorflow.ErrDefinitionNotFound, name)
}

// ReadFile loads a single definition file regardless of directory
func ReadFile(path string) (advisorflow.RawDefinition, error) {
	format, ok := formatFor(path)
	if !ok {
		return advisorflow.RawDefinition{}, fmt.Errorf("unsupported definition file %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return advisorflow.RawDefinition{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return advisorflow.RawDefinition{
		Name:   stem(filepath.Base(path)),
		Format: format,
		Data:   data,
	}, nil
}

func formatFor(filename string) (advisorflow.DefinitionFormat, bool) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return advisorflow.FormatJSON, true
	case ".yaml", ".yml":
		return advisorflow.FormatYAML, true
	}
	return "", false
}

func stem(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}
