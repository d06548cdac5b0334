package resource

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Manifest is a parsed project document.
type Manifest struct {
	Path    string
	Entries []ManifestEntry
}

type ManifestEntry struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

type manifestFile struct {
	Resources []ManifestEntry `yaml:"resources"`
}

// ParseManifestFile reads, parses and validates the manifest at path.
func ParseManifestFile(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest %s: %w", path, err)
	}
	manifest, err := ParseManifest(data)
	if err != nil {
		return Manifest{}, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	absolute, err := filepath.Abs(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("resolve manifest %s: %w", path, err)
	}
	manifest.Path = absolute
	if err := manifest.Validate(); err != nil {
		return Manifest{}, fmt.Errorf("validate manifest %s: %w", path, err)
	}
	return manifest, nil
}

// ParseManifest decodes manifest YAML. Unknown fields are rejected.
func ParseManifest(data []byte) (Manifest, error) {
	var file manifestFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return Manifest{}, err
	}
	entries := make([]ManifestEntry, 0, len(file.Resources))
	for _, entry := range file.Resources {
		entries = append(entries, ManifestEntry{
			Name: strings.TrimSpace(entry.Name),
			Path: strings.TrimSpace(entry.Path),
		})
	}
	return Manifest{Entries: entries}, nil
}

// Validate reports every missing or duplicated resource name.
func (m Manifest) Validate() error {
	var errs []error
	seen := make(map[string]int, len(m.Entries))
	for index, entry := range m.Entries {
		if entry.Name == "" {
			errs = append(errs, fmt.Errorf("resources[%d]: name is required", index))
			continue
		}
		if first, ok := seen[entry.Name]; ok {
			errs = append(errs, fmt.Errorf("resources[%d]: name %q already declared at resources[%d]", index, entry.Name, first))
			continue
		}
		seen[entry.Name] = index
	}
	return errors.Join(errs...)
}

// Dir is the directory relative resource paths resolve against.
func (m Manifest) Dir() string {
	if m.Path == "" {
		return ""
	}
	return filepath.Dir(m.Path)
}

// Resolve returns the absolute, cleaned path for a manifest entry path.
// Empty input stays empty.
func (m Manifest) Resolve(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "//") {
		path = strings.TrimLeft(path, "/")
		return filepath.Join(m.baseDir(), filepath.FromSlash(path))
	}
	path = filepath.FromSlash(path)
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(m.baseDir(), path)
}

func (m Manifest) baseDir() string {
	if dir := m.Dir(); dir != "" {
		return dir
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}
