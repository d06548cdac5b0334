package resource

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"autorefresh/internal/event"
	"autorefresh/internal/logging"
	"autorefresh/internal/metrics"
	"autorefresh/internal/watcher"
)

var ErrNoManifest = errors.New("no manifest loaded")

// Resource is the in-memory representation of one manifest entry.
type Resource struct {
	Name     string
	Path     string
	Size     int64
	Digest   string
	Revision int
	LoadedAt time.Time
	Err      error
}

// FileBacked reports whether the resource has a file to watch.
func (r Resource) FileBacked() bool {
	return r.Path != ""
}

type CatalogOptions struct {
	Logger   *logging.Logger
	Metrics  *metrics.Registry
	Events   event.Publisher[event.WatchEvent]
	ReadFile func(path string) ([]byte, error)
	Now      func() time.Time
}

// Catalog owns the project's resources. It is the host side of the watcher:
// it enumerates editable resources and reloads them on change.
type Catalog struct {
	mu           sync.RWMutex
	manifestPath string
	resources    []*Resource

	logger   *logging.Logger
	metrics  *metrics.Registry
	events   event.Publisher[event.WatchEvent]
	readFile func(path string) ([]byte, error)
	now      func() time.Time
}

func NewCatalog(options CatalogOptions) *Catalog {
	logger := options.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	readFile := options.ReadFile
	if readFile == nil {
		readFile = os.ReadFile
	}
	now := options.Now
	if now == nil {
		now = time.Now
	}
	return &Catalog{
		logger:   logger.Category("resource"),
		metrics:  options.Metrics,
		events:   options.Events,
		readFile: readFile,
		now:      now,
	}
}

// LoadManifest reads the manifest at path and makes it the catalog's
// source of resources.
func (c *Catalog) LoadManifest(path string) error {
	manifest, err := ParseManifestFile(path)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.manifestPath = manifest.Path
	c.mu.Unlock()
	c.Apply(manifest)
	return nil
}

// Sync re-reads the loaded manifest so resources added or removed since the
// last load are picked up.
func (c *Catalog) Sync() error {
	c.mu.RLock()
	path := c.manifestPath
	c.mu.RUnlock()
	if path == "" {
		return ErrNoManifest
	}
	manifest, err := ParseManifestFile(path)
	if err != nil {
		return err
	}
	c.Apply(manifest)
	return nil
}

// Apply replaces the catalog contents with the manifest entries. Resources
// whose name and resolved path are unchanged keep their loaded state.
func (c *Catalog) Apply(manifest Manifest) {
	c.mu.Lock()
	defer c.mu.Unlock()

	existing := make(map[string]*Resource, len(c.resources))
	for _, resource := range c.resources {
		existing[resource.Name] = resource
	}

	next := make([]*Resource, 0, len(manifest.Entries))
	var fresh []*Resource
	for _, entry := range manifest.Entries {
		path := manifest.Resolve(entry.Path)
		if previous, ok := existing[entry.Name]; ok && previous.Path == path {
			next = append(next, previous)
			continue
		}
		resource := &Resource{Name: entry.Name, Path: path}
		next = append(next, resource)
		fresh = append(fresh, resource)
	}
	c.resources = next

	for _, resource := range fresh {
		if resource.FileBacked() {
			c.loadLocked(resource)
		}
	}
}

// ListEditableResources returns every file-backed resource in manifest order.
func (c *Catalog) ListEditableResources() ([]watcher.Resource, error) {
	c.mu.RLock()
	managed := c.manifestPath != ""
	c.mu.RUnlock()
	if managed {
		if err := c.Sync(); err != nil {
			return nil, err
		}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	resources := make([]watcher.Resource, 0, len(c.resources))
	for _, resource := range c.resources {
		if !resource.FileBacked() {
			continue
		}
		resources = append(resources, watcher.Resource{Name: resource.Name, Path: resource.Path})
	}
	return resources, nil
}

// ReloadResourcesAt reloads every resource whose resolved path equals path.
func (c *Catalog) ReloadResourcesAt(path string) {
	if path == "" {
		return
	}
	target := filepath.Clean(path)

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, resource := range c.resources {
		if resource.Path != target {
			continue
		}
		err := c.loadLocked(resource)
		if c.metrics != nil {
			c.metrics.RecordReload(err)
		}
		c.publish(resource, err)
	}
}

// Resources returns a snapshot of every resource.
func (c *Catalog) Resources() []Resource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Resource, 0, len(c.resources))
	for _, resource := range c.resources {
		out = append(out, *resource)
	}
	return out
}

func (c *Catalog) Lookup(name string) (Resource, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, resource := range c.resources {
		if resource.Name == name {
			return *resource, true
		}
	}
	return Resource{}, false
}

func (c *Catalog) ManifestPath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.manifestPath
}

func (c *Catalog) loadLocked(resource *Resource) error {
	data, err := c.readFile(resource.Path)
	if err != nil {
		resource.Err = err
		c.logger.Warn("resource load failed", map[string]string{
			"resource":         resource.Name,
			logging.FieldPath:  resource.Path,
			logging.FieldError: err.Error(),
		})
		return err
	}
	sum := sha256.Sum256(data)
	resource.Size = int64(len(data))
	resource.Digest = hex.EncodeToString(sum[:])
	resource.Revision++
	resource.LoadedAt = c.now()
	resource.Err = nil
	c.logger.Info("resource loaded", map[string]string{
		"resource":        resource.Name,
		logging.FieldPath: resource.Path,
		"revision":        strconv.Itoa(resource.Revision),
		"size":            strconv.FormatInt(resource.Size, 10),
	})
	return nil
}

func (c *Catalog) publish(resource *Resource, err error) {
	if c.events == nil {
		return
	}
	eventType := event.TypeResourceReloaded
	if err != nil {
		eventType = event.TypeResourceReloadFailed
	}
	payload := event.NewWatchEvent(eventType, resource.Path)
	payload.Name = resource.Name
	payload.Revision = resource.Revision
	if err != nil {
		payload.Detail = err.Error()
	}
	c.events.Publish(payload)
}
