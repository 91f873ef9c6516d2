// Package assets handles walk mesh loading and caching.
package assets

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/walkmesh/pkg/formats"
	"github.com/Faultbox/walkmesh/pkg/walkmesh"
)

// ErrMeshNotFound is returned when no loaded file provides the named mesh.
var ErrMeshNotFound = errors.New("walk mesh not found")

// Library holds walk meshes loaded from .w files, keyed by mesh name.
// Meshes are immutable once built, so one handle is shared by every walker.
type Library struct {
	cache *Cache
	log   *zap.Logger
	mu    sync.Mutex // serializes loads
}

// NewLibrary creates an empty library. A nil logger disables logging.
func NewLibrary(log *zap.Logger) *Library {
	if log == nil {
		log = zap.NewNop()
	}
	return &Library{
		cache: NewCache(),
		log:   log,
	}
}

// LoadFile parses a walk mesh file and builds every mesh it contains.
// Meshes from later files replace earlier ones of the same name.
// It returns the names of the meshes added.
func (l *Library) LoadFile(path string) ([]string, error) {
	w, err := formats.ParseWalkMeshFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	names, err := l.add(w, path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return names, nil
}

// LoadData is LoadFile for an in-memory file; source names it in logs.
func (l *Library) LoadData(data []byte, source string) ([]string, error) {
	w, err := formats.ParseWalkMeshes(data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", source, err)
	}
	return l.add(w, source)
}

func (l *Library) add(w *formats.WalkMeshes, source string) ([]string, error) {
	// Build everything first so a bad mesh leaves the library unchanged.
	built := make([]*walkmesh.Mesh, len(w.Meshes))
	for i := range w.Meshes {
		mesh, err := BuildMesh(&w.Meshes[i])
		if err != nil {
			return nil, fmt.Errorf("mesh %q: %w", w.Meshes[i].Name, err)
		}
		built[i] = mesh
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	names := make([]string, len(built))
	for i, mesh := range built {
		name := w.Meshes[i].Name
		if l.cache.Has(name) {
			l.log.Debug("replacing walk mesh", zap.String("mesh", name), zap.String("source", source))
		}
		l.cache.Set(name, mesh)
		names[i] = name

		l.log.Info("loaded walk mesh",
			zap.String("mesh", name),
			zap.String("source", source),
			zap.Int("vertices", mesh.VertexCount()),
			zap.Int("triangles", mesh.TriangleCount()),
			zap.Int("boundary_edges", mesh.BoundaryEdges()),
		)
	}
	return names, nil
}

// Add registers an already built mesh under name.
func (l *Library) Add(name string, mesh *walkmesh.Mesh) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache.Set(name, mesh)
}

// Mesh returns the mesh with the given name.
func (l *Library) Mesh(name string) (*walkmesh.Mesh, error) {
	if mesh, ok := l.cache.Get(name); ok {
		return mesh, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrMeshNotFound, name)
}

// Names returns the loaded mesh names in sorted order.
func (l *Library) Names() []string {
	return l.cache.Keys()
}

// Stats returns lookup hit and miss counts.
func (l *Library) Stats() (hits, misses int) {
	return l.cache.Stats()
}

// Close drops every loaded mesh.
func (l *Library) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache.Clear()
}

// BuildMesh converts parsed walk mesh arrays into a validated mesh.
// A mesh without normals gets computed smoothed normals.
func BuildMesh(d *formats.WalkMeshData) (*walkmesh.Mesh, error) {
	vertices := make([]mgl32.Vec3, len(d.Vertices))
	for i, v := range d.Vertices {
		vertices[i] = mgl32.Vec3(v)
	}

	var normals []mgl32.Vec3
	if len(d.Normals) > 0 {
		normals = make([]mgl32.Vec3, len(d.Normals))
		for i, n := range d.Normals {
			normals[i] = mgl32.Vec3(n)
		}
	}

	triangles := make([]walkmesh.Triangle, len(d.Triangles))
	for i, t := range d.Triangles {
		triangles[i] = walkmesh.Triangle(t)
	}

	return walkmesh.NewMesh(vertices, normals, triangles)
}

// Cache is a simple in-memory cache of built meshes.
type Cache struct {
	data map[string]*walkmesh.Mesh
	mu   sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string]*walkmesh.Mesh),
	}
}

// Get retrieves a mesh from cache.
func (c *Cache) Get(key string) (*walkmesh.Mesh, bool) {
	// Stats are written, so this takes the write lock.
	c.mu.Lock()
	defer c.mu.Unlock()

	mesh, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return mesh, ok
}

// Has reports whether key is cached without touching the stats.
func (c *Cache) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.data[key]
	return ok
}

// Set stores a mesh in cache.
func (c *Cache) Set(key string, mesh *walkmesh.Mesh) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = mesh
}

// Keys returns the cached names in sorted order.
func (c *Cache) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.data))
	for k := range c.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]*walkmesh.Mesh)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
