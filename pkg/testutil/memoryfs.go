// Package testutil provides test doubles shared by loom's package tests.
package testutil

import (
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryFS implements types.FS with in-memory storage.
// WriteFile creates missing parent directories, matching how loom's
// primitives always MkdirAll before writing.
type MemoryFS struct {
	mu    sync.RWMutex
	files map[string][]byte
	dirs  map[string]bool
}

// NewMemoryFS creates a new in-memory filesystem
func NewMemoryFS() *MemoryFS {
	return &MemoryFS{
		files: make(map[string][]byte),
		dirs:  map[string]bool{"/": true},
	}
}

func normalize(name string) string {
	name = path.Clean("/" + strings.TrimPrefix(name, "/"))
	return name
}

func notExist(op, name string) error {
	return &fs.PathError{Op: op, Path: name, Err: fs.ErrNotExist}
}

func (m *MemoryFS) Stat(name string) (fs.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	name = normalize(name)
	if content, ok := m.files[name]; ok {
		return &memFileInfo{name: path.Base(name), size: int64(len(content)), mode: 0644}, nil
	}
	if m.dirs[name] {
		return &memFileInfo{name: path.Base(name), mode: fs.ModeDir | 0755, dir: true}, nil
	}
	return nil, notExist("stat", name)
}

func (m *MemoryFS) ReadFile(name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	name = normalize(name)
	content, ok := m.files[name]
	if !ok {
		return nil, notExist("open", name)
	}
	out := make([]byte, len(content))
	copy(out, content)
	return out, nil
}

func (m *MemoryFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	name = normalize(name)
	m.mkdirs(path.Dir(name))
	stored := make([]byte, len(data))
	copy(stored, data)
	m.files[name] = stored
	return nil
}

func (m *MemoryFS) MkdirAll(dir string, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.mkdirs(normalize(dir))
	return nil
}

func (m *MemoryFS) mkdirs(dir string) {
	for d := dir; ; d = path.Dir(d) {
		m.dirs[d] = true
		if d == "/" {
			break
		}
	}
}

func (m *MemoryFS) ReadDir(name string) ([]fs.DirEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	name = normalize(name)
	if !m.dirs[name] {
		return nil, notExist("open", name)
	}

	seen := make(map[string]fs.DirEntry)
	prefix := name
	if prefix != "/" {
		prefix += "/"
	}

	for f, content := range m.files {
		if rest, ok := strings.CutPrefix(f, prefix); ok && !strings.Contains(rest, "/") {
			seen[rest] = &memDirEntry{info: &memFileInfo{name: rest, size: int64(len(content)), mode: 0644}}
		}
	}
	for d := range m.dirs {
		if rest, ok := strings.CutPrefix(d, prefix); ok && rest != "" && !strings.Contains(rest, "/") {
			seen[rest] = &memDirEntry{info: &memFileInfo{name: rest, mode: fs.ModeDir | 0755, dir: true}}
		}
	}

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)

	entries := make([]fs.DirEntry, 0, len(names))
	for _, n := range names {
		entries = append(entries, seen[n])
	}
	return entries, nil
}

func (m *MemoryFS) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	name = normalize(name)
	if _, ok := m.files[name]; ok {
		delete(m.files, name)
		return nil
	}
	if m.dirs[name] {
		delete(m.dirs, name)
		return nil
	}
	return notExist("remove", name)
}

func (m *MemoryFS) RemoveAll(root string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	root = normalize(root)
	prefix := root + "/"
	for f := range m.files {
		if f == root || strings.HasPrefix(f, prefix) {
			delete(m.files, f)
		}
	}
	for d := range m.dirs {
		if d == root || strings.HasPrefix(d, prefix) {
			delete(m.dirs, d)
		}
	}
	return nil
}

// Exists reports whether a file or directory is present
func (m *MemoryFS) Exists(name string) bool {
	_, err := m.Stat(name)
	return err == nil
}

type memFileInfo struct {
	name string
	size int64
	mode fs.FileMode
	dir  bool
}

func (i *memFileInfo) Name() string       { return i.name }
func (i *memFileInfo) Size() int64        { return i.size }
func (i *memFileInfo) Mode() fs.FileMode  { return i.mode }
func (i *memFileInfo) ModTime() time.Time { return time.Time{} }
func (i *memFileInfo) IsDir() bool        { return i.dir }
func (i *memFileInfo) Sys() interface{}   { return nil }

type memDirEntry struct {
	info *memFileInfo
}

func (e *memDirEntry) Name() string               { return e.info.name }
func (e *memDirEntry) IsDir() bool                { return e.info.dir }
func (e *memDirEntry) Type() fs.FileMode          { return e.info.mode.Type() }
func (e *memDirEntry) Info() (fs.FileInfo, error) { return e.info, nil }
