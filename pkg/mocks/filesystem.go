package mocks

import (
	"io/fs"
	"path/filepath"
	"sort"
	"sync"

	"github.com/user/framescribe/pkg/ports"
)

// FileSystem is an in-memory ports.FileSystem. Paths are compared after
// filepath.Clean. Set Fail to make every write return an error.
type FileSystem struct {
	mu      sync.Mutex
	files   map[string][]byte
	dirs    map[string]struct{}
	written []string

	Fail error
}

// NewFileSystem creates an empty in-memory FileSystem.
func NewFileSystem() *FileSystem {
	return &FileSystem{
		files: make(map[string][]byte),
		dirs:  make(map[string]struct{}),
	}
}

func (m *FileSystem) ReadFile(path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[filepath.Clean(path)]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return append([]byte(nil), data...), nil
}

// WriteFile stores a copy of data and marks every parent directory as existing.
func (m *FileSystem) WriteFile(path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}
	path = filepath.Clean(path)
	m.files[path] = append([]byte(nil), data...)
	m.written = append(m.written, path)
	m.addDirs(filepath.Dir(path))
	return nil
}

func (m *FileSystem) MkdirAll(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}
	m.addDirs(filepath.Clean(path))
	return nil
}

func (m *FileSystem) Exists(path string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)
	if _, ok := m.files[path]; ok {
		return true, nil
	}
	_, ok := m.dirs[path]
	return ok, nil
}

func (m *FileSystem) addDirs(dir string) {
	for dir != "." && dir != string(filepath.Separator) {
		if _, ok := m.dirs[dir]; ok {
			return
		}
		m.dirs[dir] = struct{}{}
		dir = filepath.Dir(dir)
	}
}

// GetFile returns the stored contents of path.
func (m *FileSystem) GetFile(path string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[filepath.Clean(path)]
	return data, ok
}

// Written returns the paths passed to WriteFile, in call order.
func (m *FileSystem) Written() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.written...)
}

// Paths returns every stored file path, sorted.
func (m *FileSystem) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	paths := make([]string, 0, len(m.files))
	for p := range m.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

var _ ports.FileSystem = (*FileSystem)(nil)
