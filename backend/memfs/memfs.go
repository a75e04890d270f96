package memfs

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/dfsenv/backend"
)

type node struct {
	data    []byte
	modTime time.Time
	dir     bool
}

// FS is an in-memory backend.Client.
type FS struct {
	mu    sync.RWMutex
	nodes map[string]*node
}

// New creates an empty in-memory filesystem.
func New() *FS {
	return &FS{
		nodes: make(map[string]*node),
	}
}

// key normalizes a path to its canonical absolute form.
func key(name string) string {
	return path.Clean("/" + name)
}

func (fs *FS) Open(_ context.Context, name string, mode backend.OpenMode) (backend.File, error) {
	k := key(name)

	fs.mu.Lock()
	defer fs.mu.Unlock()

	switch mode {
	case backend.ReadOnly:
		n, ok := fs.nodes[k]
		if !ok {
			return nil, backend.ErrNotExist
		}
		if n.dir {
			return nil, fmt.Errorf("memfs: %s is a directory", name)
		}
	case backend.WriteOnly:
		if n, ok := fs.nodes[k]; ok && n.dir {
			return nil, fmt.Errorf("memfs: %s is a directory", name)
		}
		// Create or truncate.
		fs.nodes[k] = &node{modTime: time.Now()}
	default:
		return nil, fmt.Errorf("memfs: unknown open mode %d", mode)
	}

	return &file{fs: fs, key: k, mode: mode}, nil
}

func (fs *FS) Stat(_ context.Context, name string) (backend.FileInfo, error) {
	k := key(name)

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	n, ok := fs.nodes[k]
	if !ok {
		if k != "/" {
			return backend.FileInfo{}, backend.ErrNotExist
		}
		// The root directory always exists.
		return backend.FileInfo{Name: "/", IsDir: true}, nil
	}
	return backend.FileInfo{
		Name:    k,
		Size:    int64(len(n.data)),
		ModTime: n.modTime,
		IsDir:   n.dir,
	}, nil
}

func (fs *FS) Exists(ctx context.Context, name string) (bool, error) {
	_, err := fs.Stat(ctx, name)
	if err != nil {
		if errors.Is(err, backend.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (fs *FS) List(_ context.Context, dir string) ([]backend.FileInfo, error) {
	k := key(dir)

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	if n, ok := fs.nodes[k]; ok && !n.dir {
		// Listing a plain file yields the file itself.
		return []backend.FileInfo{{
			Name:    k,
			Size:    int64(len(n.data)),
			ModTime: n.modTime,
			IsDir:   false,
		}}, nil
	} else if !ok && k != "/" {
		return nil, backend.ErrNotExist
	}

	var infos []backend.FileInfo
	for name, n := range fs.nodes {
		if path.Dir(name) != k || name == k {
			continue
		}
		infos = append(infos, backend.FileInfo{
			Name:    name,
			Size:    int64(len(n.data)),
			ModTime: n.modTime,
			IsDir:   n.dir,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

func (fs *FS) Delete(_ context.Context, name string) error {
	k := key(name)
	// The root directory always exists and cannot be removed.
	if k == "/" {
		return fmt.Errorf("memfs: cannot delete the root directory")
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if _, ok := fs.nodes[k]; !ok {
		return backend.ErrNotExist
	}
	// Directory deletes are recursive.
	delete(fs.nodes, k)
	prefix := k + "/"
	for name := range fs.nodes {
		if strings.HasPrefix(name, prefix) {
			delete(fs.nodes, name)
		}
	}
	return nil
}

func (fs *FS) Rename(_ context.Context, src, dst string) error {
	srcKey, dstKey := key(src), key(dst)

	fs.mu.Lock()
	defer fs.mu.Unlock()

	n, ok := fs.nodes[srcKey]
	if !ok {
		return backend.ErrNotExist
	}
	if _, ok := fs.nodes[dstKey]; ok {
		return backend.ErrExist
	}
	fs.nodes[dstKey] = n
	delete(fs.nodes, srcKey)

	// Move descendants along with a directory.
	prefix := srcKey + "/"
	for name, child := range fs.nodes {
		if strings.HasPrefix(name, prefix) {
			fs.nodes[dstKey+"/"+name[len(prefix):]] = child
			delete(fs.nodes, name)
		}
	}
	return nil
}

func (fs *FS) Mkdir(_ context.Context, name string) error {
	k := key(name)

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if _, ok := fs.nodes[k]; ok || k == "/" {
		return backend.ErrExist
	}
	fs.nodes[k] = &node{dir: true, modTime: time.Now()}
	return nil
}

// file is an open handle. Reads see appends made through other handles,
// matching the visible-append semantics of the remote filesystems this
// package stands in for.
type file struct {
	fs     *FS
	key    string
	mode   backend.OpenMode
	pos    int64
	closed bool
}

var errClosed = fmt.Errorf("memfs: file already closed")

func (f *file) snapshot() (*node, error) {
	if f.closed {
		return nil, errClosed
	}
	n, ok := f.fs.nodes[f.key]
	if !ok {
		return nil, backend.ErrNotExist
	}
	return n, nil
}

func (f *file) Read(p []byte) (int, error) {
	f.fs.mu.RLock()
	defer f.fs.mu.RUnlock()

	n, err := f.snapshot()
	if err != nil {
		return 0, err
	}
	if f.pos >= int64(len(n.data)) {
		return 0, nil
	}
	m := copy(p, n.data[f.pos:])
	f.pos += int64(m)
	return m, nil
}

func (f *file) ReadAt(p []byte, off int64) (int, error) {
	f.fs.mu.RLock()
	defer f.fs.mu.RUnlock()

	n, err := f.snapshot()
	if err != nil {
		return 0, err
	}
	if off < 0 {
		return 0, fmt.Errorf("memfs: negative offset %d", off)
	}
	if off >= int64(len(n.data)) {
		return 0, nil
	}
	return copy(p, n.data[off:]), nil
}

func (f *file) Write(p []byte) (int, error) {
	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()

	n, err := f.snapshot()
	if err != nil {
		return 0, err
	}
	if f.mode != backend.WriteOnly {
		return 0, fmt.Errorf("memfs: file not open for writing")
	}
	n.data = append(n.data, p...)
	n.modTime = time.Now()
	return len(p), nil
}

func (f *file) Flush() error {
	if f.closed {
		return errClosed
	}
	return nil
}

func (f *file) Sync() error {
	if f.closed {
		return errClosed
	}
	return nil
}

func (f *file) Seek(offset int64) error {
	if f.closed {
		return errClosed
	}
	if offset < 0 {
		return fmt.Errorf("memfs: negative offset %d", offset)
	}
	f.pos = offset
	return nil
}

func (f *file) Tell() (int64, error) {
	if f.closed {
		return 0, errClosed
	}
	return f.pos, nil
}

func (f *file) Close() error {
	if f.closed {
		return errClosed
	}
	f.closed = true
	return nil
}
