package fakes

import (
	"io/fs"
	"sync"

	"github.com/danmuck/gbanetboot/internal/storage"
)

// Store is an in-memory storage.Storage with failure injection.
type Store struct {
	mu    sync.Mutex
	files map[string][]byte

	OpenErr   error
	RemoveErr error
	RenameErr error
	// ShortWrite caps bytes accepted per WriteAt without reporting an error.
	ShortWrite int

	Opens      int
	Truncates  int
	OpenNow    int
	Writes     []Write
	Operations []string
}

// Write records one WriteAt call.
type Write struct {
	Name   string
	Offset int64
	Length int
}

var _ storage.Storage = (*Store)(nil)

func NewStore() *Store {
	return &Store{files: make(map[string][]byte)}
}

// Put seeds a file.
func (s *Store) Put(name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = append([]byte(nil), data...)
}

// Get returns a copy of a file and whether it exists.
func (s *Store) Get(name string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[name]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), data...), true
}

func (s *Store) OpenWrite(name string, truncate bool) (storage.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Operations = append(s.Operations, "open:"+name)
	if s.OpenErr != nil {
		return nil, s.OpenErr
	}
	s.Opens++
	s.OpenNow++
	if _, ok := s.files[name]; !ok || truncate {
		s.files[name] = []byte{}
	}
	if truncate {
		s.Truncates++
	}
	return &memFile{store: s, name: name}, nil
}

func (s *Store) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Operations = append(s.Operations, "remove:"+name)
	if s.RemoveErr != nil {
		return s.RemoveErr
	}
	if _, ok := s.files[name]; !ok {
		return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrNotExist}
	}
	delete(s.files, name)
	return nil
}

func (s *Store) Rename(from, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Operations = append(s.Operations, "rename:"+from+"->"+to)
	if s.RenameErr != nil {
		return s.RenameErr
	}
	data, ok := s.files[from]
	if !ok {
		return &fs.PathError{Op: "rename", Path: from, Err: fs.ErrNotExist}
	}
	s.files[to] = data
	delete(s.files, from)
	return nil
}

type memFile struct {
	store  *Store
	name   string
	closed bool
}

func (f *memFile) WriteAt(p []byte, off int64) (int, error) {
	s := f.store
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(p)
	if s.ShortWrite > 0 && n > s.ShortWrite {
		n = s.ShortWrite
	}
	data := s.files[f.name]
	if end := int(off) + n; end > len(data) {
		grown := make([]byte, end)
		copy(grown, data)
		data = grown
	}
	copy(data[off:], p[:n])
	s.files[f.name] = data
	s.Writes = append(s.Writes, Write{Name: f.name, Offset: off, Length: n})
	return n, nil
}

func (f *memFile) Sync() error {
	return nil
}

func (f *memFile) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	f.store.mu.Lock()
	f.store.OpenNow--
	f.store.mu.Unlock()
	return nil
}
