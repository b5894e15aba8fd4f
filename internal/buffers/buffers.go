// Package buffers owns the fixed receive buffers of one session.
package buffers

import (
	"errors"
	"fmt"
	"sync"
)

const (
	// DefaultAssemblySize is the staging area filled before each storage flush.
	DefaultAssemblySize = 0x800000
	// DefaultDatagramSize holds one discovery request or response.
	DefaultDatagramSize = 0x100
)

var (
	ErrOutOfMemory   = errors.New("buffers: out of memory")
	ErrInvalidSize   = errors.New("buffers: invalid size")
	ErrDoubleAcquire = errors.New("buffers: already acquired")
)

// Allocator hands out zeroed byte regions.
type Allocator interface {
	Alloc(n int) ([]byte, error)
	Free(b []byte)
}

// BudgetAllocator allocates from the Go heap within an optional byte budget.
// A zero Budget means unlimited.
type BudgetAllocator struct {
	Budget int

	mu   sync.Mutex
	used int
}

func (a *BudgetAllocator) Alloc(n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, n)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Budget > 0 && a.used+n > a.Budget {
		return nil, fmt.Errorf("%w: want=%d used=%d budget=%d", ErrOutOfMemory, n, a.used, a.Budget)
	}
	a.used += n
	return make([]byte, n), nil
}

func (a *BudgetAllocator) Free(b []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.used -= cap(b)
	if a.used < 0 {
		a.used = 0
	}
}

// InUse reports bytes currently handed out.
func (a *BudgetAllocator) InUse() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.used
}

// Config sizes the managed buffers.
type Config struct {
	AssemblySize int
	DatagramSize int
}

func DefaultConfig() Config {
	return Config{
		AssemblySize: DefaultAssemblySize,
		DatagramSize: DefaultDatagramSize,
	}
}

// Manager acquires and releases the assembly and datagram buffers together.
// Its lifetime brackets one session.
type Manager struct {
	cfg   Config
	alloc Allocator

	assembly []byte
	datagram []byte
}

func NewManager(cfg Config, alloc Allocator) *Manager {
	if cfg.AssemblySize == 0 {
		cfg.AssemblySize = DefaultAssemblySize
	}
	if cfg.DatagramSize == 0 {
		cfg.DatagramSize = DefaultDatagramSize
	}
	if alloc == nil {
		alloc = &BudgetAllocator{}
	}
	return &Manager{cfg: cfg, alloc: alloc}
}

// Acquire allocates both buffers or neither.
func (m *Manager) Acquire() error {
	if m.Acquired() {
		return ErrDoubleAcquire
	}
	assembly, err := m.alloc.Alloc(m.cfg.AssemblySize)
	if err != nil {
		return fmt.Errorf("assembly buffer: %w", err)
	}
	datagram, err := m.alloc.Alloc(m.cfg.DatagramSize)
	if err != nil {
		m.alloc.Free(assembly)
		return fmt.Errorf("datagram buffer: %w", err)
	}
	m.assembly = assembly
	m.datagram = datagram
	return nil
}

// Release frees whatever is held. Safe to call any number of times.
func (m *Manager) Release() {
	if m.assembly != nil {
		m.alloc.Free(m.assembly)
		m.assembly = nil
	}
	if m.datagram != nil {
		m.alloc.Free(m.datagram)
		m.datagram = nil
	}
}

func (m *Manager) Acquired() bool {
	return m.assembly != nil && m.datagram != nil
}

func (m *Manager) Assembly() []byte {
	return m.assembly
}

func (m *Manager) Datagram() []byte {
	return m.datagram
}

func (m *Manager) Config() Config {
	return m.cfg
}
