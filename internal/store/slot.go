package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/renameio/v2"
)

// DefaultSlotName is the name of the single durable slot holding all points.
const DefaultSlotName = "lieferkarte_points_v1"

// quarantineStamp names quarantined copies so that they sort by time.
const quarantineStamp = "20060102T150405.000000000Z"

// Slot is one named, durable blob. Load returns nil data and no error when the
// slot has never been written. Quarantine keeps a copy of content that is about to be
// overwritten because it could not be decoded.
type Slot interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Quarantine(ctx context.Context, data []byte) error
}

// FileSlot keeps the slot in a single file. Saves are atomic replacements through
// renameio, so readers see either the old or the new content.
type FileSlot struct {
	path string
}

// NewFileSlot returns a slot backed by the file at path.
func NewFileSlot(path string) *FileSlot {
	return &FileSlot{path: path}
}

// DefaultFilePath returns <user config dir>/waypoint/<name>.json.
func DefaultFilePath(name string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user config dir: %w", err)
	}

	return filepath.Join(dir, "waypoint", name+".json"), nil
}

// Path returns the file backing the slot.
func (f *FileSlot) Path() string {
	return f.path
}

func (f *FileSlot) Load(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read slot file: %w", err)
	}

	return data, nil
}

func (f *FileSlot) Save(_ context.Context, data []byte) error {
	if err := f.writeAtomic(f.path, data); err != nil {
		return fmt.Errorf("failed to replace slot file: %w", err)
	}

	return nil
}

// Quarantine writes data next to the slot file as <file>.corrupt-<timestamp>.
func (f *FileSlot) Quarantine(_ context.Context, data []byte) error {
	path := f.path + ".corrupt-" + time.Now().UTC().Format(quarantineStamp)
	if err := f.writeAtomic(path, data); err != nil {
		return fmt.Errorf("failed to quarantine slot file: %w", err)
	}

	return nil
}

func (f *FileSlot) writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	if err := renameio.WriteFile(path, data, 0o600); err != nil {
		return err
	}

	// the rename is only durable once the directory entry is on disk
	return syncDir(dir)
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("open directory: %w", err)
	}
	defer d.Close()

	if err = d.Sync(); err != nil {
		return fmt.Errorf("sync directory: %w", err)
	}

	return nil
}

// MemorySlot keeps the slot in process memory.
type MemorySlot struct {
	mu          sync.RWMutex
	data        []byte
	quarantined [][]byte
}

// NewMemorySlot returns a slot preloaded with data. Pass nil for a never-written slot.
func NewMemorySlot(data []byte) *MemorySlot {
	return &MemorySlot{data: cloneBytes(data)}
}

func (m *MemorySlot) Load(_ context.Context) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return cloneBytes(m.data), nil
}

func (m *MemorySlot) Save(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = cloneBytes(data)

	return nil
}

func (m *MemorySlot) Quarantine(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.quarantined = append(m.quarantined, cloneBytes(data))

	return nil
}

// Quarantined returns the copies kept by Quarantine, oldest first.
func (m *MemorySlot) Quarantined() [][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([][]byte, 0, len(m.quarantined))
	for _, data := range m.quarantined {
		out = append(out, cloneBytes(data))
	}

	return out
}

func cloneBytes(data []byte) []byte {
	if data == nil {
		return nil
	}

	return append([]byte(nil), data...)
}
