// Package storage provides content-addressed storage of serialized entities,
// such as ciphertexts and evaluation keys.
package storage

import (
	"context"
	"encoding"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"github.com/zeebo/blake3"
)

var (
	// ErrNotFound is returned when no entity has the given handle.
	ErrNotFound = errors.New("entity not found")
	// ErrStorageFull is returned when a store is out of capacity.
	ErrStorageFull = errors.New("storage capacity exceeded")
	// ErrInvalidHandle is returned when a handle is not a valid content hash.
	ErrInvalidHandle = errors.New("invalid entity handle")
	// ErrCorrupted is returned when stored data does not match its handle.
	ErrCorrupted = errors.New("stored entity does not match its handle")
)

// handleLength is the length of a hex encoded BLAKE3-256 digest.
const handleLength = 64

// Handle identifies an entity by the BLAKE3 hash of its serialization.
type Handle string

// ComputeHandle returns the handle of data.
func ComputeHandle(data []byte) Handle {
	sum := blake3.Sum256(data)
	return Handle(hex.EncodeToString(sum[:]))
}

// Validate returns an error wrapping ErrInvalidHandle if h is not a hex encoded digest.
func (h Handle) Validate() error {
	if len(h) != handleLength {
		return fmt.Errorf("%w: length %v", ErrInvalidHandle, len(h))
	}
	if _, err := hex.DecodeString(string(h)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidHandle, err)
	}
	return nil
}

// Store saves and loads serialized entities.
// Implementations are safe for concurrent use.
type Store interface {
	// Put saves data and returns its handle.
	// Saving the same data twice is a no-op.
	Put(ctx context.Context, data []byte) (Handle, error)
	// Get returns the data saved under h.
	Get(ctx context.Context, h Handle) ([]byte, error)
	// Delete removes the data saved under h.
	Delete(ctx context.Context, h Handle) error
	// Exists returns whether data is saved under h.
	Exists(ctx context.Context, h Handle) (bool, error)
	// Close releases the resources of the store.
	Close() error
}

// PutEntity serializes e and saves it to s.
func PutEntity(ctx context.Context, s Store, e encoding.BinaryMarshaler) (Handle, error) {
	data, err := e.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("marshal entity: %w", err)
	}
	return s.Put(ctx, data)
}

// GetEntity loads the entity saved under h from s and deserializes it to e.
// It returns an error wrapping ErrCorrupted if the data does not hash to h.
func GetEntity(ctx context.Context, s Store, h Handle, e encoding.BinaryUnmarshaler) error {
	if err := h.Validate(); err != nil {
		return err
	}
	data, err := s.Get(ctx, h)
	if err != nil {
		return err
	}
	if ComputeHandle(data) != h {
		return fmt.Errorf("%w: %v", ErrCorrupted, h)
	}
	if err := e.UnmarshalBinary(data); err != nil {
		return fmt.Errorf("unmarshal entity %v: %w", h, err)
	}
	return nil
}

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	mu       sync.RWMutex
	data     map[Handle][]byte
	capacity int64
	size     int64
}

// NewMemoryStore returns an empty MemoryStore holding at most capacity bytes.
// If capacity is zero, it is unbounded.
func NewMemoryStore(capacity int64) *MemoryStore {
	return &MemoryStore{
		data:     make(map[Handle][]byte),
		capacity: capacity,
	}
}

// Put implements the [Store] interface.
func (s *MemoryStore) Put(ctx context.Context, data []byte) (Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := ComputeHandle(data)
	if _, ok := s.data[h]; ok {
		return h, nil
	}

	if s.capacity > 0 && s.size+int64(len(data)) > s.capacity {
		return "", fmt.Errorf("%w: %v of %v bytes used", ErrStorageFull, s.size, s.capacity)
	}

	s.data[h] = append([]byte(nil), data...)
	s.size += int64(len(data))
	return h, nil
}

// Get implements the [Store] interface.
func (s *MemoryStore) Get(ctx context.Context, h Handle) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.data[h]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, h)
	}
	return append([]byte(nil), data...), nil
}

// Delete implements the [Store] interface.
func (s *MemoryStore) Delete(ctx context.Context, h Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.data[h]
	if !ok {
		return fmt.Errorf("%w: %v", ErrNotFound, h)
	}
	s.size -= int64(len(data))
	delete(s.data, h)
	return nil
}

// Exists implements the [Store] interface.
func (s *MemoryStore) Exists(ctx context.Context, h Handle) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.data[h]
	return ok, nil
}

// Size returns the number of bytes held.
func (s *MemoryStore) Size() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size
}

// Close implements the [Store] interface.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[Handle][]byte)
	s.size = 0
	return nil
}
