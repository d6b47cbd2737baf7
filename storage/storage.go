// Package storage reads and writes single blobs: canned agent payloads and
// exported shopping lists.
package storage

import (
	"context"
	"errors"
	"sync"
)

// Source loads a blob.
type Source interface {
	Load(ctx context.Context) ([]byte, error)
}

// Sink stores a blob, replacing any previous content.
type Sink interface {
	Save(ctx context.Context, data []byte) error
}

// TestObject is a simple in-memory implementation for testing
type TestObject struct {
	mu   sync.Mutex
	data []byte
	err  error
}

func NewTestObject(data []byte) *TestObject {
	return &TestObject{data: data}
}

func NewTestObjectWithError() *TestObject {
	return &TestObject{err: errors.New("not found")}
}

func (t *TestObject) Load(ctx context.Context) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return nil, t.err
	}
	return t.data, nil
}

func (t *TestObject) Save(ctx context.Context, data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return t.err
	}
	t.data = append([]byte(nil), data...)
	return nil
}

// Data returns whatever was last saved.
func (t *TestObject) Data() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.data
}
