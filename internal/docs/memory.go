package docs

import (
	"context"
	"fmt"
	"podbrief/internal/core"
	"sync"
)

// Memory is an in-process Writer. It backs dry runs and tests.
type Memory struct {
	mu   sync.Mutex
	docs map[string][]Block
}

// NewMemory creates an empty store of documents.
func NewMemory() *Memory {
	return &Memory{docs: make(map[string][]Block)}
}

// Put replaces the content of docID.
func (m *Memory) Put(docID string, blocks []Block) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[docID] = append([]Block(nil), blocks...)
}

// Blocks returns a copy of docID's content.
func (m *Memory) Blocks(docID string) []Block {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Block(nil), m.docs[docID]...)
}

func (m *Memory) ReadBlocks(ctx context.Context, docID string) ([]Block, error) {
	return m.Blocks(docID), nil
}

func (m *Memory) InsertBlocks(ctx context.Context, docID string, index int, blocks []Block) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing := m.docs[docID]
	if index < 0 || index > len(existing) {
		return fmt.Errorf("insert index %d out of range for %d blocks: %w", index, len(existing), core.ErrNotFound)
	}

	updated := make([]Block, 0, len(existing)+len(blocks))
	updated = append(updated, existing[:index]...)
	updated = append(updated, blocks...)
	updated = append(updated, existing[index:]...)
	m.docs[docID] = updated
	return nil
}

func (m *Memory) AppendBlocks(ctx context.Context, docID string, blocks []Block) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[docID] = append(m.docs[docID], blocks...)
	return nil
}
