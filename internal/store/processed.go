package store

import (
	"context"
	"fmt"
)

// DefaultProcessedKey is the key holding processed meeting IDs.
const DefaultProcessedKey = "PROCESSED_MEETINGS"

// ProcessedSet tracks meeting IDs that completed processing.
type ProcessedSet struct {
	store FlagStore
	key   string
}

// NewProcessedSet creates a set stored under key.
func NewProcessedSet(store FlagStore, key string) *ProcessedSet {
	if key == "" {
		key = DefaultProcessedKey
	}
	return &ProcessedSet{store: store, key: key}
}

// Key returns the storage key.
func (p *ProcessedSet) Key() string {
	return p.key
}

// List returns the processed IDs in insertion order.
func (p *ProcessedSet) List(ctx context.Context) ([]string, error) {
	ids, err := p.store.Get(ctx, p.key)
	if err != nil {
		return nil, fmt.Errorf("failed to read processed meetings: %w", err)
	}
	return ids, nil
}

// Snapshot returns the processed IDs as a lookup set.
func (p *ProcessedSet) Snapshot(ctx context.Context) (map[string]bool, error) {
	ids, err := p.List(ctx)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// Contains reports whether meetingID was processed.
func (p *ProcessedSet) Contains(ctx context.Context, meetingID string) (bool, error) {
	set, err := p.Snapshot(ctx)
	if err != nil {
		return false, err
	}
	return set[meetingID], nil
}

// MarkProcessed adds meetingID to the set. Marking twice is a no-op.
func (p *ProcessedSet) MarkProcessed(ctx context.Context, meetingID string) error {
	ids, err := p.List(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if id == meetingID {
			return nil
		}
	}
	if err := p.store.Set(ctx, p.key, append(ids, meetingID)); err != nil {
		return fmt.Errorf("failed to mark meeting %s as processed: %w", meetingID, err)
	}
	return nil
}

// Reset forgets every processed meeting.
func (p *ProcessedSet) Reset(ctx context.Context) error {
	if err := p.store.Delete(ctx, p.key); err != nil {
		return fmt.Errorf("failed to clear processed meetings: %w", err)
	}
	return nil
}
