package repository

import (
	"context"
	"sync"

	"leasebot/internal/model"
)

// MemoryRepository keeps records in process memory. Useful for tests and
// single-instance deployments that do not need durability.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string]*model.RequirementRecord
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[string]*model.RequirementRecord)}
}

// Save stores a deep copy so callers cannot mutate stored state afterwards.
func (r *MemoryRepository) Save(_ context.Context, record *model.RequirementRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[record.ConversationID] = record.Clone()
	return nil
}

// Load returns a copy of the stored record, or (nil, nil) when absent.
func (r *MemoryRepository) Load(_ context.Context, conversationID string) (*model.RequirementRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[conversationID]
	if !ok {
		return nil, nil
	}
	return record.Clone(), nil
}

// Close is a no-op for the in-memory repository.
func (r *MemoryRepository) Close() error {
	return nil
}
