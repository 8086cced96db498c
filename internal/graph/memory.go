package graph

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/yungbote/veracity-backend/internal/platform/apierr"
	"github.com/yungbote/veracity-backend/internal/types"
)

// MemoryStore is an in-process Store for tests and graphless local runs.
type MemoryStore struct {
	mu            sync.RWMutex
	targets       map[string]*TargetInfo
	credibilities map[uuid.UUID]float64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		targets:       map[string]*TargetInfo{},
		credibilities: map[uuid.UUID]float64{},
	}
}

func (m *MemoryStore) PutTarget(ref types.TargetRef, isLevel0 bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.targets[ref.Key()] = &TargetInfo{Ref: ref, IsLevel0: isLevel0}
}

func (m *MemoryStore) PutNodeCredibility(nodeID uuid.UUID, credibility float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.credibilities[nodeID] = credibility
}

func (m *MemoryStore) GetTarget(_ context.Context, ref types.TargetRef) (*TargetInfo, error) {
	if err := ref.Validate(); err != nil {
		return nil, apierr.Validation("invalid target: %v", err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	info, ok := m.targets[ref.Key()]
	if !ok {
		return nil, apierr.NotFound("target %s not found", ref)
	}
	cp := *info
	return &cp, nil
}

func (m *MemoryStore) GetRelatedNodeCredibilities(_ context.Context, nodeIDs []uuid.UUID) ([]float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	creds := make([]float64, 0, len(nodeIDs))
	for _, id := range nodeIDs {
		if c, ok := m.credibilities[id]; ok {
			creds = append(creds, c)
		} else {
			creds = append(creds, 1.0)
		}
	}
	return creds, nil
}
