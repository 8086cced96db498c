package graph

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/veracity-backend/internal/platform/apierr"
	"github.com/yungbote/veracity-backend/internal/types"
)

func TestMemoryStoreGetTarget(t *testing.T) {
	store := NewMemoryStore()
	axiom := types.NodeRef(uuid.New())
	claim := types.EdgeRef(uuid.New())
	store.PutTarget(axiom, true)
	store.PutTarget(claim, false)

	info, err := store.GetTarget(context.Background(), axiom)
	if err != nil {
		t.Fatalf("GetTarget: %v", err)
	}
	if !info.IsLevel0 {
		t.Fatal("axiom should be level 0")
	}

	info, err = store.GetTarget(context.Background(), claim)
	if err != nil {
		t.Fatalf("GetTarget: %v", err)
	}
	if info.IsLevel0 {
		t.Fatal("edge should not be level 0")
	}

	_, err = store.GetTarget(context.Background(), types.NodeRef(uuid.New()))
	if !apierr.HasCode(err, apierr.CodeNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}

	_, err = store.GetTarget(context.Background(), types.TargetRef{})
	if !apierr.HasCode(err, apierr.CodeValidation) {
		t.Fatalf("expected validation_error, got %v", err)
	}
}

func TestMemoryStoreUnknownNodesCountAsFullyCredible(t *testing.T) {
	store := NewMemoryStore()
	known := uuid.New()
	store.PutNodeCredibility(known, 0.65)

	creds, err := store.GetRelatedNodeCredibilities(context.Background(), []uuid.UUID{known, uuid.New()})
	if err != nil {
		t.Fatalf("GetRelatedNodeCredibilities: %v", err)
	}
	if len(creds) != 2 {
		t.Fatalf("expected 2 credibilities, got %d", len(creds))
	}
	if creds[0] != 0.65 {
		t.Fatalf("known node credibility = %v, want 0.65", creds[0])
	}
	if creds[1] != 1.0 {
		t.Fatalf("unknown node credibility = %v, want 1.0", creds[1])
	}
}
