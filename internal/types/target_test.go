package types

import (
	"testing"

	"github.com/google/uuid"
)

func TestTargetRefValidate(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name    string
		ref     TargetRef
		wantErr bool
	}{
		{"node", NodeRef(id), false},
		{"edge", EdgeRef(id), false},
		{"unknown kind", TargetRef{Kind: "vertex", ID: id}, true},
		{"nil id", TargetRef{Kind: TargetNode}, true},
		{"zero value", TargetRef{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ref.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseTargetKind(t *testing.T) {
	if k, err := ParseTargetKind("node"); err != nil || k != TargetNode {
		t.Fatalf("ParseTargetKind(node) = %v, %v", k, err)
	}
	if k, err := ParseTargetKind("edge"); err != nil || k != TargetEdge {
		t.Fatalf("ParseTargetKind(edge) = %v, %v", k, err)
	}
	if _, err := ParseTargetKind("relation"); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestTargetRefKeyIsStable(t *testing.T) {
	id := uuid.MustParse("d3b1c1f0-0000-0000-0000-000000000042")
	ref := NodeRef(id)
	want := "node:" + id.String()
	if ref.Key() != want {
		t.Fatalf("Key() = %q, want %q", ref.Key(), want)
	}
	if ref.String() != want {
		t.Fatalf("String() = %q, want %q", ref.String(), want)
	}
}
