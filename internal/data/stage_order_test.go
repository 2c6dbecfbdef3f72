package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/wraithgo/wraith/internal/core/pipeline"
)

func TestLoadStageOrderOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stage_order.yaml")
	body := `
stages:
  - kind: physics
    priority: 15
    note: run physics before variable-rate updates
  - kind: audio
    priority: 55
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	base := pipeline.DefaultOrder()
	order, err := LoadStageOrder(path, base)
	if err != nil {
		t.Fatalf("LoadStageOrder: %v", err)
	}
	if p := order.MustPriority(pipeline.KindPhysics); p != 15 {
		t.Fatalf("physics = %d, want 15", p)
	}
	if p := order.MustPriority(pipeline.Kind("audio")); p != 55 {
		t.Fatalf("audio = %d, want 55", p)
	}
	if order.MustPriority(pipeline.KindRender) != base.MustPriority(pipeline.KindRender) {
		t.Fatal("render priority should be inherited from base")
	}
	if base.MustPriority(pipeline.KindPhysics) == 15 {
		t.Fatal("base order was modified")
	}
}

func TestParseStageOrderRejectsBadInput(t *testing.T) {
	tests := map[string]string{
		"duplicate":  "stages:\n  - {kind: physics, priority: 1}\n  - {kind: physics, priority: 2}\n",
		"empty kind": "stages:\n  - {priority: 1}\n",
		"not yaml":   "stages: [",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseStageOrder([]byte(body), pipeline.DefaultOrder()); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadStageOrderMissingFile(t *testing.T) {
	if _, err := LoadStageOrder(filepath.Join(t.TempDir(), "nope.yaml"), pipeline.DefaultOrder()); err == nil {
		t.Fatal("expected error")
	}
}
