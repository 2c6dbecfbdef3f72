package data

import (
	"fmt"
	"os"

	"github.com/wraithgo/wraith/internal/core/pipeline"
	"gopkg.in/yaml.v3"
)

// StageOrderEntry assigns a priority to a stage kind.
type StageOrderEntry struct {
	Kind     string `yaml:"kind"`
	Priority int    `yaml:"priority"`
	Note     string `yaml:"note"`
}

type stageOrderFile struct {
	Stages []StageOrderEntry `yaml:"stages"`
}

// LoadStageOrder reads stage_order.yaml and overlays its entries on base.
// Kinds absent from the file keep their base priority; new kinds are added.
func LoadStageOrder(path string, base pipeline.Order) (pipeline.Order, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return pipeline.Order{}, fmt.Errorf("read stage order: %w", err)
	}
	return ParseStageOrder(raw, base)
}

// ParseStageOrder is LoadStageOrder for in-memory YAML.
func ParseStageOrder(raw []byte, base pipeline.Order) (pipeline.Order, error) {
	var f stageOrderFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return pipeline.Order{}, fmt.Errorf("parse stage order: %w", err)
	}
	seen := make(map[string]bool, len(f.Stages))
	order := base
	for _, e := range f.Stages {
		if e.Kind == "" {
			return pipeline.Order{}, fmt.Errorf("stage order: entry with empty kind")
		}
		if seen[e.Kind] {
			return pipeline.Order{}, fmt.Errorf("stage order: duplicate kind %q", e.Kind)
		}
		seen[e.Kind] = true
		order = order.With(pipeline.Kind(e.Kind), pipeline.Priority(e.Priority))
	}
	return order, nil
}
