package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Engine loads Lua behavior scripts. Each script gets its own VM so one
// script's globals cannot clobber another's. Frame goroutine only.
type Engine struct {
	scripts []*Script
	log     *zap.Logger
}

// NewEngine loads every .lua file under dir, in lexical order. A missing
// directory yields an empty engine.
func NewEngine(dir string, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{log: log}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return e, nil
		}
		return nil, fmt.Errorf("read scripts dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(dir, name)
		src, err := os.ReadFile(path)
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		s, err := LoadScript(strings.TrimSuffix(name, ".lua"), string(src), log)
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		e.scripts = append(e.scripts, s)
		log.Debug("loaded lua script",
			zap.String("file", path),
			zap.Bool("update", s.hasUpdate),
			zap.Bool("fixed_update", s.hasFixed),
		)
	}
	return e, nil
}

// Scripts returns the loaded scripts in load order.
func (e *Engine) Scripts() []*Script {
	out := make([]*Script, len(e.scripts))
	copy(out, e.scripts)
	return out
}

// Behaviors returns one behavior per script, ready to enable on stages.
func (e *Engine) Behaviors() []any {
	out := make([]any, 0, len(e.scripts))
	for _, s := range e.scripts {
		out = append(out, s.Behavior())
	}
	return out
}

func (e *Engine) Close() {
	for _, s := range e.scripts {
		s.Close()
	}
	e.scripts = nil
}
