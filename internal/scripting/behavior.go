package scripting

import (
	"fmt"
	"time"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

const (
	updateFunc      = "update"
	fixedUpdateFunc = "fixed_update"
)

// Script is one loaded Lua behavior. Which capabilities it exposes depends
// on the global functions the script defines: update(dt) and/or
// fixed_update(step), both receiving seconds as numbers.
type Script struct {
	Name string

	vm        *lua.LState
	hasUpdate bool
	hasFixed  bool
	behavior  any
	log       *zap.Logger
}

// LoadScript runs src in a fresh VM and inspects the globals it defines.
func LoadScript(name, src string, log *zap.Logger) (*Script, error) {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState()
	s := &Script{
		Name: name,
		vm:   vm,
		log:  log.With(zap.String("script", name)),
	}
	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	vm.SetGlobal("log", vm.NewFunction(s.luaLog))

	if err := vm.DoString(src); err != nil {
		vm.Close()
		return nil, err
	}
	s.hasUpdate = vm.GetGlobal(updateFunc).Type() == lua.LTFunction
	s.hasFixed = vm.GetGlobal(fixedUpdateFunc).Type() == lua.LTFunction

	switch {
	case s.hasUpdate && s.hasFixed:
		s.behavior = &fullScript{s}
	case s.hasUpdate:
		s.behavior = &updateScript{s}
	case s.hasFixed:
		s.behavior = &fixedScript{s}
	default:
		s.behavior = s
	}
	return s, nil
}

// Behavior returns the stage-facing identity of the script. The dynamic
// type carries exactly the capabilities the script defines; the value is
// the same on every call.
func (s *Script) Behavior() any { return s.behavior }

// Global returns a script global, for inspection and tests.
func (s *Script) Global(name string) lua.LValue { return s.vm.GetGlobal(name) }

func (s *Script) Close() { s.vm.Close() }

func (s *Script) call(fn string, d time.Duration) error {
	err := s.vm.CallByParam(lua.P{
		Fn:      s.vm.GetGlobal(fn),
		NRet:    0,
		Protect: true,
	}, lua.LNumber(d.Seconds()))
	if err != nil {
		return fmt.Errorf("script %s: %s: %w", s.Name, fn, err)
	}
	return nil
}

func (s *Script) luaLog(L *lua.LState) int {
	s.log.Info(L.CheckString(1))
	return 0
}

type updateScript struct{ *Script }

func (u *updateScript) Update(dt time.Duration) error { return u.call(updateFunc, dt) }

type fixedScript struct{ *Script }

func (f *fixedScript) FixedUpdate(step time.Duration) error { return f.call(fixedUpdateFunc, step) }

type fullScript struct{ *Script }

func (f *fullScript) Update(dt time.Duration) error        { return f.call(updateFunc, dt) }
func (f *fullScript) FixedUpdate(step time.Duration) error { return f.call(fixedUpdateFunc, step) }
