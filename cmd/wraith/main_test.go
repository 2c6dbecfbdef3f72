package main

import (
	"bytes"
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/wraithgo/wraith/internal/config"
	"github.com/wraithgo/wraith/internal/core/pipeline"
	gonet "github.com/wraithgo/wraith/internal/net"
	"github.com/wraithgo/wraith/internal/net/packet"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestStagesCommandRendersOrder(t *testing.T) {
	dir := t.TempDir()
	orderPath := filepath.Join(dir, "order.yaml")
	writeFile(t, orderPath, "stages:\n  - kind: physics\n    priority: 45\n")
	cfgPath := filepath.Join(dir, "wraith.toml")
	writeFile(t, cfgPath, "[pipeline]\norder_file = \""+filepath.ToSlash(orderPath)+"\"\n\n[network]\nenabled = true\n")

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", cfgPath, "stages"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("stages: %v", err)
	}

	got := out.String()
	for _, want := range []string{"Priority", "physics", "45", "enabled", "disabled"} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q:\n%s", want, got)
		}
	}
	// physics moved after post_update (40) and before render (50).
	if strings.Index(got, "post_update") > strings.Index(got, "physics") {
		t.Fatalf("physics listed before post_update:\n%s", got)
	}
}

func TestStagesCommandBadConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "wraith.toml")
	writeFile(t, cfgPath, "[engine]\noverflow = \"sometimes\"\n")

	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", cfgPath, "stages"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an error for an unknown overflow policy")
	}
}

func TestFramesCommandRejectsBadRunID(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "wraith.toml")
	writeFile(t, cfgPath, "")

	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", cfgPath, "frames", "not-a-uuid"})
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "invalid run id") {
		t.Fatalf("err = %v", err)
	}
}

func TestNewLoggerLevels(t *testing.T) {
	log, err := newLogger(config.LoggingConfig{Level: "debug", Format: "json"}, false)
	if err != nil {
		t.Fatal(err)
	}
	if !log.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("debug level not enabled")
	}

	log, err = newLogger(config.LoggingConfig{Level: "loud", Format: "console"}, true)
	if err != nil {
		t.Fatal(err)
	}
	if log.Core().Enabled(zapcore.DebugLevel) || !log.Core().Enabled(zapcore.InfoLevel) {
		t.Fatal("unknown level should fall back to info")
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(&bytes.Buffer{}) {
		t.Fatal("a buffer is never a terminal")
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Scripting.Dir = t.TempDir()
	cfg.Network.BindAddress = "127.0.0.1:0"
	return cfg
}

func TestEngineTicksScripts(t *testing.T) {
	cfg := testConfig(t)
	writeFile(t, filepath.Join(cfg.Scripting.Dir, "counter.lua"), `
updates = 0
function update(dt)
  updates = updates + 1
end
`)

	eng, err := newEngine(context.Background(), cfg, pipeline.DefaultOrder(), uuid.New(), zap.NewNop())
	if err != nil {
		t.Fatalf("newEngine: %v", err)
	}
	defer eng.Close()

	for i := 0; i < 3; i++ {
		eng.orch.Tick()
	}
	if eng.orch.Frame() != 3 {
		t.Fatalf("frame = %d", eng.orch.Frame())
	}
	got := eng.scripts.Scripts()[0].Global("updates").String()
	if got != "3" {
		t.Fatalf("updates = %s, want 3", got)
	}
}

func TestEngineSetupTimeNotCreditedToFirstFrame(t *testing.T) {
	cfg := testConfig(t)
	// A chunk that takes 300ms to load, fifteen physics steps.
	writeFile(t, filepath.Join(cfg.Scripting.Dir, "slow.lua"), `
local start = os.clock()
while os.clock() - start < 0.3 do end
steps = 0
function fixed_update(step)
  steps = steps + 1
end
`)

	eng, err := newEngine(context.Background(), cfg, pipeline.DefaultOrder(), uuid.New(), zap.NewNop())
	if err != nil {
		t.Fatalf("newEngine: %v", err)
	}
	defer eng.Close()

	eng.orch.Tick()
	if got := eng.physics.Stats().LastRounds; got > 1 {
		t.Fatalf("first frame ran %d physics rounds, want at most 1", got)
	}
	if dt := eng.update.LastDelta(); dt >= 300*time.Millisecond {
		t.Fatalf("first update dt = %v includes setup time", dt)
	}
}

func TestEnginePingOverNetwork(t *testing.T) {
	cfg := testConfig(t)
	cfg.Network.Enabled = true

	eng, err := newEngine(context.Background(), cfg, pipeline.DefaultOrder(), uuid.New(), zap.NewNop())
	if err != nil {
		t.Fatalf("newEngine: %v", err)
	}
	defer eng.Close()

	conn, err := net.Dial("tcp", eng.server.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	w := packet.NewWriter(opPing, nil)
	w.WriteS("hello")
	if err := (gonet.FrameCodec{}).WriteMessage(conn, w.Message()); err != nil {
		t.Fatal(err)
	}

	replies := make(chan gonet.Message, 1)
	go func() {
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		msg, err := (gonet.FrameCodec{}).ReadMessage(conn)
		if err == nil {
			replies <- msg
		}
		close(replies)
	}()

	deadline := time.After(5 * time.Second)
	for {
		select {
		case msg, ok := <-replies:
			if !ok {
				t.Fatal("no reply")
			}
			r := packet.NewReader(msg, nil)
			if r.Opcode() != opPong {
				t.Fatalf("opcode = %#x", r.Opcode())
			}
			// The reply is written inside a tick that has since completed.
			if frame := readFrame(r); frame >= eng.orch.Frame() {
				t.Fatalf("frame = %d, completed = %d", frame, eng.orch.Frame())
			}
			if text := r.ReadS(); text != "hello" {
				t.Fatalf("text = %q", text)
			}
			return
		case <-deadline:
			t.Fatal("timed out waiting for pong")
		default:
			eng.orch.Tick()
			time.Sleep(time.Millisecond)
		}
	}
}

type staticFrames uint64

func (f staticFrames) Frame() uint64 { return uint64(f) }

func TestStatusCarriesFullFrameNumber(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()
	server := gonet.NewClient(a, gonet.FrameCodec{}, 1, nil)
	peer := gonet.NewClient(b, gonet.FrameCodec{}, 2, nil)

	const frame = 1<<33 + 7
	reg := packet.NewRegistry(nil, nil)
	registerHandlers(reg, packet.UTF8, staticFrames(frame))

	errs := make(chan error, 1)
	go func() {
		errs <- reg.Receive(gonet.Inbound{Client: server, Msg: gonet.Message{Opcode: opStatus}})
	}()
	msg, err := peer.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := <-errs; err != nil {
		t.Fatalf("receive: %v", err)
	}
	if got := readFrame(packet.NewReader(msg, nil)); got != frame {
		t.Fatalf("frame = %d, want %d", got, uint64(frame))
	}
}
