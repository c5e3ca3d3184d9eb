package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mrdg/tonic/audio"
	"github.com/mrdg/tonic/dub"
)

func testEnv() *env {
	return &env{engine: audio.NewEngine(audio.DefaultConfig(), audio.NewCPUMonitor())}
}

func TestEvalPlayStop(t *testing.T) {
	env := testEnv()

	result, err := env.eval("play 60 0.9")
	if err != nil {
		t.Fatal(err)
	}
	id, ok := result.(dub.Int)
	if !ok || id <= 0 {
		t.Fatalf("expected a voice id, got %v", result)
	}
	if _, err := env.eval(fmt.Sprintf("stop %d", id)); err != nil {
		t.Fatal(err)
	}

	result, err = env.eval("play [60 64 67]")
	if err != nil {
		t.Fatal(err)
	}
	ids, ok := result.(dub.Array)
	if !ok {
		t.Fatalf("expected an array of voice ids, got %v", result)
	}
	if want, got := 3, len(ids); want != got {
		t.Errorf("voice ids: want %v, got %v", want, got)
	}
	if _, err := env.eval("stopall"); err != nil {
		t.Fatal(err)
	}
}

func TestEvalSetGet(t *testing.T) {
	env := testEnv()

	if _, err := env.eval("set filter.cutoff 2000"); err != nil {
		t.Fatal(err)
	}
	result, err := env.eval("get filter.cutoff")
	if err != nil {
		t.Fatal(err)
	}
	if want, got := dub.Float(2000), result; want != got {
		t.Errorf("want %v, got %v", want, got)
	}

	if _, err := env.eval("set level -12"); err != nil {
		t.Fatal(err)
	}
	if result, _ := env.eval("get level"); result != dub.Float(-12) {
		t.Errorf("want -12, got %v", result)
	}
}

func TestEvalErrors(t *testing.T) {
	env := testEnv()
	for _, input := range []string{
		"nonsense 1",
		"stop",
		"set filter.cutoff",
		"set nope 1",
		"preset nope",
		"play x",
	} {
		if _, err := env.eval(input); err == nil {
			t.Errorf("expected error for input: %q", input)
		}
	}
}

func TestEvalPreset(t *testing.T) {
	env := testEnv()
	if _, err := env.eval("preset acid"); err != nil {
		t.Fatal(err)
	}
	result, err := env.eval("get filter.kind")
	if err != nil {
		t.Fatal(err)
	}
	if want, got := dub.Float(audio.FilterLadder), result; want != got {
		t.Errorf("want %v, got %v", want, got)
	}
}

func TestFxCommand(t *testing.T) {
	env := testEnv()

	if _, err := env.eval("fx 0 delay mix 0.25 enabled 1"); err != nil {
		t.Fatal(err)
	}
	chain := env.engine.SaveChain()
	if want, got := 1, len(chain.Slots); want != got {
		t.Fatalf("chain slots: want %v, got %v", want, got)
	}
	slot := chain.Slots[0]
	if want, got := "delay", slot.Kind; want != got {
		t.Errorf("slot kind: want %v, got %v", want, got)
	}
	if want, got := 0.25, slot.Parameters["mix"]; want != got {
		t.Errorf("slot mix: want %v, got %v", want, got)
	}

	if _, err := env.eval(`fx 0 ""`); err != nil {
		t.Fatal(err)
	}
	if got := len(env.engine.SaveChain().Slots); got != 0 {
		t.Errorf("slots after clear: want 0, got %v", got)
	}

	if _, err := env.eval("fx 1 warble"); err == nil {
		t.Error("expected an error for an unknown effect kind")
	}
}

func TestChainSaveLoad(t *testing.T) {
	file := filepath.Join(t.TempDir(), "chain.json")

	env := testEnv()
	if _, err := env.eval("fx 2 reverb decay 1.5"); err != nil {
		t.Fatal(err)
	}
	if _, err := env.eval(fmt.Sprintf("chain-save %q", file)); err != nil {
		t.Fatal(err)
	}

	env = testEnv()
	if _, err := env.eval(fmt.Sprintf("chain-load %q", file)); err != nil {
		t.Fatal(err)
	}
	chain := env.engine.SaveChain()
	if want, got := 1, len(chain.Slots); want != got {
		t.Fatalf("chain slots: want %v, got %v", want, got)
	}
	if want, got := "reverb", chain.Slots[0].Kind; want != got {
		t.Errorf("slot kind: want %v, got %v", want, got)
	}
	if want, got := 2, chain.Slots[0].Position; want != got {
		t.Errorf("slot position: want %v, got %v", want, got)
	}
}

func TestBounceCommand(t *testing.T) {
	file := filepath.Join(t.TempDir(), "out.wav")

	env := testEnv()
	if _, err := env.eval(fmt.Sprintf("bounce %q 1 [60 64]", file)); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(file)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() <= 44 {
		t.Errorf("bounce produced no audio: %d bytes", info.Size())
	}
}

func TestRenderState(t *testing.T) {
	env := testEnv()
	var buf bytes.Buffer
	renderState(env.engine, &buf)
	out := buf.String()
	for _, want := range []string{"bpm", "osc1", "filter", "amp"} {
		if !strings.Contains(out, want) {
			t.Errorf("state output missing %q:\n%s", want, out)
		}
	}
}
