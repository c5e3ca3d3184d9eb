package audio

import (
	"math"
	"testing"
)

func TestLFOTempoSync(t *testing.T) {
	l := newLFO(1)
	l.setBPM(120)
	l.setConfig(LFOConfig{Enabled: true, Wave: WaveSine, Sync: true, Division: 1, Depth: 1})

	// 120 BPM, quarter-note division: 2 Hz. A quarter cycle is 0.125 s.
	if want, got := 2.0, l.frequency(); want != got {
		t.Fatalf("synced frequency: want %v, got %v", want, got)
	}
	l.tick(0.125)
	if want, got := 1.0, l.value; math.Abs(got-want) > 1e-9 {
		t.Errorf("sine peak after quarter cycle: want %v, got %v", want, got)
	}

	l.setConfig(LFOConfig{Enabled: true, Wave: WaveSine, Sync: true, Division: 0.5, Depth: 1})
	if want, got := 4.0, l.frequency(); want != got {
		t.Errorf("eighth-note frequency: want %v, got %v", want, got)
	}
}

func TestLFODelay(t *testing.T) {
	l := newLFO(1)
	l.setConfig(LFOConfig{Enabled: true, Wave: WaveSine, Rate: 1, Depth: 1, Delay: 1})
	l.retrigger()

	l.tick(0.5)
	if got := l.value; got != 0 {
		t.Errorf("output before delay elapsed: want 0, got %v", got)
	}
	l.tick(0.75)
	if got := l.value; got == 0 {
		t.Error("output still silent after delay elapsed")
	}
}

func TestLFOFadeIn(t *testing.T) {
	l := newLFO(1)
	l.setConfig(LFOConfig{Enabled: true, Wave: WaveSquare, Rate: 1, Depth: 1, FadeIn: 1})
	l.retrigger()

	// Half a second in: the square sits at -1, faded to half amplitude.
	l.tick(0.5)
	if want, got := -0.5, l.value; math.Abs(got-want) > 1e-9 {
		t.Errorf("faded value: want %v, got %v", want, got)
	}
}

func TestLFOSampleHold(t *testing.T) {
	l := newLFO(1)
	l.setConfig(LFOConfig{Enabled: true, Wave: WaveSampleHold, Rate: 1, Depth: 1})
	l.retrigger()

	l.tick(0.25)
	first := l.value
	l.tick(0.25)
	l.tick(0.25)
	if got := l.value; got != first {
		t.Errorf("held value changed mid-cycle: %v then %v", first, got)
	}
	l.tick(0.3) // crosses the cycle boundary
	if got := l.value; got == first {
		t.Error("held value not renewed after a full cycle")
	}
}

func TestLFODisabled(t *testing.T) {
	l := newLFO(1)
	l.setConfig(LFOConfig{Wave: WaveSine, Rate: 1, Depth: 1})
	l.tick(0.25)
	if got := l.ModValue(); got != 0 {
		t.Errorf("disabled LFO output: want 0, got %v", got)
	}
	if l.ModActive() {
		t.Error("disabled LFO reports active")
	}
}

func TestLFODepth(t *testing.T) {
	l := newLFO(1)
	l.setConfig(LFOConfig{Enabled: true, Wave: WaveSine, Rate: 2, Depth: 0.25})
	l.tick(0.125)
	if want, got := 0.25, l.value; math.Abs(got-want) > 1e-9 {
		t.Errorf("depth-scaled peak: want %v, got %v", want, got)
	}
}

func TestLFOPhaseOffset(t *testing.T) {
	l := newLFO(1)
	l.setConfig(LFOConfig{Enabled: true, Wave: WaveSine, Rate: 1, Depth: 1, Phase: 0.25})
	l.tick(1e-9)
	// Phase offset of a quarter cycle puts the sine at its peak immediately.
	if want, got := 1.0, l.value; math.Abs(got-want) > 1e-6 {
		t.Errorf("phase-offset value: want %v, got %v", want, got)
	}
}
