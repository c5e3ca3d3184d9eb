package audio

import (
	"math"
	"testing"
)

func TestGenerateWaveform(t *testing.T) {
	for _, tt := range []struct {
		wave  Waveform
		phase float64
		want  float64
	}{
		{WaveSine, 0.25, 1},
		{WaveSine, 0.75, -1},
		{WaveTriangle, 0, -1},
		{WaveTriangle, 0.25, 0},
		{WaveTriangle, 0.5, 1},
		{WaveSaw, 0, -1},
		{WaveSaw, 0.5, 0},
		{WaveSquare, 0.25, 1},
		{WaveSquare, 0.75, -1},
		{WavePulse, 0.1, 1},
		{WavePulse, 0.3, -1},
	} {
		got := generateWaveform(tt.phase, tt.wave, 0.25)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("wave %v phase %v: want %v, got %v", tt.wave, tt.phase, tt.want, got)
		}
	}
}

func TestBandLimitedBounds(t *testing.T) {
	// One cycle of a high note: the polyBLEP correction must stay close to
	// the naive range even right at the discontinuities.
	dt := 4000.0 / sampleRate
	for phase := 0.0; phase < 1; phase += dt / 7 {
		for _, got := range []float64{
			generateBandLimitedSawtooth(phase, dt),
			generateBandLimitedSquare(phase, dt),
			generateBandLimitedPulse(phase, dt, 0.3),
		} {
			if math.Abs(got) > 2 {
				t.Fatalf("band-limited output out of range at phase %v: %v", phase, got)
			}
		}
	}
}

func TestPolyBLEPCorrectionIsLocal(t *testing.T) {
	dt := 440.0 / sampleRate
	if got := polyBLEP(0.5, dt); got != 0 {
		t.Errorf("correction away from edges: want 0, got %v", got)
	}
	if got := polyBLEP(dt/2, dt); got == 0 {
		t.Error("no correction just after the discontinuity")
	}
	if got := polyBLEP(1-dt/2, dt); got == 0 {
		t.Error("no correction just before the discontinuity")
	}
}

func TestWavetableRespectsNyquist(t *testing.T) {
	// With dt = 1/8 only harmonics below 4x the fundamental fit, so a
	// square keeps just its first and third partials.
	dt := 0.125
	for phase := 0.0; phase < 1; phase += 0.01 {
		got := wavetableWaveform(phase, WaveSquare, dt)
		want := 4 / math.Pi * (math.Sin(twoPi*phase) + math.Sin(3*twoPi*phase)/3)
		if math.Abs(got-want) > 1e-9 {
			t.Fatalf("square at phase %v: want %v, got %v", phase, want, got)
		}
	}
}

func TestOversampler(t *testing.T) {
	// The identity function through the oversampler converges on the input.
	o := newOversampler(4)
	id := func(x float64) float64 { return x }
	o.process(0.5, id)
	if want, got := 0.5, o.process(0.5, id); math.Abs(got-want) > 1e-9 {
		t.Errorf("identity through oversampler: want %v, got %v", want, got)
	}

	// Invalid factors fall back to pass-through.
	o = newOversampler(3)
	if want, got := 1, o.factor; want != got {
		t.Errorf("invalid factor: want %v, got %v", want, got)
	}
}

func TestPhaseDistort(t *testing.T) {
	// Zero amount is the identity mapping at the half-way points.
	if want, got := 0.5, phaseDistort(0.5, 0); math.Abs(got-want) > 1e-9 {
		t.Errorf("no distortion: want %v, got %v", want, got)
	}
	// Full amount bends the first half-cycle into the first 5%.
	if got := phaseDistort(0.05, 1); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("full distortion knee: want 0.5, got %v", got)
	}
	// Monotonic over the full range.
	prev := -1.0
	for p := 0.0; p < 1; p += 0.01 {
		got := phaseDistort(p, 0.7)
		if got <= prev {
			t.Fatalf("phase distortion not monotonic at %v", p)
		}
		prev = got
	}
}

func TestAnalogDriftBounded(t *testing.T) {
	d := newAnalogDrift(1)
	for i := 0; i < 100000; i++ {
		if got := d.next(1); math.Abs(got) > 10 {
			t.Fatalf("drift out of range: %v cents", got)
		}
	}
	// Zero depth silences the drift entirely.
	if got := d.next(0); got != 0 {
		t.Errorf("zero-depth drift: want 0, got %v", got)
	}
}
