package audio

import (
	"math"
	"testing"
)

func countWraps(o *oscillator, n int) int {
	var wraps int
	for i := 0; i < n; i++ {
		if _, w := o.next(false); w {
			wraps++
		}
	}
	return wraps
}

func TestOscillatorFrequency(t *testing.T) {
	o := newOscillator(1)
	o.arm(OscillatorConfig{Enabled: true, Wave: WaveSaw, Gain: 1}, 441, testQuality())

	// One second of samples should wrap the phase once per cycle.
	if want, got := 441, countWraps(o, sampleRate); got < want-1 || got > want+1 {
		t.Errorf("cycles per second: want ~%v, got %v", want, got)
	}
}

func TestOscillatorOctaveAndSemitone(t *testing.T) {
	o := newOscillator(1)
	o.arm(OscillatorConfig{Enabled: true, Wave: WaveSine, Octave: 1}, 220, testQuality())
	if got := countWraps(o, sampleRate); got < 439 || got > 441 {
		t.Errorf("octave up from 220: want ~440 cycles, got %v", got)
	}

	o.arm(OscillatorConfig{Enabled: true, Wave: WaveSine, Semitone: 12}, 220, testQuality())
	if got := countWraps(o, sampleRate); got < 439 || got > 441 {
		t.Errorf("12 semitones up from 220: want ~440 cycles, got %v", got)
	}
}

func TestOscillatorDetune(t *testing.T) {
	o := newOscillator(1)
	o.arm(OscillatorConfig{Enabled: true, Wave: WaveSine, Detune: 100}, 440, testQuality())
	want := 440 * math.Pow(2, 100.0/1200)
	if got := countWraps(o, sampleRate); math.Abs(float64(got)-want) > 2 {
		t.Errorf("one semitone detune: want ~%.0f cycles, got %v", want, got)
	}
}

func TestOscillatorHardSync(t *testing.T) {
	o := newOscillator(1)
	o.arm(OscillatorConfig{Enabled: true, Wave: WaveSaw}, 100, testQuality())
	o.next(false)
	o.next(false)
	if o.phase == 0 {
		t.Fatal("phase did not advance")
	}
	o.next(true)
	// A sync reset pins the phase to the cycle start before generating.
	if got := o.phase; got != o.dt {
		t.Errorf("phase after sync reset: want %v, got %v", o.dt, got)
	}
}

func TestOscillatorQualityCapsOversampling(t *testing.T) {
	o := newOscillator(1)
	q := testQuality() // oversampling 1
	o.arm(OscillatorConfig{Enabled: true, Wave: WaveSaw, Oversample: 8}, 440, q)
	if want, got := 1, o.oversample; want != got {
		t.Errorf("oversample cap: want %v, got %v", want, got)
	}

	q.Oversampling = 4
	o.arm(OscillatorConfig{Enabled: true, Wave: WaveSaw, Oversample: 8}, 440, q)
	if want, got := 4, o.oversample; want != got {
		t.Errorf("oversample cap: want %v, got %v", want, got)
	}

	q.EnablePolyBLEP = false
	o.arm(OscillatorConfig{Enabled: true, Wave: WaveSaw, BandLimited: true}, 440, q)
	if o.polyBLEP {
		t.Error("polyBLEP enabled against the governor's advice")
	}
}

func TestOscillatorFMOutput(t *testing.T) {
	o := newOscillator(1)
	o.arm(OscillatorConfig{
		Enabled: true, Mode: OscFM, Wave: WaveSine, FMRatio: 2, FMIndex: 5,
	}, 440, testQuality())

	var sum float64
	for i := 0; i < sampleRate/10; i++ {
		s, _ := o.next(false)
		if math.Abs(s) > 1 {
			t.Fatalf("fm output out of range: %v", s)
		}
		sum += s * s
	}
	if sum == 0 {
		t.Error("fm oscillator silent")
	}
}
