package audio

import (
	"math"
	"math/rand"
)

// oscillator is one oscillator slot of a voice. Slots live in the voice arena
// and are re-armed per note instead of allocated.
type oscillator struct {
	cfg      OscillatorConfig
	baseFreq float64
	phase    float64
	dt       float64
	fmPhase  float64
	fmDt     float64
	drift    *analogDrift
	rng      *rand.Rand

	// modulation offsets, written once per control tick
	pitchMod float64 // cents
	gainMod  float64
	pwMod    float64

	oversample int
	polyBLEP   bool
}

func newOscillator(seed int64) *oscillator {
	return &oscillator{
		drift: newAnalogDrift(seed),
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// arm prepares the slot for a new note. quality reflects the CPU governor's
// advice at allocation time and is fixed for the lifetime of the note.
func (o *oscillator) arm(cfg OscillatorConfig, freq float64, q QualitySettings) {
	o.cfg = cfg
	o.phase = cfg.Phase
	if cfg.Mode == OscAnalog && q.EnableAnalogModeling {
		o.phase = randomPhase(o.rng)
	}
	o.fmPhase = 0
	o.pitchMod = 0
	o.gainMod = 0
	o.pwMod = 0
	o.oversample = cfg.Oversample
	if o.oversample > q.Oversampling {
		o.oversample = q.Oversampling
	}
	o.polyBLEP = cfg.BandLimited && q.EnablePolyBLEP
	o.setFrequency(freq)
}

// setFrequency applies octave, semitone and detune on top of the note
// frequency. Called at note-on and again whenever pitch modulation or
// portamento moves the base frequency.
func (o *oscillator) setFrequency(freq float64) {
	o.baseFreq = freq
	cents := o.cfg.Detune + o.pitchMod
	f := freq * math.Pow(2, float64(o.cfg.Octave)) *
		math.Pow(2, float64(o.cfg.Semitone)/12) *
		math.Pow(2, cents/1200)
	o.dt = f / sampleRate
	o.fmDt = f * o.cfg.FMRatio / sampleRate
}

// tick folds control-rate state into the phase increment: analog drift and
// any pitch modulation routed to this oscillator.
func (o *oscillator) tick(analogModeling bool) {
	if o.cfg.Mode == OscAnalog && analogModeling {
		o.pitchMod += o.drift.next(o.cfg.Drift)
	}
	o.setFrequency(o.baseFreq)
}

// next produces one sample. reset hard-syncs the phase (slave oscillators),
// wrapped reports a phase wrap this sample (sync master).
func (o *oscillator) next(reset bool) (out float64, wrapped bool) {
	if reset {
		o.phase = 0
	}
	n := o.oversample
	if n <= 1 {
		out = o.generate(o.phase, o.dt)
		o.phase, wrapped = wrapPhase(o.phase + o.dt)
		return out, wrapped
	}
	// Sub-step at n times the rate and decimate with a moving average.
	dt := o.dt / float64(n)
	var sum float64
	for i := 0; i < n; i++ {
		sum += o.generate(o.phase, dt)
		var w bool
		o.phase, w = wrapPhase(o.phase + dt)
		wrapped = wrapped || w
	}
	return sum / float64(n), wrapped
}

func (o *oscillator) generate(phase, dt float64) float64 {
	pw := clamp(o.cfg.PulseWidth+o.pwMod, 0.01, 0.99)
	switch o.cfg.Mode {
	case OscPhaseDistortion:
		return math.Sin(twoPi * phaseDistort(phase, o.cfg.PDAmount))
	case OscFM:
		mod := math.Sin(twoPi * o.fmPhase)
		o.fmPhase += o.fmDt / float64(max(o.oversample, 1))
		if o.fmPhase >= 1 {
			o.fmPhase -= 1
		}
		return math.Sin(twoPi*phase + o.cfg.FMIndex*mod)
	}
	if o.polyBLEP {
		switch o.cfg.Wave {
		case WaveSaw:
			return generateBandLimitedSawtooth(phase, dt)
		case WaveSquare:
			return generateBandLimitedSquare(phase, dt)
		case WavePulse:
			return generateBandLimitedPulse(phase, dt, pw)
		}
	}
	return generateWaveform(phase, o.cfg.Wave, pw)
}

func (o *oscillator) gain() float64 {
	return clamp(o.cfg.Gain+o.gainMod, 0, 1)
}

func wrapPhase(p float64) (float64, bool) {
	if p >= 1 {
		return p - math.Floor(p), true
	}
	return p, false
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
