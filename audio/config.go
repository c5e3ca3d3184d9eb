package audio

import "math"

const (
	blockSize  = 64 // control tick size in samples, ~1.45ms at 44.1kHz
	sampleRate = 44100
	bufferSize = 512
)

// Waveform selects the shared waveform function used by oscillators and LFOs.
type Waveform int

const (
	WaveSine Waveform = iota
	WaveTriangle
	WaveSaw
	WaveSquare
	WavePulse
	WaveNoise
	WaveSampleHold // LFO only: random value held for a full cycle
)

// OscMode selects the synthesis algorithm of an oscillator slot.
type OscMode int

const (
	OscClassic OscMode = iota
	OscPhaseDistortion
	OscFM
	OscAnalog // classic with drift and phase randomization
)

type OscillatorConfig struct {
	Enabled     bool
	Wave        Waveform
	Mode        OscMode
	Octave      int     // -3..3
	Semitone    int     // -12..12
	Detune      float64 // cents
	Gain        float64 // 0..1
	PulseWidth  float64 // 0..1, pulse only
	Phase       float64 // 0..1 initial phase offset
	Sync        bool    // hard-sync to oscillator 1
	RingMod     bool    // multiply with oscillator 1
	Oversample  int     // 1, 2, 4 or 8
	BandLimited bool    // PolyBLEP correction for saw/square/pulse
	PDAmount    float64 // phase distortion amount, 0..1
	FMRatio     float64 // modulator/carrier frequency ratio
	FMIndex     float64 // modulation index
	Drift       float64 // analog drift depth, 0..1
}

type FilterKind int

const (
	FilterMultimode FilterKind = iota
	FilterLadder
	FilterSallenKey
	FilterSVF
	FilterFormant
	FilterComb
)

type FilterMode int

const (
	ModeLowPass FilterMode = iota
	ModeHighPass
	ModeBandPass
	ModeNotch
)

type FilterConfig struct {
	Enabled     bool
	Kind        FilterKind
	Mode        FilterMode
	Cutoff      float64 // 20..20000 Hz
	Resonance   float64 // 0..1
	Drive       float64 // 0..1
	Keytracking float64 // 0..1
	EnvAmount   float64 // -1..1
	LFOAmount   float64 // -1..1
	Vowel       string  // formant only: a, e, i, o, u
}

type CurveKind int

const (
	CurveLinear CurveKind = iota
	CurveExponential
)

type ADSREnvelopeParams struct {
	Attack      float64 // 0..10 s
	Decay       float64 // 0..10 s
	Sustain     float64 // 0..1
	Release     float64 // 0..10 s
	Curve       CurveKind
	Sensitivity float64 // velocity sensitivity, 0..1
}

// EnvelopePoint is one breakpoint of the multi-stage envelope. Points are
// sorted ascending by time and the first point is pinned to time 0.
type EnvelopePoint struct {
	Time  float64
	Value float64
	Curve CurveKind
}

type LFOConfig struct {
	Enabled  bool
	Wave     Waveform
	Rate     float64 // Hz, free-running
	Sync     bool    // derive rate from BPM and Division
	Division float64 // multiplier of a quarter note: 1 = quarter, 0.5 = eighth
	Depth    float64 // 0..1
	Delay    float64 // s before output starts
	FadeIn   float64 // s of linear amplitude ramp after the delay
	Phase    float64 // 0..1
}

// ModulationSlot wires a registered source to a registered target. A slot is
// only live while both ends are registered with the router.
type ModulationSlot struct {
	Enabled bool
	Source  string
	Dest    string
	Depth   float64 // -1..1
	Bipolar bool    // false takes the absolute source value
}

const maxModSlots = 16

type VoiceMode int

const (
	ModePoly VoiceMode = iota
	ModeMono
	ModeLegato
)

type UnisonConfig struct {
	Voices int     // 1..7 oscillator copies per enabled slot
	Detune float64 // cents of spread across copies
	Spread float64 // 0..1 stereo spread
}

type ArpMode int

const (
	ArpUp ArpMode = iota
	ArpDown
	ArpUpDown
	ArpRandom
)

type ArpConfig struct {
	Enabled  bool
	Mode     ArpMode
	Division float64 // fraction of a quarter note per step
	Octaves  int     // 1..4
}

// SynthesizerVoiceConfig is the authoritative, serializable patch. The engine
// holds exactly one live copy in an atomic.Value, replaced wholesale on every
// update so the render thread sees either the old or the new patch.
type SynthesizerVoiceConfig struct {
	Oscillators [4]OscillatorConfig
	Filter      FilterConfig
	AmpEnv      ADSREnvelopeParams
	FilterEnv   ADSREnvelopeParams
	// FilterEnvPoints replaces the ADSR filter envelope with a breakpoint
	// envelope when it holds two or more points. FilterEnv.Release still
	// sets the release time.
	FilterEnvPoints []EnvelopePoint
	LFOs            [3]LFOConfig
	Delay           DelayParams
	Reverb          ReverbParams
	Chorus          ChorusParams
	Phaser          PhaserParams
	Distortion      DistortionParams
	ModSlots        []ModulationSlot
	Unison          UnisonConfig
	Portamento      float64 // glide time in seconds
	Arp             ArpConfig
	VoiceMode       VoiceMode
	Polyphony       int     // 1..32
	Tuning          float64 // cents, applied to note->frequency conversion
	Level           float64 // output gain in dB
}

func DefaultConfig() SynthesizerVoiceConfig {
	c := SynthesizerVoiceConfig{
		AmpEnv:    ADSREnvelopeParams{Attack: 0.005, Decay: 0.1, Sustain: 0.8, Release: 0.2},
		FilterEnv: ADSREnvelopeParams{Attack: 0.005, Decay: 0.3, Sustain: 0.5, Release: 0.2},
		Filter:    FilterConfig{Cutoff: 8000, Resonance: 0.2, Vowel: "a"},
		Unison:    UnisonConfig{Voices: 1, Detune: 8, Spread: 0.5},
		Arp:       ArpConfig{Division: 0.25, Octaves: 1},
		Polyphony: 16,
		Level:     -6,
	}
	c.Oscillators[0] = OscillatorConfig{
		Enabled: true, Wave: WaveSaw, Gain: 0.8, PulseWidth: 0.5,
		Oversample: 1, BandLimited: true, FMRatio: 2, FMIndex: 1,
	}
	for i := 1; i < len(c.Oscillators); i++ {
		c.Oscillators[i] = OscillatorConfig{
			Wave: WaveSaw, Gain: 0.8, PulseWidth: 0.5,
			Oversample: 1, BandLimited: true, FMRatio: 2, FMIndex: 1,
		}
	}
	for i := range c.LFOs {
		c.LFOs[i] = LFOConfig{Wave: WaveSine, Rate: 2, Division: 1, Depth: 0.5}
	}
	c.Delay = DelayParams{Mix: 0.3, Time: 0.4, Feedback: 0.35, Width: 1, Division: 0.5}
	c.Reverb = ReverbParams{Mix: 0.3, Decay: 1.5, Damping: 0.5, RoomSize: 0.7}
	c.Chorus = ChorusParams{Mix: 0.4, Rate: 0.6, Depth: 0.004, Spread: 1}
	c.Phaser = PhaserParams{Mix: 0.4, Rate: 0.4, Depth: 0.7, Stages: 6, Feedback: 0.3}
	c.Distortion = DistortionParams{Mix: 0.5, Drive: 0.4, Shape: ShapeSoft, Tone: 4000}
	return c
}

// clampConfig brings every parameter into its documented range. Out-of-range
// values are clamped rather than rejected so a live tweak never errors.
func clampConfig(c *SynthesizerVoiceConfig) {
	for i := range c.Oscillators {
		o := &c.Oscillators[i]
		if o.Wave < WaveSine || o.Wave > WaveNoise {
			o.Wave = WaveSine
		}
		if o.Mode < OscClassic || o.Mode > OscAnalog {
			o.Mode = OscClassic
		}
		o.Octave = clampInt(o.Octave, -3, 3)
		o.Semitone = clampInt(o.Semitone, -12, 12)
		o.Detune = clamp(o.Detune, -100, 100)
		o.Gain = clamp(o.Gain, 0, 1)
		o.PulseWidth = clamp(o.PulseWidth, 0.01, 0.99)
		o.Phase = clamp(o.Phase, 0, 1)
		o.PDAmount = clamp(o.PDAmount, 0, 1)
		o.FMRatio = clamp(o.FMRatio, 0.25, 16)
		o.FMIndex = clamp(o.FMIndex, 0, 10)
		o.Drift = clamp(o.Drift, 0, 1)
		switch o.Oversample {
		case 1, 2, 4, 8:
		default:
			o.Oversample = 1
		}
	}
	f := &c.Filter
	if f.Kind < FilterMultimode || f.Kind > FilterComb {
		f.Kind = FilterMultimode
	}
	if f.Mode < ModeLowPass || f.Mode > ModeNotch {
		f.Mode = ModeLowPass
	}
	f.Cutoff = clamp(f.Cutoff, 20, 20000)
	f.Resonance = clamp(f.Resonance, 0, 1)
	f.Drive = clamp(f.Drive, 0, 1)
	f.Keytracking = clamp(f.Keytracking, 0, 1)
	f.EnvAmount = clamp(f.EnvAmount, -1, 1)
	f.LFOAmount = clamp(f.LFOAmount, -1, 1)
	clampEnv(&c.AmpEnv)
	clampEnv(&c.FilterEnv)
	if len(c.FilterEnvPoints) > maxEnvelopePoints {
		c.FilterEnvPoints = c.FilterEnvPoints[:maxEnvelopePoints]
	}
	for i := range c.FilterEnvPoints {
		p := &c.FilterEnvPoints[i]
		p.Time = clamp(p.Time, 0, 10)
		p.Value = clamp(p.Value, 0, 1)
	}
	for i := range c.LFOs {
		l := &c.LFOs[i]
		if l.Wave < WaveSine || l.Wave > WaveSampleHold {
			l.Wave = WaveSine
		}
		l.Rate = clamp(l.Rate, 0.01, 50)
		l.Division = clamp(l.Division, 1.0/16, 8)
		l.Depth = clamp(l.Depth, 0, 1)
		l.Delay = clamp(l.Delay, 0, 10)
		l.FadeIn = clamp(l.FadeIn, 0, 10)
		l.Phase = clamp(l.Phase, 0, 1)
	}
	if len(c.ModSlots) > maxModSlots {
		c.ModSlots = c.ModSlots[:maxModSlots]
	}
	for i := range c.ModSlots {
		c.ModSlots[i].Depth = clamp(c.ModSlots[i].Depth, -1, 1)
	}
	c.Delay.clamp()
	c.Reverb.clamp()
	c.Chorus.clamp()
	c.Phaser.clamp()
	c.Distortion.clamp()
	c.Unison.Voices = clampInt(c.Unison.Voices, 1, 7)
	c.Unison.Detune = clamp(c.Unison.Detune, 0, 100)
	c.Unison.Spread = clamp(c.Unison.Spread, 0, 1)
	c.Portamento = clamp(c.Portamento, 0, 10)
	if c.Arp.Mode < ArpUp || c.Arp.Mode > ArpRandom {
		c.Arp.Mode = ArpUp
	}
	c.Arp.Division = clamp(c.Arp.Division, 1.0/16, 4)
	c.Arp.Octaves = clampInt(c.Arp.Octaves, 1, 4)
	c.Polyphony = clampInt(c.Polyphony, 1, 32)
	c.Tuning = clamp(c.Tuning, -100, 100)
	c.Level = clamp(c.Level, -40, 10)
}

func clampEnv(p *ADSREnvelopeParams) {
	p.Attack = clamp(p.Attack, 0.001, 10)
	p.Decay = clamp(p.Decay, 0.001, 10)
	p.Sustain = clamp(p.Sustain, 0, 1)
	p.Release = clamp(p.Release, 0.001, 10)
	p.Sensitivity = clamp(p.Sensitivity, 0, 1)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func midiToFreq(note int, tuningCents float64) float64 {
	return 440 * math.Pow(2, (float64(note-69)+tuningCents/100)/12)
}
