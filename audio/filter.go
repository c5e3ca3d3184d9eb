package audio

import "math"

// biquad is a direct form 1 second-order section. All the cookbook-style
// filters below are built on it.
type biquad struct {
	b0, b1, b2, a1, a2 float64
	x1, x2, y1, y2     float64
}

func (f *biquad) processSample(x float64) float64 {
	y := f.b0*x + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2
	f.x2, f.x1 = f.x1, x
	f.y2, f.y1 = f.y1, y
	return y
}

func (f *biquad) reset() {
	f.x1, f.x2, f.y1, f.y2 = 0, 0, 0, 0
}

// setCoefficients derives cookbook coefficients for the given response.
// https://www.w3.org/2011/audio/audio-eq-cookbook.html
func (f *biquad) setCoefficients(mode FilterMode, freq, q float64) {
	freq = clamp(freq, 20, 20000)
	if q < 0.1 {
		q = 0.1
	}
	omega := twoPi * freq / sampleRate
	cos := math.Cos(omega)
	sin := math.Sin(omega)
	alpha := sin / (2 * q)

	var b0, b1, b2, a0, a1, a2 float64
	switch mode {
	case ModeLowPass:
		b0 = (1 - cos) / 2
		b1 = 1 - cos
		b2 = b0
	case ModeHighPass:
		b0 = (1 + cos) / 2
		b1 = -(1 + cos)
		b2 = b0
	case ModeBandPass:
		b0 = alpha
		b1 = 0
		b2 = -alpha
	case ModeNotch:
		b0 = 1
		b1 = -2 * cos
		b2 = 1
	}
	a0 = 1 + alpha
	a1 = -2 * cos
	a2 = 1 - alpha

	f.b0 = b0 / a0
	f.b1 = b1 / a0
	f.b2 = b2 / a0
	f.a1 = a1 / a0
	f.a2 = a2 / a0
}

// multimodeFilter is the second-order resonant filter with selectable
// response and keytracking.
type multimodeFilter struct {
	biquad
	mode      FilterMode
	cutoff    float64
	resonance float64
}

func (f *multimodeFilter) update(mode FilterMode, cutoff, resonance float64) {
	if mode == f.mode && cutoff == f.cutoff && resonance == f.resonance {
		return
	}
	f.mode = mode
	f.cutoff = cutoff
	f.resonance = resonance
	f.setCoefficients(mode, cutoff, 0.707+resonance*10)
}

func (f *multimodeFilter) ProcessSample(x float64) float64 { return f.processSample(x) }
func (f *multimodeFilter) Reset()                          { f.reset() }

// sallenKeyFilter is a classic low-pass biquad with Q = 1/(2-2r).
type sallenKeyFilter struct {
	biquad
	cutoff    float64
	resonance float64
}

func (f *sallenKeyFilter) update(cutoff, resonance float64) {
	if cutoff == f.cutoff && resonance == f.resonance {
		return
	}
	f.cutoff = cutoff
	f.resonance = resonance
	resonance = clamp(resonance, 0, 0.98)
	f.setCoefficients(ModeLowPass, cutoff, 1/(2-2*resonance))
}

func (f *sallenKeyFilter) ProcessSample(x float64) float64 { return f.processSample(x) }
func (f *sallenKeyFilter) Reset()                          { f.reset() }

// svfFilter is a topology-preserving state-variable filter. Resonance above
// 0.95 flags self-oscillation; Q is capped at 25.
type svfFilter struct {
	mode            FilterMode
	cutoff          float64
	resonance       float64
	g, k            float64
	ic1eq, ic2eq    float64
	selfOscillating bool
}

func (f *svfFilter) update(mode FilterMode, cutoff, resonance float64) {
	if mode == f.mode && cutoff == f.cutoff && resonance == f.resonance && f.g != 0 {
		return
	}
	f.mode = mode
	f.cutoff = cutoff
	f.resonance = resonance
	f.selfOscillating = resonance > 0.95
	q := 0.5 + resonance*24.5
	if q > 25 {
		q = 25
	}
	f.g = math.Tan(math.Pi * clamp(cutoff, 20, 20000) / sampleRate)
	f.k = 1 / q
}

func (f *svfFilter) ProcessSample(x float64) float64 {
	g, k := f.g, f.k
	a1 := 1 / (1 + g*(g+k))
	a2 := g * a1
	a3 := g * a2
	v3 := x - f.ic2eq
	v1 := a1*f.ic1eq + a2*v3
	v2 := f.ic2eq + a2*f.ic1eq + a3*v3
	f.ic1eq = 2*v1 - f.ic1eq
	f.ic2eq = 2*v2 - f.ic2eq

	low, band, high := v2, v1, x-k*v1-v2
	switch f.mode {
	case ModeHighPass:
		return high
	case ModeBandPass:
		return band
	case ModeNotch:
		return low + high
	default:
		return low
	}
}

func (f *svfFilter) Reset() {
	f.ic1eq, f.ic2eq = 0, 0
}

// formantFilter is a bank of narrow bandpass sections, one per formant.
// Output is the gain-weighted sum, clamped to +-1.
type formant struct {
	freq, bandwidth, gain float64
}

// Fixed 3-formant vowel tables.
var vowelFormants = map[string][3]formant{
	"a": {{800, 80, 1.0}, {1150, 90, 0.63}, {2900, 120, 0.1}},
	"e": {{400, 60, 1.0}, {1600, 80, 0.25}, {2700, 120, 0.35}},
	"i": {{350, 50, 1.0}, {1700, 100, 0.1}, {2700, 120, 0.14}},
	"o": {{450, 70, 1.0}, {800, 80, 0.28}, {2830, 100, 0.08}},
	"u": {{325, 50, 1.0}, {700, 60, 0.16}, {2700, 170, 0.02}},
}

type formantFilter struct {
	vowel string
	bands [3]biquad
	gains [3]float64
}

func (f *formantFilter) update(vowel string) {
	if vowel == f.vowel {
		return
	}
	set, ok := vowelFormants[vowel]
	if !ok {
		set = vowelFormants["a"]
		vowel = "a"
	}
	f.vowel = vowel
	for i, fm := range set {
		f.bands[i].setCoefficients(ModeBandPass, fm.freq, fm.freq/fm.bandwidth)
		f.gains[i] = fm.gain
	}
}

func (f *formantFilter) ProcessSample(x float64) float64 {
	var sum float64
	for i := range f.bands {
		sum += f.gains[i] * f.bands[i].processSample(x)
	}
	return clamp(sum, -1, 1)
}

func (f *formantFilter) Reset() {
	for i := range f.bands {
		f.bands[i].reset()
	}
}

// voiceFilter is the per-voice filter slot. All topologies are pre-allocated
// with the voice arena; the active one is selected by the patch. Coefficients
// are recomputed once per control tick from the config plus whatever the
// filter envelope, LFO routing and keytracking contribute.
type voiceFilter struct {
	cfg      FilterConfig
	noteFreq float64

	// control-tick modulation state
	envValue  float64 // filter envelope output, 0..1
	lfoValue  float64 // routed LFO output, -1..1
	cutoffMod float64 // extra Hz offset from the modulation router

	multimode multimodeFilter
	ladder    ladderFilter
	sallenKey sallenKeyFilter
	svf       svfFilter
	formant   formantFilter
	comb      *combFilter
}

func newVoiceFilter() *voiceFilter {
	return &voiceFilter{comb: newCombFilter()}
}

func (f *voiceFilter) arm(cfg FilterConfig, noteFreq float64) {
	f.cfg = cfg
	f.noteFreq = noteFreq
	f.envValue = 0
	f.lfoValue = 0
	f.cutoffMod = 0
	f.Reset()
	f.tick()
}

// effectiveCutoff folds keytracking and modulation into the configured
// cutoff: envelopes push up to 10kHz, LFOs up to 5kHz, clamped to the
// audible range.
func (f *voiceFilter) effectiveCutoff() float64 {
	cutoff := f.cfg.Cutoff
	cutoff += (f.noteFreq - 440) * f.cfg.Keytracking
	cutoff += f.cfg.EnvAmount * f.envValue * 10000
	cutoff += f.cfg.LFOAmount * f.lfoValue * 5000
	cutoff += f.cutoffMod
	return clamp(cutoff, 20, 20000)
}

// tick recomputes coefficients. Cheap when nothing changed: each topology
// short-circuits on identical parameters.
func (f *voiceFilter) tick() {
	cutoff := f.effectiveCutoff()
	switch f.cfg.Kind {
	case FilterLadder:
		f.ladder.update(cutoff, f.cfg.Resonance, f.cfg.Drive)
	case FilterSallenKey:
		f.sallenKey.update(cutoff, f.cfg.Resonance)
	case FilterSVF:
		f.svf.update(f.cfg.Mode, cutoff, f.cfg.Resonance)
	case FilterFormant:
		f.formant.update(f.cfg.Vowel)
	case FilterComb:
		f.comb.update(1/clamp(cutoff, 20, 20000), f.cfg.Resonance, f.cfg.Drive)
	default:
		f.multimode.update(f.cfg.Mode, cutoff, f.cfg.Resonance)
	}
}

func (f *voiceFilter) ProcessSample(x float64) float64 {
	switch f.cfg.Kind {
	case FilterLadder:
		return f.ladder.ProcessSample(x)
	case FilterSallenKey:
		return f.sallenKey.ProcessSample(x)
	case FilterSVF:
		return f.svf.ProcessSample(x)
	case FilterFormant:
		return f.formant.ProcessSample(x)
	case FilterComb:
		return f.comb.ProcessSample(x)
	default:
		return f.multimode.ProcessSample(x)
	}
}

// Reset clears delay lines and integrator state without touching the
// configuration.
func (f *voiceFilter) Reset() {
	f.multimode.Reset()
	f.ladder.Reset()
	f.sallenKey.Reset()
	f.svf.Reset()
	f.formant.Reset()
	f.comb.Reset()
}
