package audio

import "math"

type DistortionShape int

const (
	ShapeSoft DistortionShape = iota
	ShapeHard
	ShapeTube
	ShapeTape
)

type DistortionParams struct {
	Enabled bool
	Mix     float64 // 0..1
	Drive   float64 // 0..1
	Shape   DistortionShape
	Tone    float64 // Hz, post low-pass
}

func (p *DistortionParams) clamp() {
	p.Mix = clamp(p.Mix, 0, 1)
	p.Drive = clamp(p.Drive, 0, 1)
	if p.Shape < ShapeSoft || p.Shape > ShapeTape {
		p.Shape = ShapeSoft
	}
	p.Tone = clamp(p.Tone, 200, 20000)
}

// curveSize is the resolution of the precomputed transfer curve.
const curveSize = 44100

// distortionFX applies a precomputed nonlinear transfer curve followed by a
// one-pole low-pass tone filter. The curve runs through the 2x oversampler
// to keep the shaper's own aliasing down.
type distortionFX struct {
	p     DistortionParams
	curve []float64
	toneL float64
	toneR float64
	ovsL  *oversampler
	ovsR  *oversampler
}

func newDistortionFX(p DistortionParams) *distortionFX {
	fx := &distortionFX{
		curve: make([]float64, curveSize),
		ovsL:  newOversampler(2),
		ovsR:  newOversampler(2),
	}
	fx.p.Drive = -1 // force first rebuild
	fx.Update(p)
	return fx
}

func (f *distortionFX) Update(p DistortionParams) {
	p.clamp()
	rebuild := p.Drive != f.p.Drive || p.Shape != f.p.Shape
	f.p = p
	if rebuild {
		f.buildCurve()
	}
}

// buildCurve samples the shaping function across [-1,1].
func (f *distortionFX) buildCurve() {
	k := 1 + f.p.Drive*24
	for i := range f.curve {
		x := 2*float64(i)/float64(curveSize-1) - 1
		f.curve[i] = shapeSample(x, k, f.p.Shape)
	}
}

func shapeSample(x, k float64, shape DistortionShape) float64 {
	switch shape {
	case ShapeHard:
		return clamp(x*k, -1, 1)
	case ShapeTube:
		// Asymmetric: soft on top, harder on the bottom half.
		if x >= 0 {
			return math.Tanh(x * k)
		}
		return math.Tanh(x*k*1.5) * 0.9
	case ShapeTape:
		return math.Tanh(x*k) * (1 - 0.1*math.Abs(x))
	default:
		return math.Tanh(x * k)
	}
}

func (f *distortionFX) shape(x float64) float64 {
	x = clamp(x, -1, 1)
	idx := int((x + 1) / 2 * float64(curveSize-1))
	return f.curve[idx]
}

func (f *distortionFX) Process(l, r []float64) {
	toneCoef := 1 - math.Exp(-twoPi*f.p.Tone/sampleRate)
	for n := range l {
		wetL := f.ovsL.process(l[n], f.shape)
		wetR := f.ovsR.process(r[n], f.shape)
		f.toneL += toneCoef * (wetL - f.toneL)
		f.toneR += toneCoef * (wetR - f.toneR)
		l[n] = l[n]*(1-f.p.Mix) + f.toneL*f.p.Mix
		r[n] = r[n]*(1-f.p.Mix) + f.toneR*f.p.Mix
	}
}

func (f *distortionFX) Kind() string      { return "distortion" }
func (f *distortionFX) Enabled() bool     { return f.p.Enabled }
func (f *distortionFX) SetEnabled(b bool) { f.p.Enabled = b }

func (f *distortionFX) UpdateParams(m map[string]float64) {
	p := f.p
	flatBool(m, "enabled", &p.Enabled)
	flatFloat(m, "mix", &p.Mix)
	flatFloat(m, "drive", &p.Drive)
	var shape int
	shape = int(p.Shape)
	flatInt(m, "shape", &shape)
	p.Shape = DistortionShape(shape)
	flatFloat(m, "tone", &p.Tone)
	f.Update(p)
}

func (f *distortionFX) Params() map[string]float64 {
	return map[string]float64{
		"enabled": boolFlat(f.p.Enabled),
		"mix":     f.p.Mix,
		"drive":   f.p.Drive,
		"shape":   float64(f.p.Shape),
		"tone":    f.p.Tone,
	}
}

func (f *distortionFX) Reset() {
	f.toneL, f.toneR = 0, 0
	f.ovsL.reset()
	f.ovsR.reset()
}

type BitcrusherParams struct {
	Enabled       bool
	Mix           float64 // 0..1
	BitDepth      int     // 1..16
	RateReduction float64 // 0..1, fraction of the sample rate kept
}

func (p *BitcrusherParams) clamp() {
	p.Mix = clamp(p.Mix, 0, 1)
	p.BitDepth = clampInt(p.BitDepth, 1, 16)
	p.RateReduction = clamp(p.RateReduction, 0.01, 1)
}

// bitcrusherFX quantizes to 2^bits levels and holds each quantized sample
// for round(1/rateReduction) ticks (sample-and-hold decimation).
type bitcrusherFX struct {
	p     BitcrusherParams
	holdL float64
	holdR float64
	count int
}

func newBitcrusherFX(p BitcrusherParams) *bitcrusherFX {
	fx := &bitcrusherFX{}
	fx.Update(p)
	return fx
}

func (f *bitcrusherFX) Update(p BitcrusherParams) {
	p.clamp()
	f.p = p
}

func (f *bitcrusherFX) Process(l, r []float64) {
	levels := math.Pow(2, float64(f.p.BitDepth))
	hold := int(math.Round(1 / f.p.RateReduction))
	if hold < 1 {
		hold = 1
	}
	for n := range l {
		if f.count <= 0 {
			f.holdL = quantize(l[n], levels)
			f.holdR = quantize(r[n], levels)
			f.count = hold
		}
		f.count--
		l[n] = l[n]*(1-f.p.Mix) + f.holdL*f.p.Mix
		r[n] = r[n]*(1-f.p.Mix) + f.holdR*f.p.Mix
	}
}

// quantize maps x to the nearest of `levels` steps across [-1,1].
func quantize(x, levels float64) float64 {
	x = clamp(x, -1, 1)
	step := 2 / (levels - 1)
	if levels <= 2 {
		// 1-bit: sign only.
		if x >= 0 {
			return 1
		}
		return -1
	}
	return clamp(math.Round(x/step)*step, -1, 1)
}

func (f *bitcrusherFX) Kind() string      { return "bitcrusher" }
func (f *bitcrusherFX) Enabled() bool     { return f.p.Enabled }
func (f *bitcrusherFX) SetEnabled(b bool) { f.p.Enabled = b }

func (f *bitcrusherFX) UpdateParams(m map[string]float64) {
	p := f.p
	flatBool(m, "enabled", &p.Enabled)
	flatFloat(m, "mix", &p.Mix)
	flatInt(m, "bitdepth", &p.BitDepth)
	flatFloat(m, "ratereduction", &p.RateReduction)
	f.Update(p)
}

func (f *bitcrusherFX) Params() map[string]float64 {
	return map[string]float64{
		"enabled":       boolFlat(f.p.Enabled),
		"mix":           f.p.Mix,
		"bitdepth":      float64(f.p.BitDepth),
		"ratereduction": f.p.RateReduction,
	}
}

func (f *bitcrusherFX) Reset() {
	f.holdL, f.holdR = 0, 0
	f.count = 0
}
