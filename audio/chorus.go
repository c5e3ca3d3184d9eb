package audio

import "math"

type ChorusParams struct {
	Enabled bool
	Mix     float64 // 0..1
	Rate    float64 // Hz
	Depth   float64 // s of delay modulation, 0..0.01
	Spread  float64 // 0..1, rate offset between the two channel LFOs
}

func (p *ChorusParams) clamp() {
	p.Mix = clamp(p.Mix, 0, 1)
	p.Rate = clamp(p.Rate, 0.05, 5)
	p.Depth = clamp(p.Depth, 0, 0.01)
	p.Spread = clamp(p.Spread, 0, 1)
}

// chorusBaseDelay centers the modulated read position.
const chorusBaseDelay = 0.02 // s

// chorusFX is an LFO-modulated delay line per channel. The right channel's
// LFO runs at a slightly offset rate for stereo width.
type chorusFX struct {
	p      ChorusParams
	bufL   []float64
	bufR   []float64
	pos    int
	phaseL float64
	phaseR float64
}

func newChorusFX(p ChorusParams) *chorusFX {
	// Base delay plus maximum modulation depth, with headroom for the
	// interpolated read.
	span := (chorusBaseDelay + 0.011) * sampleRate
	n := int(span) + 2
	fx := &chorusFX{bufL: make([]float64, n), bufR: make([]float64, n)}
	fx.Update(p)
	return fx
}

func (f *chorusFX) Update(p ChorusParams) {
	p.clamp()
	f.p = p
}

func (f *chorusFX) Process(l, r []float64) {
	n := len(f.bufL)
	rateL := f.p.Rate / sampleRate
	rateR := f.p.Rate * (1 + 0.1*f.p.Spread) / sampleRate
	for i := range l {
		f.bufL[f.pos] = l[i]
		f.bufR[f.pos] = r[i]

		dL := (chorusBaseDelay + f.p.Depth*math.Sin(twoPi*f.phaseL)) * sampleRate
		dR := (chorusBaseDelay + f.p.Depth*math.Sin(twoPi*f.phaseR)) * sampleRate
		l[i] += f.readInterp(f.bufL, dL) * f.p.Mix
		r[i] += f.readInterp(f.bufR, dR) * f.p.Mix

		f.phaseL += rateL
		if f.phaseL >= 1 {
			f.phaseL -= 1
		}
		f.phaseR += rateR
		if f.phaseR >= 1 {
			f.phaseR -= 1
		}
		f.pos++
		if f.pos == n {
			f.pos = 0
		}
	}
}

// readInterp reads delay samples behind the write head with linear
// interpolation for the fractional part.
func (f *chorusFX) readInterp(buf []float64, delay float64) float64 {
	n := len(buf)
	di := int(delay)
	frac := delay - float64(di)
	r0 := f.pos - di
	if r0 < 0 {
		r0 += n
	}
	r1 := r0 - 1
	if r1 < 0 {
		r1 += n
	}
	return buf[r0] + frac*(buf[r1]-buf[r0])
}

func (f *chorusFX) Kind() string      { return "chorus" }
func (f *chorusFX) Enabled() bool     { return f.p.Enabled }
func (f *chorusFX) SetEnabled(b bool) { f.p.Enabled = b }

func (f *chorusFX) UpdateParams(m map[string]float64) {
	p := f.p
	flatBool(m, "enabled", &p.Enabled)
	flatFloat(m, "mix", &p.Mix)
	flatFloat(m, "rate", &p.Rate)
	flatFloat(m, "depth", &p.Depth)
	flatFloat(m, "spread", &p.Spread)
	f.Update(p)
}

func (f *chorusFX) Params() map[string]float64 {
	return map[string]float64{
		"enabled": boolFlat(f.p.Enabled),
		"mix":     f.p.Mix,
		"rate":    f.p.Rate,
		"depth":   f.p.Depth,
		"spread":  f.p.Spread,
	}
}

func (f *chorusFX) Reset() {
	for i := range f.bufL {
		f.bufL[i] = 0
		f.bufR[i] = 0
	}
	f.pos = 0
	f.phaseL = 0
	f.phaseR = 0
}

type PhaserParams struct {
	Enabled  bool
	Mix      float64 // 0..1
	Rate     float64 // Hz
	Depth    float64 // 0..1, sweep width
	Stages   int     // 2..12 all-pass stages
	Feedback float64 // 0..0.9
}

func (p *PhaserParams) clamp() {
	p.Mix = clamp(p.Mix, 0, 1)
	p.Rate = clamp(p.Rate, 0.05, 5)
	p.Depth = clamp(p.Depth, 0, 1)
	p.Stages = clampInt(p.Stages, 2, 12)
	p.Feedback = clamp(p.Feedback, 0, 0.9)
}

const maxPhaserStages = 12

// phaserFX cascades first-order all-pass stages whose corner frequency is
// swept by a single shared LFO, with feedback around the whole cascade.
type phaserFX struct {
	p      PhaserParams
	phase  float64
	stateL [maxPhaserStages]float64
	stateR [maxPhaserStages]float64
	fbL    float64
	fbR    float64
}

func newPhaserFX(p PhaserParams) *phaserFX {
	fx := &phaserFX{}
	fx.Update(p)
	return fx
}

func (f *phaserFX) Update(p PhaserParams) {
	p.clamp()
	f.p = p
}

func (f *phaserFX) Process(l, r []float64) {
	rate := f.p.Rate / sampleRate
	for i := range l {
		// Sweep between 200 Hz and 2 kHz.
		sweep := 200 * math.Pow(10, f.p.Depth*(0.5+0.5*math.Sin(twoPi*f.phase)))
		coef := (math.Tan(math.Pi*sweep/sampleRate) - 1) /
			(math.Tan(math.Pi*sweep/sampleRate) + 1)

		l[i] += f.p.Mix * f.allpass(l[i]+f.fbL*f.p.Feedback, f.stateL[:f.p.Stages], coef, &f.fbL)
		r[i] += f.p.Mix * f.allpass(r[i]+f.fbR*f.p.Feedback, f.stateR[:f.p.Stages], coef, &f.fbR)

		f.phase += rate
		if f.phase >= 1 {
			f.phase -= 1
		}
	}
}

func (f *phaserFX) allpass(x float64, state []float64, coef float64, fb *float64) float64 {
	for s := range state {
		y := coef*x + state[s]
		state[s] = x - coef*y
		x = y
	}
	*fb = x
	return x
}

func (f *phaserFX) Kind() string      { return "phaser" }
func (f *phaserFX) Enabled() bool     { return f.p.Enabled }
func (f *phaserFX) SetEnabled(b bool) { f.p.Enabled = b }

func (f *phaserFX) UpdateParams(m map[string]float64) {
	p := f.p
	flatBool(m, "enabled", &p.Enabled)
	flatFloat(m, "mix", &p.Mix)
	flatFloat(m, "rate", &p.Rate)
	flatFloat(m, "depth", &p.Depth)
	flatInt(m, "stages", &p.Stages)
	flatFloat(m, "feedback", &p.Feedback)
	f.Update(p)
}

func (f *phaserFX) Params() map[string]float64 {
	return map[string]float64{
		"enabled":  boolFlat(f.p.Enabled),
		"mix":      f.p.Mix,
		"rate":     f.p.Rate,
		"depth":    f.p.Depth,
		"stages":   float64(f.p.Stages),
		"feedback": f.p.Feedback,
	}
}

func (f *phaserFX) Reset() {
	f.stateL = [maxPhaserStages]float64{}
	f.stateR = [maxPhaserStages]float64{}
	f.fbL, f.fbR = 0, 0
	f.phase = 0
}
