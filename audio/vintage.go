package audio

import (
	"math"
	"math/rand"
)

type BBDDelayParams struct {
	Enabled   bool
	Mix       float64 // 0..1
	Stages    int     // bucket count: 256..4096
	ClockRate float64 // Hz: stages/clockRate gives the delay time
	Feedback  float64 // 0..0.9
	Noise     float64 // 0..1, hiss added on the feedback path
}

func (p *BBDDelayParams) clamp() {
	p.Mix = clamp(p.Mix, 0, 1)
	p.Stages = clampInt(p.Stages, 256, 4096)
	p.ClockRate = clamp(p.ClockRate, 2000, 200000)
	p.Feedback = clamp(p.Feedback, 0, 0.9)
	p.Noise = clamp(p.Noise, 0, 1)
}

// bbdDelayFX models a bucket-brigade delay: the delay time falls out of the
// stage count and clock rate, and the feedback path runs through a one-pole
// low-pass (the chip's limited bandwidth) with a little added noise.
type bbdDelayFX struct {
	p    BBDDelayParams
	bufL []float64
	bufR []float64
	pos  int
	lpL  float64
	lpR  float64
	rng  *rand.Rand
}

func newBBDDelayFX(p BBDDelayParams) *bbdDelayFX {
	n := int(maxDelayTime*sampleRate) + 1
	fx := &bbdDelayFX{
		bufL: make([]float64, n),
		bufR: make([]float64, n),
		rng:  rand.New(rand.NewSource(7)),
	}
	fx.Update(p)
	return fx
}

func (f *bbdDelayFX) Update(p BBDDelayParams) {
	p.clamp()
	f.p = p
}

func (f *bbdDelayFX) delaySamples() int {
	t := float64(f.p.Stages) / f.p.ClockRate
	return clampInt(int(t*sampleRate), 1, len(f.bufL)-1)
}

// bandLimit is the BBD's reconstruction filter corner, well below Nyquist.
const bbdBandwidth = 3000.0 // Hz

func (f *bbdDelayFX) Process(l, r []float64) {
	d := f.delaySamples()
	coef := 1 - math.Exp(-twoPi*bbdBandwidth/sampleRate)
	for n := range l {
		read := f.pos - d
		if read < 0 {
			read += len(f.bufL)
		}
		dl, dr := f.bufL[read], f.bufR[read]

		// Feedback path: band-limit, then hiss.
		f.lpL += coef * (dl - f.lpL)
		f.lpR += coef * (dr - f.lpR)
		noiseL := (2*f.rng.Float64() - 1) * f.p.Noise * 0.002
		noiseR := (2*f.rng.Float64() - 1) * f.p.Noise * 0.002
		f.bufL[f.pos] = l[n] + (f.lpL+noiseL)*f.p.Feedback
		f.bufR[f.pos] = r[n] + (f.lpR+noiseR)*f.p.Feedback

		l[n] += dl * f.p.Mix
		r[n] += dr * f.p.Mix
		f.pos++
		if f.pos == len(f.bufL) {
			f.pos = 0
		}
	}
}

func (f *bbdDelayFX) Kind() string      { return "bbd-delay" }
func (f *bbdDelayFX) Enabled() bool     { return f.p.Enabled }
func (f *bbdDelayFX) SetEnabled(b bool) { f.p.Enabled = b }

func (f *bbdDelayFX) UpdateParams(m map[string]float64) {
	p := f.p
	flatBool(m, "enabled", &p.Enabled)
	flatFloat(m, "mix", &p.Mix)
	flatInt(m, "stages", &p.Stages)
	flatFloat(m, "clockrate", &p.ClockRate)
	flatFloat(m, "feedback", &p.Feedback)
	flatFloat(m, "noise", &p.Noise)
	f.Update(p)
}

func (f *bbdDelayFX) Params() map[string]float64 {
	return map[string]float64{
		"enabled":   boolFlat(f.p.Enabled),
		"mix":       f.p.Mix,
		"stages":    float64(f.p.Stages),
		"clockrate": f.p.ClockRate,
		"feedback":  f.p.Feedback,
		"noise":     f.p.Noise,
	}
}

func (f *bbdDelayFX) Reset() {
	for i := range f.bufL {
		f.bufL[i] = 0
		f.bufR[i] = 0
	}
	f.pos = 0
	f.lpL, f.lpR = 0, 0
}

// bbdChorusFX is the chorus run through a BBD model: the modulated delay
// read goes through the same band-limiting low-pass plus hiss.
type bbdChorusFX struct {
	chorus *chorusFX
	lpL    float64
	lpR    float64
	rng    *rand.Rand
}

func newBBDChorusFX(p ChorusParams) *bbdChorusFX {
	return &bbdChorusFX{chorus: newChorusFX(p), rng: rand.New(rand.NewSource(11))}
}

func (f *bbdChorusFX) Update(p ChorusParams) { f.chorus.Update(p) }

func (f *bbdChorusFX) Process(l, r []float64) {
	f.chorus.Process(l, r)
	coef := 1 - math.Exp(-twoPi*bbdBandwidth/sampleRate)
	hiss := f.chorus.p.Mix * 0.001
	for n := range l {
		f.lpL += coef * (l[n] - f.lpL)
		f.lpR += coef * (r[n] - f.lpR)
		l[n] = f.lpL + (2*f.rng.Float64()-1)*hiss
		r[n] = f.lpR + (2*f.rng.Float64()-1)*hiss
	}
}

func (f *bbdChorusFX) Kind() string      { return "bbd-chorus" }
func (f *bbdChorusFX) Enabled() bool     { return f.chorus.Enabled() }
func (f *bbdChorusFX) SetEnabled(b bool) { f.chorus.SetEnabled(b) }

func (f *bbdChorusFX) UpdateParams(m map[string]float64) { f.chorus.UpdateParams(m) }
func (f *bbdChorusFX) Params() map[string]float64        { return f.chorus.Params() }

func (f *bbdChorusFX) Reset() {
	f.chorus.Reset()
	f.lpL, f.lpR = 0, 0
}

type TapeDelayParams struct {
	Enabled    bool
	Mix        float64 // 0..1
	Time       float64 // s
	Feedback   float64 // 0..0.95
	Wow        float64 // 0..1, slow pitch wobble depth
	Flutter    float64 // 0..1, fast pitch wobble depth
	Saturation float64 // 0..1, feedback tanh drive
}

func (p *TapeDelayParams) clamp() {
	p.Mix = clamp(p.Mix, 0, 1)
	p.Time = clamp(p.Time, 0.01, maxDelayTime)
	p.Feedback = clamp(p.Feedback, 0, 0.95)
	p.Wow = clamp(p.Wow, 0, 1)
	p.Flutter = clamp(p.Flutter, 0, 1)
	p.Saturation = clamp(p.Saturation, 0, 1)
}

const (
	wowRate     = 0.5 // Hz
	flutterRate = 6.0 // Hz
)

// tapeDelayFX modulates the read position with combined slow (wow) and fast
// (flutter) sinusoids and saturates the feedback path. Fractional read
// positions are linearly interpolated.
type tapeDelayFX struct {
	p            TapeDelayParams
	bufL         []float64
	bufR         []float64
	pos          int
	wowPhase     float64
	flutterPhase float64
}

func newTapeDelayFX(p TapeDelayParams) *tapeDelayFX {
	n := int((maxDelayTime+0.05)*sampleRate) + 2
	fx := &tapeDelayFX{bufL: make([]float64, n), bufR: make([]float64, n)}
	fx.Update(p)
	return fx
}

func (f *tapeDelayFX) Update(p TapeDelayParams) {
	p.clamp()
	f.p = p
}

func (f *tapeDelayFX) Process(l, r []float64) {
	base := f.p.Time * sampleRate
	drive := 1 + f.p.Saturation*3
	for n := range l {
		mod := f.p.Wow*0.002*math.Sin(twoPi*f.wowPhase) +
			f.p.Flutter*0.0003*math.Sin(twoPi*f.flutterPhase)
		delay := base * (1 + mod)
		delay = clamp(delay, 1, float64(len(f.bufL)-2))

		dl := readFrac(f.bufL, f.pos, delay)
		dr := readFrac(f.bufR, f.pos, delay)

		f.bufL[f.pos] = l[n] + math.Tanh(dl*drive)/drive*f.p.Feedback
		f.bufR[f.pos] = r[n] + math.Tanh(dr*drive)/drive*f.p.Feedback

		l[n] += dl * f.p.Mix
		r[n] += dr * f.p.Mix

		f.wowPhase += wowRate / sampleRate
		if f.wowPhase >= 1 {
			f.wowPhase -= 1
		}
		f.flutterPhase += flutterRate / sampleRate
		if f.flutterPhase >= 1 {
			f.flutterPhase -= 1
		}
		f.pos++
		if f.pos == len(f.bufL) {
			f.pos = 0
		}
	}
}

// readFrac reads delay samples behind pos with linear interpolation.
func readFrac(buf []float64, pos int, delay float64) float64 {
	n := len(buf)
	di := int(delay)
	frac := delay - float64(di)
	r0 := pos - di
	if r0 < 0 {
		r0 += n
	}
	r1 := r0 - 1
	if r1 < 0 {
		r1 += n
	}
	return buf[r0] + frac*(buf[r1]-buf[r0])
}

func (f *tapeDelayFX) Kind() string      { return "tape-delay" }
func (f *tapeDelayFX) Enabled() bool     { return f.p.Enabled }
func (f *tapeDelayFX) SetEnabled(b bool) { f.p.Enabled = b }

func (f *tapeDelayFX) UpdateParams(m map[string]float64) {
	p := f.p
	flatBool(m, "enabled", &p.Enabled)
	flatFloat(m, "mix", &p.Mix)
	flatFloat(m, "time", &p.Time)
	flatFloat(m, "feedback", &p.Feedback)
	flatFloat(m, "wow", &p.Wow)
	flatFloat(m, "flutter", &p.Flutter)
	flatFloat(m, "saturation", &p.Saturation)
	f.Update(p)
}

func (f *tapeDelayFX) Params() map[string]float64 {
	return map[string]float64{
		"enabled":    boolFlat(f.p.Enabled),
		"mix":        f.p.Mix,
		"time":       f.p.Time,
		"feedback":   f.p.Feedback,
		"wow":        f.p.Wow,
		"flutter":    f.p.Flutter,
		"saturation": f.p.Saturation,
	}
}

func (f *tapeDelayFX) Reset() {
	for i := range f.bufL {
		f.bufL[i] = 0
		f.bufR[i] = 0
	}
	f.pos = 0
	f.wowPhase = 0
	f.flutterPhase = 0
}
