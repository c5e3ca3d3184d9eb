package audio

import (
	"math"
	"math/rand"
)

const maxReverbDecay = 2.0 // s

type ReverbParams struct {
	Enabled  bool
	Mix      float64 // 0..1
	Decay    float64 // s
	Damping  float64 // 0..1, high-frequency rolloff exponent
	RoomSize float64 // 0..1, scales pre-delay and wet level
}

func (p *ReverbParams) clamp() {
	p.Mix = clamp(p.Mix, 0, 1)
	p.Decay = clamp(p.Decay, 0.1, maxReverbDecay)
	p.Damping = clamp(p.Damping, 0, 1)
	p.RoomSize = clamp(p.RoomSize, 0, 1)
}

// reverbTapsPerSecond bounds the convolution cost: the impulse response is a
// sparse set of taps rather than a dense tail, so a two second decay costs a
// few hundred multiplies per sample instead of tens of thousands.
const reverbTapsPerSecond = 160

// reverbIR is a synthesized stereo impulse response, shared by every voice's
// reverb unit: shaped noise at jittered tap positions across the decay. The
// response is regenerated only when decay changes; damping edits take effect
// at the next regeneration, matching the lazy-rebuild contract.
type reverbIR struct {
	decay   float64
	damping float64
	taps    []int // sample offsets, ascending
	irL     []float64
	irR     []float64
}

func newReverbIR() *reverbIR {
	return &reverbIR{}
}

func (ir *reverbIR) update(decay, damping float64) {
	ir.damping = damping
	if decay == ir.decay {
		return
	}
	ir.decay = decay
	ir.regenerate()
}

// regenerate places one tap per jittered slot across the decay, each carrying
// shaped noise: noise(x) * ((length-x)/length)^2 * (1 - x/length)^(damping*10).
func (ir *reverbIR) regenerate() {
	length := int(ir.decay * sampleRate)
	if length < 1 {
		length = 1
	}
	count := int(ir.decay * reverbTapsPerSecond)
	if count < 1 {
		count = 1
	}
	if cap(ir.irL) < count {
		ir.taps = make([]int, count)
		ir.irL = make([]float64, count)
		ir.irR = make([]float64, count)
	}
	ir.taps = ir.taps[:count]
	ir.irL = ir.irL[:count]
	ir.irR = ir.irR[:count]
	rng := rand.New(rand.NewSource(1))
	spacing := float64(length) / float64(count)
	fl := float64(length)
	for i := 0; i < count; i++ {
		pos := int(float64(i)*spacing + rng.Float64()*spacing)
		if pos >= length {
			pos = length - 1
		}
		ir.taps[i] = pos
		x := float64(pos)
		shape := math.Pow((fl-x)/fl, 2) * math.Pow(1-x/fl, ir.damping*10)
		ir.irL[i] = (2*rng.Float64() - 1) * shape
		ir.irR[i] = (2*rng.Float64() - 1) * shape
	}
}

// reverbFX convolves the input with the shared sparse impulse response. Each
// unit owns its input history; the response itself is shared.
type reverbFX struct {
	p    ReverbParams
	ir   *reverbIR
	hisL []float64
	hisR []float64
	pos  int
}

func newReverbFX(p ReverbParams, ir *reverbIR) *reverbFX {
	n := int(maxReverbDecay*sampleRate) + 1
	fx := &reverbFX{ir: ir, hisL: make([]float64, n), hisR: make([]float64, n)}
	fx.Update(p)
	return fx
}

func (f *reverbFX) Update(p ReverbParams) {
	p.clamp()
	f.p = p
	f.ir.update(p.Decay, p.Damping)
}

func (f *reverbFX) Process(l, r []float64) {
	taps, irL, irR := f.ir.taps, f.ir.irL, f.ir.irR
	if len(taps) == 0 {
		return
	}
	wet := f.p.Mix * (0.3 + 0.7*f.p.RoomSize) / math.Sqrt(float64(len(taps)))
	n := len(f.hisL)
	for i := range l {
		f.hisL[f.pos] = l[i]
		f.hisR[f.pos] = r[i]
		var accL, accR float64
		for j, tap := range taps {
			read := f.pos - tap
			if read < 0 {
				read += n
			}
			accL += f.hisL[read] * irL[j]
			accR += f.hisR[read] * irR[j]
		}
		l[i] += accL * wet
		r[i] += accR * wet
		f.pos++
		if f.pos == n {
			f.pos = 0
		}
	}
}

func (f *reverbFX) Kind() string      { return "reverb" }
func (f *reverbFX) Enabled() bool     { return f.p.Enabled }
func (f *reverbFX) SetEnabled(b bool) { f.p.Enabled = b }

func (f *reverbFX) UpdateParams(m map[string]float64) {
	p := f.p
	flatBool(m, "enabled", &p.Enabled)
	flatFloat(m, "mix", &p.Mix)
	flatFloat(m, "decay", &p.Decay)
	flatFloat(m, "damping", &p.Damping)
	flatFloat(m, "roomsize", &p.RoomSize)
	f.Update(p)
}

func (f *reverbFX) Params() map[string]float64 {
	return map[string]float64{
		"enabled":  boolFlat(f.p.Enabled),
		"mix":      f.p.Mix,
		"decay":    f.p.Decay,
		"damping":  f.p.Damping,
		"roomsize": f.p.RoomSize,
	}
}

func (f *reverbFX) Reset() {
	for i := range f.hisL {
		f.hisL[i] = 0
		f.hisR[i] = 0
	}
	f.pos = 0
}
