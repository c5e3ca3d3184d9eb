package audio

// combFilter is a single delay line with damped feedback:
// state = state*(1-damping) + delayed*damping, out = in + state*feedback.
type combFilter struct {
	buf      []float64
	pos      int
	delay    int
	feedback float64
	damping  float64
	state    float64
}

// Longest supported comb delay: one period of 20 Hz.
const maxCombDelay = sampleRate / 20

func newCombFilter() *combFilter {
	return &combFilter{buf: make([]float64, maxCombDelay)}
}

func (f *combFilter) update(delayTime, feedback, damping float64) {
	n := int(delayTime * sampleRate)
	f.delay = clampInt(n, 1, len(f.buf)-1)
	f.feedback = clamp(feedback, 0, 0.99)
	f.damping = clamp(damping, 0, 1)
}

func (f *combFilter) ProcessSample(x float64) float64 {
	read := f.pos - f.delay
	if read < 0 {
		read += len(f.buf)
	}
	delayed := f.buf[read]
	f.state = f.state*(1-f.damping) + delayed*f.damping
	out := x + f.state*f.feedback
	f.buf[f.pos] = out
	f.pos++
	if f.pos == len(f.buf) {
		f.pos = 0
	}
	return out
}

func (f *combFilter) Reset() {
	for i := range f.buf {
		f.buf[i] = 0
	}
	f.state = 0
	f.pos = 0
}
