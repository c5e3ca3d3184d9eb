package audio

import "math"

// ladderFilter is a Moog-style ladder: four cascaded one-pole stages with
// global feedback k = 4*resonance. The input passes through a tanh
// saturation before the ladder. Resonance above 0.95 self-oscillates; the
// final stage is clamped to +-1 there to avoid runaway.
type ladderFilter struct {
	cutoff    float64
	resonance float64
	drive     float64
	g         float64
	k         float64
	stage     [4]float64
}

func (f *ladderFilter) update(cutoff, resonance, drive float64) {
	if cutoff == f.cutoff && resonance == f.resonance && drive == f.drive && f.g != 0 {
		return
	}
	f.cutoff = cutoff
	f.resonance = resonance
	f.drive = drive
	// Trapezoidal integrator coefficient.
	g := math.Tan(math.Pi * clamp(cutoff, 20, 20000) / sampleRate)
	f.g = g / (1 + g)
	f.k = resonance * 4
}

func (f *ladderFilter) ProcessSample(x float64) float64 {
	x = math.Tanh(x * (1 + f.drive*4))
	in := x - f.k*f.stage[3]
	for i := 0; i < 4; i++ {
		f.stage[i] += f.g * (in - f.stage[i])
		in = f.stage[i]
	}
	if f.resonance > 0.95 {
		f.stage[3] = clamp(f.stage[3], -1, 1)
	}
	return f.stage[3]
}

func (f *ladderFilter) Reset() {
	f.stage = [4]float64{}
}
