package audio

import (
	"math"
	"math/rand"
)

const twoPi = 2 * math.Pi

// generateWaveform returns the naive waveform value for phase in [0,1).
// Saw, square and pulse carry hard edges; callers that care about aliasing
// add the polyBLEP correction on top (see generateBandLimited*).
func generateWaveform(phase float64, wave Waveform, pulseWidth float64) float64 {
	switch wave {
	case WaveSine:
		return math.Sin(twoPi * phase)
	case WaveTriangle:
		if phase < 0.5 {
			return 4*phase - 1
		}
		return 3 - 4*phase
	case WaveSaw:
		return 2*phase - 1
	case WaveSquare:
		if phase < 0.5 {
			return 1
		}
		return -1
	case WavePulse:
		if phase < pulseWidth {
			return 1
		}
		return -1
	case WaveNoise:
		return 2*rand.Float64() - 1
	default:
		return 0
	}
}

// polyBLEP is a 2nd-degree polynomial approximation of the band-limited step,
// applied around each discontinuity within one sample period. dt is the phase
// increment per sample. Returns the correction to add to the naive waveform.
func polyBLEP(phase, dt float64) float64 {
	if phase < dt {
		t := phase / dt
		return 2*t - t*t - 1
	}
	if phase > 1-dt {
		t := (phase - 1) / dt
		return t*t + 2*t + 1
	}
	return 0
}

func generateBandLimitedSawtooth(phase, dt float64) float64 {
	return 2*phase - 1 - polyBLEP(phase, dt)
}

func generateBandLimitedSquare(phase, dt float64) float64 {
	return generateBandLimitedPulse(phase, dt, 0.5)
}

// generateBandLimitedPulse corrects the rising edge at phase 0 and the
// falling edge at the duty-cycle boundary.
func generateBandLimitedPulse(phase, dt, width float64) float64 {
	var v float64 = -1
	if phase < width {
		v = 1
	}
	v += polyBLEP(phase, dt)
	fall := phase - width
	if fall < 0 {
		fall += 1
	}
	v -= polyBLEP(fall, dt)
	return v
}

// wavetable additively sums up to maxHarmonics partials below Nyquist.
// Saw: 1/n all harmonics (2/pi). Square: 1/n odd only (4/pi). Triangle:
// 1/n^2 odd only with alternating sign (8/pi^2).
const maxHarmonics = 64

func wavetableWaveform(phase float64, wave Waveform, dt float64) float64 {
	nyquist := 0.5 / dt
	var sum float64
	switch wave {
	case WaveSaw:
		for n := 1; n <= maxHarmonics && float64(n) < nyquist; n++ {
			sum += math.Sin(twoPi*float64(n)*phase) / float64(n)
		}
		return 2 / math.Pi * sum
	case WaveSquare:
		for n := 1; n <= maxHarmonics && float64(n) < nyquist; n += 2 {
			sum += math.Sin(twoPi*float64(n)*phase) / float64(n)
		}
		return 4 / math.Pi * sum
	case WaveTriangle:
		sign := 1.0
		for n := 1; n <= maxHarmonics && float64(n) < nyquist; n += 2 {
			sum += sign * math.Sin(twoPi*float64(n)*phase) / float64(n*n)
			sign = -sign
		}
		return 8 / (math.Pi * math.Pi) * sum
	default:
		return generateWaveform(phase, wave, 0.5)
	}
}

// oversampler runs a process function at 2x, 4x or 8x the sample rate:
// linear upsample, process, then moving-average low-pass and decimate.
type oversampler struct {
	factor int
	up     []float64
	last   float64
}

func newOversampler(factor int) *oversampler {
	switch factor {
	case 2, 4, 8:
	default:
		factor = 1
	}
	return &oversampler{factor: factor, up: make([]float64, 8)}
}

func (o *oversampler) process(x float64, fn func(float64) float64) float64 {
	if o.factor == 1 {
		return fn(x)
	}
	n := o.factor
	step := (x - o.last) / float64(n)
	for i := 0; i < n; i++ {
		o.up[i] = fn(o.last + step*float64(i+1))
	}
	o.last = x
	var sum float64
	for i := 0; i < n; i++ {
		sum += o.up[i]
	}
	return sum / float64(n)
}

func (o *oversampler) reset() {
	o.last = 0
}

// phaseDistort warps the phase before waveform lookup, bending the first
// segment towards 0 the way CZ-style phase distortion does.
func phaseDistort(phase, amount float64) float64 {
	knee := 0.5 - amount*0.45
	if phase < knee {
		return phase * 0.5 / knee
	}
	return 0.5 + (phase-knee)*0.5/(1-knee)
}

// analogDrift models vintage oscillator instability: a slow random walk on
// pitch plus a tiny amount of per-sample jitter. Values are cents.
type analogDrift struct {
	value  float64
	target float64
	count  int
	rng    *rand.Rand
}

func newAnalogDrift(seed int64) *analogDrift {
	return &analogDrift{rng: rand.New(rand.NewSource(seed))}
}

// next returns the current drift in cents for the given depth (0..1).
func (d *analogDrift) next(depth float64) float64 {
	if d.count <= 0 {
		d.target = (2*d.rng.Float64() - 1) * 6
		d.count = 2048 + d.rng.Intn(2048)
	}
	d.count--
	d.value += (d.target - d.value) * 0.0005
	jitter := (2*d.rng.Float64() - 1) * 0.3
	return depth * (d.value + jitter)
}

// randomPhase gives analog-style oscillators a randomized start phase.
func randomPhase(rng *rand.Rand) float64 {
	return rng.Float64()
}
