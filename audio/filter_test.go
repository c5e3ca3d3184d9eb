package audio

import (
	"math"
	"testing"
)

// rms runs n samples of a sine at freq through process and reports the output
// level over the second half, once the filter has settled.
func filterRMS(process func(float64) float64, freq float64, n int) float64 {
	var sum float64
	var count int
	for i := 0; i < n; i++ {
		x := math.Sin(twoPi * freq * float64(i) / sampleRate)
		y := process(x)
		if i >= n/2 {
			sum += y * y
			count++
		}
	}
	return math.Sqrt(sum / float64(count))
}

func TestMultimodeLowPass(t *testing.T) {
	f := newVoiceFilter()
	f.arm(FilterConfig{Enabled: true, Kind: FilterMultimode, Mode: ModeLowPass, Cutoff: 1000}, 440)

	low := filterRMS(f.ProcessSample, 200, 8192)
	f.Reset()
	high := filterRMS(f.ProcessSample, 8000, 8192)

	if low < 0.5 {
		t.Errorf("passband attenuated: rms %v", low)
	}
	if high > 0.2 {
		t.Errorf("stopband leaked: rms %v", high)
	}
}

func TestMultimodeHighPass(t *testing.T) {
	f := newVoiceFilter()
	f.arm(FilterConfig{Enabled: true, Kind: FilterMultimode, Mode: ModeHighPass, Cutoff: 1000}, 440)

	low := filterRMS(f.ProcessSample, 100, 8192)
	f.Reset()
	high := filterRMS(f.ProcessSample, 8000, 8192)

	if high < 0.5 {
		t.Errorf("passband attenuated: rms %v", high)
	}
	if low > 0.2 {
		t.Errorf("stopband leaked: rms %v", low)
	}
}

func TestLadderLowPass(t *testing.T) {
	f := newVoiceFilter()
	f.arm(FilterConfig{Enabled: true, Kind: FilterLadder, Cutoff: 800, Resonance: 0.3}, 440)

	low := filterRMS(f.ProcessSample, 100, 8192)
	f.Reset()
	high := filterRMS(f.ProcessSample, 10000, 8192)

	if low < 0.2 {
		t.Errorf("ladder passband attenuated: rms %v", low)
	}
	if high > 0.1 {
		t.Errorf("ladder stopband leaked: rms %v", high)
	}
}

func TestLadderStableAtHighResonance(t *testing.T) {
	f := newVoiceFilter()
	f.arm(FilterConfig{Enabled: true, Kind: FilterLadder, Cutoff: 2000, Resonance: 1, Drive: 1}, 440)

	for i := 0; i < sampleRate; i++ {
		y := f.ProcessSample(math.Sin(twoPi * 500 * float64(i) / sampleRate))
		if math.IsNaN(y) || math.Abs(y) > 4 {
			t.Fatalf("ladder unstable at sample %d: %v", i, y)
		}
	}
}

func TestSVFModes(t *testing.T) {
	f := newVoiceFilter()
	f.arm(FilterConfig{Enabled: true, Kind: FilterSVF, Mode: ModeBandPass, Cutoff: 1000, Resonance: 0.5}, 440)

	center := filterRMS(f.ProcessSample, 1000, 8192)
	f.Reset()
	away := filterRMS(f.ProcessSample, 100, 8192)

	if center < away {
		t.Errorf("bandpass center quieter than skirt: %v vs %v", center, away)
	}
}

func TestSVFStableAtExtremes(t *testing.T) {
	f := newVoiceFilter()
	f.arm(FilterConfig{Enabled: true, Kind: FilterSVF, Mode: ModeLowPass, Cutoff: 20000, Resonance: 1}, 440)

	for i := 0; i < sampleRate/2; i++ {
		y := f.ProcessSample(math.Sin(twoPi * 5000 * float64(i) / sampleRate))
		if math.IsNaN(y) || math.IsInf(y, 0) {
			t.Fatalf("svf blew up at sample %d", i)
		}
	}
}

func TestFormantVowels(t *testing.T) {
	for _, vowel := range []string{"a", "e", "i", "o", "u"} {
		f := newVoiceFilter()
		f.arm(FilterConfig{Enabled: true, Kind: FilterFormant, Vowel: vowel}, 440)
		out := filterRMS(f.ProcessSample, 440, 4096)
		if out == 0 {
			t.Errorf("vowel %s silent", vowel)
		}
		for i := 0; i < 1000; i++ {
			if y := f.ProcessSample(1); math.Abs(y) > 1 {
				t.Fatalf("vowel %s exceeded clamp: %v", vowel, y)
			}
		}
	}
}

func TestFormantUnknownVowel(t *testing.T) {
	var f formantFilter
	f.update("x")
	if want, got := "a", f.vowel; want != got {
		t.Errorf("unknown vowel fallback: want %v, got %v", want, got)
	}
}

func TestFilterEnvelopePushesCutoff(t *testing.T) {
	f := newVoiceFilter()
	f.arm(FilterConfig{Enabled: true, Kind: FilterMultimode, Cutoff: 500, EnvAmount: 1}, 440)

	base := f.effectiveCutoff()
	f.envValue = 1
	if want, got := base+10000, f.effectiveCutoff(); want != got {
		t.Errorf("env push: want %v, got %v", want, got)
	}

	f.envValue = 0
	f.lfoValue = 1
	f.cfg.LFOAmount = 1
	if want, got := base+5000, f.effectiveCutoff(); want != got {
		t.Errorf("lfo push: want %v, got %v", want, got)
	}
}

func TestEffectiveCutoffClamped(t *testing.T) {
	f := newVoiceFilter()
	f.arm(FilterConfig{Enabled: true, Cutoff: 20000, EnvAmount: 1}, 440)
	f.envValue = 1
	if want, got := 20000.0, f.effectiveCutoff(); want != got {
		t.Errorf("cutoff ceiling: want %v, got %v", want, got)
	}

	f.arm(FilterConfig{Enabled: true, Cutoff: 20, EnvAmount: -1}, 440)
	f.envValue = 1
	if want, got := 20.0, f.effectiveCutoff(); want != got {
		t.Errorf("cutoff floor: want %v, got %v", want, got)
	}
}

func TestCombFilterEcho(t *testing.T) {
	c := newCombFilter()
	c.update(0.01, 0.5, 1)

	// An impulse comes back delayed and scaled by the feedback.
	out := make([]float64, sampleRate/50)
	for i := range out {
		var x float64
		if i == 0 {
			x = 1
		}
		out[i] = c.ProcessSample(x)
	}
	if out[0] != 1 {
		t.Errorf("dry impulse: want 1, got %v", out[0])
	}
	delay := int(0.01 * sampleRate)
	if math.Abs(out[delay]-0.5) > 1e-9 {
		t.Errorf("first echo: want 0.5, got %v", out[delay])
	}
}
