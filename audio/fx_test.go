package audio

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"
)

func TestEffectChainRoundTrip(t *testing.T) {
	chain := NewEffectChain()
	delay, err := NewEffect("delay", map[string]float64{"enabled": 1, "mix": 0.25, "time": 0.5})
	if err != nil {
		t.Fatal(err)
	}
	crush, err := NewEffect("bitcrusher", map[string]float64{"enabled": 1, "bitdepth": 4})
	if err != nil {
		t.Fatal(err)
	}
	if err := chain.SetSlot(2, delay); err != nil {
		t.Fatal(err)
	}
	if err := chain.SetSlot(7, crush); err != nil {
		t.Fatal(err)
	}
	chain.SetSlotBypass(7, true)

	data, err := json.Marshal(chain)
	if err != nil {
		t.Fatal(err)
	}
	restored := NewEffectChain()
	if err := json.Unmarshal(data, restored); err != nil {
		t.Fatal(err)
	}

	if want, got := chain.Save(), restored.Save(); !reflect.DeepEqual(want, got) {
		t.Errorf("round trip mismatch:\nwant: %+v\ngot:  %+v", want, got)
	}
}

func TestEffectChainUnknownKind(t *testing.T) {
	chain := NewEffectChain()
	err := chain.Load(SerializedChain{Slots: []ChainSlot{{Position: 0, Kind: "flanger"}}})
	if err == nil {
		t.Error("expected error for unknown effect kind")
	}
}

func TestEffectChainPositionRange(t *testing.T) {
	chain := NewEffectChain()
	fx, err := NewEffect("delay", nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := chain.SetSlot(chainSize, fx); err == nil {
		t.Error("expected error for out-of-range position")
	}
	if err := chain.Load(SerializedChain{Slots: []ChainSlot{{Position: -1, Kind: "delay"}}}); err == nil {
		t.Error("expected error for negative position")
	}
}

func TestEffectChainBypass(t *testing.T) {
	chain := NewEffectChain()
	fx, err := NewEffect("bitcrusher", map[string]float64{"enabled": 1, "mix": 1, "bitdepth": 1})
	if err != nil {
		t.Fatal(err)
	}
	if err := chain.SetSlot(0, fx); err != nil {
		t.Fatal(err)
	}
	chain.SetBypass(true)

	l := []float64{0.6, -0.3}
	r := []float64{0.6, -0.3}
	chain.Process(l, r)
	if l[0] != 0.6 || l[1] != -0.3 {
		t.Errorf("bypassed chain altered the signal: %v", l)
	}
}

func TestBitcrusherOneBit(t *testing.T) {
	fx := newBitcrusherFX(BitcrusherParams{Enabled: true, Mix: 1, BitDepth: 1, RateReduction: 1})
	l := []float64{0.6, -0.3, 0.001}
	r := []float64{-0.6, 0.3, -0.001}
	fx.Process(l, r)

	if want, got := []float64{1, -1, 1}, l; !reflect.DeepEqual(want, got) {
		t.Errorf("1-bit left: want %v, got %v", want, got)
	}
	if want, got := []float64{-1, 1, -1}, r; !reflect.DeepEqual(want, got) {
		t.Errorf("1-bit right: want %v, got %v", want, got)
	}
}

func TestBitcrusherRateReduction(t *testing.T) {
	fx := newBitcrusherFX(BitcrusherParams{Enabled: true, Mix: 1, BitDepth: 16, RateReduction: 0.25})
	l := make([]float64, 8)
	r := make([]float64, 8)
	for n := range l {
		l[n] = float64(n) / 8
		r[n] = l[n]
	}
	fx.Process(l, r)

	// Hold = 4 samples: the output is a staircase.
	if l[0] != l[1] || l[1] != l[2] || l[2] != l[3] {
		t.Errorf("first hold period not flat: %v", l[:4])
	}
	if l[3] == l[4] {
		t.Error("hold period did not advance")
	}
}

func TestDistortionDrivesSignal(t *testing.T) {
	fx := newDistortionFX(DistortionParams{Enabled: true, Mix: 1, Drive: 1, Shape: ShapeHard, Tone: 20000})
	l := make([]float64, 64)
	r := make([]float64, 64)
	for n := range l {
		l[n] = 0.5
		r[n] = 0.5
	}
	fx.Process(l, r)

	// Hard clipping at full drive pushes a 0.5 input towards 1; the tone
	// filter needs a few samples to charge.
	if got := l[len(l)-1]; got < 0.9 {
		t.Errorf("hard clip output: want close to 1, got %v", got)
	}
}

func TestReverbIRRebuild(t *testing.T) {
	ir := newReverbIR()
	ir.update(1.0, 0.5)
	first := ir.irL
	ir.update(1.0, 0.9)
	if !sameSlice(first, ir.irL) {
		t.Error("IR regenerated on damping-only change")
	}
	ir.update(1.5, 0.9)
	if sameSlice(first, ir.irL) {
		t.Error("IR not regenerated on decay change")
	}
}

func sameSlice(a, b []float64) bool {
	return len(a) == len(b) && (len(a) == 0 || &a[0] == &b[0])
}

func TestReverbSparseTaps(t *testing.T) {
	ir := newReverbIR()
	ir.update(maxReverbDecay, 0.5)
	if want, got := int(maxReverbDecay*reverbTapsPerSecond), len(ir.taps); want != got {
		t.Fatalf("tap count: want %v, got %v", want, got)
	}
	last := -1
	for _, tap := range ir.taps {
		if tap < last {
			t.Fatalf("tap positions not ascending: %d after %d", tap, last)
		}
		last = tap
	}
	if limit := int(maxReverbDecay * sampleRate); last >= limit {
		t.Errorf("tap beyond the response length: %d >= %d", last, limit)
	}
}

func TestChorusBufferHeadroom(t *testing.T) {
	fx := newChorusFX(ChorusParams{})
	// The buffer must cover the base delay plus the maximum modulation depth.
	span := (chorusBaseDelay + 0.01) * sampleRate
	if got := len(fx.bufL); float64(got) <= span {
		t.Errorf("chorus buffer too small: %d samples for a max delay of %v", got, span)
	}
}

func TestEffectParamsClamp(t *testing.T) {
	fx, err := NewEffect("delay", map[string]float64{"mix": 5, "feedback": 2, "time": 100})
	if err != nil {
		t.Fatal(err)
	}
	p := fx.Params()
	if got := p["mix"]; got > 1 {
		t.Errorf("mix not clamped: %v", got)
	}
	if got := p["feedback"]; got > 0.95 {
		t.Errorf("feedback not clamped: %v", got)
	}
	if got := p["time"]; got > maxDelayTime {
		t.Errorf("time not clamped: %v", got)
	}
}

func TestVintageEffectsStayBounded(t *testing.T) {
	for _, kind := range []string{"bbd-delay", "bbd-chorus", "tape-delay"} {
		fx, err := NewEffect(kind, map[string]float64{"enabled": 1, "mix": 1, "feedback": 0.9})
		if err != nil {
			t.Fatal(err)
		}
		l := make([]float64, sampleRate/10)
		r := make([]float64, sampleRate/10)
		for n := range l {
			l[n] = generateWaveform(float64(n%100)/100, WaveSine, 0.5)
			r[n] = l[n]
		}
		fx.Process(l, r)
		for n := range l {
			if math.Abs(l[n]) > 4 || math.Abs(r[n]) > 4 {
				t.Fatalf("%s output blew up at sample %d: %v %v", kind, n, l[n], r[n])
			}
		}
	}
}
