package audio

import "math/rand"

// lfo is a low-frequency modulation source evaluated once per control tick.
// Its output is held constant for the following render quantum.
type lfo struct {
	cfg   LFOConfig
	bpm   float64
	phase float64
	value float64

	elapsed float64 // s since trigger, drives delay and fade-in
	held    float64 // sample-and-hold value, renewed on each cycle
	rng     *rand.Rand
}

func newLFO(seed int64) *lfo {
	return &lfo{bpm: 120, rng: rand.New(rand.NewSource(seed))}
}

func (l *lfo) setConfig(cfg LFOConfig) {
	l.cfg = cfg
}

func (l *lfo) setBPM(bpm float64) {
	l.bpm = clamp(bpm, 1, 300)
}

func (l *lfo) retrigger() {
	l.phase = 0
	l.elapsed = 0
	l.value = 0
	l.held = 2*l.rng.Float64() - 1
}

func (l *lfo) frequency() float64 {
	if l.cfg.Sync {
		// Division is a multiple of a quarter note: 1 = quarter, 0.5 = eighth.
		return l.bpm / 60 / l.cfg.Division
	}
	return l.cfg.Rate
}

// tick advances the LFO by dt seconds (one control tick).
func (l *lfo) tick(dt float64) {
	if !l.cfg.Enabled {
		l.value = 0
		return
	}
	l.elapsed += dt
	l.phase += dt * l.frequency()
	if l.phase >= 1 {
		l.phase -= float64(int(l.phase))
		// Sample-and-hold renews once per cycle, so a recorded automation
		// pass replays the same staircase for the same seed.
		l.held = 2*l.rng.Float64() - 1
	}

	if l.elapsed < l.cfg.Delay {
		l.value = 0
		return
	}
	var v float64
	if l.cfg.Wave == WaveSampleHold {
		v = l.held
	} else {
		p := l.phase + l.cfg.Phase
		if p >= 1 {
			p -= 1
		}
		v = generateWaveform(p, l.cfg.Wave, 0.5)
	}
	amp := l.cfg.Depth
	if l.cfg.FadeIn > 0 {
		fade := (l.elapsed - l.cfg.Delay) / l.cfg.FadeIn
		if fade < 1 {
			amp *= fade
		}
	}
	l.value = v * amp
}

// ModValue and ModActive make the LFO a modulation source.
func (l *lfo) ModValue() float64 { return l.value }
func (l *lfo) ModActive() bool   { return l.cfg.Enabled }

// numLFOs is the fixed size of the engine's LFO bank.
const numLFOs = 3

type lfoSet struct {
	lfos [numLFOs]*lfo
}

func newLFOSet() *lfoSet {
	var s lfoSet
	for i := range s.lfos {
		s.lfos[i] = newLFO(int64(i) + 1)
	}
	return &s
}

func (s *lfoSet) setConfigs(cfgs [numLFOs]LFOConfig) {
	for i := range s.lfos {
		s.lfos[i].setConfig(cfgs[i])
	}
}

func (s *lfoSet) setBPM(bpm float64) {
	for _, l := range s.lfos {
		l.setBPM(bpm)
	}
}

func (s *lfoSet) tick(dt float64) {
	for _, l := range s.lfos {
		l.tick(dt)
	}
}
