package audio

import "math/rand"

type heldNote struct {
	id       int
	note     int
	velocity float64
}

// arpeggiator steps through the currently held notes at a tempo-derived
// rate, triggering short voices through the engine. It runs entirely on the
// render thread's control tick.
type arpeggiator struct {
	engine *Engine
	held   []heldNote

	countdown int // samples until the next step
	gate      int // samples until the current step's release
	step      int
	dir       int // +1/-1 for up-down mode
	current   *voice
	currentID int
	rng       *rand.Rand
}

func newArpeggiator(e *Engine) *arpeggiator {
	return &arpeggiator{engine: e, dir: 1, rng: rand.New(rand.NewSource(42))}
}

func (a *arpeggiator) noteOn(id, note int, velocity float64) {
	for _, h := range a.held {
		if h.note == note {
			return
		}
	}
	a.held = append(a.held, heldNote{id: id, note: note, velocity: velocity})
}

func (a *arpeggiator) noteOff(id int) {
	for i, h := range a.held {
		if h.id == id {
			a.held = append(a.held[:i], a.held[i+1:]...)
			return
		}
	}
}

func (a *arpeggiator) clear() {
	a.held = a.held[:0]
	a.releaseCurrent()
	a.step = 0
	a.countdown = 0
}

func (a *arpeggiator) releaseCurrent() {
	if a.current != nil && a.current.active && a.current.id == a.currentID {
		a.current.release()
	}
	a.current = nil
}

// tick advances the arpeggiator clock by n samples. The step length derives
// from the engine tempo and the configured division; the gate is half a
// step.
func (a *arpeggiator) tick(cfg *SynthesizerVoiceConfig, n int) {
	if len(a.held) == 0 {
		a.releaseCurrent()
		return
	}
	stepSamples := int(60 / a.engine.BPM() * cfg.Arp.Division * sampleRate)
	if stepSamples < 1 {
		stepSamples = 1
	}

	if a.gate > 0 {
		a.gate -= n
		if a.gate <= 0 {
			a.releaseCurrent()
		}
	}
	a.countdown -= n
	if a.countdown > 0 {
		return
	}
	a.countdown += stepSamples
	if a.countdown <= 0 {
		a.countdown = stepSamples
	}

	note, velocity := a.pick(cfg)
	a.releaseCurrent()
	v := a.engine.startVoice(cfg, 0, note, velocity)
	if v != nil {
		a.current = v
		a.currentID = v.id
		a.gate = stepSamples / 2
	}
}

// pick selects the next note in the pattern: held notes sorted ascending,
// expanded across the configured octave span.
func (a *arpeggiator) pick(cfg *SynthesizerVoiceConfig) (int, float64) {
	notes := make([]heldNote, 0, len(a.held)*cfg.Arp.Octaves)
	sorted := append([]heldNote(nil), a.held...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].note < sorted[j-1].note; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	for oct := 0; oct < cfg.Arp.Octaves; oct++ {
		for _, h := range sorted {
			n := h.note + 12*oct
			if n <= 127 {
				notes = append(notes, heldNote{note: n, velocity: h.velocity})
			}
		}
	}
	if len(notes) == 0 {
		return sorted[0].note, sorted[0].velocity
	}

	var idx int
	switch cfg.Arp.Mode {
	case ArpDown:
		idx = len(notes) - 1 - a.step%len(notes)
	case ArpUpDown:
		span := len(notes)*2 - 2
		if span < 1 {
			span = 1
		}
		p := a.step % span
		if p >= len(notes) {
			p = span - p
		}
		idx = p
	case ArpRandom:
		idx = a.rng.Intn(len(notes))
	default: // ArpUp
		idx = a.step % len(notes)
	}
	a.step++
	h := notes[idx]
	return h.note, h.velocity
}
