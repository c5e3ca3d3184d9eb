package audio

import (
	"log"
	"math"
	"sync/atomic"
)

// Engine wires oscillators, filters, envelopes, LFOs, the modulation router
// and the effect chain into per-note signal paths. Note and parameter calls
// arrive from the control thread; Process runs on the audio callback.
type Engine struct {
	cfg     atomic.Value // *SynthesizerVoiceConfig
	bpm     atomic.Value // float64
	chain   atomic.Value // *EffectChain
	events  *eventBuffer
	voices  *VoiceManager
	router  *Router
	lfos    *lfoSet
	monitor *CPUMonitor
	arp     *arpeggiator
	ir      *reverbIR

	nextID  atomic.Int64
	clock   uint64 // samples rendered
	mods    modState
	lastBPM float64
	bufL    [bufferSize]float64
	bufR    [bufferSize]float64
}

// modState accumulates the router's output for one control tick. Targets
// write into it; voices read it; it is zeroed before every Router.Process.
type modState struct {
	cutoffHz   float64 // extra filter cutoff offset
	pitchCents float64
	amp        float64
	pulseWidth float64
	oscGain    float64
}

// NewEngine builds an engine with the given patch. The CPU monitor is an
// injected collaborator so callers can share it with the audio sink.
func NewEngine(cfg SynthesizerVoiceConfig, monitor *CPUMonitor) *Engine {
	clampConfig(&cfg)
	ir := newReverbIR()
	e := &Engine{
		events:  newEventBuffer(256),
		voices:  NewVoiceManager(ir),
		router:  NewRouter(),
		lfos:    newLFOSet(),
		monitor: monitor,
		ir:      ir,
	}
	e.arp = newArpeggiator(e)
	e.cfg.Store(&cfg)
	e.bpm.Store(120.0)
	e.chain.Store(NewEffectChain())
	e.lastBPM = 120

	for i, l := range e.lfos.lfos {
		e.router.RegisterSource(lfoSourceID(i), l)
	}
	e.router.RegisterTarget("filter.cutoff", modTargetFunc(func(v, _ float64) {
		e.mods.cutoffHz += v * 5000
	}))
	e.router.RegisterTarget("osc.pitch", modTargetFunc(func(v, _ float64) {
		e.mods.pitchCents += v * 100
	}))
	e.router.RegisterTarget("osc.pulsewidth", modTargetFunc(func(v, _ float64) {
		e.mods.pulseWidth += v * 0.5
	}))
	e.router.RegisterTarget("osc.gain", modTargetFunc(func(v, _ float64) {
		e.mods.oscGain += v
	}))
	e.router.RegisterTarget("amp", modTargetFunc(func(v, _ float64) {
		e.mods.amp += v
	}))
	return e
}

func lfoSourceID(i int) string {
	return "lfo" + string(rune('1'+i))
}

type modTargetFunc func(value, depth float64)

func (f modTargetFunc) ApplyModulation(value, depth float64) { f(value, depth) }

// Config returns the current patch snapshot.
func (e *Engine) Config() SynthesizerVoiceConfig {
	return *e.cfg.Load().(*SynthesizerVoiceConfig)
}

// UpdateConfig merges a partial update: apply mutates a copy of the current
// patch, which is clamped and swapped in atomically. A render quantum sees
// either the old or the new patch, never a torn one.
func (e *Engine) UpdateConfig(apply func(*SynthesizerVoiceConfig)) {
	cfg := e.Config()
	apply(&cfg)
	clampConfig(&cfg)
	e.cfg.Store(&cfg)
}

// SetBPM cascades the tempo to every tempo-synced LFO and effect.
func (e *Engine) SetBPM(bpm float64) {
	e.bpm.Store(clamp(bpm, 1, 300))
}

func (e *Engine) BPM() float64 {
	return e.bpm.Load().(float64)
}

// PlayNote converts the note to a frequency and schedules a voice. It
// returns the voice id, or -1 if the note is out of range (logged, not
// fatal: a dropped note is preferable to a render glitch).
func (e *Engine) PlayNote(note int, velocity float64) int {
	if note < 0 || note > 127 {
		log.Printf("engine: ignoring note out of range: %d", note)
		return -1
	}
	id := int(e.nextID.Add(1))
	e.events.push(event{kind: eventNoteOn, id: id, note: note, velocity: clamp(velocity, 0, 1)})
	return id
}

// StopNote releases the voice with the given id. Safe to call repeatedly or
// with an id that has already finished.
func (e *Engine) StopNote(id int) {
	if id <= 0 {
		return
	}
	e.events.push(event{kind: eventNoteOff, id: id})
}

func (e *Engine) StopAllNotes() {
	e.events.push(event{kind: eventStopAll})
}

// ActiveVoices reports the number of sounding voices. Approximate when read
// mid-callback; intended for status display.
func (e *Engine) ActiveVoices() int {
	return e.voices.ActiveCount()
}

func (e *Engine) Monitor() *CPUMonitor {
	return e.monitor
}

// LoadChain rehydrates the master effect chain from its serialized form and
// swaps it in atomically.
func (e *Engine) LoadChain(s SerializedChain) error {
	chain := NewEffectChain()
	if err := chain.Load(s); err != nil {
		return err
	}
	e.chain.Store(chain)
	return nil
}

// SaveChain produces the serialized form of the master effect chain.
func (e *Engine) SaveChain() SerializedChain {
	return e.chain.Load().(*EffectChain).Save()
}

// Process renders one buffer. It is the portaudio callback body: no
// blocking, no I/O, no unbounded allocation.
func (e *Engine) Process(samples [][]float32) {
	if e.monitor != nil {
		e.monitor.StartFrame()
	}
	cfg := e.cfg.Load().(*SynthesizerVoiceConfig)
	chain := e.chain.Load().(*EffectChain)
	total := len(samples[0])

	for n := 0; n < total; n += blockSize {
		end := n + blockSize
		if end > total {
			end = total
		}
		l := e.bufL[n:end]
		r := e.bufR[n:end]
		for i := range l {
			l[i], r[i] = 0, 0
		}

		e.controlTick(cfg)
		for _, v := range e.voices.voices {
			v.process(l, r)
		}
		chain.Process(l, r)

		gain := math.Pow(10, cfg.Level/20) * (1 + clamp(e.mods.amp, -1, 1))
		for i := n; i < end; i++ {
			samples[0][i] += float32(gain * e.bufL[i])
			samples[1][i] += float32(gain * e.bufR[i])
		}
		e.clock += uint64(end - n)
	}
}

// controlTick runs once per block: note events, tempo propagation, LFO and
// router evaluation, per-voice control updates and voice reclamation.
func (e *Engine) controlTick(cfg *SynthesizerVoiceConfig) {
	// Voice-mode and polyphony changes apply before this tick's note events
	// so a mode switch and a note in the same buffer land in order.
	e.voices.SetPolyphony(cfg.Polyphony)
	e.voices.SetVoiceMode(cfg.VoiceMode)

	e.events.drain(func(ev event) {
		switch ev.kind {
		case eventNoteOn:
			e.noteOn(cfg, ev)
		case eventNoteOff:
			if cfg.Arp.Enabled {
				e.arp.noteOff(ev.id)
			} else {
				e.voices.ReleaseVoice(ev.id)
			}
		case eventStopAll:
			e.arp.clear()
			e.voices.StopAll()
		}
	})

	bpm := e.BPM()
	if bpm != e.lastBPM {
		e.lastBPM = bpm
		e.lfos.setBPM(bpm)
		for _, v := range e.voices.voices {
			v.fx.setBPM(bpm)
		}
	}

	const dt = float64(blockSize) / sampleRate
	e.lfos.setConfigs(cfg.LFOs)
	e.lfos.tick(dt)

	e.mods = modState{}
	e.router.SetSlots(cfg.ModSlots)
	e.router.Process()

	q := e.monitor.GetQualitySettings()
	lfoValue := e.lfos.lfos[0].ModValue()
	for _, v := range e.voices.voices {
		v.tick(lfoValue, &e.mods, q.EnableAnalogModeling)
	}
	if cfg.Arp.Enabled {
		e.arp.tick(cfg, blockSize)
	}
	e.voices.sweep()
}

// noteOn builds a fresh signal path for the note, or feeds the arpeggiator
// when it is engaged.
func (e *Engine) noteOn(cfg *SynthesizerVoiceConfig, ev event) {
	if cfg.Arp.Enabled {
		e.arp.noteOn(ev.id, ev.note, ev.velocity)
		return
	}
	e.startVoice(cfg, ev.id, ev.note, ev.velocity)
}

// startVoice allocates (stealing if needed) and arms a voice slot.
func (e *Engine) startVoice(cfg *SynthesizerVoiceConfig, id, note int, velocity float64) *voice {
	freq := midiToFreq(note, cfg.Tuning)
	if cfg.VoiceMode == ModeLegato {
		// Prefer the voice already playing this note so a repeated note
		// retriggers in place; otherwise glide the newest sounding voice.
		v := e.voices.FindVoiceByNote(note)
		if v == nil || v.released {
			v = e.newestActive()
		}
		if v != nil && !v.released {
			v.id = id
			v.arm(note, velocity, freq, cfg, e.monitor.GetQualitySettings(), true)
			return v
		}
	}
	v := e.voices.AllocateVoice(id, e.clock)
	if v == nil {
		log.Printf("engine: no voice slot for note %d", note)
		return nil
	}
	v.arm(note, velocity, freq, cfg, e.monitor.GetQualitySettings(), false)
	return v
}

func (e *Engine) newestActive() *voice {
	var newest *voice
	for _, v := range e.voices.voices {
		if !v.active {
			continue
		}
		if newest == nil || v.startTime > newest.startTime {
			newest = v
		}
	}
	return newest
}
