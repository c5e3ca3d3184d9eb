package audio

import (
	"log"
	"math"
)

const (
	maxVoices = 32
	maxUnison = 7
)

// voice is one pre-sized slot of the voice arena. Slots are re-armed per
// note; nothing on the render path allocates.
type voice struct {
	id        int
	note      int
	velocity  float64
	freq      float64 // glide-current base frequency
	target    float64 // glide target
	startTime uint64  // engine sample clock at allocation
	active    bool
	released  bool

	oscs       [4][maxUnison]*oscillator
	unison     UnisonConfig
	oscCfgs    [4]OscillatorConfig
	filterL    *voiceFilter
	filterR    *voiceFilter
	useFilter  bool
	stereoPath bool // unison spread renders distinct channels
	ampEnv     adsrEnvelope
	filterEnv  adsrEnvelope
	msEnv      multiStageEnvelope
	useFEnv    bool
	useMSEnv   bool
	fx         *voiceFX
	glideCoef  float64

	bufL, bufR [blockSize]float64
}

func newVoice(index int, ir *reverbIR) *voice {
	v := &voice{filterL: newVoiceFilter(), filterR: newVoiceFilter(), fx: newVoiceFX(ir)}
	for slot := 0; slot < 4; slot++ {
		for u := 0; u < maxUnison; u++ {
			v.oscs[slot][u] = newOscillator(int64(index*100 + slot*10 + u))
		}
	}
	return v
}

// arm builds the voice's signal path for a new note from the given patch
// snapshot and quality advice.
func (v *voice) arm(note int, velocity, freq float64, cfg *SynthesizerVoiceConfig, q QualitySettings, legato bool) {
	v.note = note
	v.velocity = velocity
	v.target = freq
	if !legato || v.freq == 0 {
		v.freq = freq
	}
	v.released = false
	v.active = true
	v.unison = cfg.Unison
	v.oscCfgs = cfg.Oscillators
	if cfg.Portamento > 0 {
		// Exponential approach with ~63% of the glide done after Portamento/3.
		v.glideCoef = 1 - math.Exp(-3*blockSize/(cfg.Portamento*sampleRate))
	} else {
		v.glideCoef = 1
	}

	for slot := range v.oscCfgs {
		oc := v.oscCfgs[slot]
		if !oc.Enabled {
			continue
		}
		n := v.unisonCount(slot)
		for u := 0; u < n; u++ {
			v.oscs[slot][u].arm(oc, v.detuned(freq, u, n), q)
		}
	}
	v.useFilter = cfg.Filter.Enabled
	v.stereoPath = v.oscCfgs[0].Enabled && v.unison.Voices > 1
	if v.useFilter {
		fcfg := cfg.Filter
		if !q.EnableHighQualityFilters && fcfg.Kind != FilterMultimode {
			// Governor downgrade: fall back to the cheap topology.
			fcfg.Kind = FilterMultimode
		}
		v.filterL.arm(fcfg, freq)
		v.filterR.arm(fcfg, freq)
	}

	v.ampEnv.setParams(cfg.AmpEnv)
	v.filterEnv.setParams(cfg.FilterEnv)
	v.useFEnv = cfg.Filter.Enabled && cfg.Filter.EnvAmount != 0
	v.useMSEnv = v.useFEnv && len(cfg.FilterEnvPoints) >= 2
	if v.useMSEnv {
		v.msEnv.setPoints(cfg.FilterEnvPoints, cfg.FilterEnv.Release)
	}
	if !legato {
		v.ampEnv.triggerAttack(velocity)
		if v.useMSEnv {
			v.msEnv.triggerAttack()
		} else if v.useFEnv {
			v.filterEnv.triggerAttack(velocity)
		}
		v.fx.arm(cfg)
	}
}

// unisonCount returns the number of unison copies for a slot. Only the first
// oscillator slot is spread; the rest render single copies.
func (v *voice) unisonCount(slot int) int {
	if slot == 0 {
		return v.unison.Voices
	}
	return 1
}

func (v *voice) detuned(freq float64, u, n int) float64 {
	if n <= 1 {
		return freq
	}
	spread := (float64(u)/float64(n-1))*2 - 1 // -1..1 across copies
	return freq * math.Pow(2, spread*v.unison.Detune/1200)
}

// release starts the release ramps. Safe to call more than once.
func (v *voice) release() {
	if !v.active || v.released {
		return
	}
	v.released = true
	v.ampEnv.triggerRelease()
	if v.useMSEnv {
		v.msEnv.triggerRelease()
	} else if v.useFEnv {
		v.filterEnv.triggerRelease()
	}
}

// kill silences the voice immediately and frees the slot. Errors from
// already-stopped components do not exist in this model; kill is idempotent.
func (v *voice) kill() {
	v.active = false
	v.released = false
	v.freq = 0
	v.filterL.Reset()
	v.filterR.Reset()
	v.fx.reset()
	v.ampEnv = adsrEnvelope{params: v.ampEnv.params}
	v.filterEnv = adsrEnvelope{params: v.filterEnv.params}
	v.msEnv = multiStageEnvelope{}
}

// tick runs the control-rate update: glide, filter envelope, per-oscillator
// drift, and coefficient recomputation.
func (v *voice) tick(lfoValue float64, mods *modState, analogModeling bool) {
	if !v.active {
		return
	}
	if v.freq != v.target {
		v.freq += (v.target - v.freq) * v.glideCoef
		if math.Abs(v.target-v.freq) < 0.01 {
			v.freq = v.target
		}
	}
	for slot := range v.oscCfgs {
		if !v.oscCfgs[slot].Enabled {
			continue
		}
		n := v.unisonCount(slot)
		for u := 0; u < n; u++ {
			o := v.oscs[slot][u]
			o.pitchMod = mods.pitchCents
			o.pwMod = mods.pulseWidth
			o.gainMod = mods.oscGain
			o.baseFreq = v.detuned(v.freq, u, n)
			o.tick(analogModeling)
		}
	}
	if v.useFilter {
		if v.useFEnv {
			env := v.filterEnvValue()
			v.filterL.envValue = env
			v.filterR.envValue = env
		}
		v.filterL.lfoValue = lfoValue
		v.filterL.cutoffMod = mods.cutoffHz
		v.filterL.tick()
		if v.stereoPath {
			v.filterR.lfoValue = lfoValue
			v.filterR.cutoffMod = mods.cutoffHz
			v.filterR.tick()
		}
	} else if v.useFEnv {
		v.filterEnvValue()
	}
	v.fx.tick()
}

// filterEnvValue advances whichever filter envelope the patch selected by one
// control block.
func (v *voice) filterEnvValue() float64 {
	if v.useMSEnv {
		return v.msEnv.advance(blockSize)
	}
	return v.filterEnv.advance(blockSize)
}

// process renders one control block into l and r (adding into them).
// len(l) == len(r) <= blockSize.
func (v *voice) process(l, r []float64) {
	if !v.active {
		return
	}
	bl := v.bufL[:len(l)]
	br := v.bufR[:len(r)]
	for n := range bl {
		bl[n], br[n] = 0, 0
	}

	for n := range bl {
		var sample, first float64
		var wrapped bool
		var left, right float64
		for slot := range v.oscCfgs {
			oc := &v.oscCfgs[slot]
			if !oc.Enabled {
				continue
			}
			copies := v.unisonCount(slot)
			var slotOut float64
			for u := 0; u < copies; u++ {
				reset := slot > 0 && oc.Sync && wrapped
				s, w := v.oscs[slot][u].next(reset)
				if slot == 0 && u == 0 {
					first = s
					wrapped = w
				}
				if copies > 1 {
					pan := v.unison.Spread * ((float64(u)/float64(copies-1))*2 - 1)
					g := v.oscs[slot][u].gain() / float64(copies)
					left += s * g * (1 - pan) * 0.5
					right += s * g * (1 + pan) * 0.5
					continue
				}
				slotOut += s
			}
			if copies > 1 {
				continue
			}
			out := slotOut * v.oscs[slot][0].gain()
			if slot > 0 && oc.RingMod {
				out *= first
			}
			sample += out
		}
		// Unison spread makes the channels distinct, so the filter runs per
		// channel; a mono path shares one filter for both.
		outL := sample + left
		outR := sample + right
		if v.useFilter {
			outL = v.filterL.ProcessSample(outL)
			if v.stereoPath {
				outR = v.filterR.ProcessSample(outR)
			} else {
				outR = outL
			}
		}
		env := v.ampEnv.next()
		bl[n] = outL * env
		br[n] = outR * env
	}

	v.fx.process(bl, br)
	for n := range bl {
		l[n] += bl[n]
		r[n] += br[n]
	}
}

// advance steps the envelope n samples and returns the resulting value.
func (e *adsrEnvelope) advance(n int) float64 {
	var v float64
	for i := 0; i < n; i++ {
		v = e.next()
	}
	return v
}

func (e *multiStageEnvelope) advance(n int) float64 {
	var v float64
	for i := 0; i < n; i++ {
		v = e.next()
	}
	return v
}

// done reports that the voice has fully faded out and its slot can be
// reclaimed. Detection is tick-based: the amp envelope flips inactive once
// the elapsed time since release exceeds the release duration plus grace.
func (v *voice) done() bool {
	return v.active && v.released && !v.ampEnv.active()
}

// VoiceManager owns the arena of voice slots and enforces the polyphony
// ceiling and voice mode.
type VoiceManager struct {
	voices    []*voice
	polyphony int
	mode      VoiceMode
	nextID    int
}

func NewVoiceManager(ir *reverbIR) *VoiceManager {
	m := &VoiceManager{polyphony: 16, mode: ModePoly, nextID: 1}
	for i := 0; i < maxVoices; i++ {
		m.voices = append(m.voices, newVoice(i, ir))
	}
	return m
}

func (m *VoiceManager) SetPolyphony(n int) {
	m.polyphony = clampInt(n, 1, maxVoices)
}

// SetVoiceMode switches the allocation policy. Entering mono stops all
// sounding voices immediately.
func (m *VoiceManager) SetVoiceMode(mode VoiceMode) {
	if mode == ModeMono && m.mode != ModeMono {
		m.StopAll()
	}
	m.mode = mode
}

func (m *VoiceManager) Mode() VoiceMode { return m.mode }

// AllocateVoice admits a new voice under the given id, stealing under
// pressure: mono stops every sounding voice, poly releases the single oldest
// by start time. Running out of polyphony is never an error.
func (m *VoiceManager) AllocateVoice(id int, now uint64) *voice {
	if m.mode == ModeMono {
		for _, v := range m.voices {
			if v.active {
				v.kill()
			}
		}
	} else if m.ActiveCount() >= m.polyphony {
		if oldest := m.oldest(); oldest != nil {
			oldest.kill()
		}
	}
	slot := m.freeSlot()
	if slot == nil {
		// Arena exhausted; steal regardless.
		slot = m.oldest()
		if slot == nil {
			return nil
		}
		slot.kill()
	}
	if id <= 0 {
		id = m.nextID
		m.nextID++
	}
	slot.id = id
	slot.startTime = now
	return slot
}

func (m *VoiceManager) freeSlot() *voice {
	for _, v := range m.voices {
		if !v.active {
			return v
		}
	}
	return nil
}

func (m *VoiceManager) oldest() *voice {
	var oldest *voice
	for _, v := range m.voices {
		if !v.active {
			continue
		}
		if oldest == nil || v.startTime < oldest.startTime {
			oldest = v
		}
	}
	return oldest
}

// ReleaseVoice starts the release ramp of the given voice. Unknown or
// already-released ids are logged and ignored.
func (m *VoiceManager) ReleaseVoice(id int) {
	for _, v := range m.voices {
		if v.id == id && v.active {
			v.release()
			return
		}
	}
	log.Printf("voice manager: release of inactive voice %d", id)
}

// FindVoiceByNote returns the newest active voice playing note, for legato
// reuse.
func (m *VoiceManager) FindVoiceByNote(note int) *voice {
	var found *voice
	for _, v := range m.voices {
		if v.active && v.note == note {
			if found == nil || v.startTime > found.startTime {
				found = v
			}
		}
	}
	return found
}

func (m *VoiceManager) StopAll() {
	for _, v := range m.voices {
		if v.active {
			v.kill()
		}
	}
}

func (m *VoiceManager) ReleaseAll() {
	for _, v := range m.voices {
		if v.active {
			v.release()
		}
	}
}

func (m *VoiceManager) ActiveCount() int {
	var n int
	for _, v := range m.voices {
		if v.active {
			n++
		}
	}
	return n
}

// sweep reclaims voices whose release ramp has run out.
func (m *VoiceManager) sweep() {
	for _, v := range m.voices {
		if v.done() {
			v.kill()
		}
	}
}
