package audio

import (
	"encoding/json"
	"fmt"
)

// Effect is the shape every effect unit shares: an enable flag, stereo
// in-place processing, externally mutable parameters as a flat numeric map,
// and a state reset that leaves parameters alone.
type Effect interface {
	Kind() string
	Enabled() bool
	SetEnabled(bool)
	Process(l, r []float64)
	UpdateParams(map[string]float64)
	Params() map[string]float64
	Reset()
}

// NewEffect builds an effect from a kind string and a flat parameter map.
// This is the only shape the effect-registry boundary depends on.
func NewEffect(kind string, params map[string]float64) (Effect, error) {
	var fx Effect
	switch kind {
	case "delay":
		fx = newDelayFX(DelayParams{})
	case "reverb":
		fx = newReverbFX(ReverbParams{}, newReverbIR())
	case "chorus":
		fx = newChorusFX(ChorusParams{})
	case "phaser":
		fx = newPhaserFX(PhaserParams{})
	case "distortion":
		fx = newDistortionFX(DistortionParams{})
	case "bitcrusher":
		fx = newBitcrusherFX(BitcrusherParams{})
	case "bbd-delay":
		fx = newBBDDelayFX(BBDDelayParams{})
	case "bbd-chorus":
		fx = newBBDChorusFX(ChorusParams{})
	case "tape-delay":
		fx = newTapeDelayFX(TapeDelayParams{})
	default:
		return nil, fmt.Errorf("unknown effect kind: %s", kind)
	}
	fx.UpdateParams(params)
	return fx, nil
}

const chainSize = 10

// ChainSlot is the serialized form of one effect slot.
type ChainSlot struct {
	Position   int                `json:"position"`
	Kind       string             `json:"kind,omitempty"`
	Enabled    bool               `json:"enabled"`
	Parameters map[string]float64 `json:"parameters,omitempty"`
	Bypass     bool               `json:"bypass"`
}

// SerializedChain is the persisted effect-chain format: an ordered slot
// list plus a chain-level bypass flag.
type SerializedChain struct {
	Slots  []ChainSlot `json:"slots"`
	Bypass bool        `json:"bypass"`
}

type chainEntry struct {
	effect Effect
	bypass bool
}

// EffectChain is an ordered rack of up to 10 effect slots processed
// serially. The engine runs one on its master bus.
type EffectChain struct {
	slots  [chainSize]*chainEntry
	bypass bool
}

func NewEffectChain() *EffectChain {
	return &EffectChain{}
}

// SetSlot installs an effect at a position, replacing what was there.
// A nil effect clears the slot.
func (c *EffectChain) SetSlot(position int, fx Effect) error {
	if position < 0 || position >= chainSize {
		return fmt.Errorf("chain position out of range: %d", position)
	}
	if fx == nil {
		c.slots[position] = nil
		return nil
	}
	c.slots[position] = &chainEntry{effect: fx}
	return nil
}

func (c *EffectChain) SetBypass(bypass bool) { c.bypass = bypass }

func (c *EffectChain) SetSlotBypass(pos int, bypass bool) {
	if pos >= 0 && pos < chainSize && c.slots[pos] != nil {
		c.slots[pos].bypass = bypass
	}
}

func (c *EffectChain) Process(l, r []float64) {
	if c.bypass {
		return
	}
	for _, entry := range c.slots {
		if entry == nil || entry.bypass || !entry.effect.Enabled() {
			continue
		}
		entry.effect.Process(l, r)
	}
}

func (c *EffectChain) Reset() {
	for _, entry := range c.slots {
		if entry != nil {
			entry.effect.Reset()
		}
	}
}

// Save produces the serialized chain: one tuple per occupied slot, in
// position order.
func (c *EffectChain) Save() SerializedChain {
	out := SerializedChain{Bypass: c.bypass}
	for pos, entry := range c.slots {
		if entry == nil {
			continue
		}
		out.Slots = append(out.Slots, ChainSlot{
			Position:   pos,
			Kind:       entry.effect.Kind(),
			Enabled:    entry.effect.Enabled(),
			Parameters: entry.effect.Params(),
			Bypass:     entry.bypass,
		})
	}
	return out
}

// Load rehydrates a chain from its serialized form. Slots with an unknown
// kind fail; empty kinds clear the position.
func (c *EffectChain) Load(s SerializedChain) error {
	var slots [chainSize]*chainEntry
	for _, slot := range s.Slots {
		if slot.Position < 0 || slot.Position >= chainSize {
			return fmt.Errorf("chain position out of range: %d", slot.Position)
		}
		if slot.Kind == "" {
			continue
		}
		fx, err := NewEffect(slot.Kind, slot.Parameters)
		if err != nil {
			return err
		}
		fx.SetEnabled(slot.Enabled)
		slots[slot.Position] = &chainEntry{effect: fx, bypass: slot.Bypass}
	}
	c.slots = slots
	c.bypass = s.Bypass
	return nil
}

func (c *EffectChain) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Save())
}

func (c *EffectChain) UnmarshalJSON(data []byte) error {
	var s SerializedChain
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return c.Load(s)
}

// voiceFX is the serial rack of the five classic per-voice effects. All
// instances are pre-allocated with the voice arena; arm re-parameterizes
// them per note.
type voiceFX struct {
	delay      *delayFX
	reverb     *reverbFX
	chorus     *chorusFX
	phaser     *phaserFX
	distortion *distortionFX
}

func newVoiceFX(ir *reverbIR) *voiceFX {
	return &voiceFX{
		delay:      newDelayFX(DelayParams{}),
		reverb:     newReverbFX(ReverbParams{}, ir),
		chorus:     newChorusFX(ChorusParams{}),
		phaser:     newPhaserFX(PhaserParams{}),
		distortion: newDistortionFX(DistortionParams{}),
	}
}

func (f *voiceFX) arm(cfg *SynthesizerVoiceConfig) {
	f.distortion.Update(cfg.Distortion)
	f.chorus.Update(cfg.Chorus)
	f.phaser.Update(cfg.Phaser)
	f.delay.Update(cfg.Delay)
	f.reverb.Update(cfg.Reverb)
}

func (f *voiceFX) setBPM(bpm float64) {
	f.delay.setBPM(bpm)
}

func (f *voiceFX) tick() {
	f.delay.tick()
}

// process runs the classic chain in its fixed order:
// distortion -> chorus -> phaser -> delay -> reverb.
func (f *voiceFX) process(l, r []float64) {
	if f.distortion.Enabled() {
		f.distortion.Process(l, r)
	}
	if f.chorus.Enabled() {
		f.chorus.Process(l, r)
	}
	if f.phaser.Enabled() {
		f.phaser.Process(l, r)
	}
	if f.delay.Enabled() {
		f.delay.Process(l, r)
	}
	if f.reverb.Enabled() {
		f.reverb.Process(l, r)
	}
}

func (f *voiceFX) reset() {
	f.delay.Reset()
	f.reverb.Reset()
	f.chorus.Reset()
	f.phaser.Reset()
	f.distortion.Reset()
}
