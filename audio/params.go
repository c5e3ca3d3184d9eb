package audio

import (
	"fmt"
	"sort"
	"strconv"
)

// param is one entry of the string-keyed parameter surface used by the repl
// and the presets. Values out of range are clamped by UpdateConfig, so
// setters just assign.
type param struct {
	set func(*SynthesizerVoiceConfig, float64)
	get func(*SynthesizerVoiceConfig) float64
}

// params maps parameter keys onto the patch. Registered once at startup;
// reads are concurrent-safe.
var params = map[string]param{}

func registerParam(key string, set func(*SynthesizerVoiceConfig, float64), get func(*SynthesizerVoiceConfig) float64) {
	if _, ok := params[key]; ok {
		panic("duplicate parameter key: " + key)
	}
	params[key] = param{set: set, get: get}
}

func boolParam(key string, field func(*SynthesizerVoiceConfig) *bool) {
	registerParam(key,
		func(c *SynthesizerVoiceConfig, v float64) { *field(c) = v != 0 },
		func(c *SynthesizerVoiceConfig) float64 { return boolFlat(*field(c)) })
}

func floatParam(key string, field func(*SynthesizerVoiceConfig) *float64) {
	registerParam(key,
		func(c *SynthesizerVoiceConfig, v float64) { *field(c) = v },
		func(c *SynthesizerVoiceConfig) float64 { return *field(c) })
}

func intParam(key string, field func(*SynthesizerVoiceConfig) *int) {
	registerParam(key,
		func(c *SynthesizerVoiceConfig, v float64) { *field(c) = int(v) },
		func(c *SynthesizerVoiceConfig) float64 { return float64(*field(c)) })
}

func init() {
	for i := 0; i < 4; i++ {
		i := i
		osc := func(c *SynthesizerVoiceConfig) *OscillatorConfig { return &c.Oscillators[i] }
		prefix := "osc" + strconv.Itoa(i+1) + "."
		boolParam(prefix+"enabled", func(c *SynthesizerVoiceConfig) *bool { return &osc(c).Enabled })
		registerParam(prefix+"wave",
			func(c *SynthesizerVoiceConfig, v float64) { osc(c).Wave = Waveform(int(v)) },
			func(c *SynthesizerVoiceConfig) float64 { return float64(osc(c).Wave) })
		registerParam(prefix+"mode",
			func(c *SynthesizerVoiceConfig, v float64) { osc(c).Mode = OscMode(int(v)) },
			func(c *SynthesizerVoiceConfig) float64 { return float64(osc(c).Mode) })
		intParam(prefix+"octave", func(c *SynthesizerVoiceConfig) *int { return &osc(c).Octave })
		intParam(prefix+"semitone", func(c *SynthesizerVoiceConfig) *int { return &osc(c).Semitone })
		floatParam(prefix+"detune", func(c *SynthesizerVoiceConfig) *float64 { return &osc(c).Detune })
		floatParam(prefix+"gain", func(c *SynthesizerVoiceConfig) *float64 { return &osc(c).Gain })
		floatParam(prefix+"pulsewidth", func(c *SynthesizerVoiceConfig) *float64 { return &osc(c).PulseWidth })
		floatParam(prefix+"phase", func(c *SynthesizerVoiceConfig) *float64 { return &osc(c).Phase })
		boolParam(prefix+"sync", func(c *SynthesizerVoiceConfig) *bool { return &osc(c).Sync })
		boolParam(prefix+"ringmod", func(c *SynthesizerVoiceConfig) *bool { return &osc(c).RingMod })
		intParam(prefix+"oversample", func(c *SynthesizerVoiceConfig) *int { return &osc(c).Oversample })
		boolParam(prefix+"bandlimited", func(c *SynthesizerVoiceConfig) *bool { return &osc(c).BandLimited })
		floatParam(prefix+"pd", func(c *SynthesizerVoiceConfig) *float64 { return &osc(c).PDAmount })
		floatParam(prefix+"fmratio", func(c *SynthesizerVoiceConfig) *float64 { return &osc(c).FMRatio })
		floatParam(prefix+"fmindex", func(c *SynthesizerVoiceConfig) *float64 { return &osc(c).FMIndex })
		floatParam(prefix+"drift", func(c *SynthesizerVoiceConfig) *float64 { return &osc(c).Drift })
	}

	boolParam("filter.enabled", func(c *SynthesizerVoiceConfig) *bool { return &c.Filter.Enabled })
	registerParam("filter.kind",
		func(c *SynthesizerVoiceConfig, v float64) { c.Filter.Kind = FilterKind(int(v)) },
		func(c *SynthesizerVoiceConfig) float64 { return float64(c.Filter.Kind) })
	registerParam("filter.mode",
		func(c *SynthesizerVoiceConfig, v float64) { c.Filter.Mode = FilterMode(int(v)) },
		func(c *SynthesizerVoiceConfig) float64 { return float64(c.Filter.Mode) })
	floatParam("filter.cutoff", func(c *SynthesizerVoiceConfig) *float64 { return &c.Filter.Cutoff })
	floatParam("filter.resonance", func(c *SynthesizerVoiceConfig) *float64 { return &c.Filter.Resonance })
	floatParam("filter.drive", func(c *SynthesizerVoiceConfig) *float64 { return &c.Filter.Drive })
	floatParam("filter.keytracking", func(c *SynthesizerVoiceConfig) *float64 { return &c.Filter.Keytracking })
	floatParam("filter.envamount", func(c *SynthesizerVoiceConfig) *float64 { return &c.Filter.EnvAmount })
	floatParam("filter.lfoamount", func(c *SynthesizerVoiceConfig) *float64 { return &c.Filter.LFOAmount })
	registerParam("filter.vowel",
		func(c *SynthesizerVoiceConfig, v float64) {
			c.Filter.Vowel = vowelNames[clampInt(int(v), 0, len(vowelNames)-1)]
		},
		func(c *SynthesizerVoiceConfig) float64 {
			for i, name := range vowelNames {
				if name == c.Filter.Vowel {
					return float64(i)
				}
			}
			return 0
		})

	envParams("env.", func(c *SynthesizerVoiceConfig) *ADSREnvelopeParams { return &c.AmpEnv })
	envParams("fenv.", func(c *SynthesizerVoiceConfig) *ADSREnvelopeParams { return &c.FilterEnv })

	for i := 0; i < numLFOs; i++ {
		i := i
		lfo := func(c *SynthesizerVoiceConfig) *LFOConfig { return &c.LFOs[i] }
		prefix := "lfo" + strconv.Itoa(i+1) + "."
		boolParam(prefix+"enabled", func(c *SynthesizerVoiceConfig) *bool { return &lfo(c).Enabled })
		registerParam(prefix+"wave",
			func(c *SynthesizerVoiceConfig, v float64) { lfo(c).Wave = Waveform(int(v)) },
			func(c *SynthesizerVoiceConfig) float64 { return float64(lfo(c).Wave) })
		floatParam(prefix+"rate", func(c *SynthesizerVoiceConfig) *float64 { return &lfo(c).Rate })
		boolParam(prefix+"sync", func(c *SynthesizerVoiceConfig) *bool { return &lfo(c).Sync })
		floatParam(prefix+"division", func(c *SynthesizerVoiceConfig) *float64 { return &lfo(c).Division })
		floatParam(prefix+"depth", func(c *SynthesizerVoiceConfig) *float64 { return &lfo(c).Depth })
		floatParam(prefix+"delay", func(c *SynthesizerVoiceConfig) *float64 { return &lfo(c).Delay })
		floatParam(prefix+"fadein", func(c *SynthesizerVoiceConfig) *float64 { return &lfo(c).FadeIn })
		floatParam(prefix+"phase", func(c *SynthesizerVoiceConfig) *float64 { return &lfo(c).Phase })
	}

	boolParam("delay.enabled", func(c *SynthesizerVoiceConfig) *bool { return &c.Delay.Enabled })
	floatParam("delay.mix", func(c *SynthesizerVoiceConfig) *float64 { return &c.Delay.Mix })
	floatParam("delay.time", func(c *SynthesizerVoiceConfig) *float64 { return &c.Delay.Time })
	floatParam("delay.feedback", func(c *SynthesizerVoiceConfig) *float64 { return &c.Delay.Feedback })
	boolParam("delay.pingpong", func(c *SynthesizerVoiceConfig) *bool { return &c.Delay.PingPong })
	floatParam("delay.width", func(c *SynthesizerVoiceConfig) *float64 { return &c.Delay.Width })
	boolParam("delay.sync", func(c *SynthesizerVoiceConfig) *bool { return &c.Delay.Sync })
	floatParam("delay.division", func(c *SynthesizerVoiceConfig) *float64 { return &c.Delay.Division })

	boolParam("reverb.enabled", func(c *SynthesizerVoiceConfig) *bool { return &c.Reverb.Enabled })
	floatParam("reverb.mix", func(c *SynthesizerVoiceConfig) *float64 { return &c.Reverb.Mix })
	floatParam("reverb.decay", func(c *SynthesizerVoiceConfig) *float64 { return &c.Reverb.Decay })
	floatParam("reverb.damping", func(c *SynthesizerVoiceConfig) *float64 { return &c.Reverb.Damping })
	floatParam("reverb.roomsize", func(c *SynthesizerVoiceConfig) *float64 { return &c.Reverb.RoomSize })

	boolParam("chorus.enabled", func(c *SynthesizerVoiceConfig) *bool { return &c.Chorus.Enabled })
	floatParam("chorus.mix", func(c *SynthesizerVoiceConfig) *float64 { return &c.Chorus.Mix })
	floatParam("chorus.rate", func(c *SynthesizerVoiceConfig) *float64 { return &c.Chorus.Rate })
	floatParam("chorus.depth", func(c *SynthesizerVoiceConfig) *float64 { return &c.Chorus.Depth })
	floatParam("chorus.spread", func(c *SynthesizerVoiceConfig) *float64 { return &c.Chorus.Spread })

	boolParam("phaser.enabled", func(c *SynthesizerVoiceConfig) *bool { return &c.Phaser.Enabled })
	floatParam("phaser.mix", func(c *SynthesizerVoiceConfig) *float64 { return &c.Phaser.Mix })
	floatParam("phaser.rate", func(c *SynthesizerVoiceConfig) *float64 { return &c.Phaser.Rate })
	floatParam("phaser.depth", func(c *SynthesizerVoiceConfig) *float64 { return &c.Phaser.Depth })
	intParam("phaser.stages", func(c *SynthesizerVoiceConfig) *int { return &c.Phaser.Stages })
	floatParam("phaser.feedback", func(c *SynthesizerVoiceConfig) *float64 { return &c.Phaser.Feedback })

	boolParam("dist.enabled", func(c *SynthesizerVoiceConfig) *bool { return &c.Distortion.Enabled })
	floatParam("dist.mix", func(c *SynthesizerVoiceConfig) *float64 { return &c.Distortion.Mix })
	floatParam("dist.drive", func(c *SynthesizerVoiceConfig) *float64 { return &c.Distortion.Drive })
	registerParam("dist.shape",
		func(c *SynthesizerVoiceConfig, v float64) { c.Distortion.Shape = DistortionShape(int(v)) },
		func(c *SynthesizerVoiceConfig) float64 { return float64(c.Distortion.Shape) })
	floatParam("dist.tone", func(c *SynthesizerVoiceConfig) *float64 { return &c.Distortion.Tone })

	intParam("unison.voices", func(c *SynthesizerVoiceConfig) *int { return &c.Unison.Voices })
	floatParam("unison.detune", func(c *SynthesizerVoiceConfig) *float64 { return &c.Unison.Detune })
	floatParam("unison.spread", func(c *SynthesizerVoiceConfig) *float64 { return &c.Unison.Spread })
	floatParam("portamento", func(c *SynthesizerVoiceConfig) *float64 { return &c.Portamento })
	boolParam("arp.enabled", func(c *SynthesizerVoiceConfig) *bool { return &c.Arp.Enabled })
	registerParam("arp.mode",
		func(c *SynthesizerVoiceConfig, v float64) { c.Arp.Mode = ArpMode(int(v)) },
		func(c *SynthesizerVoiceConfig) float64 { return float64(c.Arp.Mode) })
	floatParam("arp.division", func(c *SynthesizerVoiceConfig) *float64 { return &c.Arp.Division })
	intParam("arp.octaves", func(c *SynthesizerVoiceConfig) *int { return &c.Arp.Octaves })
	registerParam("voicemode",
		func(c *SynthesizerVoiceConfig, v float64) { c.VoiceMode = VoiceMode(clampInt(int(v), 0, 2)) },
		func(c *SynthesizerVoiceConfig) float64 { return float64(c.VoiceMode) })
	intParam("polyphony", func(c *SynthesizerVoiceConfig) *int { return &c.Polyphony })
	floatParam("tuning", func(c *SynthesizerVoiceConfig) *float64 { return &c.Tuning })
	floatParam("level", func(c *SynthesizerVoiceConfig) *float64 { return &c.Level })
}

var vowelNames = []string{"a", "e", "i", "o", "u"}

func envParams(prefix string, env func(*SynthesizerVoiceConfig) *ADSREnvelopeParams) {
	floatParam(prefix+"attack", func(c *SynthesizerVoiceConfig) *float64 { return &env(c).Attack })
	floatParam(prefix+"decay", func(c *SynthesizerVoiceConfig) *float64 { return &env(c).Decay })
	floatParam(prefix+"sustain", func(c *SynthesizerVoiceConfig) *float64 { return &env(c).Sustain })
	floatParam(prefix+"release", func(c *SynthesizerVoiceConfig) *float64 { return &env(c).Release })
	registerParam(prefix+"curve",
		func(c *SynthesizerVoiceConfig, v float64) { env(c).Curve = CurveKind(clampInt(int(v), 0, 1)) },
		func(c *SynthesizerVoiceConfig) float64 { return float64(env(c).Curve) })
	floatParam(prefix+"sensitivity", func(c *SynthesizerVoiceConfig) *float64 { return &env(c).Sensitivity })
}

// SetParam updates one parameter by key. Unknown keys error; out-of-range
// values are clamped.
func (e *Engine) SetParam(key string, value float64) error {
	p, ok := params[key]
	if !ok {
		return fmt.Errorf("unknown parameter %s", key)
	}
	e.UpdateConfig(func(c *SynthesizerVoiceConfig) { p.set(c, value) })
	return nil
}

// GetParam reads one parameter by key from the current patch.
func (e *Engine) GetParam(key string) (float64, error) {
	p, ok := params[key]
	if !ok {
		return 0, fmt.Errorf("unknown parameter %s", key)
	}
	cfg := e.Config()
	return p.get(&cfg), nil
}

// ParamKeys lists every settable parameter, sorted.
func ParamKeys() []string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
