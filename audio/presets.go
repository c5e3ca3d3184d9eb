package audio

import (
	"fmt"
	"sort"
)

// presets are patches expressed as parameter assignments over the default
// config, so every preset value passes through the same clamping as a live
// tweak.
var presets = map[string]map[string]float64{
	"init": {},
	"fat-bass": {
		"osc1.wave":        float64(WaveSaw),
		"osc2.enabled":     1,
		"osc2.wave":        float64(WaveSquare),
		"osc2.octave":      -1,
		"osc2.gain":        0.6,
		"unison.voices":    3,
		"unison.detune":    12,
		"filter.enabled":   1,
		"filter.kind":      float64(FilterLadder),
		"filter.cutoff":    600,
		"filter.resonance": 0.35,
		"filter.drive":     0.4,
		"filter.envamount": 0.5,
		"fenv.decay":       0.25,
		"fenv.sustain":     0.1,
		"env.release":      0.15,
		"dist.enabled":     1,
		"dist.drive":       0.3,
		"dist.shape":       float64(ShapeTube),
	},
	"glass-pad": {
		"osc1.wave":        float64(WaveTriangle),
		"osc2.enabled":     1,
		"osc2.wave":        float64(WaveSine),
		"osc2.semitone":    7,
		"osc2.gain":        0.4,
		"unison.voices":    5,
		"unison.detune":    18,
		"unison.spread":    1,
		"env.attack":       1.2,
		"env.release":      2.5,
		"env.curve":        float64(CurveExponential),
		"filter.enabled":   1,
		"filter.kind":      float64(FilterSVF),
		"filter.cutoff":    3000,
		"filter.lfoamount": 0.2,
		"lfo1.enabled":     1,
		"lfo1.rate":        0.3,
		"chorus.enabled":   1,
		"reverb.enabled":   1,
		"reverb.decay":     2,
		"reverb.mix":       0.45,
	},
	"pluck": {
		"osc1.wave":        float64(WaveSquare),
		"osc1.pulsewidth":  0.3,
		"env.decay":        0.18,
		"env.sustain":      0,
		"env.release":      0.12,
		"env.sensitivity":  0.8,
		"filter.enabled":   1,
		"filter.cutoff":    1200,
		"filter.envamount": 0.8,
		"fenv.decay":       0.12,
		"fenv.sustain":     0,
		"delay.enabled":    1,
		"delay.pingpong":   1,
		"delay.sync":       1,
		"delay.division":   0.75,
		"delay.feedback":   0.45,
	},
	"acid": {
		"osc1.wave":        float64(WaveSaw),
		"voicemode":        float64(ModeLegato),
		"portamento":       0.06,
		"filter.enabled":   1,
		"filter.kind":      float64(FilterLadder),
		"filter.cutoff":    400,
		"filter.resonance": 0.85,
		"filter.envamount": 0.7,
		"fenv.decay":       0.2,
		"fenv.sustain":     0.05,
		"env.sustain":      1,
		"dist.enabled":     1,
		"dist.drive":       0.5,
	},
	"vox": {
		"osc1.wave":      float64(WaveSaw),
		"filter.enabled": 1,
		"filter.kind":    float64(FilterFormant),
		"filter.vowel":   0, // a
		"env.attack":     0.05,
		"env.release":    0.4,
		"chorus.enabled": 1,
		"chorus.depth":   0.003,
	},
	"drift-lead": {
		"osc1.mode":        float64(OscAnalog),
		"osc1.drift":       0.4,
		"osc2.enabled":     1,
		"osc2.mode":        float64(OscAnalog),
		"osc2.detune":      9,
		"osc2.drift":       0.4,
		"voicemode":        float64(ModeMono),
		"portamento":       0.04,
		"filter.enabled":   1,
		"filter.cutoff":    2500,
		"lfo1.enabled":     1,
		"lfo1.rate":        5.5,
		"lfo1.delay":       0.3,
		"lfo1.fadein":      0.5,
		"filter.lfoamount": 0.1,
		"delay.enabled":    1,
		"delay.mix":        0.25,
	},
	"bell": {
		"osc1.mode":      float64(OscFM),
		"osc1.fmratio":   3.5,
		"osc1.fmindex":   4,
		"env.attack":     0.002,
		"env.decay":      1.5,
		"env.sustain":    0,
		"env.release":    1.5,
		"env.curve":      float64(CurveExponential),
		"reverb.enabled": 1,
		"reverb.decay":   1.8,
	},
}

func init() {
	for name, p := range presets {
		for key := range p {
			if _, ok := params[key]; !ok {
				panic("preset " + name + " uses unknown parameter " + key)
			}
		}
	}
}

// LoadPreset resets the engine to the default patch and applies the named
// preset on top.
func LoadPreset(name string, e *Engine) error {
	p, ok := presets[name]
	if !ok {
		return fmt.Errorf("unknown preset %s", name)
	}
	e.UpdateConfig(func(c *SynthesizerVoiceConfig) {
		*c = DefaultConfig()
		for key, value := range p {
			params[key].set(c, value)
		}
	})
	return nil
}

// PresetNames lists the available presets, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
