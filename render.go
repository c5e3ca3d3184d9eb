package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/mrdg/tonic/audio"
)

var waveNames = []string{"sine", "triangle", "saw", "square", "pulse", "noise", "s&h"}
var oscModeNames = []string{"classic", "pd", "fm", "analog"}
var filterKindNames = []string{"multimode", "ladder", "sallen-key", "svf", "formant", "comb"}
var filterModeNames = []string{"lp", "hp", "bp", "notch"}
var voiceModeNames = []string{"poly", "mono", "legato"}

func renderState(e *audio.Engine, w io.Writer) {
	cfg := e.Config()
	level := e.Monitor().GetCPULevel()

	fmt.Fprintf(w, "%s %.0f  %s %s  %s %d/%d  %s %s\n",
		colorize("bpm", colorMagenta), e.BPM(),
		colorize("mode", colorMagenta), voiceModeNames[cfg.VoiceMode],
		colorize("voices", colorMagenta), e.ActiveVoices(), cfg.Polyphony,
		colorize("cpu", colorMagenta), colorize(level.String(), levelColor(level)))

	for i, osc := range cfg.Oscillators {
		state := colorize("off", colorBlack)
		if osc.Enabled {
			state = colorize("on ", colorGreen)
		}
		fmt.Fprintf(w, "osc%d %s %-8s %-7s oct %+d semi %+3d det %+5.1f gain %.2f\n",
			i+1, state, waveNames[osc.Wave], oscModeNames[osc.Mode],
			osc.Octave, osc.Semitone, osc.Detune, osc.Gain)
	}

	if cfg.Filter.Enabled {
		fmt.Fprintf(w, "filter %s %s cutoff %.0f res %.2f drive %.2f env %+.2f\n",
			colorize(filterKindNames[cfg.Filter.Kind], colorBlue),
			filterModeNames[cfg.Filter.Mode],
			cfg.Filter.Cutoff, cfg.Filter.Resonance, cfg.Filter.Drive, cfg.Filter.EnvAmount)
	} else {
		fmt.Fprintf(w, "filter %s\n", colorize("off", colorBlack))
	}

	fmt.Fprintf(w, "amp  a %.3f d %.3f s %.2f r %.3f\n",
		cfg.AmpEnv.Attack, cfg.AmpEnv.Decay, cfg.AmpEnv.Sustain, cfg.AmpEnv.Release)
	fmt.Fprintf(w, "fenv a %.3f d %.3f s %.2f r %.3f\n",
		cfg.FilterEnv.Attack, cfg.FilterEnv.Decay, cfg.FilterEnv.Sustain, cfg.FilterEnv.Release)

	for i, lfo := range cfg.LFOs {
		if !lfo.Enabled {
			continue
		}
		rate := fmt.Sprintf("%.2fhz", lfo.Rate)
		if lfo.Sync {
			rate = fmt.Sprintf("1/%g", 4/lfo.Division)
		}
		fmt.Fprintf(w, "lfo%d %s %s depth %.2f\n", i+1, waveNames[lfo.Wave], rate, lfo.Depth)
	}

	var fx []string
	for _, f := range []struct {
		name    string
		enabled bool
	}{
		{"dist", cfg.Distortion.Enabled},
		{"chorus", cfg.Chorus.Enabled},
		{"phaser", cfg.Phaser.Enabled},
		{"delay", cfg.Delay.Enabled},
		{"reverb", cfg.Reverb.Enabled},
	} {
		if f.enabled {
			fx = append(fx, f.name)
		}
	}
	if len(fx) > 0 {
		fmt.Fprintf(w, "fx %s\n", colorize(strings.Join(fx, " "), colorGreen))
	}
}

func levelColor(level audio.CPULevel) int {
	switch level {
	case audio.CPULow:
		return colorGreen
	case audio.CPUMedium:
		return colorYellow
	default:
		return colorRed
	}
}

const (
	colorBlack = iota + 30
	colorRed
	colorGreen
	colorYellow
	colorBlue
	colorMagenta
)

func colorize(text string, color int) string {
	return fmt.Sprintf("\033[%dm%s\033[0m", color, text)
}
