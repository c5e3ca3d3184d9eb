package audio

import (
	"io"

	"github.com/youpy/go-wav"
)

// Bounce renders the engine offline for the given number of beats at the
// current tempo and writes a 16-bit stereo WAV. If notes are given they are
// held for the full duration and the release tail is rendered after them.
// The caller must make sure no audio callback is pulling from the engine
// concurrently.
func Bounce(e *Engine, w io.Writer, beats float64, notes []int, velocity float64) error {
	secs := beats * 60 / e.BPM()
	total := int(secs * sampleRate)
	if total < blockSize {
		total = blockSize
	}

	var tail int
	var ids []int
	if len(notes) > 0 {
		cfg := e.Config()
		tail = int((cfg.AmpEnv.Release + releaseGrace) * sampleRate)
		for _, note := range notes {
			if id := e.PlayNote(note, velocity); id > 0 {
				ids = append(ids, id)
			}
		}
	}

	out := wav.NewWriter(w, uint32(total+tail), 2, sampleRate, 16)
	buf := [][]float32{make([]float32, bufferSize), make([]float32, bufferSize)}
	samples := make([]wav.Sample, bufferSize)

	render := func(n int) error {
		for n > 0 {
			chunk := n
			if chunk > bufferSize {
				chunk = bufferSize
			}
			l, r := buf[0][:chunk], buf[1][:chunk]
			for i := 0; i < chunk; i++ {
				l[i], r[i] = 0, 0
			}
			e.Process([][]float32{l, r})
			for i := 0; i < chunk; i++ {
				samples[i].Values[0] = pcm16(l[i])
				samples[i].Values[1] = pcm16(r[i])
			}
			if err := out.WriteSamples(samples[:chunk]); err != nil {
				return err
			}
			n -= chunk
		}
		return nil
	}

	if err := render(total); err != nil {
		return err
	}
	for _, id := range ids {
		e.StopNote(id)
	}
	if err := render(tail); err != nil {
		return err
	}
	e.StopAllNotes()
	return nil
}

func pcm16(s float32) int {
	v := int(s * 32767)
	if v > 32767 {
		v = 32767
	}
	if v < -32768 {
		v = -32768
	}
	return v
}
