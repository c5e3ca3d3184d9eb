package audio

import "testing"

func arpNotes(a *arpeggiator, cfg *SynthesizerVoiceConfig, n int) []int {
	notes := make([]int, n)
	for i := range notes {
		notes[i], _ = a.pick(cfg)
	}
	return notes
}

func TestArpUp(t *testing.T) {
	a := newArpeggiator(nil)
	a.noteOn(1, 64, 1)
	a.noteOn(2, 60, 1)
	a.noteOn(3, 67, 1)

	cfg := DefaultConfig()
	cfg.Arp.Mode = ArpUp

	if want, got := []int{60, 64, 67, 60}, arpNotes(a, &cfg, 4); !equalInts(want, got) {
		t.Errorf("up pattern: want %v, got %v", want, got)
	}
}

func TestArpDown(t *testing.T) {
	a := newArpeggiator(nil)
	a.noteOn(1, 60, 1)
	a.noteOn(2, 64, 1)
	a.noteOn(3, 67, 1)

	cfg := DefaultConfig()
	cfg.Arp.Mode = ArpDown

	if want, got := []int{67, 64, 60, 67}, arpNotes(a, &cfg, 4); !equalInts(want, got) {
		t.Errorf("down pattern: want %v, got %v", want, got)
	}
}

func TestArpUpDown(t *testing.T) {
	a := newArpeggiator(nil)
	a.noteOn(1, 60, 1)
	a.noteOn(2, 64, 1)
	a.noteOn(3, 67, 1)

	cfg := DefaultConfig()
	cfg.Arp.Mode = ArpUpDown

	if want, got := []int{60, 64, 67, 64, 60, 64}, arpNotes(a, &cfg, 6); !equalInts(want, got) {
		t.Errorf("up-down pattern: want %v, got %v", want, got)
	}
}

func TestArpOctaves(t *testing.T) {
	a := newArpeggiator(nil)
	a.noteOn(1, 60, 1)
	a.noteOn(2, 64, 1)

	cfg := DefaultConfig()
	cfg.Arp.Mode = ArpUp
	cfg.Arp.Octaves = 2

	if want, got := []int{60, 64, 72, 76, 60}, arpNotes(a, &cfg, 5); !equalInts(want, got) {
		t.Errorf("two-octave pattern: want %v, got %v", want, got)
	}
}

func TestArpNoteOff(t *testing.T) {
	a := newArpeggiator(nil)
	a.noteOn(1, 60, 1)
	a.noteOn(2, 64, 1)
	a.noteOff(1)

	cfg := DefaultConfig()
	if want, got := []int{64, 64}, arpNotes(a, &cfg, 2); !equalInts(want, got) {
		t.Errorf("after note off: want %v, got %v", want, got)
	}
}

func TestArpDuplicateNoteOn(t *testing.T) {
	a := newArpeggiator(nil)
	a.noteOn(1, 60, 1)
	a.noteOn(2, 60, 1)
	if want, got := 1, len(a.held); want != got {
		t.Errorf("held notes: want %v, got %v", want, got)
	}
}

func TestArpEngineScenario(t *testing.T) {
	e := testEngine()
	e.SetBPM(120)
	e.UpdateConfig(func(c *SynthesizerVoiceConfig) {
		c.Arp.Enabled = true
		c.Arp.Mode = ArpUp
		c.Arp.Division = 0.25
	})

	e.PlayNote(60, 1.0)
	e.PlayNote(64, 1.0)
	renderBuffers(e, 2)

	// The arpeggiator holds at most one sounding voice.
	if got := e.ActiveVoices(); got > 1 {
		t.Errorf("arp voices: want at most 1, got %v", got)
	}

	e.StopAllNotes()
	renderBuffers(e, 1)
	if want, got := 0, e.ActiveVoices(); want != got {
		t.Errorf("arp voices after stop: want %v, got %v", want, got)
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
