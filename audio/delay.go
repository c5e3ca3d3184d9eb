package audio

// Longest supported delay time in seconds.
const maxDelayTime = 1.0

type DelayParams struct {
	Enabled  bool
	Mix      float64 // wet/dry, 0..1
	Time     float64 // s, used when Sync is false
	Feedback float64 // 0..0.95
	PingPong bool    // cross-feedback routing
	Width    float64 // stereo width, 0..1, scales the wet gain
	Sync     bool
	Division float64 // fraction of a quarter note
}

func (p *DelayParams) clamp() {
	p.Mix = clamp(p.Mix, 0, 1)
	p.Time = clamp(p.Time, 0.001, maxDelayTime)
	p.Feedback = clamp(p.Feedback, 0, 0.95)
	p.Width = clamp(p.Width, 0, 1)
	p.Division = clamp(p.Division, 1.0/16, 4)
}

// delayFX is a stereo dual-delay-line with either parallel or cross
// (ping-pong) feedback routing.
type delayFX struct {
	p       DelayParams
	bpm     float64
	bufL    []float64
	bufR    []float64
	pos     int
	samples int
}

func newDelayFX(p DelayParams) *delayFX {
	n := int(maxDelayTime*sampleRate) + 1
	d := &delayFX{bpm: 120, bufL: make([]float64, n), bufR: make([]float64, n)}
	d.Update(p)
	return d
}

func (d *delayFX) Update(p DelayParams) {
	p.clamp()
	d.p = p
	d.tick()
}

func (d *delayFX) setBPM(bpm float64) {
	d.bpm = clamp(bpm, 1, 300)
	d.tick()
}

// tick recomputes the delay length, from absolute seconds or from the
// tempo-synced division.
func (d *delayFX) tick() {
	t := d.p.Time
	if d.p.Sync {
		t = clamp(60/d.bpm*d.p.Division, 0.001, maxDelayTime)
	}
	d.samples = clampInt(int(t*sampleRate), 1, len(d.bufL)-1)
}

func (d *delayFX) Process(l, r []float64) {
	wet := d.p.Mix * d.p.Width
	for n := range l {
		read := d.pos - d.samples
		if read < 0 {
			read += len(d.bufL)
		}
		dl, dr := d.bufL[read], d.bufR[read]
		if d.p.PingPong {
			d.bufL[d.pos] = l[n] + dr*d.p.Feedback
			d.bufR[d.pos] = r[n] + dl*d.p.Feedback
		} else {
			d.bufL[d.pos] = l[n] + dl*d.p.Feedback
			d.bufR[d.pos] = r[n] + dr*d.p.Feedback
		}
		l[n] += dl * wet
		r[n] += dr * wet
		d.pos++
		if d.pos == len(d.bufL) {
			d.pos = 0
		}
	}
}

func (d *delayFX) Kind() string      { return "delay" }
func (d *delayFX) Enabled() bool     { return d.p.Enabled }
func (d *delayFX) SetEnabled(b bool) { d.p.Enabled = b }

func (d *delayFX) UpdateParams(m map[string]float64) {
	p := d.p
	flatBool(m, "enabled", &p.Enabled)
	flatFloat(m, "mix", &p.Mix)
	flatFloat(m, "time", &p.Time)
	flatFloat(m, "feedback", &p.Feedback)
	flatBool(m, "pingpong", &p.PingPong)
	flatFloat(m, "width", &p.Width)
	flatBool(m, "sync", &p.Sync)
	flatFloat(m, "division", &p.Division)
	d.Update(p)
}

func (d *delayFX) Params() map[string]float64 {
	return map[string]float64{
		"enabled":  boolFlat(d.p.Enabled),
		"mix":      d.p.Mix,
		"time":     d.p.Time,
		"feedback": d.p.Feedback,
		"pingpong": boolFlat(d.p.PingPong),
		"width":    d.p.Width,
		"sync":     boolFlat(d.p.Sync),
		"division": d.p.Division,
	}
}

func (d *delayFX) Reset() {
	for i := range d.bufL {
		d.bufL[i] = 0
		d.bufR[i] = 0
	}
	d.pos = 0
}

// Flat-map parameter helpers shared by every effect: absent keys leave the
// current value in place.
func flatFloat(m map[string]float64, key string, dest *float64) {
	if v, ok := m[key]; ok {
		*dest = v
	}
}

func flatBool(m map[string]float64, key string, dest *bool) {
	if v, ok := m[key]; ok {
		*dest = v != 0
	}
}

func flatInt(m map[string]float64, key string, dest *int) {
	if v, ok := m[key]; ok {
		*dest = int(v)
	}
}

func boolFlat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
