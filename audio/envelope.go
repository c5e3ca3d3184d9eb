package audio

import (
	"math"
	"sort"
)

type envelopeState int

const (
	stateIdle envelopeState = iota
	stateAttack
	stateDecay
	stateSustain
	stateRelease
)

// expFloor keeps exponential ramps away from the zero-to-zero degenerate
// case: any endpoint is floored to this before an exponential step.
const expFloor = 1e-4

// releaseGrace gives the release ramp time to finish before the envelope is
// declared inactive.
const releaseGrace = 0.1 // s

// adsrEnvelope is a four-phase state machine evaluated per sample. A voice
// owns two: one for amplitude, one for filter cutoff. End of life is
// detected by counting samples since the release trigger against the
// scheduled release duration, not by polling the ramp value.
type adsrEnvelope struct {
	params ADSREnvelopeParams
	state  envelopeState
	value  float64
	peak   float64

	segStart     float64
	segTarget    float64
	segPos       int
	segLen       int
	releaseCount int
	releaseLen   int
}

func (e *adsrEnvelope) setParams(p ADSREnvelopeParams) {
	clampEnv(&p)
	e.params = p
}

// triggerAttack starts the attack->decay->sustain machine. Retriggering
// while active cancels the pending segment and ramps from the current value.
func (e *adsrEnvelope) triggerAttack(velocity float64) {
	velocity = clamp(velocity, 0, 1)
	e.peak = velocity * (1 - e.params.Sensitivity*(1-velocity))
	e.releaseCount = 0
	e.startSegment(stateAttack, e.value, e.peak, e.params.Attack)
}

func (e *adsrEnvelope) triggerRelease() {
	if e.state == stateIdle || e.state == stateRelease {
		return
	}
	e.releaseLen = int(e.params.Release * sampleRate)
	e.releaseCount = 0
	e.startSegment(stateRelease, e.value, 0, e.params.Release)
}

func (e *adsrEnvelope) startSegment(state envelopeState, from, to, duration float64) {
	e.state = state
	e.segStart = from
	e.segTarget = to
	e.segPos = 0
	e.segLen = int(duration * sampleRate)
	if e.segLen < 1 {
		e.segLen = 1
	}
}

// next advances the envelope by one sample and returns its value.
func (e *adsrEnvelope) next() float64 {
	switch e.state {
	case stateIdle:
		e.value = 0
	case stateAttack:
		e.value = e.interp()
		if e.segPos >= e.segLen {
			e.startSegment(stateDecay, e.peak, e.peak*e.params.Sustain, e.params.Decay)
		}
	case stateDecay:
		e.value = e.interp()
		if e.segPos >= e.segLen {
			e.state = stateSustain
			e.value = e.peak * e.params.Sustain
		}
	case stateSustain:
		e.value = e.peak * e.params.Sustain
	case stateRelease:
		e.value = e.interp()
		e.releaseCount++
		if e.releaseCount > e.releaseLen+int(releaseGrace*sampleRate) {
			e.state = stateIdle
			e.value = 0
		}
	}
	return e.value
}

// interp advances one sample within the current segment.
func (e *adsrEnvelope) interp() float64 {
	e.segPos++
	x := float64(e.segPos) / float64(e.segLen)
	if x > 1 {
		x = 1
	}
	return segmentValue(e.segStart, e.segTarget, x, e.params.Curve)
}

func segmentValue(from, to, x float64, curve CurveKind) float64 {
	if curve == CurveExponential {
		a := math.Max(math.Abs(from), expFloor)
		b := math.Max(math.Abs(to), expFloor)
		sign := 1.0
		if from < 0 || to < 0 {
			sign = -1
		}
		v := sign * a * math.Pow(b/a, x)
		if math.Abs(v) <= expFloor && math.Abs(to) <= expFloor {
			return to
		}
		return v
	}
	return from + (to-from)*x
}

func (e *adsrEnvelope) process(buf []float64) {
	for n := range buf {
		buf[n] *= e.next()
	}
}

func (e *adsrEnvelope) active() bool {
	return e.state != stateIdle
}

func (e *adsrEnvelope) getValue() float64 {
	return e.value
}

// multiStageEnvelope generalizes ADSR to up to 8 breakpoints with linear or
// exponential segments between consecutive points. The first point is pinned
// to (0,0); a single release time ramps from whatever value is current when
// release triggers.
type multiStageEnvelope struct {
	points  []EnvelopePoint
	release float64

	state        envelopeState
	value        float64
	seg          int
	segPos       int
	segLen       int
	segStart     float64
	releaseCount int
	releaseLen   int
	releaseCurve CurveKind
}

const maxEnvelopePoints = 8

func (e *multiStageEnvelope) setPoints(points []EnvelopePoint, release float64) {
	if len(points) > maxEnvelopePoints {
		points = points[:maxEnvelopePoints]
	}
	ps := make([]EnvelopePoint, len(points))
	copy(ps, points)
	sort.SliceStable(ps, func(i, j int) bool { return ps[i].Time < ps[j].Time })
	if len(ps) == 0 || ps[0].Time != 0 {
		ps = append([]EnvelopePoint{{Time: 0, Value: 0}}, ps...)
	}
	ps[0].Value = 0
	e.points = ps
	e.release = clamp(release, 0.001, 10)
}

func (e *multiStageEnvelope) triggerAttack() {
	if len(e.points) < 2 {
		e.state = stateSustain
		e.value = 0
		return
	}
	e.state = stateAttack
	e.seg = 0
	e.releaseCount = 0
	e.startSegment(e.value)
}

func (e *multiStageEnvelope) startSegment(from float64) {
	p0, p1 := e.points[e.seg], e.points[e.seg+1]
	e.segStart = from
	e.segPos = 0
	e.segLen = int((p1.Time - p0.Time) * sampleRate)
	if e.segLen < 1 {
		e.segLen = 1
	}
}

func (e *multiStageEnvelope) triggerRelease() {
	if e.state == stateIdle || e.state == stateRelease {
		return
	}
	e.state = stateRelease
	e.releaseLen = int(e.release * sampleRate)
	e.releaseCount = 0
	e.segStart = e.value
	e.segPos = 0
	e.segLen = e.releaseLen
	if e.segLen < 1 {
		e.segLen = 1
	}
	if len(e.points) > 0 {
		e.releaseCurve = e.points[len(e.points)-1].Curve
	}
}

func (e *multiStageEnvelope) next() float64 {
	switch e.state {
	case stateIdle:
		e.value = 0
	case stateAttack:
		p1 := e.points[e.seg+1]
		e.segPos++
		x := float64(e.segPos) / float64(e.segLen)
		if x > 1 {
			x = 1
		}
		e.value = segmentValue(e.segStart, p1.Value, x, p1.Curve)
		if e.segPos >= e.segLen {
			if e.seg+2 < len(e.points) {
				e.seg++
				e.startSegment(e.value)
			} else {
				e.state = stateSustain
			}
		}
	case stateSustain:
		// hold the final breakpoint value
	case stateRelease:
		e.segPos++
		x := float64(e.segPos) / float64(e.segLen)
		if x > 1 {
			x = 1
		}
		e.value = segmentValue(e.segStart, 0, x, e.releaseCurve)
		e.releaseCount++
		if e.releaseCount > e.releaseLen+int(releaseGrace*sampleRate) {
			e.state = stateIdle
			e.value = 0
		}
	}
	return e.value
}

func (e *multiStageEnvelope) active() bool {
	return e.state != stateIdle
}

func (e *multiStageEnvelope) getValue() float64 {
	return e.value
}
