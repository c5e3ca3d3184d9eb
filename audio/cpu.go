package audio

import (
	"sync/atomic"
	"time"
)

type CPULevel int

const (
	CPULow CPULevel = iota
	CPUMedium
	CPUHigh
	CPUCritical
)

func (l CPULevel) String() string {
	switch l {
	case CPULow:
		return "low"
	case CPUMedium:
		return "medium"
	case CPUHigh:
		return "high"
	default:
		return "critical"
	}
}

// QualitySettings is the governor's advice to the engine, honored for newly
// allocated voices.
type QualitySettings struct {
	Oversampling             int
	EnablePolyBLEP           bool
	EnableAnalogModeling     bool
	EnableHighQualityFilters bool
}

const (
	cpuWindow      = 100 // frame samples kept
	cpuRecordEvery = 4   // record only every Nth frame to bound overhead
)

// CPUMonitor samples the wall-clock interval between successive render
// callbacks and classifies the load into four tiers. StartFrame runs on the
// render thread; the level is read from the control thread, so it is stored
// atomically.
type CPUMonitor struct {
	now     func() time.Time
	last    time.Time
	calls   int
	samples [cpuWindow]float64 // ms
	count   int
	pos     int
	level   atomic.Int32
}

func NewCPUMonitor() *CPUMonitor {
	return &CPUMonitor{now: time.Now}
}

// StartFrame is called once at the top of every render callback.
func (m *CPUMonitor) StartFrame() {
	t := m.now()
	if !m.last.IsZero() {
		m.calls++
		if m.calls%cpuRecordEvery == 0 {
			m.record(float64(t.Sub(m.last)) / float64(time.Millisecond))
		}
	}
	m.last = t
}

func (m *CPUMonitor) record(ms float64) {
	m.samples[m.pos] = ms
	m.pos = (m.pos + 1) % cpuWindow
	if m.count < cpuWindow {
		m.count++
	}
	m.level.Store(int32(m.classify()))
}

func (m *CPUMonitor) classify() CPULevel {
	if m.count == 0 {
		return CPULow
	}
	var sum, max float64
	for i := 0; i < m.count; i++ {
		s := m.samples[i]
		sum += s
		if s > max {
			max = s
		}
	}
	avg := sum / float64(m.count)
	switch {
	case avg < 2 && max < 3:
		return CPULow
	case avg < 4 && max < 5:
		return CPUMedium
	case avg < 6 && max < 8:
		return CPUHigh
	default:
		return CPUCritical
	}
}

func (m *CPUMonitor) GetCPULevel() CPULevel {
	return CPULevel(m.level.Load())
}

// GetQualitySettings maps the current tier to a rendering-quality bundle.
func (m *CPUMonitor) GetQualitySettings() QualitySettings {
	switch m.GetCPULevel() {
	case CPULow:
		return QualitySettings{Oversampling: 4, EnablePolyBLEP: true, EnableAnalogModeling: true, EnableHighQualityFilters: true}
	case CPUMedium:
		return QualitySettings{Oversampling: 2, EnablePolyBLEP: true, EnableAnalogModeling: true, EnableHighQualityFilters: true}
	case CPUHigh:
		return QualitySettings{Oversampling: 1, EnablePolyBLEP: true, EnableAnalogModeling: false, EnableHighQualityFilters: true}
	default:
		return QualitySettings{Oversampling: 1, EnablePolyBLEP: false, EnableAnalogModeling: false, EnableHighQualityFilters: false}
	}
}
