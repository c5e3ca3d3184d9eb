package audio

import (
	"testing"
	"time"
)

// fakeClock feeds the monitor a deterministic frame interval.
func fakeClock(step time.Duration) func() time.Time {
	t := time.Unix(0, 0)
	return func() time.Time {
		t = t.Add(step)
		return t
	}
}

func runFrames(m *CPUMonitor, n int) {
	for i := 0; i < n; i++ {
		m.StartFrame()
	}
}

func TestCPUMonitorLevels(t *testing.T) {
	for _, tt := range []struct {
		step time.Duration
		want CPULevel
	}{
		{1 * time.Millisecond, CPULow},
		{3 * time.Millisecond, CPUMedium},
		{5 * time.Millisecond, CPUHigh},
		{7 * time.Millisecond, CPUCritical},
	} {
		m := NewCPUMonitor()
		m.now = fakeClock(tt.step)
		runFrames(m, 41) // enough calls to record several samples
		if got := m.GetCPULevel(); got != tt.want {
			t.Errorf("%v frames: want level %v, got %v", tt.step, tt.want, got)
		}
	}
}

func TestCPUMonitorQuality(t *testing.T) {
	m := NewCPUMonitor()
	m.now = fakeClock(7 * time.Millisecond)
	runFrames(m, 41)

	q := m.GetQualitySettings()
	if want, got := 1, q.Oversampling; want != got {
		t.Errorf("critical oversampling: want %v, got %v", want, got)
	}
	if q.EnablePolyBLEP || q.EnableAnalogModeling || q.EnableHighQualityFilters {
		t.Errorf("critical quality kept expensive features on: %+v", q)
	}

	m = NewCPUMonitor()
	m.now = fakeClock(1 * time.Millisecond)
	runFrames(m, 41)
	q = m.GetQualitySettings()
	if want, got := 4, q.Oversampling; want != got {
		t.Errorf("low-load oversampling: want %v, got %v", want, got)
	}
	if !q.EnablePolyBLEP || !q.EnableAnalogModeling || !q.EnableHighQualityFilters {
		t.Errorf("low load disabled features: %+v", q)
	}
}

func TestCPUMonitorStartsLow(t *testing.T) {
	m := NewCPUMonitor()
	if want, got := CPULow, m.GetCPULevel(); want != got {
		t.Errorf("initial level: want %v, got %v", want, got)
	}
}

func TestCPUMonitorWindow(t *testing.T) {
	m := NewCPUMonitor()
	step := 10 * time.Millisecond
	now := time.Unix(0, 0)
	m.now = func() time.Time {
		now = now.Add(step)
		return now
	}
	runFrames(m, 50)
	if want, got := CPUCritical, m.GetCPULevel(); want != got {
		t.Fatalf("want %v, got %v", want, got)
	}

	// A long stretch of fast frames flushes the slow samples out of the
	// window and recovers the level.
	step = 1 * time.Millisecond
	runFrames(m, cpuWindow*cpuRecordEvery+cpuRecordEvery)
	if want, got := CPULow, m.GetCPULevel(); want != got {
		t.Errorf("after recovery: want %v, got %v", want, got)
	}
}
