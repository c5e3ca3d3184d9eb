package audio

import "math"

// ModSource emits a signed unit-range control value once per control tick.
type ModSource interface {
	ModValue() float64
	ModActive() bool
}

// ModTarget folds a modulation value at a given depth into its own
// parameter. Targets own the mapping from unit range to parameter range.
type ModTarget interface {
	ApplyModulation(value, depth float64)
}

// Router evaluates a fixed bank of modulation slots once per control tick.
// Sources and targets are registered by identifier; a slot is only live
// while both of its ends are registered.
type Router struct {
	slots   []ModulationSlot
	sources map[string]ModSource
	targets map[string]ModTarget
}

func NewRouter() *Router {
	return &Router{
		sources: make(map[string]ModSource),
		targets: make(map[string]ModTarget),
	}
}

func (r *Router) RegisterSource(id string, s ModSource) {
	r.sources[id] = s
}

func (r *Router) UnregisterSource(id string) {
	delete(r.sources, id)
}

func (r *Router) RegisterTarget(id string, t ModTarget) {
	r.targets[id] = t
}

func (r *Router) UnregisterTarget(id string) {
	delete(r.targets, id)
}

// SetSlots replaces the slot bank. At most 16 slots are kept.
func (r *Router) SetSlots(slots []ModulationSlot) {
	if len(slots) > maxModSlots {
		slots = slots[:maxModSlots]
	}
	r.slots = slots
}

// Process routes every enabled slot whose source and destination are both
// registered and whose source reports itself active. Unipolar slots take the
// absolute source value.
func (r *Router) Process() {
	for _, slot := range r.slots {
		if !slot.Enabled {
			continue
		}
		src, ok := r.sources[slot.Source]
		if !ok {
			continue
		}
		dst, ok := r.targets[slot.Dest]
		if !ok {
			continue
		}
		if !src.ModActive() {
			continue
		}
		v := src.ModValue()
		if !slot.Bipolar {
			v = math.Abs(v)
		}
		dst.ApplyModulation(v*slot.Depth, slot.Depth)
	}
}
