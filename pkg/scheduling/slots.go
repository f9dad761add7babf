// Package scheduling holds the capacity math for the appointment grid: a day
// is split into fixed-size slots and every appointment occupies each slot it
// overlaps, even partially. Capacity is enforced per slot rather than per
// appointment so that overlapping bookings of different durations contend for
// the same time correctly.
package scheduling

const (
	// SlotSizeMinutes is the width of one capacity slot.
	SlotSizeMinutes = 15
	MinutesPerDay   = 24 * 60
	SlotsPerDay     = MinutesPerDay / SlotSizeMinutes
)

// Span is an occupied stretch of a single UTC day: the appointment's start
// expressed as minutes since midnight UTC plus its total duration.
type Span struct {
	StartMinutes    int
	DurationMinutes int
}

// SlotRange returns the contiguous slot indices a booking starting at
// startMinutes and running durationMinutes occupies. A partially covered
// slot counts as occupied. Indices past the end of the day are dropped.
func SlotRange(startMinutes, durationMinutes int) []int {
	if durationMinutes <= 0 || startMinutes < 0 || startMinutes >= MinutesPerDay {
		return nil
	}
	first := startMinutes / SlotSizeMinutes
	count := (durationMinutes + SlotSizeMinutes - 1) / SlotSizeMinutes
	slots := make([]int, 0, count)
	for i := 0; i < count; i++ {
		idx := first + i
		if idx >= SlotsPerDay {
			break
		}
		slots = append(slots, idx)
	}
	return slots
}

// BuildLoad aggregates how many spans occupy each slot of the day. It is a
// pure projection of the given spans; slots with zero load are absent from
// the map.
func BuildLoad(spans []Span) map[int]int {
	load := make(map[int]int)
	for _, s := range spans {
		for _, idx := range SlotRange(s.StartMinutes, s.DurationMinutes) {
			load[idx]++
		}
	}
	return load
}

// IsRangeFree reports whether every slot in the range has load strictly below
// maxPerSlot. A single saturated slot blocks the whole range.
func IsRangeFree(load map[int]int, slots []int, maxPerSlot int) bool {
	if maxPerSlot <= 0 {
		maxPerSlot = 1
	}
	for _, idx := range slots {
		if load[idx] >= maxPerSlot {
			return false
		}
	}
	return true
}

// DailyAvailability reports, for every candidate start minute on a
// 15-minute cadence, whether a booking of durationMinutes would fit. The
// last candidate is the one whose booking still ends within the day.
func DailyAvailability(load map[int]int, durationMinutes, maxPerSlot int) map[int]bool {
	avail := make(map[int]bool)
	if durationMinutes <= 0 || durationMinutes > MinutesPerDay {
		return avail
	}
	for start := 0; start+durationMinutes <= MinutesPerDay; start += SlotSizeMinutes {
		avail[start] = IsRangeFree(load, SlotRange(start, durationMinutes), maxPerSlot)
	}
	return avail
}
