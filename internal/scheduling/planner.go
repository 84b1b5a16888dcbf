package scheduling

import (
	"context"
	"time"
)

// Business window and granularity for slot generation.
const (
	businessOpen  = TimeOfDay(9 * 60)  // 09:00
	businessClose = TimeOfDay(18 * 60) // 18:00
	slotMinutes   = 10
)

// Daily bands used by the weekly sweep. At most one slot per band per day
// is offered.
const (
	morningStart   = 9
	morningEnd     = 12
	afternoonEnd   = 16
	eveningEnd     = 20
	sweepDays      = 7
	maxSlotsPerDay = 3
)

// SlotID derives the stable identifier for a slot. It depends only on the
// date and start time so booked-state lookups match across calls.
func SlotID(date time.Time, start TimeOfDay) string {
	return date.Format("20060102") + "_" + start.String()
}

// DaySlots generates the full 10-minute slot grid for one date. For the
// current date the earliest offerable start is "now" rounded up to the next
// 10-minute boundary, floored at opening time; other dates start at 09:00.
// Slots whose start time appears in booked are marked unavailable.
func DaySlots(date time.Time, now time.Time, booked map[TimeOfDay]struct{}) []TimeSlot {
	minStart := businessOpen
	if sameDate(date, now) {
		rounded := ceilToSlot(now)
		if rounded > minStart {
			minStart = rounded
		}
	}

	var slots []TimeSlot
	for start := businessOpen; start.AddMinutes(slotMinutes) <= businessClose; start = start.AddMinutes(slotMinutes) {
		if start < minStart {
			continue
		}
		_, taken := booked[start]
		slots = append(slots, TimeSlot{
			SlotID:      SlotID(date, start),
			Start:       start,
			End:         start.AddMinutes(slotMinutes),
			IsAvailable: !taken,
		})
	}
	return slots
}

// ceilToSlot rounds the wall-clock portion of t up to the next slot
// boundary. A time already on a boundary is kept as-is unless it carries
// seconds, which push it to the next boundary.
func ceilToSlot(t time.Time) TimeOfDay {
	minutes := t.Hour()*60 + t.Minute()
	if t.Second() > 0 || t.Nanosecond() > 0 {
		minutes++
	}
	rem := minutes % slotMinutes
	if rem != 0 {
		minutes += slotMinutes - rem
	}
	return TimeOfDay(minutes)
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// SlotSource supplies the single-date availability the sweep is built from.
type SlotSource interface {
	GetAvailableSlots(ctx context.Context, doctorID string, date time.Time) ([]TimeSlot, error)
}

// Planner produces the weekly slot sweep offered after doctor selection.
type Planner struct {
	source SlotSource
	now    func() time.Time
}

// NewPlanner creates a planner reading availability from source.
func NewPlanner(source SlotSource) *Planner {
	return &Planner{source: source, now: time.Now}
}

// Weekly sweeps the next 7 days and keeps at most one available slot per
// band per day: morning (09-12), afternoon (12-16), evening (16-20). The
// returned order is chronological and positional selection depends on it.
func (p *Planner) Weekly(ctx context.Context, doctorID string) ([]DatedSlot, error) {
	now := p.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var sweep []DatedSlot
	for i := 0; i < sweepDays; i++ {
		date := today.AddDate(0, 0, i)
		label := dayLabel(date, i)

		slots, err := p.source.GetAvailableSlots(ctx, doctorID, date)
		if err != nil {
			return nil, err
		}
		for _, slot := range pickBands(slots) {
			sweep = append(sweep, DatedSlot{
				Date:      date,
				DateLabel: label,
				SlotID:    slot.SlotID,
				Start:     slot.Start,
				End:       slot.End,
			})
		}
	}
	return sweep, nil
}

func dayLabel(date time.Time, offset int) string {
	switch offset {
	case 0:
		return "Today"
	case 1:
		return "Tomorrow"
	default:
		return date.Weekday().String()
	}
}

// pickBands keeps the first available slot in each daily band, preserving
// band order: morning, afternoon, evening.
func pickBands(slots []TimeSlot) []TimeSlot {
	var morning, afternoon, evening *TimeSlot
	for i := range slots {
		s := &slots[i]
		if !s.IsAvailable {
			continue
		}
		hour := s.Start.Hour()
		switch {
		case morning == nil && hour >= morningStart && hour <= morningEnd:
			morning = s
		case afternoon == nil && hour > morningEnd && hour <= afternoonEnd:
			afternoon = s
		case evening == nil && hour > afternoonEnd && hour <= eveningEnd:
			evening = s
		}
	}

	picked := make([]TimeSlot, 0, maxSlotsPerDay)
	for _, s := range []*TimeSlot{morning, afternoon, evening} {
		if s != nil {
			picked = append(picked, *s)
		}
	}
	return picked
}
