package profiles

import (
	"time"
)

// Evening follows listeners in one region who play most after work.
// Night: 12AM - 6AM (10% of peak)
// Morning: 6AM - 12PM (35%)
// Afternoon: 12PM - 6PM (55%)
// Evening peak: 6PM - 11PM (100%)
// Late night: 11PM - 12AM (60%)
// Weekend: 125% of weekday, with the afternoon as busy as the evening
type Evening struct {
	tz *time.Location
}

// NewEvening creates a new Evening profile.
func NewEvening(tz *time.Location) Profile {
	return &Evening{tz: tz}
}

func (p *Evening) Name() string {
	return "evening"
}

func (p *Evening) Description() string {
	return "Regional listeners, evening peak (6PM-11PM)"
}

func (p *Evening) Level(t time.Time) float64 {
	t = t.In(p.tz)
	hour := t.Hour()
	weekend := isWeekend(t.Weekday())

	var base float64
	switch {
	case hour < 6:
		base = 0.10
	case hour < 12:
		base = 0.35
	case hour < 18:
		base = 0.55
		if weekend {
			base = 1.0
		}
	case hour < 23:
		base = 1.0
	default:
		base = 0.60
	}

	if weekend {
		base *= 1.25
	}
	return base
}
