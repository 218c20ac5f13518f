//-------------------------------------------------------------------------
//
// pgEdge DWH ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package profiles

import (
	"time"
)

// Commuter follows listeners who play music on the way to and from work.
// Morning commute: 7AM - 9AM (100%)
// Working hours: 9AM - 5PM (35%, background listening)
// Lunch: 12PM - 1PM (60%)
// Evening commute: 5PM - 7PM (100%)
// Evening: 7PM - 11PM (ramp down from 50% to 10%)
// Night: 11PM - 6AM (5%)
// Weekend: flat 40% from 10AM to 10PM, 5% otherwise
type Commuter struct {
	tz *time.Location
}

// NewCommuter creates a new Commuter profile.
func NewCommuter(tz *time.Location) Profile {
	return &Commuter{tz: tz}
}

func (p *Commuter) Name() string {
	return "commuter"
}

func (p *Commuter) Description() string {
	return "Commute peaks at 8AM and 6PM on weekdays"
}

func (p *Commuter) Level(t time.Time) float64 {
	t = t.In(p.tz)
	hour := t.Hour()

	if isWeekend(t.Weekday()) {
		if hour >= 10 && hour < 22 {
			return 0.40
		}
		return 0.05
	}

	decimalHour := float64(hour) + float64(t.Minute())/60.0

	switch {
	case hour < 6 || hour >= 23:
		return 0.05
	case hour < 7:
		// Waking up: ramp from 5% to 100%
		return 0.05 + 0.95*(decimalHour-6.0)
	case hour < 9:
		return 1.0
	case hour == 12:
		return 0.60
	case hour < 17:
		return 0.35
	case hour < 19:
		return 1.0
	default:
		return 0.50 - 0.40*(decimalHour-19.0)/4.0
	}
}
