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
	"math"
	"time"
)

// Global follows a listener base spread over three regions, each with its
// own evening peak. Activity never drops below 35%.
// Americas: 6PM - 11PM EST = 23:00 - 04:00 UTC
// Europe: 6PM - 11PM CET = 17:00 - 22:00 UTC
// Asia: 6PM - 11PM JST = 09:00 - 14:00 UTC
// Weekend: 115% of weekday
type Global struct {
	tz *time.Location
}

// NewGlobal creates a new Global profile. The timezone is ignored; regional
// peaks are fixed in UTC.
func NewGlobal(tz *time.Location) Profile {
	return &Global{tz: tz}
}

func (p *Global) Name() string {
	return "global"
}

func (p *Global) Description() string {
	return "Listeners in the Americas, Europe and Asia (24/7, rolling peaks)"
}

func (p *Global) Level(t time.Time) float64 {
	utc := t.UTC()
	hour := utc.Hour()

	combined := math.Max(peakContribution(hour, 23, 4),
		math.Max(peakContribution(hour, 17, 22), peakContribution(hour, 9, 14)))

	activity := 0.35 + 0.65*combined
	if isWeekend(utc.Weekday()) {
		activity *= 1.15
	}
	return activity
}

// peakContribution returns 1 inside [peakStart, peakEnd), tapering over the
// two hours either side. Peaks may wrap past midnight.
func peakContribution(hour, peakStart, peakEnd int) float64 {
	inside := hour >= peakStart && hour < peakEnd
	if peakStart > peakEnd {
		inside = hour >= peakStart || hour < peakEnd
	}
	if inside {
		return 1.0
	}

	switch hoursBetween(hour, peakStart) {
	case 1:
		return 0.6
	case 2:
		return 0.3
	}
	switch hoursBetween(peakEnd, hour) {
	case 0:
		return 0.6
	case 1:
		return 0.3
	}
	return 0.0
}

// hoursBetween returns the hours from a forward to b on a 24-hour clock.
func hoursBetween(a, b int) int {
	return ((b-a)%24 + 24) % 24
}
