//-------------------------------------------------------------------------
//
// pgEdge DWH ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package profiles implements listening profiles: how play activity in the
// generated event logs rises and falls over the day and week.
package profiles

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Default is the profile used when none is configured.
const Default = "evening"

// Profile describes listener activity over time.
type Profile interface {
	// Name returns the profile name.
	Name() string

	// Description returns a human-readable description.
	Description() string

	// Level returns the relative listening activity at t, 0.0 to 1.0+.
	// Values above 1.0 mean busier than a normal weekday peak.
	Level(t time.Time) float64
}

var registry = make(map[string]func(tz *time.Location) Profile)

// Register adds a profile constructor to the registry.
func Register(name string, constructor func(tz *time.Location) Profile) {
	registry[name] = constructor
}

// Get retrieves a profile by name, evaluated in the given timezone.
func Get(name, timezone string) (Profile, error) {
	constructor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown profile: %s", name)
	}

	var loc *time.Location
	var err error

	switch timezone {
	case "", "UTC":
		loc = time.UTC
	case "Local":
		loc = time.Local
	default:
		loc, err = time.LoadLocation(timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid timezone: %w", err)
		}
	}

	return constructor(loc), nil
}

// List returns all registered profile names, sorted.
func List() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HourWeights returns one weight per hour of the UTC day starting at day,
// sampled at the middle of each hour. Every weight is at least 1 so no hour
// is impossible.
func HourWeights(p Profile, day time.Time) []int {
	weights := make([]int, 24)
	for h := range weights {
		t := day.Add(time.Duration(h)*time.Hour + 30*time.Minute)
		weights[h] = max(1, int(math.Round(p.Level(t)*100)))
	}
	return weights
}

func isWeekend(d time.Weekday) bool {
	return d == time.Saturday || d == time.Sunday
}

func init() {
	Register("commuter", NewCommuter)
	Register("evening", NewEvening)
	Register("global", NewGlobal)
}
