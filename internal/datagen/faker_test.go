//-------------------------------------------------------------------------
//
// pgEdge DWH ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package datagen

import (
	"strings"
	"testing"
)

func TestNewFaker(t *testing.T) {
	f := NewFaker()
	if f == nil {
		t.Fatal("NewFaker returned nil")
	}
	if f.faker == nil {
		t.Fatal("faker field is nil")
	}
}

func TestNewFakerWithSeed(t *testing.T) {
	seed := uint64(12345)
	f1 := NewFakerWithSeed(seed)
	f2 := NewFakerWithSeed(seed)

	// Same seed should produce same sequence
	for i := 0; i < 10; i++ {
		v1 := f1.Int(0, 1000)
		v2 := f2.Int(0, 1000)
		if v1 != v2 {
			t.Errorf("Same seed produced different values: %d != %d", v1, v2)
		}
	}
	if f1.Name() != f2.Name() {
		t.Error("Same seed produced different names")
	}
}

func TestFakerNames(t *testing.T) {
	f := NewFaker()
	if f.FirstName() == "" {
		t.Error("FirstName returned empty string")
	}
	if f.LastName() == "" {
		t.Error("LastName returned empty string")
	}
	if f.Name() == "" {
		t.Error("Name returned empty string")
	}
}

func TestFakerGender(t *testing.T) {
	f := NewFaker()
	for i := 0; i < 50; i++ {
		g := f.Gender()
		if g != "M" && g != "F" {
			t.Fatalf("Unexpected gender %q", g)
		}
	}
}

func TestFakerLocation(t *testing.T) {
	f := NewFaker()
	loc := f.Location()
	parts := strings.Split(loc, ", ")
	if len(parts) < 2 {
		t.Fatalf("Location should be 'City, ST', got %q", loc)
	}
	if len(parts[len(parts)-1]) != 2 {
		t.Errorf("State should be an abbreviation, got %q", parts[len(parts)-1])
	}
}

func TestFakerCoordinates(t *testing.T) {
	f := NewFaker()
	for i := 0; i < 100; i++ {
		if lat := f.Latitude(); lat < -90 || lat > 90 {
			t.Errorf("Latitude %f out of range", lat)
		}
		if lon := f.Longitude(); lon < -180 || lon > 180 {
			t.Errorf("Longitude %f out of range", lon)
		}
	}
}

func TestFakerUserAgent(t *testing.T) {
	f := NewFaker()
	if f.UserAgent() == "" {
		t.Error("UserAgent returned empty string")
	}
}

func TestFakerTitle(t *testing.T) {
	f := NewFaker()
	title := f.Title(3)
	words := strings.Fields(title)
	if len(words) < 3 {
		t.Errorf("Title should have 3 words, got %q", title)
	}
	for _, w := range words {
		if strings.ToUpper(w[:1]) != w[:1] {
			t.Errorf("Title word %q not capitalised", w)
		}
	}
}

func TestFakerCode(t *testing.T) {
	f := NewFaker()
	code := f.Code("SO", 16)
	if len(code) != 18 {
		t.Errorf("Code length should be 18, got %d (%s)", len(code), code)
	}
	if !strings.HasPrefix(code, "SO") {
		t.Errorf("Code should start with SO, got %s", code)
	}
	for _, r := range code[2:] {
		if !strings.ContainsRune(idCharset, r) {
			t.Errorf("Code contains invalid character %q", r)
		}
	}
}

func TestFakerInt(t *testing.T) {
	f := NewFaker()
	for i := 0; i < 100; i++ {
		v := f.Int(5, 10)
		if v < 5 || v > 10 {
			t.Errorf("Int %d not in range [5, 10]", v)
		}
	}
}

func TestFakerFloat64(t *testing.T) {
	f := NewFaker()
	for i := 0; i < 100; i++ {
		v := f.Float64(1.5, 3.5)
		if v < 1.5 || v > 3.5 {
			t.Errorf("Float64 %f not in range [1.5, 3.5]", v)
		}
	}
}

func TestFakerChance(t *testing.T) {
	f := NewFaker()
	for i := 0; i < 100; i++ {
		if f.Chance(0) {
			t.Fatal("Chance(0) returned true")
		}
	}
}

func TestFakerBool(t *testing.T) {
	f := NewFaker()
	trueCount := 0
	falseCount := 0

	for i := 0; i < 100; i++ {
		if f.Bool() {
			trueCount++
		} else {
			falseCount++
		}
	}

	// Should have a mix of true and false
	if trueCount == 0 || falseCount == 0 {
		t.Error("Bool should produce both true and false values")
	}
}

func TestChoose(t *testing.T) {
	f := NewFaker()
	items := []string{"a", "b", "c", "d", "e"}

	for i := 0; i < 100; i++ {
		chosen := Choose(f, items)
		found := false
		for _, item := range items {
			if item == chosen {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Choose returned item not in slice: %s", chosen)
		}
	}
}

func TestChooseEmpty(t *testing.T) {
	f := NewFaker()
	var items []string

	chosen := Choose(f, items)
	if chosen != "" {
		t.Errorf("Choose on empty slice should return zero value, got: %s", chosen)
	}
}

func TestChooseWeighted(t *testing.T) {
	f := NewFaker()
	items := []string{"a", "b", "c"}
	weights := []int{1, 2, 7} // c should be chosen ~70% of the time

	counts := make(map[string]int)
	iterations := 1000

	for i := 0; i < iterations; i++ {
		chosen := ChooseWeighted(f, items, weights)
		counts[chosen]++
	}

	// c should be most common
	if counts["c"] < counts["a"] || counts["c"] < counts["b"] {
		t.Errorf("Weighted choice distribution unexpected: %v", counts)
	}
}

func TestChooseWeightedEmpty(t *testing.T) {
	f := NewFaker()
	var items []string
	var weights []int

	chosen := ChooseWeighted(f, items, weights)
	if chosen != "" {
		t.Errorf("ChooseWeighted on empty slices should return zero value, got: %s", chosen)
	}
}

// Benchmarks
func BenchmarkFakerCode(b *testing.B) {
	f := NewFaker()
	for i := 0; i < b.N; i++ {
		f.Code("TR", 16)
	}
}

func BenchmarkChooseWeighted(b *testing.B) {
	f := NewFaker()
	items := []string{"a", "b", "c", "d", "e"}
	weights := []int{1, 2, 3, 4, 5}
	for i := 0; i < b.N; i++ {
		ChooseWeighted(f, items, weights)
	}
}
