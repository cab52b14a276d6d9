package timer

import (
	"testing"
	"time"
)

func TestJulianDay(t *testing.T) {
	tests := []struct {
		name string
		time time.Time
		want int
	}{
		{"epoch", time.Date(1900, 3, 1, 0, 0, 0, 0, time.UTC), 1},
		{"millennium", time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), 36466},
		{"sowing", time.Date(2002, 4, 16, 0, 0, 0, 0, time.UTC), 37302},
		{"before noon rounds down", time.Date(2002, 4, 16, 11, 0, 0, 0, time.UTC), 37302},
		{"after noon rounds up", time.Date(2002, 4, 16, 13, 0, 0, 0, time.UTC), 37303},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := JulianDay(tt.time); got != tt.want {
				t.Errorf("JulianDay(%v) = %d, want %d", tt.time, got, tt.want)
			}
		})
	}
}

func TestFromJulianDay(t *testing.T) {
	want := time.Date(2002, 4, 16, 0, 0, 0, 0, time.UTC)
	if got := FromJulianDay(37302); !got.Equal(want) {
		t.Errorf("FromJulianDay(37302) = %v, want %v", got, want)
	}
	want = time.Date(2002, 4, 16, 6, 0, 0, 0, time.UTC)
	if got := FromJulianDay(37302.25); !got.Equal(want) {
		t.Errorf("FromJulianDay(37302.25) = %v, want %v", got, want)
	}
}

func TestTimer(t *testing.T) {
	tm := NewFromJulianDay(37302, time.Hour)
	if tm.StepMinutes() != 60 {
		t.Errorf("StepMinutes = %v, want 60", tm.StepMinutes())
	}
	if tm.StepDays() != 1.0/24 {
		t.Errorf("StepDays = %v, want 1/24", tm.StepDays())
	}

	steps := 0
	for tm.Before(37303) {
		tm.Tick()
		steps++
	}
	if steps != 48 {
		t.Errorf("ran %d hourly steps through day 37303, want 48", steps)
	}
	if tm.JulianDay() != 37304 {
		t.Errorf("JulianDay after run = %d, want 37304", tm.JulianDay())
	}
}
