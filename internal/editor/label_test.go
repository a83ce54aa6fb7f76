package editor

import (
	"errors"
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 15, 30, 0, 0, time.UTC)
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		join Date
		want int
	}{
		{name: "same day", now: day(2025, 3, 10), join: Date{2025, 3, 10}, want: 0},
		{name: "five days", now: day(2025, 3, 10), join: Date{2025, 3, 5}, want: 5},
		{name: "across leap day", now: day(2024, 3, 1), join: Date{2024, 2, 28}, want: 2},
		{name: "future", now: day(2025, 3, 10), join: Date{2025, 3, 12}, want: -2},
		{name: "twenty years", now: day(2025, 1, 1), join: Date{2005, 1, 1}, want: 7305},
	}
	for _, tt := range tests {
		if got := DaysBetween(tt.now, tt.join); got != tt.want {
			t.Fatalf("%s: DaysBetween = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestDaysBetweenUsesLocalCalendarDate(t *testing.T) {
	loc := time.FixedZone("ICT", 7*60*60)
	// 18:00 UTC on the 9th is already the 10th in UTC+7.
	now := time.Date(2025, 3, 9, 18, 0, 0, 0, time.UTC).In(loc)
	if got := DaysBetween(now, Date{2025, 3, 5}); got != 5 {
		t.Fatalf("DaysBetween = %d, want 5", got)
	}
}

func TestHoursSinceClampsFutureDates(t *testing.T) {
	if got := HoursSince(day(2025, 3, 10), Date{2026, 1, 1}); got != 0 {
		t.Fatalf("future join date must clamp to 0, got %d", got)
	}
}

func TestHoursSinceIsMonotonic(t *testing.T) {
	join := Date{2025, 2, 1}
	prev := -1
	for now := day(2025, 1, 1); now.Before(day(2025, 6, 1)); now = now.Add(7 * time.Hour) {
		got := HoursSince(now, join)
		if got < prev {
			t.Fatalf("hours went backwards at %v: %d < %d", now, got, prev)
		}
		if got < 0 {
			t.Fatalf("hours negative at %v: %d", now, got)
		}
		prev = got
	}
}

func TestHoursLabel(t *testing.T) {
	now := day(2025, 3, 10)
	join := DateOf(now.AddDate(0, 0, -5))

	if got := NewHoursLabeler("vi").Label(now, &join); got != "120 giờ" {
		t.Fatalf("vi label = %q, want %q", got, "120 giờ")
	}
	if got := NewHoursLabeler("en-US").Label(now, &join); got != "120 hours" {
		t.Fatalf("en label = %q, want %q", got, "120 hours")
	}
	if got := NewHoursLabeler("not a locale!").Label(now, &join); got != "120 giờ" {
		t.Fatalf("fallback label = %q, want %q", got, "120 giờ")
	}
	if got := NewHoursLabeler("vi").Label(now, nil); got != "" {
		t.Fatalf("unset date must give no label, got %q", got)
	}
}

func TestHoursLabelNumberIsNotGrouped(t *testing.T) {
	now := day(2025, 3, 10)
	join := Date{2015, 3, 10}
	tests := []struct {
		locale string
		want   string
	}{
		{locale: "vi", want: "87672 giờ"},
		{locale: "en", want: "87672 hours"},
	}
	for _, tt := range tests {
		if got := NewHoursLabeler(tt.locale).Label(now, &join); got != tt.want {
			t.Fatalf("%s label = %q, want %q", tt.locale, got, tt.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2005-06-07 ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d != (Date{2005, time.June, 7}) {
		t.Fatalf("unexpected date %+v", d)
	}
	if d.String() != "2005-06-07" {
		t.Fatalf("unexpected string %q", d.String())
	}

	for _, bad := range []string{"", "07/06/2005", "2005-13-01"} {
		if _, err := ParseDate(bad); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("ParseDate(%q): expected ErrInvalidDate, got %v", bad, err)
		}
	}
}
