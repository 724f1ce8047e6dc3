package interval

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestParseClock(t *testing.T) {
	cases := map[string]Clock{
		"08:00":    480,
		"8:30":     510,
		"23:59":    1439,
		"24:00":    1440,
		"10:15:00": 615,
	}
	for in, want := range cases {
		got, err := ParseClock(in)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		if got != want {
			t.Fatalf("parse %q: expected %d, got %d", in, want, got)
		}
	}

	for _, bad := range []string{"", "8", "08:60", "24:01", "aa:00", "10:15:30", "10:5"} {
		if _, err := ParseClock(bad); !errors.Is(err, ErrInvalidClock) {
			t.Fatalf("expected invalid clock for %q, got %v", bad, err)
		}
	}
}

func TestClockRendering(t *testing.T) {
	c := MustClock("09:05")
	if c.String() != "09:05" || c.SQL() != "09:05:00" {
		t.Fatalf("unexpected rendering %s / %s", c.String(), c.SQL())
	}
	raw, err := json.Marshal(struct {
		At Clock `json:"at"`
	}{At: c})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `{"at":"09:05"}` {
		t.Fatalf("unexpected json %s", raw)
	}
	var back struct {
		At Clock `json:"at"`
	}
	if err := json.Unmarshal([]byte(`{"at":"17:45"}`), &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.At != MustClock("17:45") {
		t.Fatalf("unexpected decoded clock %s", back.At)
	}
}

func TestOverlapIsHalfOpen(t *testing.T) {
	a := Interval{Start: MustClock("10:00"), End: MustClock("10:30")}
	touching := Interval{Start: MustClock("10:30"), End: MustClock("11:00")}
	if a.Overlaps(touching) || touching.Overlaps(a) {
		t.Fatalf("touching intervals must not overlap")
	}
	inside := Interval{Start: MustClock("10:10"), End: MustClock("10:20")}
	if !a.Overlaps(inside) || !inside.Overlaps(a) {
		t.Fatalf("nested intervals must overlap")
	}
	if !a.ExtendEnd(15).Overlaps(touching) {
		t.Fatalf("buffered interval must overlap the touching one")
	}
	if !a.Contains(inside) || inside.Contains(a) {
		t.Fatalf("unexpected containment result")
	}
}

func TestIntervalValidity(t *testing.T) {
	if (Interval{Start: 600, End: 600}).Valid() {
		t.Fatalf("empty interval must be invalid")
	}
	if (Interval{Start: 1400, End: 1450}).Valid() {
		t.Fatalf("interval past midnight must be invalid")
	}
	if !New(MustClock("08:00"), 45).Valid() {
		t.Fatalf("expected valid interval")
	}
	if New(MustClock("08:00"), 45).Minutes() != 45 {
		t.Fatalf("unexpected length")
	}
}

func TestSortedUnique(t *testing.T) {
	got := SortedUnique([]Clock{600, 480, 600, 495, 480})
	want := []Clock{480, 495, 600}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestDateHelpers(t *testing.T) {
	d, err := ParseDate("2026-03-02")
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	if d.Weekday() != time.Monday {
		t.Fatalf("expected monday, got %s", d.Weekday())
	}
	loc := time.FixedZone("UTC-3", -3*3600)
	at := MustClock("08:30").On(d, loc)
	if at.Hour() != 8 || at.Minute() != 30 || at.Location() != loc {
		t.Fatalf("unexpected absolute time %s", at)
	}
	if DaysBetween(d, d.AddDate(0, 0, 30)) != 30 {
		t.Fatalf("unexpected day distance")
	}
	if !SameDate(at, d) {
		t.Fatalf("expected same calendar date")
	}
}
