package progression

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("ParseDate() error = %v", err)
	}
	if d.String() != "2024-02-29" {
		t.Errorf("String() = %q, want %q", d.String(), "2024-02-29")
	}

	if _, err := ParseDate("2024-13-01"); err == nil {
		t.Error("ParseDate() should reject month 13")
	}
}

func TestDateScan(t *testing.T) {
	want := NewDate(2024, 5, 6)

	tests := []struct {
		name string
		src  any
		want Date
	}{
		{"nil", nil, Date{}},
		{"string", "2024-05-06", want},
		{"bytes", []byte("2024-05-06"), want},
		{"timestamp string", "2024-05-06 13:45:00", want},
		{"time", time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC), want},
		{"empty string", "", Date{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			if err := d.Scan(tt.src); err != nil {
				t.Fatalf("Scan(%v) error = %v", tt.src, err)
			}
			if !d.Equal(tt.want) {
				t.Errorf("Scan(%v) = %v, want %v", tt.src, d, tt.want)
			}
		})
	}

	var d Date
	if err := d.Scan(42); err == nil {
		t.Error("Scan(int) should fail")
	}
}

func TestDateValue(t *testing.T) {
	v, err := Date{}.Value()
	if err != nil || v != nil {
		t.Errorf("zero Value() = %v, %v, want nil", v, err)
	}
	v, err = NewDate(2024, 1, 2).Value()
	if err != nil || v != "2024-01-02" {
		t.Errorf("Value() = %v, %v, want 2024-01-02", v, err)
	}
}

func TestDateArithmetic(t *testing.T) {
	d := NewDate(2024, 12, 30)
	if got := d.AddDays(3).String(); got != "2025-01-02" {
		t.Errorf("AddDays(3) = %s, want 2025-01-02", got)
	}
	if got := d.DaysUntil(NewDate(2025, 1, 9)); got != 10 {
		t.Errorf("DaysUntil() = %d, want 10", got)
	}
	if !d.Before(d.AddDays(1)) || !d.After(d.AddDays(-1)) {
		t.Error("Before/After ordering is wrong")
	}
}

func TestDateOfUsesLocalCalendarDay(t *testing.T) {
	loc := time.FixedZone("UTC-3", -3*60*60)
	late := time.Date(2024, 3, 10, 23, 30, 0, 0, loc)
	if got := DateOf(late).String(); got != "2024-03-10" {
		t.Errorf("DateOf() = %s, want 2024-03-10", got)
	}
}
