package util

import (
	"testing"
	"time"
)

func TestParseTime(t *testing.T) {
	want := time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)
	cases := []struct {
		in string
		ok bool
		at time.Time
	}{
		{"2024-03-01T14:30:00Z", true, want},
		{"2024-03-01T09:30:00-05:00", true, want},
		{"2024-03-01T14:30:00", true, want},
		{" 1709303400 ", true, want},
		{"2024-03-01", true, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"", false, time.Time{}},
		{"yesterday", false, time.Time{}},
		{"-5", false, time.Time{}},
	}
	for _, tc := range cases {
		got, ok := ParseTime(tc.in)
		if ok != tc.ok {
			t.Fatalf("%q: ok = %v, want %v", tc.in, ok, tc.ok)
		}
		if ok && (!got.Equal(tc.at) || got.Location() != time.UTC) {
			t.Fatalf("%q: got %v, want %v", tc.in, got, tc.at)
		}
	}
}
