package timecode

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"seconds only", "5", "00:00:05", false},
		{"minutes and seconds", "20.50", "00:20:50", false},
		{"full form", "1:02:15", "01:02:15", false},
		{"already canonical", "01:02:15", "01:02:15", false},
		{"zero", "0", "00:00:00", false},
		{"large hours", "99:00:00", "99:00:00", false},
		{"dot separators", "1.2.3", "01:02:03", false},
		{"minutes out of range", "60:00", "", true},
		{"seconds out of range", "1:60", "", true},
		{"too many groups", "1:2:3:4", "", true},
		{"empty", "", "", true},
		{"non-numeric", "abc", "", true},
		{"non-numeric group", "1:xx", "", true},
		{"empty group", "1::2", "", true},
		{"trailing separator", "1:2:", "", true},
		{"negative group", "1:-2", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Normalize(%q) = %v, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize(%q) error: %v", tt.input, err)
			}
			if got.String() != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got.String(), tt.want)
			}
		})
	}
}

func TestNormalize_RoundTrip(t *testing.T) {
	for _, canonical := range []string{"00:00:00", "00:01:20", "01:02:15", "12:34:56", "99:59:59"} {
		got, err := Normalize(canonical)
		if err != nil {
			t.Fatalf("Normalize(%q) error: %v", canonical, err)
		}
		if got.String() != canonical {
			t.Errorf("Normalize(%q) = %q, want round-trip", canonical, got.String())
		}
	}
}

func TestTimestamp_TotalSeconds(t *testing.T) {
	ts := Timestamp{Hours: 1, Minutes: 2, Seconds: 3}
	if got := ts.TotalSeconds(); got != 3723 {
		t.Errorf("TotalSeconds() = %d, want 3723", got)
	}
}

func TestTimestamp_Before(t *testing.T) {
	a := Timestamp{Minutes: 1, Seconds: 20}
	b := Timestamp{Minutes: 2, Seconds: 45}
	if !a.Before(b) {
		t.Error("00:01:20 should be before 00:02:45")
	}
	if b.Before(a) {
		t.Error("00:02:45 should not be before 00:01:20")
	}
	if a.Before(a) {
		t.Error("Before must be strict")
	}
}
