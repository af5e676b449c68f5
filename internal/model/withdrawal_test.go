package model

import "testing"

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"2024-01-10", "2024-01-10", false},
		{"2024-01-10T15:04:05Z", "2024-01-10", false},
		{"10/01/2024", "", true},
		{"", "", true},
		{"2024-02-30", "", true},
	}

	for _, tt := range tests {
		got, err := ParseDate(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDate(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDateRange(t *testing.T) {
	r, err := NewDateRange("2024-01-08", "2024-01-14")
	if err != nil {
		t.Fatalf("NewDateRange: %v", err)
	}

	for date, want := range map[string]bool{
		"2024-01-07": false,
		"2024-01-08": true,
		"2024-01-10": true,
		"2024-01-14": true,
		"2024-01-15": false,
	} {
		if got := r.Contains(date); got != want {
			t.Errorf("Contains(%s) = %v, want %v", date, got, want)
		}
	}

	if _, err := NewDateRange("2024-01-14", "2024-01-08"); err == nil {
		t.Error("expected error for reversed range")
	}
}

func TestTotalQuantity(t *testing.T) {
	w := Withdrawal{Items: []LineItem{{QuantityWithdrawn: 3}, {QuantityWithdrawn: 12}}}
	if got := w.TotalQuantity(); got != 15 {
		t.Errorf("TotalQuantity = %d, want 15", got)
	}
}

func TestEnums(t *testing.T) {
	if !ValidCategory("power-tools") || ValidCategory("weapons") {
		t.Error("ValidCategory mismatch")
	}
	if !ValidUnit("meters") || ValidUnit("miles") {
		t.Error("ValidUnit mismatch")
	}
	if !ValidCondition("needs_repair") || ValidCondition("broken") {
		t.Error("ValidCondition mismatch")
	}
}
