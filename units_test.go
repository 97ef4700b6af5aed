package netsim

import (
	"errors"
	"testing"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{"bare microseconds", "500", 500, false},
		{"explicit microseconds", "500us", 500, false},
		{"milliseconds", "500ms", 500_000, false},
		{"seconds", "10s", 10_000_000, false},
		{"minutes", "2m", 120_000_000, false},
		{"hours", "1h", 3_600_000_000, false},
		{"malformed", "abc", 0, true},
		{"unknown suffix", "5ns", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDuration(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrConfiguration) {
					t.Fatalf("ParseDuration(%q): expected ErrConfiguration, got %v", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDuration(%q): unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Fatalf("ParseDuration(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseBandwidth(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{"bare bits", "8", 8, false},
		{"explicit bps", "8bps", 8, false},
		{"Kbps", "56Kbps", 56 * 1024, false},
		{"Mbps", "1Mbps", 1 << 20, false},
		{"Gbps", "1Gbps", 1 << 30, false},
		{"malformed", "fast", 0, true},
		{"unknown suffix", "5Tbps", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBandwidth(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrConfiguration) {
					t.Fatalf("ParseBandwidth(%q): expected ErrConfiguration, got %v", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseBandwidth(%q): unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Fatalf("ParseBandwidth(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}
