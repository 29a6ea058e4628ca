package temporal

import (
	"testing"
	"time"
)

func TestParseInstant(t *testing.T) {
	ref := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   any
		want Instant
	}{
		{"nil", nil, 0},
		{"time.Time", ref, ref.UnixMilli()},
		{"int64 epoch ms", int64(1700000000000), 1700000000000},
		{"int", 1700000000000, 1700000000000},
		{"int32", int32(120000), 120000},
		{"float64", float64(1700000000000), 1700000000000},
		{"float32", float32(2048), 2048},
		{"rfc3339", "2024-03-01T12:30:00Z", ref.UnixMilli()},
		{"rfc3339 nano", "2024-03-01T12:30:00.000000000Z", ref.UnixMilli()},
		{"no zone is utc", "2024-03-01T12:30:00", ref.UnixMilli()},
		{"space separator", "2024-03-01 12:30:00", ref.UnixMilli()},
		{"date only", "2024-03-01", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).UnixMilli()},
		{"rfc1123z", "Fri, 01 Mar 2024 12:30:00 +0000", ref.UnixMilli()},
		{"garbage string", "not a time", 0},
		{"empty string", "", 0},
		{"unsupported type", struct{}{}, 0},
		{"bool", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseInstant(tt.in); got != tt.want {
				t.Errorf("ParseInstant(%v) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}
