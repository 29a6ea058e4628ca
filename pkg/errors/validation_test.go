package errors

import "testing"

func TestValidateSpecName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"latency-p99", false},
		{"dashboard.cpu", false},
		{"CPU_usage", false},
		{"", true},
		{"../escape", true},
		{"a/b", true},
		{"bad\x00name", true},
		{"tab\tname", true},
		{string(make([]byte, 300)), true},
	}

	for _, tt := range tests {
		err := ValidateSpecName(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateSpecName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestValidateChannelName(t *testing.T) {
	tests := []struct {
		channel string
		wantErr bool
	}{
		{"x", false},
		{"color", false},
		{"custom-channel", false},
		{"", true},
		{"two words", true},
		{"ctl\x01", true},
	}

	for _, tt := range tests {
		err := ValidateChannelName(tt.channel)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateChannelName(%q) error = %v, wantErr %v", tt.channel, err, tt.wantErr)
		}
	}
}
