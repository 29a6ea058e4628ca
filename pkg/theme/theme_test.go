package theme

import "testing"

func TestTokensFor(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Tokens
	}{
		{"dark", Dark, darkTokens},
		{"light", Light, lightTokens},
		{"empty defaults to dark", "", darkTokens},
		{"unknown defaults to dark", "solarized", darkTokens},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TokensFor(tt.in); got != tt.want {
				t.Errorf("TokensFor(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestConfig(t *testing.T) {
	cfg := Config(Light)

	if cfg["type"] != Light {
		t.Errorf("type = %v, want light", cfg["type"])
	}
	view, ok := cfg["view"].(map[string]any)
	if !ok || view["viewFill"] != lightTokens.Background {
		t.Errorf("view = %v", cfg["view"])
	}
	if cfg["color"] != lightTokens.Text {
		t.Errorf("color = %v", cfg["color"])
	}

	if Config("unknown")["type"] != Dark {
		t.Error("unknown theme did not fall back to dark")
	}
}
