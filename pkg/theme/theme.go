// Package theme maps named themes to the style token tables consumed by the
// grammar translator. Lookups are pure; there is no state.
package theme

// Theme names.
const (
	Dark  = "dark"
	Light = "light"
)

// Tokens is the style token table for one theme: the text, line, and grid
// colors the translator asserts on axes and legends so chart chrome stays
// legible regardless of renderer defaults.
type Tokens struct {
	Text          string `json:"text"`
	TextSecondary string `json:"textSecondary"`
	Line          string `json:"line"`
	Gridline      string `json:"gridline"`
	Background    string `json:"background"`
}

var darkTokens = Tokens{
	Text:          "#E3E6EB",
	TextSecondary: "#9AA1AC",
	Line:          "#515761",
	Gridline:      "#35393F",
	Background:    "#17191C",
}

var lightTokens = Tokens{
	Text:          "#1D2129",
	TextSecondary: "#4E5969",
	Line:          "#C9CDD4",
	Gridline:      "#E5E6EB",
	Background:    "#FFFFFF",
}

// TokensFor returns the token table for a theme name. Unknown or empty names
// default to the dark variant.
func TokensFor(name string) Tokens {
	switch name {
	case Light:
		return lightTokens
	default:
		return darkTokens
	}
}

// Config returns the renderer theme configuration fragment attached to the
// translated output.
func Config(name string) map[string]any {
	tokens := TokensFor(name)
	return map[string]any{
		"type": typeFor(name),
		"view": map[string]any{
			"viewFill": tokens.Background,
		},
		"color": tokens.Text,
	}
}

func typeFor(name string) string {
	if name == Light {
		return Light
	}
	return Dark
}
