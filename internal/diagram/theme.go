package diagram

// DefaultScriptURL is the mermaid bundle loaded by the browser engine.
const DefaultScriptURL = "https://cdn.jsdelivr.net/npm/mermaid@10.9.1/dist/mermaid.min.js"

// Theme is the process-wide engine configuration.
type Theme struct {
	Name           string
	FontFamily     string
	SecurityLevel  string
	LogLevel       string
	ThemeVariables map[string]string
}

// DefaultTheme returns the dark palette used by the viewer.
func DefaultTheme() Theme {
	return Theme{
		Name:          "dark",
		FontFamily:    "Inter, system-ui, sans-serif",
		SecurityLevel: "loose",
		LogLevel:      "error",
		ThemeVariables: map[string]string{
			"primaryColor":       "#60a5fa",
			"primaryTextColor":   "#fff",
			"primaryBorderColor": "#3b82f6",
			"lineColor":          "#34d399",
			"secondaryColor":     "#a78bfa",
			"tertiaryColor":      "#1e293b",
			"background":         "#0f172a",
			"mainBkg":            "#1e293b",
			"secondBkg":          "#334155",
			"textColor":          "#e2e8f0",
			"fontSize":           "16px",
		},
	}
}

// MermaidConfig returns the object passed to mermaid.initialize and written
// to the mmdc config file.
func (t Theme) MermaidConfig() map[string]any {
	vars := make(map[string]any, len(t.ThemeVariables))
	for k, v := range t.ThemeVariables {
		vars[k] = v
	}
	return map[string]any{
		"startOnLoad":    false,
		"theme":          t.Name,
		"fontFamily":     t.FontFamily,
		"securityLevel":  t.SecurityLevel,
		"logLevel":       t.LogLevel,
		"themeVariables": vars,
	}
}
