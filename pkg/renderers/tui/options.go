package tui

// Theme captures the prefixes the outline renderer uses for each element
// kind. Keep minimal to avoid coupling render logic to ANSI specifics.
type Theme struct {
	Indent    string
	Input     string
	Checked   string
	Unchecked string
}

// DefaultTheme renders inputs as [ value ] and dropdown options as (*) / ( ).
var DefaultTheme = Theme{
	Indent:    "  ",
	Input:     "[ %s ]",
	Checked:   "(*)",
	Unchecked: "( )",
}

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used to collect bindings.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithTheme replaces the outline prefixes. Empty fields keep the default.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		if theme.Indent != "" {
			r.theme.Indent = theme.Indent
		}
		if theme.Input != "" {
			r.theme.Input = theme.Input
		}
		if theme.Checked != "" {
			r.theme.Checked = theme.Checked
		}
		if theme.Unchecked != "" {
			r.theme.Unchecked = theme.Unchecked
		}
	}
}

// WithParser changes how prompted answers become binding values. The default
// reads each answer as a YAML scalar.
func WithParser(parse func(string) (any, error)) Option {
	return func(r *Renderer) {
		if parse != nil {
			r.parse = parse
		}
	}
}
