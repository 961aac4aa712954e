package render

import (
	"fmt"
	"strings"
)

// Default rendering knobs, applied when the caller leaves them unset.
const (
	DefaultScale       = 3
	DefaultHeight      = 10
	DefaultTextXAlign  = "center"
	DefaultPadding     = 10
	DefaultBackground  = "FFFFFF"
	DefaultIncludeText = true
)

// Options is a fully-resolved rendering request. Known knobs are typed;
// anything else the caller sent survives in Extra so new renderer options
// can pass through without a schema change.
type Options struct {
	Symbology     string
	Text          string
	Scale         int
	Height        int
	IncludeText   bool
	TextXAlign    string
	PaddingWidth  int
	PaddingHeight int
	Background    string
	Extra         map[string]any
}

// ResolveOptions merges caller-supplied options over the defaults. The
// symbology identifier is lower-cased. A nested "renderer" map inside raw
// is merged last and may override any field, including computed ones.
func ResolveOptions(format, text string, raw map[string]any) Options {
	opts := Options{
		Symbology:     strings.ToLower(format),
		Text:          text,
		Scale:         intOr(raw, "scale", DefaultScale),
		Height:        intOr(raw, "height", DefaultHeight),
		IncludeText:   boolOr(raw, "includetext", DefaultIncludeText),
		TextXAlign:    stringOr(raw, "textxalign", DefaultTextXAlign),
		PaddingWidth:  intOr(raw, "paddingwidth", DefaultPadding),
		PaddingHeight: intOr(raw, "paddingheight", DefaultPadding),
		Background:    stringOr(raw, "backgroundcolor", DefaultBackground),
		Extra:         make(map[string]any),
	}

	for k, v := range raw {
		switch k {
		case "scale", "height", "includetext", "textxalign",
			"paddingwidth", "paddingheight", "backgroundcolor", "renderer":
		default:
			opts.Extra[k] = v
		}
	}

	// Escape hatch: raw renderer options win over everything above.
	if nested, ok := raw["renderer"].(map[string]any); ok {
		opts.applyOverrides(nested)
	}

	return opts
}

func (o *Options) applyOverrides(m map[string]any) {
	o.Symbology = strings.ToLower(stringOr(m, "bcid", o.Symbology))
	o.Text = stringOr(m, "text", o.Text)
	o.Scale = intOr(m, "scale", o.Scale)
	o.Height = intOr(m, "height", o.Height)
	o.IncludeText = boolOr(m, "includetext", o.IncludeText)
	o.TextXAlign = stringOr(m, "textxalign", o.TextXAlign)
	o.PaddingWidth = intOr(m, "paddingwidth", o.PaddingWidth)
	o.PaddingHeight = intOr(m, "paddingheight", o.PaddingHeight)
	o.Background = stringOr(m, "backgroundcolor", o.Background)
}

// JSON numbers decode as float64; accept ints as well for callers that
// built the map in Go.
func intOr(m map[string]any, key string, fallback int) int {
	if m == nil {
		return fallback
	}
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	}
	return fallback
}

func boolOr(m map[string]any, key string, fallback bool) bool {
	if m == nil {
		return fallback
	}
	if v, ok := m[key].(bool); ok {
		return v
	}
	return fallback
}

func stringOr(m map[string]any, key, fallback string) string {
	if m == nil {
		return fallback
	}
	if v, ok := m[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// InputError marks a failure the caller can correct: an unknown symbology,
// a payload the symbology cannot encode, or malformed options. Its message
// is safe to return to the caller verbatim.
type InputError struct {
	msg string
}

func (e *InputError) Error() string { return e.msg }

func inputErrf(format string, args ...any) *InputError {
	return &InputError{msg: fmt.Sprintf(format, args...)}
}
