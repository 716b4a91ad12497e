package converter

import (
	"fmt"
	"strings"

	"epubvert/internal/config"
)

// Injected blocks are bracketed by these comments so a second run can find
// and replace them instead of stacking duplicates.
const (
	beginMarker = "/*! vertical-writing:begin */"
	endMarker   = "/*! vertical-writing:end */"
)

// fontFaceCSS renders the profile's @font-face rules referencing
// reader-local fonts.
func fontFaceCSS(cfg *config.Config) string {
	var b strings.Builder
	for _, ff := range cfg.FontFaces {
		b.WriteString(`@font-face { font-family: "`)
		b.WriteString(cssEscape(ff.Family))
		b.WriteString(`";`)
		if ff.Weight != "" {
			fmt.Fprintf(&b, " font-weight: %s;", ff.Weight)
		}
		b.WriteString(" src:")
		for i, local := range ff.Local {
			if i > 0 {
				b.WriteString(",")
			}
			fmt.Fprintf(&b, ` local("%s")`, cssEscape(local))
		}
		b.WriteString("; }\n")
	}
	return b.String()
}

// verticalCSS renders the body writing-mode rules and per-group font
// family assignments.
func verticalCSS(cfg *config.Config) string {
	var b strings.Builder
	b.WriteString("body {\n")
	b.WriteString("  writing-mode: vertical-rl;\n")
	b.WriteString("  -webkit-writing-mode: vertical-rl;\n")
	b.WriteString("  -epub-writing-mode: vertical-rl;\n")
	b.WriteString("}\n")
	if cfg.Fonts.Body != "" {
		fmt.Fprintf(&b, "body, p {\n  font-family: \"%s\";\n}\n", cssEscape(cfg.Fonts.Body))
	}
	if cfg.Fonts.Heading != "" {
		fmt.Fprintf(&b, "h1, h2, h3, h4, h5, h6 {\n  font-family: \"%s\";\n}\n", cssEscape(cfg.Fonts.Heading))
	}
	if cfg.Fonts.Quote != "" {
		fmt.Fprintf(&b, "blockquote, blockquote p {\n  font-family: \"%s\";\n}\n", cssEscape(cfg.Fonts.Quote))
	}
	return b.String()
}

// markBlock wraps css between the injection markers.
func markBlock(css string) string {
	return beginMarker + "\n" + strings.TrimRight(css, "\n") + "\n" + endMarker + "\n"
}

// removeMarkedBlocks cuts every previously injected block out of css.
func removeMarkedBlocks(css string) string {
	for {
		begin := strings.Index(css, beginMarker)
		if begin < 0 {
			return css
		}
		end := strings.Index(css[begin:], endMarker)
		if end < 0 {
			// Unterminated block, drop to end of input.
			return css[:begin]
		}
		tail := css[begin+end+len(endMarker):]
		tail = strings.TrimPrefix(tail, "\n")
		css = css[:begin] + tail
	}
}

// cssEscape escapes a string for use inside CSS double quotes.
func cssEscape(s string) string {
	if !strings.ContainsAny(s, `"\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
