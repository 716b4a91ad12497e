package converter

import (
	"bytes"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"

	"epubvert/internal/config"
)

// TransformStylesheet rewrites a stylesheet for vertical writing: every
// font-family declaration in the source is removed, the profile's
// @font-face rules are prepended and the vertical writing-mode rules
// appended, each between marker comments. Blocks injected by a previous
// run are replaced, so the transformation is idempotent.
func TransformStylesheet(sheet string, cfg *config.Config) string {
	sheet = removeMarkedBlocks(sheet)
	sheet = StripFontFamily(sheet)

	var b strings.Builder
	b.WriteString(markBlock(fontFaceCSS(cfg)))
	b.WriteString(strings.Trim(sheet, "\n"))
	b.WriteString("\n")
	b.WriteString(markBlock(verticalCSS(cfg)))
	return b.String()
}

// StripFontFamily removes every font-family declaration from a stylesheet.
// Other declarations, at-rules, comments and string values pass through;
// whitespace between declarations is not preserved.
func StripFontFamily(sheet string) string {
	return stripFontFamily(sheet, false)
}

// StripInlineFontFamily removes font-family declarations from an inline
// style attribute value (a bare declaration list).
func StripInlineFontFamily(style string) string {
	return strings.TrimSpace(stripFontFamily(style, true))
}

// stripFontFamily walks the CSS grammar re-emitting everything except
// font-family declarations.
func stripFontFamily(sheet string, inline bool) string {
	input := parse.NewInput(bytes.NewReader([]byte(sheet)))
	p := css.NewParser(input, inline)

	var out strings.Builder
	for {
		gt, _, data := p.Next()
		switch gt {
		case css.ErrorGrammar:
			return out.String()

		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			if gt == css.DeclarationGrammar && strings.EqualFold(string(data), "font-family") {
				continue
			}
			out.Write(data)
			out.WriteString(":")
			for _, val := range p.Values() {
				out.Write(val.Data)
			}
			out.WriteString(";")

		case css.AtRuleGrammar, css.BeginAtRuleGrammar, css.BeginRulesetGrammar, css.QualifiedRuleGrammar:
			out.Write(data)
			for _, val := range p.Values() {
				out.Write(val.Data)
			}
			switch gt {
			case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
				out.WriteString("{")
			case css.AtRuleGrammar:
				out.WriteString(";")
			default:
				// Selector before the last in a comma-separated list.
				out.WriteString(",")
			}

		default:
			out.Write(data)
		}
	}
}
