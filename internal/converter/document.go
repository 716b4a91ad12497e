package converter

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"epubvert/internal/config"
)

// StyleElementID marks the style element the converter injects into each
// content document head. A rerun replaces the element instead of adding a
// second one.
const StyleElementID = "vertical-writing-style"

var headingTags = map[string]bool{
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// TransformDocument rewrites one XHTML content document:
//   - font-family is stripped from inline style attributes, except on
//     headings, which keep their assigned face;
//   - embedded style elements lose their font-family declarations;
//   - the head gains a single style element with the profile's font faces
//     and the vertical writing-mode rules.
func TransformDocument(data []byte, cfg *config.Config) ([]byte, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse XHTML: %w", err)
	}

	// Drop the block injected by a previous run before touching the rest.
	doc.Find("style#" + StyleElementID).Remove()

	doc.Find("style").Each(func(i int, s *goquery.Selection) {
		s.SetText(StripFontFamily(s.Text()))
	})

	doc.Find("[style]").Each(func(i int, s *goquery.Selection) {
		if headingTags[goquery.NodeName(s)] {
			return
		}
		style, _ := s.Attr("style")
		if !strings.Contains(strings.ToLower(style), "font-family") {
			return
		}
		if stripped := StripInlineFontFamily(style); stripped != "" {
			s.SetAttr("style", stripped)
		} else {
			s.RemoveAttr("style")
		}
	})

	head := doc.Find("head")
	if head.Length() == 0 {
		doc.Find("html").PrependHtml("<head></head>")
		head = doc.Find("head")
	}
	head.AppendHtml(fmt.Sprintf("<style id=%q type=\"text/css\">\n%s\n%s</style>",
		StyleElementID, fontFaceCSS(cfg), verticalCSS(cfg)))

	out, err := doc.Html()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize XHTML: %w", err)
	}
	return []byte(out), nil
}
