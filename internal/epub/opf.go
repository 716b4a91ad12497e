package epub

import (
	"errors"
	"fmt"
	"net/url"
	"path"

	"github.com/beevik/etree"
)

const dcNamespace = "http://purl.org/dc/elements/1.1/"

var (
	ErrNoMetadata = errors.New("no <metadata> element found in OPF")
	ErrNoManifest = errors.New("no <manifest> element found in OPF")
)

// ManifestItem is one entry of the OPF manifest, with Href resolved to a
// path inside the archive.
type ManifestItem struct {
	ID        string
	Href      string
	MediaType string
}

// Package wraps a parsed OPF document for in-place mutation. Everything
// not explicitly edited serializes back unchanged.
type Package struct {
	doc *etree.Document
	dir string
}

// ParsePackage parses OPF content. opfDir is the directory containing the
// OPF inside the archive (e.g. "OEBPS"), used to resolve manifest hrefs.
func ParsePackage(content []byte, opfDir string) (*Package, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(content); err != nil {
		return nil, fmt.Errorf("failed to parse OPF XML: %w", err)
	}
	root := doc.Root()
	if root == nil || root.Tag != "package" {
		return nil, errors.New("OPF root element is not <package>")
	}
	return &Package{doc: doc, dir: opfDir}, nil
}

// Manifest returns the manifest items in document order.
func (p *Package) Manifest() ([]ManifestItem, error) {
	manifest := childByTag(p.doc.Root(), "manifest")
	if manifest == nil {
		return nil, ErrNoManifest
	}

	var items []ManifestItem
	for _, el := range manifest.ChildElements() {
		if el.Tag != "item" {
			continue
		}
		href := el.SelectAttrValue("href", "")
		if href == "" {
			continue
		}
		items = append(items, ManifestItem{
			ID:        el.SelectAttrValue("id", ""),
			Href:      p.resolveHref(href),
			MediaType: el.SelectAttrValue("media-type", ""),
		})
	}
	return items, nil
}

// SetLanguage sets dc:language to tag, creating the element when the
// metadata has none.
func (p *Package) SetLanguage(tag string) error {
	metadata := childByTag(p.doc.Root(), "metadata")
	if metadata == nil {
		return ErrNoMetadata
	}

	lang := childByTag(metadata, "language")
	if lang == nil {
		if p.doc.Root().SelectAttr("xmlns:dc") == nil && metadata.SelectAttr("xmlns:dc") == nil {
			metadata.CreateAttr("xmlns:dc", dcNamespace)
		}
		lang = metadata.CreateElement("dc:language")
	}
	lang.SetText(tag)
	return nil
}

// SetPrimaryWritingMode adds or updates the primary-writing-mode meta
// element, honored by Kindle and several EPUB readers.
func (p *Package) SetPrimaryWritingMode(mode string) error {
	metadata := childByTag(p.doc.Root(), "metadata")
	if metadata == nil {
		return ErrNoMetadata
	}

	for _, el := range metadata.ChildElements() {
		if el.Tag != "meta" {
			continue
		}
		if el.SelectAttrValue("name", "") == "primary-writing-mode" {
			el.CreateAttr("content", mode)
			return nil
		}
	}

	meta := metadata.CreateElement("meta")
	meta.CreateAttr("name", "primary-writing-mode")
	meta.CreateAttr("content", mode)
	return nil
}

// SetPageProgression sets the spine page-progression-direction attribute.
// A missing spine is left alone; the styling still takes effect.
func (p *Package) SetPageProgression(direction string) {
	spine := childByTag(p.doc.Root(), "spine")
	if spine == nil {
		return
	}
	spine.CreateAttr("page-progression-direction", direction)
}

// Bytes serializes the package document.
func (p *Package) Bytes() ([]byte, error) {
	out, err := p.doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize OPF: %w", err)
	}
	return out, nil
}

// resolveHref resolves a manifest href against the OPF directory,
// decoding URL escapes so the result matches archive entry names.
func (p *Package) resolveHref(href string) string {
	if unescaped, err := url.PathUnescape(href); err == nil {
		href = unescaped
	}
	if p.dir == "" || p.dir == "." {
		return path.Clean(href)
	}
	return path.Clean(path.Join(p.dir, href))
}

// childByTag finds the first child element with the given local tag name,
// ignoring namespace prefixes.
func childByTag(parent *etree.Element, tag string) *etree.Element {
	if parent == nil {
		return nil
	}
	for _, el := range parent.ChildElements() {
		if el.Tag == tag {
			return el
		}
	}
	return nil
}
