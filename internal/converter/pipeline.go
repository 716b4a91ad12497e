package converter

import (
	"fmt"
	"path"

	"go.uber.org/zap"

	"epubvert/internal/config"
	"epubvert/internal/epub"
)

// ConvertOptions holds options for the conversion pipeline.
type ConvertOptions struct {
	InputPath  string
	OutputPath string
	Profile    *config.Config // nil means config.Default()
	Logger     *zap.Logger    // nil means no logging
}

// Pipeline orchestrates the vertical-writing rewrite of one EPUB.
type Pipeline struct {
	opts ConvertOptions
	log  *zap.Logger
}

// NewPipeline creates a new conversion pipeline.
func NewPipeline(opts ConvertOptions) *Pipeline {
	if opts.Profile == nil {
		opts.Profile = config.Default()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{opts: opts, log: log.Named("converter")}
}

// Convert executes the conversion: open the source archive, mutate the
// OPF, rewrite the stylesheet and content-document entries named by the
// manifest, and write the result. Everything else round-trips verbatim.
// Single pass, fail-fast; an error leaves no output file behind.
func (p *Pipeline) Convert() error {
	reader, err := epub.Open(p.opts.InputPath)
	if err != nil {
		return err
	}
	defer reader.Close()

	pkg, stylesheets, documents, err := p.preparePackage(reader)
	if err != nil {
		return err
	}

	entries, err := reader.Entries()
	if err != nil {
		return fmt.Errorf("failed to read archive entries: %w", err)
	}

	opfData, err := pkg.Bytes()
	if err != nil {
		return err
	}

	var cssCount, docCount int
	for i := range entries {
		e := &entries[i]
		switch {
		case e.Name == reader.OPFPath():
			e.Data = opfData
			p.log.Debug("Rewrote package document", zap.String("entry", e.Name))

		case stylesheets[e.Name]:
			e.Data = []byte(TransformStylesheet(string(e.Data), p.opts.Profile))
			cssCount++
			p.log.Debug("Rewrote stylesheet", zap.String("entry", e.Name))

		case documents[e.Name]:
			data, err := TransformDocument(e.Data, p.opts.Profile)
			if err != nil {
				return fmt.Errorf("failed to transform %s: %w", e.Name, err)
			}
			e.Data = data
			docCount++
			p.log.Debug("Rewrote content document", zap.String("entry", e.Name))
		}
	}

	if err := epub.Write(p.opts.OutputPath, entries); err != nil {
		return err
	}

	p.log.Info("Conversion complete",
		zap.String("output", p.opts.OutputPath),
		zap.Int("stylesheets", cssCount),
		zap.Int("documents", docCount))
	return nil
}

// preparePackage parses the OPF, applies the vertical-writing metadata
// edits and classifies manifest items into stylesheet and content-document
// entry sets.
func (p *Pipeline) preparePackage(reader *epub.Reader) (*epub.Package, map[string]bool, map[string]bool, error) {
	opfData, err := reader.ReadFile(reader.OPFPath())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to read OPF: %w", err)
	}

	pkg, err := epub.ParsePackage(opfData, path.Dir(reader.OPFPath()))
	if err != nil {
		return nil, nil, nil, err
	}

	items, err := pkg.Manifest()
	if err != nil {
		return nil, nil, nil, err
	}

	if err := pkg.SetLanguage(p.opts.Profile.Language); err != nil {
		return nil, nil, nil, err
	}
	if err := pkg.SetPrimaryWritingMode("vertical-rl"); err != nil {
		return nil, nil, nil, err
	}
	pkg.SetPageProgression("rtl")

	stylesheets := make(map[string]bool)
	documents := make(map[string]bool)
	for _, item := range items {
		switch item.MediaType {
		case "text/css":
			stylesheets[item.Href] = true
		case "application/xhtml+xml", "text/html":
			documents[item.Href] = true
		}
	}
	return pkg, stylesheets, documents, nil
}
