package epub

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Mimetype is the required content of the EPUB mimetype entry.
const Mimetype = "application/epub+zip"

// Entry is a single archive member: its path, raw bytes and the zip
// storage method it was packed with.
type Entry struct {
	Name   string
	Data   []byte
	Method uint16
}

// Reader provides access to EPUB file contents, preserving the order the
// entries appear in the archive.
type Reader struct {
	zipReader *zip.ReadCloser
	files     map[string]*zip.File
	order     []string
	opfPath   string
}

// container.xml structure
type container struct {
	Rootfiles struct {
		Rootfile []struct {
			FullPath  string `xml:"full-path,attr"`
			MediaType string `xml:"media-type,attr"`
		} `xml:"rootfile"`
	} `xml:"rootfiles"`
}

var (
	ErrInvalidMimetype    = errors.New("invalid mimetype: must be 'application/epub+zip'")
	ErrMimetypeCompressed = errors.New("mimetype must not be compressed")
	ErrMimetypeNotFound   = errors.New("mimetype file not found")
	ErrContainerNotFound  = errors.New("META-INF/container.xml not found")
	ErrOPFPathNotFound    = errors.New("OPF path not found in container.xml")
)

// Open opens an EPUB file and validates its structure.
func Open(path string) (*Reader, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open EPUB: %w", err)
	}

	reader := &Reader{
		zipReader: zr,
		files:     make(map[string]*zip.File),
	}

	for _, f := range zr.File {
		name := normalizePath(f.Name)
		if strings.HasSuffix(name, "/") {
			// Directory entries carry no data and are not recreated
			// on write; directories follow from entry paths.
			continue
		}
		reader.files[name] = f
		reader.order = append(reader.order, name)
	}

	if err := reader.validateMimetype(); err != nil {
		zr.Close()
		return nil, err
	}

	if err := reader.parseContainer(); err != nil {
		zr.Close()
		return nil, err
	}

	return reader, nil
}

// Close closes the underlying archive.
func (r *Reader) Close() error {
	return r.zipReader.Close()
}

// OPFPath returns the path to the OPF package document.
func (r *Reader) OPFPath() string {
	return r.opfPath
}

// Names returns entry paths in archive order.
func (r *Reader) Names() []string {
	return r.order
}

// ReadFile reads the contents of a single entry.
func (r *Reader) ReadFile(path string) ([]byte, error) {
	path = normalizePath(path)
	f, ok := r.files[path]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", path)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer rc.Close()

	return io.ReadAll(rc)
}

// Entries reads every entry in archive order. Each Entry keeps the storage
// method of the source archive so a rewrite can preserve it.
func (r *Reader) Entries() ([]Entry, error) {
	entries := make([]Entry, 0, len(r.order))
	for _, name := range r.order {
		data, err := r.ReadFile(name)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{
			Name:   name,
			Data:   data,
			Method: r.files[name].Method,
		})
	}
	return entries, nil
}

// validateMimetype checks that the mimetype entry exists and is valid.
func (r *Reader) validateMimetype() error {
	f, ok := r.files["mimetype"]
	if !ok {
		return ErrMimetypeNotFound
	}

	// Check that mimetype is not compressed
	if f.Method != zip.Store {
		return ErrMimetypeCompressed
	}

	content, err := r.ReadFile("mimetype")
	if err != nil {
		return fmt.Errorf("failed to read mimetype: %w", err)
	}

	if string(content) != Mimetype {
		return ErrInvalidMimetype
	}

	return nil
}

// parseContainer parses container.xml to extract the OPF path.
func (r *Reader) parseContainer() error {
	content, err := r.ReadFile("META-INF/container.xml")
	if err != nil {
		return ErrContainerNotFound
	}

	var c container
	if err := xml.Unmarshal(content, &c); err != nil {
		return fmt.Errorf("failed to parse container.xml: %w", err)
	}

	for _, rf := range c.Rootfiles.Rootfile {
		if rf.MediaType == "application/oebps-package+xml" || rf.MediaType == "" {
			r.opfPath = normalizePath(rf.FullPath)
			return nil
		}
	}

	// If no media-type match, use the first one
	if len(c.Rootfiles.Rootfile) > 0 {
		r.opfPath = normalizePath(c.Rootfiles.Rootfile[0].FullPath)
		return nil
	}

	return ErrOPFPathNotFound
}

// normalizePath normalizes file paths (removes ./ prefix)
func normalizePath(path string) string {
	path = strings.TrimPrefix(path, "./")
	return path
}
