package epub

import (
	"archive/zip"
	"fmt"
	"os"
)

// Write creates an EPUB archive at path from entries, keeping their order
// and storage method. The mimetype entry is always written first and
// stored uncompressed, as the container format requires.
//
// Explicit directory members of the source archive are not recreated:
// Reader drops them on open, so a rewritten archive carries file entries
// only. Readers derive directories from entry paths.
//
// Output is staged to a temporary file next to the destination and renamed
// into place on success, so a failed write leaves no partial archive.
func Write(path string, entries []Entry) (err error) {
	tmpName := path + ".tmp"
	f, err := os.Create(tmpName)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmpName)
		}
	}()

	zw := zip.NewWriter(f)

	if err = writeMimetype(zw, entries); err != nil {
		return err
	}

	for _, e := range entries {
		if e.Name == "mimetype" {
			continue
		}
		w, werr := zw.CreateHeader(&zip.FileHeader{
			Name:   e.Name,
			Method: e.Method,
		})
		if werr != nil {
			err = fmt.Errorf("failed to create entry %s: %w", e.Name, werr)
			return err
		}
		if _, werr = w.Write(e.Data); werr != nil {
			err = fmt.Errorf("failed to write entry %s: %w", e.Name, werr)
			return err
		}
	}

	if err = zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}

	if err = os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}

// writeMimetype writes the stored mimetype entry. A source archive missing
// it never gets this far (Open rejects it), but Write also stands on its
// own for synthesized entry lists.
func writeMimetype(zw *zip.Writer, entries []Entry) error {
	data := []byte(Mimetype)
	for _, e := range entries {
		if e.Name == "mimetype" {
			data = e.Data
			break
		}
	}

	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:   "mimetype",
		Method: zip.Store,
	})
	if err != nil {
		return fmt.Errorf("failed to create mimetype entry: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write mimetype entry: %w", err)
	}
	return nil
}
