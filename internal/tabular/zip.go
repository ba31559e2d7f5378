package tabular

import (
	"archive/zip"
	"io"

	"github.com/rotisserie/eris"
)

// maxEntrySize caps a single decompressed pack entry.
const maxEntrySize = 256 << 20

// PackFile is one named entry of a zip pack.
type PackFile struct {
	Name string
	Data []byte
}

// WritePack writes files into a deflate-compressed zip archive, in order.
func WritePack(w io.Writer, files []PackFile) error {
	zw := zip.NewWriter(w)
	for _, f := range files {
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: f.Name, Method: zip.Deflate})
		if err != nil {
			return eris.Wrapf(err, "zip: create entry %s", f.Name)
		}
		if _, err := fw.Write(f.Data); err != nil {
			return eris.Wrapf(err, "zip: write entry %s", f.Name)
		}
	}
	return eris.Wrap(zw.Close(), "zip: close archive")
}

// ReadPack reads every file entry of the zip archive at path into memory.
func ReadPack(path string) (map[string][]byte, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, eris.Wrap(err, "zip: open archive")
	}
	defer r.Close() //nolint:errcheck

	out := make(map[string][]byte, len(r.File))
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		data, err := readEntry(f)
		if err != nil {
			return nil, err
		}
		out[f.Name] = data
	}
	return out, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, eris.Wrapf(err, "zip: open entry %s", f.Name)
	}
	defer rc.Close() //nolint:errcheck

	data, err := io.ReadAll(io.LimitReader(rc, maxEntrySize+1))
	if err != nil {
		return nil, eris.Wrapf(err, "zip: read entry %s", f.Name)
	}
	if len(data) > maxEntrySize {
		return nil, eris.Errorf("zip: entry %s exceeds %d bytes", f.Name, maxEntrySize)
	}
	return data, nil
}
