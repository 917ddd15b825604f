package zip

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"time"
)

// Entry is a single file inside an archive.
type Entry struct {
	Filename string
	Data     []byte
	Modified time.Time
}

// Write streams entries as a zip archive to w. Images are already
// compressed, so entries are stored rather than deflated.
func Write(w io.Writer, entries []Entry) error {
	zw := zip.NewWriter(w)
	seen := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		if entry.Filename == "" {
			return errors.New("zip: entry filename is required")
		}
		if _, dup := seen[entry.Filename]; dup {
			return errors.New("zip: duplicate entry " + entry.Filename)
		}
		seen[entry.Filename] = struct{}{}
		header := &zip.FileHeader{Name: entry.Filename, Method: zip.Store}
		if !entry.Modified.IsZero() {
			header.Modified = entry.Modified
		}
		fw, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}
		if _, err := fw.Write(entry.Data); err != nil {
			return err
		}
	}
	return zw.Close()
}

// Archive returns the zip archive of entries as bytes.
func Archive(entries []Entry) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := Write(buf, entries); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
