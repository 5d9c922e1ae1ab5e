package windfield

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"fmt"
)

// CompressGeoJSON gzips one GeoJSON document. Each document compresses
// independently so archive entries stay individually decompressible.
func CompressGeoJSON(doc string) ([]byte, error) {
	var buf bytes.Buffer
	gz, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := gz.Write([]byte(doc)); err != nil {
		return nil, fmt.Errorf("gzip geojson: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("gzip geojson: %w", err)
	}
	return buf.Bytes(), nil
}

// ArchiveEntryName returns the export file name for an interpolated field.
func ArchiveEntryName(field Interpolated) string {
	return fmt.Sprintf("windfield_%s_%s.geojson.gz",
		field.At.Format("20060102"), field.At.Format("1504"))
}

// BuildArchive packages interpolated fields into a zip archive holding one
// gzipped GeoJSON file per field. Entries are stored uncompressed since the
// payloads are already gzipped.
func BuildArchive(fields []Interpolated) ([]byte, error) {
	var buf bytes.Buffer
	archive := zip.NewWriter(&buf)

	for _, field := range fields {
		doc, err := BuildGeoJSON(field)
		if err != nil {
			return nil, err
		}
		compressed, err := CompressGeoJSON(doc)
		if err != nil {
			return nil, err
		}

		entry, err := archive.CreateHeader(&zip.FileHeader{
			Name:   ArchiveEntryName(field),
			Method: zip.Store,
		})
		if err != nil {
			return nil, fmt.Errorf("create archive entry: %w", err)
		}
		if _, err := entry.Write(compressed); err != nil {
			return nil, fmt.Errorf("write archive entry: %w", err)
		}
	}

	if err := archive.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}
	return buf.Bytes(), nil
}
