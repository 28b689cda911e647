// Package extract implements C1: bytes + filename -> text (with page
// markers) or ordered rows (with header), grounded on the original
// document_service.py's extract_text_from_file/extract_rows_from_file.
//
// This Go port only handles formats with a standard-library-reachable
// decoder (plain text, CSV, tab-separated spreadsheet exports); binary
// office formats (.docx/.pptx/.xlsx/.pdf) need a parsing library the
// example pack does not carry, so they fall through to the lossy
// byte-decode path below exactly as the original does for unknown types.
package extract

import (
	"strings"
	"unicode/utf8"
)

// Text extracts plain text from filename/data, prefixing each page with a
// [[PAGE:n]] marker when the format carries page boundaries. Falls back to
// UTF-8 decode, then latin-1-lossy decode, for anything else.
func Text(filename string, data []byte) (string, error) {
	ext := extOf(filename)
	switch ext {
	case ".txt", ".csv", ".md":
		return decodeBytes(data), nil
	case ".pdf":
		return decodePDFLike(data), nil
	default:
		return decodeBytes(data), nil
	}
}

// Rows extracts ordered rows from a comma-separated file, re-serializing
// each row in RFC 4180 form so embedded commas/quotes round-trip.
func Rows(filename string, data []byte) ([]string, error) {
	return csvRows(decodeBytes(data))
}

func extOf(filename string) string {
	idx := strings.LastIndexByte(filename, '.')
	if idx < 0 {
		return ""
	}
	return strings.ToLower(filename[idx:])
}

func decodeBytes(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	return latin1Lossy(data)
}

func latin1Lossy(data []byte) string {
	var sb strings.Builder
	sb.Grow(len(data))
	for _, b := range data {
		sb.WriteRune(rune(b))
	}
	return sb.String()
}

// decodePDFLike is a placeholder for true PDF extraction (no PDF parsing
// library is present anywhere in the example pack); it degrades to the
// same lossy byte decode the original uses for any file type it cannot
// parse, so ingestion never fails outright on a PDF upload.
func decodePDFLike(data []byte) string {
	return "[[PAGE:1]]\n" + decodeBytes(data)
}
