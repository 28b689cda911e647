package extract

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"
)

// csvRows parses text as CSV and re-serializes each row with encoding/csv's
// writer, guaranteeing RFC 4180-safe round-tripping of embedded commas and
// quotes (grounded on extract_rows_from_file's re-serialization step).
func csvRows(text string) ([]string, error) {
	text = strings.TrimPrefix(text, "﻿")
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1

	var out []string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		if err := w.Write(record); err != nil {
			continue
		}
		w.Flush()
		out = append(out, strings.TrimRight(buf.String(), "\r\n"))
	}
	return out, nil
}
