package ingest

import (
	"encoding/csv"
	"strings"
)

// parseCSVFields parses one RFC 4180 row (as already re-serialized by
// extract.Rows) into its fields.
func parseCSVFields(rowText string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(rowText))
	return r.Read()
}
