package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSVFields_SimpleRow(t *testing.T) {
	fields, err := parseCSVFields("Employee_Name,Department,Salary,Manager,Status")
	require.NoError(t, err)
	assert.Equal(t, []string{"Employee_Name", "Department", "Salary", "Manager", "Status"}, fields)
}

func TestParseCSVFields_QuotedFieldWithComma(t *testing.T) {
	fields, err := parseCSVFields(`"Akinkuolie, Sarah",Engineering,95000,John Smith,Active`)
	require.NoError(t, err)
	assert.Equal(t, []string{"Akinkuolie, Sarah", "Engineering", "95000", "John Smith", "Active"}, fields)
}

func TestParseCSVFields_EmptyRow(t *testing.T) {
	_, err := parseCSVFields("")
	assert.Error(t, err)
}
