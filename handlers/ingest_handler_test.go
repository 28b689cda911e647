package handlers

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTenantID_ValidUUID(t *testing.T) {
	id := uuid.New()
	got, err := parseTenantID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestParseTenantID_Empty(t *testing.T) {
	_, err := parseTenantID("")
	assert.Error(t, err)
}

func TestParseTenantID_NotAUUID(t *testing.T) {
	_, err := parseTenantID("not-a-uuid")
	assert.Error(t, err)
}
