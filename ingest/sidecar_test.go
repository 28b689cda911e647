package ingest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSidecar_WritesMetadataJSON(t *testing.T) {
	dir := t.TempDir()
	svc := &Service{Opts: Options{StoragePath: dir}.withDefaults()}

	tenantID := uuid.New()
	documentID := uuid.New()
	svc.writeSidecar(tenantID, documentID, "Payroll export", 3, []string{"employee_name", "salary"})

	path := filepath.Join(dir, "tenant_"+tenantID.String(), "documents", documentID.String(), "metadata.json")
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var meta sidecarMeta
	require.NoError(t, json.Unmarshal(data, &meta))
	assert.Equal(t, documentID.String(), meta.DocumentID)
	assert.Equal(t, "Payroll export", meta.Title)
	assert.Equal(t, 3, meta.ChunkCount)
	assert.Equal(t, []string{"employee_name", "salary"}, meta.Columns)
}

func TestWriteSidecar_NoopWithoutStoragePath(t *testing.T) {
	svc := &Service{Opts: Options{}.withDefaults()}
	// Must not panic even though Chunks/Embedder/VectorIndex are nil.
	svc.writeSidecar(uuid.New(), uuid.New(), "x", 1, nil)
}

func TestPreviewOf_TruncatesAt500(t *testing.T) {
	long := make([]byte, 900)
	for i := range long {
		long[i] = 'a'
	}
	assert.Len(t, previewOf(string(long)), 500)
	assert.Equal(t, "short", previewOf("short"))
}
