package ragerrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode_DispatchesByErrorKind(t *testing.T) {
	assert.Equal(t, 400, StatusCode(NewValidationError("tenantId", "not a valid UUID")))
	assert.Equal(t, 404, StatusCode(&NotFoundError{Resource: "document", ID: "abc"}))
	assert.Equal(t, 403, StatusCode(&PermissionError{Resource: "document", Required: "ADMIN"}))
	assert.Equal(t, 500, StatusCode(&StorageError{Op: "insert", Err: errors.New("boom")}))
	assert.Equal(t, 503, StatusCode(&ExternalServiceError{Service: "embedder", Err: errors.New("timeout")}))
	assert.Equal(t, 499, StatusCode(&CancelledError{Op: "query"}))
}

func TestStatusCode_DefaultsTo500ForUnknownError(t *testing.T) {
	assert.Equal(t, 500, StatusCode(errors.New("generic failure")))
}

func TestValidationError_MessageOmitsFieldWhenEmpty(t *testing.T) {
	err := &ValidationError{Reason: "must not be empty"}
	assert.Equal(t, "must not be empty", err.Error())
}

func TestStorageError_Unwraps(t *testing.T) {
	inner := errors.New("connection refused")
	err := &StorageError{Op: "insert", Err: inner}
	assert.ErrorIs(t, err, inner)
}
