package exception_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/comfortlab/comfortcast/pkg/util/exception"
)

func TestNewPipelineError(t *testing.T) {
	originalErr := errors.New("connection refused")
	pe := exception.NewPipelineError("ingest", "fetch failed", originalErr, false, true)

	assert.Equal(t, "ingest", pe.Module)
	assert.Equal(t, "fetch failed", pe.Message)
	assert.Equal(t, originalErr, pe.Unwrap())
	assert.True(t, pe.IsRetryable())
	assert.False(t, pe.IsSkippable())
	assert.Contains(t, pe.Error(), "[ingest] fetch failed: connection refused")
	assert.NotEmpty(t, pe.StackTrace)
}

func TestPipelineError_WithoutCause(t *testing.T) {
	pe := exception.NewPipelineError("merger", "empty dataset", nil, true, false)

	assert.Nil(t, pe.Unwrap())
	assert.True(t, pe.IsSkippable())
	assert.Equal(t, "[merger] empty dataset", pe.Error())
}

func TestPipelineError_ErrorsIsChain(t *testing.T) {
	wrapped := fmt.Errorf("row 3: %w", exception.ErrMalformedRecord)
	pe := exception.NewPipelineError("normalizer", "coercion failed", wrapped, true, false)

	assert.True(t, errors.Is(pe, exception.ErrMalformedRecord))
	assert.False(t, errors.Is(pe, exception.ErrSchemaMismatch))
}

func TestIsPipelineError(t *testing.T) {
	pe := exception.NewPipelineError("storage", "upload failed", nil, false, true)

	assert.True(t, exception.IsPipelineError(pe))
	assert.True(t, exception.IsPipelineError(fmt.Errorf("outer: %w", pe)))
	assert.False(t, exception.IsPipelineError(errors.New("plain")))
	assert.False(t, exception.IsPipelineError(nil))
}

func TestExtractErrorMessage(t *testing.T) {
	pe := exception.NewPipelineError("predict", "scoring failed", errors.New("detail"), false, false)

	assert.Equal(t, "scoring failed", exception.ExtractErrorMessage(pe))
	assert.Equal(t, "plain", exception.ExtractErrorMessage(errors.New("plain")))
	assert.Empty(t, exception.ExtractErrorMessage(nil))
}
