package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "plain",
			err:      New(KindRequestNotFound, "no such request"),
			expected: "REQUEST_NOT_FOUND: no such request",
		},
		{
			name:     "with stage",
			err:      New(KindExtractionFailed, "empty document").WithStage("bank_statement"),
			expected: "EXTRACTION_FAILED[bank_statement]: empty document",
		},
		{
			name:     "with cause",
			err:      Wrap(fmt.Errorf("dial tcp: refused"), KindModelUnavailable, "call model"),
			expected: "MODEL_UNAVAILABLE: call model (caused by: dial tcp: refused)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestIsMatchesByKind(t *testing.T) {
	err := Wrap(context.DeadlineExceeded, KindModelUnavailable, "timeout")
	wrapped := fmt.Errorf("summarize: %w", err)

	assert.True(t, errors.Is(wrapped, ErrModelUnavailable))
	assert.False(t, errors.Is(wrapped, ErrModelResponseMalformed))
	assert.True(t, errors.Is(wrapped, context.DeadlineExceeded))
}

func TestWrapKeepsExistingKind(t *testing.T) {
	inner := New(KindModelResponseMalformed, "no choices")
	outer := Wrap(fmt.Errorf("score: %w", inner), KindPersistenceFailed, "ignored")

	assert.Equal(t, KindModelResponseMalformed, outer.Kind)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(nil))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, KindPersistenceFailed, KindOf(Wrap(errors.New("x"), KindPersistenceFailed, "write")))
	assert.True(t, IsKind(ErrInvalidInput, KindInvalidInput))
	assert.False(t, IsKind(nil, KindInvalidInput))
}

func TestRetryable(t *testing.T) {
	require.True(t, New(KindModelUnavailable, "x").Retryable)
	require.False(t, New(KindModelResponseMalformed, "x").Retryable)
	require.False(t, New(KindExtractionFailed, "x").Retryable)
}
