package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"geoverify/domain/core"

	"github.com/stretchr/testify/assert"
)

func TestConstructorsCarryDomainSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     string
		sentinel error
	}{
		{"configuration", ConfigurationError("missing snr_analysis"), CodeConfiguration, core.ErrConfiguration},
		{"shape", ShapeMismatch(0, 4), CodeShapeMismatch, core.ErrShapeMismatch},
		{"method", UnknownMethod("snr method", "bartlett"), CodeUnknownMethod, core.ErrUnknownMethod},
		{"session", SessionNotFound("abc"), CodeSessionNotFound, core.ErrSessionNotFound},
		{"input", InvalidInput("bad"), CodeInvalidInput, core.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, GetCode(tt.err))
			assert.True(t, stderrors.Is(tt.err, tt.sentinel))
		})
	}
}

func TestWrapPreservesCode(t *testing.T) {
	wrapped := Wrap(SessionNotFound("abc"), "process response")
	assert.Equal(t, CodeSessionNotFound, GetCode(wrapped))
	assert.True(t, stderrors.Is(wrapped, core.ErrNotFound))

	plain := Wrapf(fmt.Errorf("boom"), "step %d", 2)
	assert.Equal(t, CodeInternalError, GetCode(plain))
	assert.Equal(t, "step 2: boom", plain.Error())

	assert.Nil(t, Wrap(nil, "noop"))
	assert.Equal(t, "UNKNOWN", GetCode(fmt.Errorf("plain")))
}
