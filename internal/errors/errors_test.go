package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"statbench/domain/core"
)

func TestFromDomain(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"insufficient", core.NewInsufficientDataError("t-test", 1, 2), CodeInsufficientData},
		{"invalid", core.NewInvalidConfigError("alpha", "out of range"), CodeInvalidConfiguration},
		{"degenerate", core.NewDegeneracyError("pearson", "zero variance"), CodeNumericDegeneracy},
		{"not found", fmt.Errorf("%w %q", core.ErrColumnNotFound, "age"), CodeNotFound},
		{"other", stderrors.New("disk on fire"), CodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromDomain(tt.err)
			assert.Equal(t, tt.code, GetCode(err))
			assert.True(t, stderrors.Is(err, tt.err))
			assert.Equal(t, UserMessage(tt.err), err.(*AppError).Message)
		})
	}
	assert.Nil(t, FromDomain(nil))
}

func TestWrapKeepsCode(t *testing.T) {
	err := Wrap(core.NewDegeneracyError("anova", "flat"), "group test")
	assert.Equal(t, CodeNumericDegeneracy, GetCode(err))
	assert.True(t, stderrors.Is(err, core.ErrNumericDegeneracy))

	err = Wrapf(InvalidInput("bad column"), "request %d", 3)
	assert.Equal(t, CodeInvalidInput, GetCode(err))

	err = WithCode(CodeValidationError, stderrors.New("x"))
	assert.Equal(t, CodeValidationError, GetCode(err))
	assert.True(t, IsAppError(err))
	assert.Equal(t, "UNKNOWN", GetCode(stderrors.New("plain")))
	assert.Nil(t, Wrap(nil, "nothing"))
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil))
	assert.Contains(t, UserMessage(core.NewInsufficientDataError("x", 0, 3)), "Not enough")
	assert.Equal(t, "bad column", UserMessage(InvalidInput("bad column")))
	assert.Equal(t, "The analysis failed unexpectedly", UserMessage(stderrors.New("boom")))
}
