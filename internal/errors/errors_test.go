package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	base := stderrors.New("cholesky failed")

	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"message only", New("fit failed"), "fit failed"},
		{
			"message and operation",
			New("fit failed").WithOperation("Fit"),
			"fit failed: operation=Fit",
		},
		{
			"full context",
			Wrap(base, "fit failed").WithOperation("Fit").WithComponent("bayesian"),
			"fit failed: operation=Fit, component=bayesian: cholesky failed",
		},
		{
			"wrapped without message",
			Wrap(base, ""),
			"cholesky failed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestErrorf(t *testing.T) {
	err := Errorf("run %s not found", "abc")
	assert.Equal(t, "run abc not found", err.Error())
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, "ignored"))
}

func TestWrapPreservesChain(t *testing.T) {
	base := stderrors.New("boom")
	wrapped := Wrapf(base, "starting run %d", 7)

	assert.True(t, Is(wrapped, base))
	assert.Equal(t, base, Unwrap(wrapped))

	var e *Error
	require.True(t, As(wrapped, &e))
	assert.Equal(t, "starting run 7", e.Message)
}

func TestWrapExistingErrorKeepsStack(t *testing.T) {
	inner := New("inner").WithComponent("worker")
	outer := Wrap(inner, "outer")

	// Re-wrapping annotates the same error instead of stacking layers.
	assert.Same(t, inner, outer)
	assert.Equal(t, "outer", outer.Message)
	assert.Equal(t, "worker", outer.Component)
}

func TestStackTraceCaptured(t *testing.T) {
	err := New("traced")
	stack := err.StackTrace()
	require.NotEmpty(t, stack)
	// Frames from this package and the runtime are filtered out.
	for _, frame := range stack {
		assert.NotContains(t, frame, "internal/errors")
		assert.NotContains(t, frame, "runtime/")
	}
}
