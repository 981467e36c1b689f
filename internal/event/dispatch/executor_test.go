package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult_IsSuccess(t *testing.T) {
	tests := []struct {
		name     string
		result   Result
		expected bool
	}{
		{"success", Result{}, true},
		{"panic", Result{Panicked: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.result.IsSuccess())
		})
	}
}

func TestExecutor_Execute_Success(t *testing.T) {
	executor := NewExecutor()

	called := false
	result := executor.Execute(func() { called = true })

	assert.True(t, result.IsSuccess())
	assert.True(t, called)
	assert.False(t, result.Panicked)
}

func TestExecutor_Execute_Panic(t *testing.T) {
	var captured any
	var trace []byte
	executor := NewExecutor(
		WithPanicHandler(func(panicValue any, stack []byte) {
			captured = panicValue
			trace = stack
		}),
	)

	result := executor.Execute(func() { panic("listener exploded") })

	require.True(t, result.Panicked)
	assert.Equal(t, "listener exploded", captured)
	assert.NotEmpty(t, trace)
}

func TestExecutor_Execute_PanicHandlerPanics(t *testing.T) {
	executor := NewExecutor(
		WithPanicHandler(func(any, []byte) {
			panic("handler exploded too")
		}),
	)

	var result Result
	assert.NotPanics(t, func() {
		result = executor.Execute(func() { panic("boom") })
	})
	assert.True(t, result.Panicked)
}

func TestExecutor_WithNilPanicHandler(t *testing.T) {
	executor := NewExecutor(WithPanicHandler(nil))

	assert.NotPanics(t, func() {
		executor.Execute(func() { panic("boom") })
	})
}
