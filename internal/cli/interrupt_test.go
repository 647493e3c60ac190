package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewInterruptHandler(t *testing.T) {
	tests := []struct {
		writer io.Writer
		name   string
	}{
		{
			name:   "with custom writer",
			writer: &bytes.Buffer{},
		},
		{
			name:   "with nil writer",
			writer: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewInterruptHandler(tt.writer)
			assert.NotNil(t, handler)
			assert.NotNil(t, handler.writer)
			assert.False(t, handler.WasInterrupted())
		})
	}
}

func TestHandleInterrupts(t *testing.T) {
	handler := NewInterruptHandler(&bytes.Buffer{})

	ctx, cancel := handler.HandleInterrupts(context.Background(), "Demo server")
	select {
	case <-ctx.Done():
		t.Fatal("Context should not be canceled initially")
	default:
	}

	cancel()
	<-ctx.Done()
	assert.False(t, handler.WasInterrupted(), "plain cancellation is not an interrupt")
}

func TestInterruptMessageShownOnce(t *testing.T) {
	var output bytes.Buffer
	handler := &InterruptHandler{writer: &output, activity: "Price history fetch"}

	handler.interrupt()
	handler.interrupt()

	assert.True(t, handler.WasInterrupted())
	assert.Equal(t, 1, strings.Count(output.String(), "Price history fetch interrupted, shutting down..."))
}

func TestInterruptMessageDefaultActivity(t *testing.T) {
	var output bytes.Buffer
	handler := &InterruptHandler{writer: &output}
	handler.showInterruptMessage()
	assert.Contains(t, output.String(), "Operation interrupted")
}
