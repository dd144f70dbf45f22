package lifecycle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyTaggedErrors(t *testing.T) {
	retryable := NewRetryableError("download failed", errors.New("boom"))
	permanent := NewPermanentError("bad input", nil)

	assert.True(t, Classify(retryable).Retryable())
	assert.False(t, Classify(permanent).Retryable())
}

func TestClassifyWrappedTaggedError(t *testing.T) {
	inner := NewPermanentError("schema mismatch", nil)
	wrapped := fmt.Errorf("handler failed: %w", inner)

	// 包装后标记仍然生效
	assert.False(t, Classify(wrapped).Retryable())
}

func TestClassifyTransientErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"net timeout", &net.DNSError{IsTimeout: true}},
		{"connection refused", syscall.ECONNREFUSED},
		{"connection reset", syscall.ECONNRESET},
		{"broken pipe", syscall.EPIPE},
		{"syscall error", &os.SyscallError{Syscall: "write", Err: syscall.ECONNRESET}},
		{"context deadline", context.DeadlineExceeded},
		{"io deadline", os.ErrDeadlineExceeded},
		{"unexpected eof", io.ErrUnexpectedEOF},
		{"wrapped transient", fmt.Errorf("request failed: %w", syscall.ECONNREFUSED)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, Classify(tt.err).Retryable(), "expected %v to be retryable", tt.err)
		})
	}
}

func TestClassifyProgrammaticErrors(t *testing.T) {
	_, numErr := strconv.Atoi("not-a-number")

	tests := []struct {
		name string
		err  error
	}{
		{"strconv error", numErr},
		{"json type error", &json.UnmarshalTypeError{Value: "string", Field: "count"}},
		{"plain error defaults to permanent", errors.New("something went wrong")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, Classify(tt.err).Retryable(), "expected %v to be permanent", tt.err)
		})
	}
}

func TestTaskErrorMessage(t *testing.T) {
	withCause := NewRetryableError("upload failed", errors.New("timeout"))
	assert.Equal(t, "upload failed: timeout", withCause.Error())

	withoutCause := NewPermanentError("invalid archive", nil)
	assert.Equal(t, "invalid archive", withoutCause.Error())
}
