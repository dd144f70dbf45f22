/*
*

	@author: shiliang
	@date: 2025/3/24
	@note: 任务错误分类。可重试/不可重试在错误构造处一次性决定，
	      不在捕获处根据错误类型层级推断。

*
*/
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
	"strings"
	"syscall"
)

// ErrorClass 错误分类
type ErrorClass int

const (
	// ClassRetryable 连接/超时/瞬时IO类错误，可在退避后重试
	ClassRetryable ErrorClass = iota
	// ClassPermanent 校验/程序性错误，重试无意义，直接终态失败
	ClassPermanent
)

// TaskError 带分类标记的任务错误
type TaskError struct {
	Class ErrorClass
	Msg   string
	Err   error
}

func (e *TaskError) Error() string {
	if e.Err != nil {
		if e.Msg != "" {
			return fmt.Sprintf("%s: %v", e.Msg, e.Err)
		}
		return e.Err.Error()
	}
	return e.Msg
}

func (e *TaskError) Unwrap() error { return e.Err }

// Retryable 判断是否可重试
func (e *TaskError) Retryable() bool { return e.Class == ClassRetryable }

// NewRetryableError 构造可重试错误
func NewRetryableError(msg string, cause error) *TaskError {
	return &TaskError{Class: ClassRetryable, Msg: msg, Err: cause}
}

// NewPermanentError 构造不可重试错误
func NewPermanentError(msg string, cause error) *TaskError {
	return &TaskError{Class: ClassPermanent, Msg: msg, Err: cause}
}

// Classify 对未携带分类的错误做兜底分类。
// 连接/超时/系统调用类错误归为可重试，其余（校验、解析、编程错误）归为不可重试。
func Classify(err error) *TaskError {
	var taskErr *TaskError
	if errors.As(err, &taskErr) {
		return taskErr
	}

	if isTransient(err) {
		return &TaskError{Class: ClassRetryable, Err: err}
	}
	return &TaskError{Class: ClassPermanent, Err: err}
}

func isTransient(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var syscallErr *os.SyscallError
	if errors.As(err, &syscallErr) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, os.ErrDeadlineExceeded) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}

	// 明确的编程/解析类错误
	var numErr *strconv.NumError
	var jsonErr *json.UnmarshalTypeError
	if errors.As(err, &numErr) || errors.As(err, &jsonErr) {
		return false
	}

	return IsRetryableNetErr(err)
}

// IsRetryableNetErr 根据错误文本判断是否为可重试的网络类错误，
// 用于识别被第三方库包装掉类型信息的连接错误
func IsRetryableNetErr(err error) bool {
	if err == nil {
		return false
	}
	e := strings.ToLower(err.Error())
	return strings.Contains(e, "broken pipe") ||
		strings.Contains(e, "connection reset") ||
		strings.Contains(e, "connection refused") ||
		strings.Contains(e, "timeout") ||
		strings.Contains(e, "eof") ||
		strings.Contains(e, "closed network connection")
}
