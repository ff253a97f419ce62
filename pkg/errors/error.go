// Package errors provides coded errors shared by the signal framework.
//
// Codes are grouped by the subsystem that raised them:
//   - General (1-99)
//   - Configuration and validation (100-199)
//   - Market data (200-299)
//   - Strategy and collector (400-499)
//   - Ledger (500-599)
//   - Notification (600-699)
//   - Journal (700-799)
//   - Backtest and live loop (800-899)
//
// Evaluators, the ledger and the notifier never return errors from their
// operational methods. Codes are only produced by constructors, config loading,
// market data providers, the journal and the runners.
//
//	err := errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "failed to fetch klines", cause)
//	if errors.HasCode(err, errors.ErrCodeMarketDataFetchFailed) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error is a structured error with a code, a message and an optional cause.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New creates an Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Newf creates an Error with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   nil,
	}
}

// Wrap attaches a code and message to cause.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf attaches a code and formatted message to cause.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is wraps the standard errors.Is so callers only import one errors package.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps the standard errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode returns the code of the outermost *Error in err's chain,
// or ErrCodeUnknown when there is none.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return ErrCodeUnknown
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// Category returns the subsystem name for a code, used as a log field.
func Category(code ErrorCode) string {
	switch {
	case code >= 100 && code < 200:
		return "config"
	case code >= 200 && code < 300:
		return "marketdata"
	case code >= 400 && code < 500:
		return "strategy"
	case code >= 500 && code < 600:
		return "ledger"
	case code >= 600 && code < 700:
		return "notifier"
	case code >= 700 && code < 800:
		return "journal"
	case code >= 800 && code < 900:
		return "runner"
	default:
		return "general"
	}
}
