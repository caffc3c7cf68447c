// Package recovery turns panics in conversion jobs into errors, so one
// malformed input cannot take down a batch.
package recovery

import (
	"fmt"
	"log/slog"
	"runtime/debug"
)

// PanicError is returned when a wrapped function panics.
type PanicError struct {
	Operation string
	Value     any
	Stack     []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("%s panicked: %v", e.Operation, e.Value)
}

// RecoverToError wraps a function call with panic recovery.
// If the function panics, the panic is logged with its stack trace and
// returned as *PanicError. logger may be nil.
//
// Example:
//
//	err := recovery.RecoverToError(logger, path, func() error {
//	    return convert(path)
//	})
func RecoverToError(logger *slog.Logger, operation string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recovered(logger, operation, r)
		}
	}()

	return fn()
}

// RecoverToValue wraps a function that returns a value and error.
// If the function panics, returns zero value and *PanicError.
//
// Example:
//
//	xml, err := recovery.RecoverToValue(logger, "ogc", func() (string, error) {
//	    return t.CQLToOGC(text)
//	})
func RecoverToValue[T any](logger *slog.Logger, operation string, fn func() (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			result = zero
			err = recovered(logger, operation, r)
		}
	}()

	return fn()
}

func recovered(logger *slog.Logger, operation string, r any) error {
	stack := debug.Stack()
	if logger != nil {
		logger.Error("Panic recovered",
			"operation", operation,
			"panic", r,
			"stack", string(stack),
		)
	}
	return &PanicError{Operation: operation, Value: r, Stack: stack}
}
