package utils

import (
	"fmt"
	"runtime/debug"
)

// ToPointer returns a pointer to v.
func ToPointer[T any](v T) *T {
	return &v
}

// SafeRun calls fn and converts a panic into an error.
func SafeRun(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recovered from panic: %v\n%s", r, debug.Stack())
		}
	}()
	return fn()
}
