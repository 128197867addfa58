// Copyright (c) 2026, The Textmode Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package errors provides a small wrapper around the standard errors
// package that adds logging versions of common functions, so that
// errors are at least logged when they would otherwise be ignored.
package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
)

// New returns an error that formats as the given text.
func New(text string) error {
	return errors.New(text)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Join returns an error that wraps the given errors.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// Log takes the given error and logs it if it is non-nil,
// returning it unchanged so it can be used inline:
//
//	if errors.Log(err) != nil {
//	    return err
//	}
func Log(err error) error {
	if err == nil {
		return nil
	}
	slog.Error(err.Error() + " | " + callerInfo(2))
	return err
}

// Log1 is a version of [Log] for functions returning one
// value and an error, returning the value after logging any error.
func Log1[T any](v T, err error) T {
	Log(err)
	return v
}

// callerInfo returns the file and line of the caller at the
// given number of stack frames up.
func callerInfo(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s:%d", file, line)
}
