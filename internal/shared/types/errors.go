package types

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("no recognizable TMC input file found")
	ErrDataFormat = errors.New("malformed TMC data")
	ErrEmptyInput = errors.New("no usable count intervals")
	ErrIO         = errors.New("could not write output")
	ErrConfig     = errors.New("invalid configuration")
)

// DataFormatError points at the part of a count file that failed validation.
type DataFormatError struct {
	File   string
	Sheet  string
	Row    int
	Column string
	Reason string
}

func (e *DataFormatError) Error() string {
	where := e.File
	if e.Sheet != "" {
		where += fmt.Sprintf(" [%s]", e.Sheet)
	}
	if e.Row > 0 {
		where += fmt.Sprintf(" row %d", e.Row)
	}
	if e.Column != "" {
		where += fmt.Sprintf(" column %q", e.Column)
	}
	return fmt.Sprintf("%s: %s: %s", ErrDataFormat, where, e.Reason)
}

func (e *DataFormatError) Unwrap() error { return ErrDataFormat }

// IOError wraps a failure writing report output.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", ErrIO, e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() []error { return []error{ErrIO, e.Err} }

// ConfigError reports a config file that could not be read or holds an
// out-of-range value.
type ConfigError struct {
	Path   string
	Field  string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("%s: %s", ErrConfig, e.Path)
	if e.Field != "" {
		msg += fmt.Sprintf(" field %q", e.Field)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *ConfigError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrConfig}
	}
	return []error{ErrConfig, e.Err}
}

// NotFoundError reports a directory without any processable count file.
func NotFoundError(dir string, cause error) error {
	if cause != nil {
		return fmt.Errorf("%w in %s: %w", ErrNotFound, dir, cause)
	}
	return fmt.Errorf("%w in %s", ErrNotFound, dir)
}

// EmptyInputError reports a count file that parsed cleanly but has no intervals.
func EmptyInputError(file string) error {
	return fmt.Errorf("%w: %s", ErrEmptyInput, file)
}
