package facet

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is the sentinel for configuration mistakes, such as an
	// aggregation name that is not configured.
	ErrConfiguration = errors.New("configuration error")

	// ErrUsage is the sentinel for calls that cannot be honoured in the current
	// engine setup, such as a text query while full-text search is disabled.
	ErrUsage = errors.New("usage error")

	// ErrData is the sentinel for errors caused by the request data itself,
	// such as a filter on a field that was never indexed.
	ErrData = errors.New("data error")
)

// ConfigurationError reports a problem with the engine configuration or with
// a request that references configuration which does not exist.
//
// errors.Is(err, ErrConfiguration) reports true for it.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string { return e.Msg }

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// UsageError reports an operation that is not allowed with the given options.
//
// errors.Is(err, ErrUsage) reports true for it.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return e.Msg }

func (e *UsageError) Unwrap() error { return ErrUsage }

// DataError reports invalid request data: unknown fields, malformed boolean
// queries or statistics over non-numeric values.
//
// errors.Is(err, ErrData) reports true for it.
type DataError struct {
	Msg string
}

func (e *DataError) Error() string { return e.Msg }

func (e *DataError) Unwrap() error { return ErrData }

func configErrorf(format string, args ...any) error {
	return &ConfigurationError{Msg: fmt.Sprintf(format, args...)}
}

func usageErrorf(format string, args ...any) error {
	return &UsageError{Msg: fmt.Sprintf(format, args...)}
}

func dataErrorf(format string, args ...any) error {
	return &DataError{Msg: fmt.Sprintf(format, args...)}
}
