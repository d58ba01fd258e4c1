package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode identifies the recoverable failure classes a metric calculation
// can produce. These are returned to callers as structured values; none of
// them is fatal to the process.
type ErrorCode string

const (
	// ErrCodeInsufficientData means no records matched the filter.
	ErrCodeInsufficientData ErrorCode = "insufficient_data"
	// ErrCodeMissingColumns means a required field was absent after
	// cleaning, which indicates malformed source data.
	ErrCodeMissingColumns ErrorCode = "missing_columns"
	// ErrCodeZeroDenominator means a computed average used as a divisor
	// was zero or undefined.
	ErrCodeZeroDenominator ErrorCode = "zero_denominator"
)

// MetricError is the structured error object returned at the call boundary.
// Callers decide whether to surface it, default, or retry with a broader
// filter.
type MetricError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"error"`
	Columns []string  `json:"columns,omitempty"`
}

func (e *MetricError) Error() string {
	return e.Message
}

// Is makes errors.Is match on the code so callers can compare against the
// sentinel constructors below.
func (e *MetricError) Is(target error) bool {
	var me *MetricError
	if errors.As(target, &me) {
		return e.Code == me.Code
	}
	return false
}

// ErrInsufficientData builds the no-matching-records error.
func ErrInsufficientData() *MetricError {
	return &MetricError{
		Code:    ErrCodeInsufficientData,
		Message: "insufficient data for calculation",
	}
}

// ErrMissingColumns builds the malformed-source error naming the fields that
// were absent after cleaning.
func ErrMissingColumns(columns ...string) *MetricError {
	return &MetricError{
		Code:    ErrCodeMissingColumns,
		Message: fmt.Sprintf("required columns missing after cleaning: %s", strings.Join(columns, ", ")),
		Columns: columns,
	}
}

// ErrZeroDenominator builds the zero-or-undefined-average error.
func ErrZeroDenominator(what string) *MetricError {
	return &MetricError{
		Code:    ErrCodeZeroDenominator,
		Message: fmt.Sprintf("%s is zero or undefined", what),
	}
}

// IsMetricError extracts a MetricError from err when present.
func IsMetricError(err error) (*MetricError, bool) {
	var me *MetricError
	if errors.As(err, &me) {
		return me, true
	}
	return nil, false
}
