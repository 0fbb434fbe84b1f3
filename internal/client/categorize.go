package client

import (
	"context"
	"errors"
	"net"
)

// ErrorCategory is a stable label for error classification in metrics.
type ErrorCategory string

// Error category constants used as metric labels.
const (
	ErrorCategoryValidation ErrorCategory = "validation"
	ErrorCategoryNotFound   ErrorCategory = "not_found"
	ErrorCategoryTimeout    ErrorCategory = "timeout"
	ErrorCategoryNetwork    ErrorCategory = "network"
	ErrorCategoryUpstream   ErrorCategory = "upstream"
	ErrorCategoryParsing    ErrorCategory = "parsing"
	ErrorCategoryUnknown    ErrorCategory = "unknown"
)

// CategorizeError maps an error to a stable ErrorCategory for metrics.
// Upstream failures are split into network (no response) and upstream
// (non-2xx response).
func CategorizeError(err error) ErrorCategory {
	if err == nil {
		return ""
	}
	switch KindOf(err) {
	case KindInvalidInput:
		return ErrorCategoryValidation
	case KindNotFound:
		return ErrorCategoryNotFound
	case KindTimeout:
		return ErrorCategoryTimeout
	case KindUpstreamFailure:
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			return ErrorCategoryUpstream
		}
		return ErrorCategoryNetwork
	}
	var syntaxErr *decodeError
	if errors.As(err, &syntaxErr) {
		return ErrorCategoryParsing
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorCategoryTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return ErrorCategoryNetwork
	}
	return ErrorCategoryUnknown
}
