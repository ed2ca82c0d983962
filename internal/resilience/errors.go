package resilience

import (
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/sells-group/adwatch/pkg/apify"
	"github.com/sells-group/adwatch/pkg/brightdata"
	"github.com/sells-group/adwatch/pkg/sheets"
)

// IsTransient reports whether the error is safe to retry: a service API
// error with a retryable status, a network timeout, or a dropped
// connection. Anything else (bad request, auth failure, decode error)
// is treated as permanent.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if code, ok := apiStatus(err); ok {
		return IsTransientHTTPStatus(code)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	// String-based heuristics for wrapped errors from HTTP clients.
	msg := strings.ToLower(err.Error())
	transientPatterns := []string{
		"connection reset by peer",
		"broken pipe",
		"temporary failure in name resolution",
		"no such host",
		"tls handshake timeout",
		"i/o timeout",
		"server closed idle connection",
		"transport connection broken",
	}
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}

// apiStatus extracts the HTTP status from any of the service client
// error types in the chain.
func apiStatus(err error) (int, bool) {
	var sheetsErr *sheets.APIError
	if errors.As(err, &sheetsErr) {
		return sheetsErr.StatusCode, true
	}
	var apifyErr *apify.APIError
	if errors.As(err, &apifyErr) {
		return apifyErr.StatusCode, true
	}
	var bdErr *brightdata.APIError
	if errors.As(err, &bdErr) {
		return bdErr.StatusCode, true
	}
	return 0, false
}

// IsTransientHTTPStatus returns true if the HTTP status code indicates a
// transient server-side issue that is safe to retry.
func IsTransientHTTPStatus(statusCode int) bool {
	switch statusCode {
	case 408, // Request Timeout
		429, // Too Many Requests
		500, // Internal Server Error
		502, // Bad Gateway
		503, // Service Unavailable
		504: // Gateway Timeout
		return true
	default:
		return false
	}
}
