package integrations

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/riskgraph/pkg/buildinfo"
	rgerrors "github.com/matzehuels/riskgraph/pkg/errors"
)

const httpTimeout = 30 * time.Second

// DefaultHeaders returns the headers every upstream client sends.
func DefaultHeaders() map[string]string {
	return map[string]string{"User-Agent": buildinfo.UserAgent()}
}

var (
	// ErrNotFound is matched by a StatusError carrying a 404.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for transport failures and matched by 5xx StatusErrors.
	ErrNetwork = errors.New("network error")

	// ErrMalformed is returned when a response body cannot be decoded.
	ErrMalformed = rgerrors.New(rgerrors.ErrCodeMalformed, "malformed response")
)

// StatusError is returned for any non-2xx response. A 429 carries an
// [rgerrors.RateLimitedError] as its cause.
type StatusError struct {
	StatusCode int
	URL        string
	Body       string // first bytes of the response body, for diagnostics
	Cause      error
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s: status %d: %s", e.URL, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s: status %d", e.URL, e.StatusCode)
}

func (e *StatusError) Unwrap() error { return e.Cause }

// HTTPStatus returns the response status code.
func (e *StatusError) HTTPStatus() int { return e.StatusCode }

// Code maps the status to an error code.
func (e *StatusError) Code() rgerrors.Code { return rgerrors.CodeForStatus(e.StatusCode) }

// Is lets errors.Is match ErrNotFound for 404 and ErrNetwork for 5xx.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrNetwork:
		return e.StatusCode >= 500
	}
	return false
}

// NewHTTPClient creates an HTTP client with a standard timeout for upstream requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// NormalizePkgName converts a package name to its canonical form.
// Applies lowercase and replaces underscores with hyphens, following PEP 503
// normalization rules used by PyPI.
func NormalizePkgName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
}

// PathEscape percent-encodes a single path segment.
// This is a convenience wrapper around [url.PathEscape].
func PathEscape(s string) string { return url.PathEscape(s) }

// retryAfter reads a Retry-After header in seconds or as an HTTP date.
func retryAfter(h http.Header, now time.Time) int {
	v := strings.TrimSpace(h.Get("Retry-After"))
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return max(secs, 0)
	}
	if t, err := http.ParseTime(v); err == nil {
		return max(int(t.Sub(now).Seconds()), 0)
	}
	return 0
}
