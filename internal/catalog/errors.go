package catalog

import (
	"fmt"
	"net/url"
)

// maxBodyInError bounds how much of an upstream body is echoed by Error().
const maxBodyInError = 512

// UpstreamError describes a failed page request. StatusCode is zero when the
// request never produced a response.
type UpstreamError struct {
	StatusCode int
	Body       string
	Params     url.Values
	Err        error
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	switch {
	case e.StatusCode == 0:
		return fmt.Sprintf("catalog request failed (params %s): %v", e.Params.Encode(), e.Err)
	case e.Err != nil:
		return fmt.Sprintf("catalog response invalid (status %d, params %s): %v", e.StatusCode, e.Params.Encode(), e.Err)
	default:
		return fmt.Sprintf("catalog request returned status %d (params %s): %s", e.StatusCode, e.Params.Encode(), truncate(e.Body, maxBodyInError))
	}
}

// Unwrap returns the underlying transport or decode error, if any.
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
