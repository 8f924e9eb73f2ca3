package vbr

import (
	"fmt"
	"net/http"

	"github.com/theapemachine/mcp-server-vbr-bridge/pkg/tools"
)

// APIError describes a failed VBR request. Code is one of the tools error
// codes, so results built from it carry the right classification.
type APIError struct {
	Code string
	// What names the requested resource, e.g. "proxies".
	What       string
	StatusCode int
	Status     string
	Cause      error
}

func (e *APIError) Error() string {
	switch e.Code {
	case tools.CodeUpstreamFailure:
		return fmt.Sprintf("Failed to fetch %s: %s", e.What, e.Status)
	case tools.CodeDecodeFailure:
		return fmt.Sprintf("Unexpected %s response: %v", e.What, e.Cause)
	default:
		return fmt.Sprintf("Failed to fetch %s: %v", e.What, e.Cause)
	}
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// ErrorCode implements tools.Coder.
func (e *APIError) ErrorCode() string {
	return e.Code
}

func transportError(what string, err error) error {
	return &APIError{Code: tools.CodeTransportFailure, What: what, Cause: err}
}

// DecodeError reports a response body that does not have the expected shape.
func DecodeError(what string, err error) error {
	return &APIError{Code: tools.CodeDecodeFailure, What: what, Cause: err}
}

func upstreamError(what string, resp *http.Response) error {
	status := resp.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	return &APIError{
		Code:       tools.CodeUpstreamFailure,
		What:       what,
		StatusCode: resp.StatusCode,
		Status:     status,
		Cause:      tools.ErrExternalAPIError,
	}
}
