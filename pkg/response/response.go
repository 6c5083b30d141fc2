// Package response provides the unified API response structure.
// All HTTP endpoints return this envelope for consistency.
package response

import (
	"net/http"

	"github.com/veaiops/veaiops/pkg/errors"
)

// Response is the unified API response envelope.
type Response struct {
	// Code is the business error code (0 = success).
	Code int `json:"code"`

	// Message is a human-readable message.
	Message string `json:"message"`

	// Data contains the response payload (nil for errors).
	Data interface{} `json:"data,omitempty"`

	// RequestID is the unique request identifier for tracing.
	RequestID string `json:"request_id,omitempty"`
}

// PageData represents paginated data.
type PageData struct {
	// List contains the data items.
	List interface{} `json:"list"`

	// Total is the total number of items.
	Total int64 `json:"total"`

	// Page is the current page number (1-based).
	Page int `json:"page"`

	// PageSize is the number of items per page.
	PageSize int `json:"page_size"`
}

// Success creates a successful response with data.
func Success(data interface{}) *Response {
	return &Response{Code: 0, Message: "success", Data: data}
}

// Err creates an error response from an Errno.
func Err(e *errors.Errno) *Response {
	if e == nil {
		return Success(nil)
	}
	return &Response{Code: e.Code, Message: e.Message}
}

// Page creates a paginated response.
func Page(list interface{}, total int64, page, pageSize int) *Response {
	return Success(&PageData{List: list, Total: total, Page: page, PageSize: pageSize})
}

// WithRequestID attaches the request ID to the response.
func (r *Response) WithRequestID(requestID string) *Response {
	r.RequestID = requestID
	return r
}

// HTTPStatus returns the HTTP status code appropriate for this response.
func (r *Response) HTTPStatus() int {
	if r.Code == 0 {
		return http.StatusOK
	}
	if e, ok := errors.Lookup(r.Code); ok {
		return e.HTTPStatus()
	}
	if errors.IsClientError(r.Code) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
