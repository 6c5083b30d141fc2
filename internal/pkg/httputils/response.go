// Package httputils provides HTTP handler utilities.
package httputils

import (
	"github.com/gin-gonic/gin"

	"github.com/veaiops/veaiops/pkg/errors"
	"github.com/veaiops/veaiops/pkg/middleware"
	"github.com/veaiops/veaiops/pkg/response"
)

// WriteResponse writes a unified response to the client.
// It handles both success and error cases, ensuring a consistent envelope.
func WriteResponse(c *gin.Context, err error, data interface{}) {
	requestID := middleware.GetRequestID(c)

	if err != nil {
		resp := response.Err(errors.FromError(err)).WithRequestID(requestID)
		c.JSON(resp.HTTPStatus(), resp)
		return
	}

	// data may already be an envelope, e.g. from response.Page.
	if resp, ok := data.(*response.Response); ok {
		c.JSON(resp.HTTPStatus(), resp.WithRequestID(requestID))
		return
	}

	resp := response.Success(data).WithRequestID(requestID)
	c.JSON(resp.HTTPStatus(), resp)
}
