package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/timmy/hirelane/internal/api/middleware"
	"github.com/timmy/hirelane/internal/domain"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error  string              `json:"error"`
	Code   domain.ErrorCode    `json:"code"`
	Fields []domain.FieldError `json:"fields,omitempty"`
}

// statusFor maps a domain error code to an HTTP status.
func statusFor(code domain.ErrorCode) int {
	switch code {
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeValidation, domain.CodeInvalidStatus:
		return http.StatusBadRequest
	case domain.CodeDuplicate:
		return http.StatusConflict
	case domain.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as an ErrorResponse. Internal failures are logged
// and their details are not sent to the client.
func respondError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:  "validation failed",
			Code:   domain.CodeValidation,
			Fields: verr.Fields,
		})
		return
	}

	resp := ErrorResponse{Code: domain.CodeInternal, Error: "internal error"}
	var derr *domain.Error
	if errors.As(err, &derr) {
		resp.Code = derr.Code
		if derr.Code != domain.CodeInternal {
			resp.Error = derr.Message
		}
	}
	status := statusFor(resp.Code)
	if status == http.StatusInternalServerError {
		middleware.GetLogger(c).WithError(err).Error("Request failed")
	}
	_ = c.Error(err)
	c.JSON(status, resp)
}

// badRequest reports a malformed request body or parameter.
func badRequest(c *gin.Context, field, message string) {
	verr := &domain.ValidationError{}
	verr.Add(field, message)
	respondError(c, verr)
}

// pathID parses a positive numeric path parameter. It writes the error
// response itself and returns false when the parameter is invalid.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, name, "must be a positive integer")
		return 0, false
	}
	return uint(id), true
}

// queryID parses an optional numeric query parameter; absent means 0.
func queryID(c *gin.Context, name string) (uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		badRequest(c, name, "must be a positive integer")
		return 0, false
	}
	return uint(id), true
}
