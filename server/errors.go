package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"blog-api/auth"
	"blog-api/blog"
)

const genericServerError = "Server error"

type apiError struct {
	status  int
	code    string
	errCode int
	field   string
	message string
	err     error
}

func (e apiError) Error() string {
	if e.message != "" {
		return e.message
	}
	if e.err == nil {
		return http.StatusText(e.status)
	}
	return e.err.Error()
}

func (e apiError) Unwrap() error {
	return e.err
}

func makeAPIError(status int, code string, errCode int, err error) apiError {
	if err == nil {
		err = errors.New(http.StatusText(status))
	}
	return apiError{status: status, code: code, errCode: errCode, err: err}
}

func badRequest(err error, errCode int) apiError {
	return makeAPIError(http.StatusBadRequest, "invalid_argument", errCode, err)
}

func unauthorized(message string) apiError {
	e := makeAPIError(http.StatusUnauthorized, "unauthorized", ErrCodeUnauthorized, nil)
	e.message = message
	return e
}

// classify maps service errors onto HTTP statuses and stable codes.
func classify(err error) apiError {
	var existing apiError
	if errors.As(err, &existing) {
		return existing
	}

	var verr *blog.ValidationError
	if errors.As(err, &verr) {
		e := badRequest(err, ErrCodeInvalidArgument)
		e.field = verr.Field
		if verr.Field == "featured_image" {
			e.errCode = ErrCodeInvalidImage
		}
		return e
	}

	var uerr *blog.UpstreamError
	switch {
	case errors.Is(err, blog.ErrNotFound):
		e := makeAPIError(http.StatusNotFound, "not_found", ErrCodeBlogNotFound, err)
		e.message = "Blog not found"
		return e
	case errors.Is(err, blog.ErrForbidden):
		e := makeAPIError(http.StatusForbidden, "forbidden", ErrCodeForbidden, err)
		e.message = "Not authorized"
		return e
	case errors.Is(err, blog.ErrUnauthenticated):
		return unauthorized("Not authorized, no token")
	case errors.Is(err, auth.ErrInvalidCredentials):
		e := makeAPIError(http.StatusUnauthorized, "unauthorized", ErrCodeInvalidCredentials, err)
		e.message = "Invalid credentials"
		return e
	case errors.Is(err, auth.ErrEmailTaken):
		e := makeAPIError(http.StatusConflict, "conflict", ErrCodeEmailTaken, err)
		e.message = "User already exists"
		return e
	case errors.Is(err, auth.ErrInvalidInput):
		return badRequest(err, ErrCodeInvalidArgument)
	case errors.As(err, &uerr) && uerr.Op == "media":
		e := makeAPIError(http.StatusBadGateway, "upstream", ErrCodeMediaFailure, err)
		e.message = "Error uploading image"
		return e
	case errors.As(err, &uerr):
		return makeAPIError(http.StatusInternalServerError, "internal", ErrCodeStoreFailure, err)
	default:
		return makeAPIError(http.StatusInternalServerError, "internal", ErrCodeInternal, err)
	}
}

func shouldWarnClientError(status int) bool {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return true
	default:
		return false
	}
}

// writeError logs err at a level matching its status and aborts the request
// with the JSON error body. Internal details are hidden in production.
func (s *Server) writeError(c *gin.Context, err error) {
	apiErr := classify(err)
	message := apiErr.Error()

	fields := []any{
		"status", apiErr.status,
		"code", apiErr.code,
		"error_code", apiErr.errCode,
		"path", c.Request.URL.Path,
		"error", err,
	}
	switch {
	case apiErr.status >= http.StatusInternalServerError:
		s.logger.Error("request failed", fields...)
		if s.opts.Production && apiErr.status == http.StatusInternalServerError {
			message = genericServerError
		}
	case shouldWarnClientError(apiErr.status):
		s.logger.Warn("request rejected", fields...)
	default:
		s.logger.Debug("request rejected", fields...)
	}

	body := gin.H{
		"message":    message,
		"code":       apiErr.code,
		"error_code": apiErr.errCode,
	}
	if apiErr.field != "" {
		body["field"] = apiErr.field
	}
	c.AbortWithStatusJSON(apiErr.status, body)
}
