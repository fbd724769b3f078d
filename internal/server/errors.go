package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/storefront/internal/auth/domain"
	productdomain "github.com/smallbiznis/storefront/internal/product/domain"
	relationdomain "github.com/smallbiznis/storefront/internal/relation/domain"
	"gorm.io/gorm"
)

const (
	detailUnauthorized = "authentication credentials were not provided"
	detailForbidden    = "you do not have permission to perform this action"
	detailNotFound     = "not found"
	detailInternal     = "internal server error"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

// errorPayload is the error body for every non-2xx response. Detail is always
// present; Errors carries field level details on validation failures.
type errorPayload struct {
	Detail string            `json:"detail"`
	Errors []ValidationError `json:"errors,omitempty"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

// ErrorHandlingMiddleware turns errors recorded on the gin context into the
// JSON error body. Handlers that already wrote a response are left alone.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, payload)
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{Detail: detailInternal}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Detail: "validation error",
			Errors: vErr.Errors,
		}
	}

	if field, code, ok := validationDetail(err); ok {
		return http.StatusBadRequest, errorPayload{
			Detail: "validation error",
			Errors: []ValidationError{
				{Field: field, Code: code, Message: err.Error()},
			},
		}
	}

	switch {
	case isUnauthorizedError(err):
		return http.StatusUnauthorized, errorPayload{Detail: detailUnauthorized}
	case errors.Is(err, ErrForbidden) || errors.Is(err, productdomain.ErrForbidden):
		return http.StatusForbidden, errorPayload{Detail: detailForbidden}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{Detail: detailNotFound}
	default:
		return http.StatusInternalServerError, errorPayload{Detail: detailInternal}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) {
		return vErr
	}
	return nil
}

// validationDetail maps domain validation sentinels onto field errors.
func validationDetail(err error) (field, code string, ok bool) {
	switch {
	case errors.Is(err, productdomain.ErrInvalidName):
		return "name", "invalid_name", true
	case errors.Is(err, productdomain.ErrInvalidPrice):
		return "price", "invalid_price", true
	case errors.Is(err, productdomain.ErrInvalidOrdering):
		return "ordering", "invalid_ordering", true
	case errors.Is(err, productdomain.ErrInvalidID):
		return "id", "invalid_id", true
	case errors.Is(err, relationdomain.ErrInvalidRate):
		return "rate", "invalid_rate", true
	case errors.Is(err, authdomain.ErrUserExists):
		return "email", "already_exists", true
	case errors.Is(err, ErrInvalidRequest):
		return "request", "invalid_request", true
	default:
		return "", "", false
	}
}

func isUnauthorizedError(err error) bool {
	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, productdomain.ErrUnauthenticated),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrInvalidSession),
		errors.Is(err, authdomain.ErrSessionNotFound),
		errors.Is(err, authdomain.ErrSessionExpired),
		errors.Is(err, authdomain.ErrSessionRevoked):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, productdomain.ErrNotFound),
		errors.Is(err, authdomain.ErrUserNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

// classifyErrorForLog labels response errors for the request log.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	switch {
	case status == http.StatusBadRequest:
		return "validation", payload.Detail
	case status == http.StatusUnauthorized:
		return "auth", payload.Detail
	case status == http.StatusForbidden:
		return "permission", payload.Detail
	case status == http.StatusNotFound:
		return "not_found", payload.Detail
	default:
		return "internal", payload.Detail
	}
}
