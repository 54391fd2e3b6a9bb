package presenter

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/bonsai/pkg/auth"
)

// ErrorKey is the fiber local holding the error behind a 5xx response.
const ErrorKey = "handler_error"

type ErrorResponse struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func JSON(c *fiber.Ctx, status int, v any) error {
	return c.Status(status).JSON(v)
}

func Error(c *fiber.Ctx, status int, message string) error {
	return JSON(c, status, ErrorResponse{Message: message})
}

// Unauthorized answers 401 with a bearer challenge.
func Unauthorized(c *fiber.Ctx, message string) error {
	c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	return Error(c, http.StatusUnauthorized, message)
}

// FromError maps domain errors onto the HTTP contract. Anything unknown is a
// 500 with a generic body; the cause is kept in locals for the access log.
func FromError(c *fiber.Ctx, err error) error {
	var verr *auth.ValidationError
	switch {
	case errors.As(err, &verr):
		return JSON(c, http.StatusBadRequest, ErrorResponse{Message: "validation failed", Fields: verr.Fields})
	case errors.Is(err, auth.ErrInvalidCredentials):
		return Unauthorized(c, "Incorrect username or password")
	case errors.Is(err, auth.ErrUnauthenticated), errors.Is(err, auth.ErrMissingToken):
		return Unauthorized(c, "Could not validate credentials")
	case errors.Is(err, auth.ErrNotFound):
		return Error(c, http.StatusNotFound, "not found")
	case errors.Is(err, auth.ErrUsernameTaken):
		return Error(c, http.StatusConflict, "Username already registered")
	case errors.Is(err, auth.ErrEmailTaken):
		return Error(c, http.StatusConflict, "Email already registered")
	default:
		c.Locals(ErrorKey, err)
		return Error(c, http.StatusInternalServerError, "internal server error")
	}
}

// ErrorHandler is the fiber.Config error handler for errors no handler mapped.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return Error(c, fe.Code, fe.Message)
	}
	return FromError(c, err)
}
