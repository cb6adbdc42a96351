package server

import (
	"fmt"
	"strings"

	"enginehost/internal/codec"
	"enginehost/internal/protocol"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// "ucimove" admits board-move tokens plus the null-move sentinel.
	v.RegisterValidation("ucimove", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == codec.NullMove || codec.IsMoveToken(s)
	})
	v.RegisterValidation("fen", func(fl validator.FieldLevel) bool {
		_, err := codec.ParsePosition(fl.Field().String())
		return err == nil
	})
	return v
}

// validationMiddleware parses and validates move-request bodies before they
// reach the handler. Only the type-erased form is validated here; the
// engine-specific state stays raw until the handler decodes it.
func validationMiddleware(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodPost || c.Path() != "/" {
		return c.Next()
	}

	req := &protocol.AnyMoveRequest{}
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid request body",
			Code:    ErrInvalidRequest,
			Details: err.Error(),
		})
	}

	if errs := validate.Struct(req); errs != nil {
		var details strings.Builder
		for _, err := range errs.(validator.ValidationErrors) {
			if details.Len() > 0 {
				details.WriteString("; ")
			}
			switch err.Tag() {
			case "required":
				details.WriteString(fmt.Sprintf("%s is required", err.Field()))
			case "ucimove":
				details.WriteString(fmt.Sprintf("%s must be a UCI move or the null move %q", err.Field(), codec.NullMove))
			case "fen":
				details.WriteString(fmt.Sprintf("%s must be a valid FEN position", err.Field()))
			default:
				details.WriteString(fmt.Sprintf("%s failed %s validation", err.Field(), err.Tag()))
			}
		}

		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation failed",
			Code:    ErrInvalidRequest,
			Details: details.String(),
		})
	}

	// Store validated body for handler use
	c.Locals("validatedBody", req)
	c.Locals("validated", true)

	return c.Next()
}
