package server

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"enginehost/internal/protocol"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
)

const rateLimitRate = 10 // req/sec

// NewFiberApp wires the engine host into an HTTP app:
//
//	GET  /        engine metadata
//	POST /        one move exchange
//	GET  /health  liveness and instance identity
//
// Exchange outcomes map to statuses: success 200, request-level error 400
// with the tagged error body, engine-level error 500 with the stringified
// diagnostic.
func NewFiberApp[S, I any](h *Host[S, I], devMode bool) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	})

	// Global middleware (order matters)
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Each server incarnation gets an ID so a caller can tell instances
	// apart across restarts. The protocol itself never needs it.
	instanceID := uuid.NewString()

	// Health check (no rate limit)
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Unix(),
			"engine":   h.Info().ID,
			"instance": instanceID,
		})
	})

	maxReq := rateLimitRate
	if devMode {
		maxReq = rateLimitRate * 2
	}
	app.Use(limiter.New(limiter.Config{
		Max:        maxReq,
		Expiration: 1 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			if xff := c.Get("X-Forwarded-For"); xff != "" {
				if idx := strings.Index(xff, ","); idx != -1 {
					return strings.TrimSpace(xff[:idx])
				}
				return xff
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    ErrRateLimitExceeded,
				Details: fmt.Sprintf("%d requests per second allowed", maxReq),
			})
		},
	}))

	app.Use(contentTypeValidator)
	app.Use(validationMiddleware)

	app.Get("/", handleInfo(h))
	app.Post("/", handleMove(h))

	return app
}

func handleInfo[S, I any](h *Host[S, I]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(h.Info())
	}
}

func handleMove[S, I any](h *Host[S, I]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Ensure middleware validation ran
		validated, ok := c.Locals("validated").(bool)
		if !ok || !validated {
			return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
				Error: "validation bypass detected",
				Code:  ErrInternalError,
			})
		}

		// The middleware validated the type-erased form; the concrete
		// engine state only decodes here, where S is known.
		var req protocol.MoveRequest[S]
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Error:   "invalid engine state",
				Code:    ErrInvalidRequest,
				Details: err.Error(),
			})
		}

		resp, err := h.Exchange(&req)
		if err != nil {
			var reqErr *protocol.RequestError
			if errors.As(err, &reqErr) {
				return c.Status(fiber.StatusBadRequest).JSON(reqErr)
			}
			return c.Status(fiber.StatusInternalServerError).JSON(protocol.EngineInternalError{
				ErrorText: err.Error(),
			})
		}
		return c.JSON(resp)
	}
}

// contentTypeValidator ensures POST requests have application/json
func contentTypeValidator(c *fiber.Ctx) error {
	if c.Method() == fiber.MethodPost {
		contentType := c.Get("Content-Type")
		if contentType != "application/json" && contentType != "" {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(ErrorResponse{
				Error:   "unsupported media type",
				Code:    ErrInvalidContent,
				Details: "Content-Type must be application/json",
			})
		}
	}
	return c.Next()
}

// customErrorHandler provides consistent error responses
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	response := ErrorResponse{
		Error: "internal server error",
		Code:  ErrInternalError,
	}

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		response.Error = e.Message
		switch code {
		case fiber.StatusBadRequest:
			response.Code = ErrInvalidRequest
		case fiber.StatusTooManyRequests:
			response.Code = ErrRateLimitExceeded
		}
	}

	return c.Status(code).JSON(response)
}
