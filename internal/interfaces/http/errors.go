package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tyrex-b2b-api/internal/application/dto"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain"
)

// writeError traduce los errores de dominio a status y código HTTP.
func writeError(c *fiber.Ctx, err error) error {
	status, body := errorResponse(err)
	return c.Status(status).JSON(body)
}

func errorResponse(err error) (int, dto.ErrorResponse) {
	body := dto.ErrorResponse{Message: err.Error()}

	var lineErr *domain.LineItemError
	if errors.As(err, &lineErr) {
		body.Line = &dto.LineErrorDetail{Index: lineErr.Index, ProductID: lineErr.ProductID, Reason: lineErr.Reason}
	}
	var trErr *domain.TransitionError
	if errors.As(err, &trErr) {
		body.AllowedStatuses = append([]string{}, trErr.Allowed...)
	}

	switch {
	case errors.Is(err, domain.ErrDuplicateLineItem):
		body.Code = "DUPLICATE_LINE_ITEM"
		return fiber.StatusBadRequest, body
	case errors.Is(err, domain.ErrInvalidSelection), errors.Is(err, domain.ErrNoBasePrice):
		body.Code = "INVALID_SELECTION"
		return fiber.StatusBadRequest, body
	case errors.Is(err, domain.ErrInvalidInput):
		body.Code = "VALIDATION"
		return fiber.StatusBadRequest, body
	case errors.Is(err, domain.ErrUnauthorized):
		body.Code = "UNAUTHORIZED"
		return fiber.StatusUnauthorized, body
	case errors.Is(err, domain.ErrNotSubscribed):
		body.Code = "NOT_SUBSCRIBED"
		return fiber.StatusForbidden, body
	case errors.Is(err, domain.ErrForbidden):
		body.Code = "FORBIDDEN"
		return fiber.StatusForbidden, body
	case errors.Is(err, domain.ErrNotFound):
		body.Code = "NOT_FOUND"
		return fiber.StatusNotFound, body
	case errors.Is(err, domain.ErrInsufficientStock):
		body.Code = "INSUFFICIENT_STOCK"
		return fiber.StatusConflict, body
	case errors.Is(err, domain.ErrInvalidStatusTransition):
		body.Code = "INVALID_STATUS_TRANSITION"
		return fiber.StatusConflict, body
	case errors.Is(err, domain.ErrNotCancelable):
		body.Code = "NOT_CANCELABLE"
		return fiber.StatusConflict, body
	case errors.Is(err, domain.ErrConflict):
		body.Code = "CONFLICT"
		return fiber.StatusConflict, body
	}
	body.Code = "INTERNAL"
	body.Message = "error interno"
	return fiber.StatusInternalServerError, body
}
