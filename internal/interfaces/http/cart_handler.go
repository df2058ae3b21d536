package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/tyrex-b2b-api/internal/application/dto"
	"github.com/jhoicas/tyrex-b2b-api/internal/application/ordering"
)

// CartHandler vista previa del carrito (sin efectos sobre el inventario).
type CartHandler struct {
	uc  *ordering.OrderUseCase
	log zerolog.Logger
}

// NewCartHandler construye el handler.
func NewCartHandler(uc *ordering.OrderUseCase, log zerolog.Logger) *CartHandler {
	return &CartHandler{uc: uc, log: log}
}

// Preview godoc
// @Summary      Cotizar carrito
// @Description  Elige el origen de stock de cada línea y calcula el precio final con descuento y comisión.
// @Tags         cart
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PreviewCartRequest  true  "Líneas del carrito"
// @Success      200   {object}  dto.CartPreviewResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/cart/preview [post]
func (h *CartHandler) Preview(c *fiber.Ctx) error {
	buyer, ok := GetBuyer(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "comprador no resuelto"})
	}
	var in dto.PreviewCartRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if len(in.Items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "items es requerido"})
	}
	out, err := h.uc.PreviewCart(c.UserContext(), buyer, in)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(out)
}

// fail responde el error y registra los que no son de dominio.
func fail(c *fiber.Ctx, log zerolog.Logger, err error) error {
	status, body := errorResponse(err)
	if status >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Str("method", c.Method()).Msg("error no controlado")
	}
	return c.Status(status).JSON(body)
}
