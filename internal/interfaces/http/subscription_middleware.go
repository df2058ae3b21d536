package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tyrex-b2b-api/internal/application/dto"
	"github.com/jhoicas/tyrex-b2b-api/internal/application/ordering"
)

// LocalBuyer key del BuyerContext en c.Locals.
const LocalBuyer = "buyer"

// buyerResolver lo implementa *usecase.SubscriptionService.
type buyerResolver interface {
	ResolveBuyer(ctx context.Context, companyID, userID string) (ordering.BuyerContext, error)
}

// RequireBuyer calcula una sola vez el BuyerContext de la empresa del token y lo deja en
// c.Locals. Debe usarse DESPUÉS de AuthMiddleware.
//
// Una suscripción vencida no corta aquí: el caso de uso responde NOT_SUBSCRIBED.
func RequireBuyer(resolver buyerResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID := GetCompanyID(c)
		if companyID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "UNAUTHORIZED",
				Message: "company_id no encontrado en el token",
			})
		}
		buyer, err := resolver.ResolveBuyer(c.UserContext(), companyID, GetUserID(c))
		if err != nil {
			return writeError(c, err)
		}
		c.Locals(LocalBuyer, buyer)
		return c.Next()
	}
}

// GetBuyer BuyerContext cargado por RequireBuyer (ok=false si no pasó por el middleware).
func GetBuyer(c *fiber.Ctx) (ordering.BuyerContext, bool) {
	b, ok := c.Locals(LocalBuyer).(ordering.BuyerContext)
	return b, ok
}
