package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/tyrex-b2b-api/internal/application/ordering"
	"github.com/jhoicas/tyrex-b2b-api/internal/application/usecase"
	"github.com/jhoicas/tyrex-b2b-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	OrderUC      *ordering.OrderUseCase
	ProductUC    *usecase.ProductUseCase
	Subscription *usecase.SubscriptionService
	JWTSecret    string
	JWTIssuer    string
	Log          zerolog.Logger
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))

	buyerRoles := RequireRole(jwt.RoleOwner, jwt.RoleBuyer, jwt.RoleManager)
	buyer := RequireBuyer(deps.Subscription)

	// Catálogo con precios del minorista
	products := api.Group("/products", buyer)
	productHandler := NewProductHandler(deps.ProductUC, deps.Log)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)

	// Carrito
	cartHandler := NewCartHandler(deps.OrderUC, deps.Log)
	api.Post("/cart/preview", buyerRoles, buyer, cartHandler.Preview)

	// Pedidos: crear requiere rol de compra; el resto lo puede hacer cualquier parte del pedido.
	orders := api.Group("/orders")
	orderHandler := NewOrderHandler(deps.OrderUC, deps.Log)
	orders.Post("/", buyerRoles, buyer, orderHandler.Create)
	orders.Get("/", orderHandler.List)
	orders.Get("/summary", orderHandler.Summary)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Get("/:id/history", orderHandler.History)
	orders.Post("/:id/cancel", orderHandler.Cancel)
	orders.Post("/:id/status", orderHandler.UpdateStatus)
}
