package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/tyrex-b2b-api/internal/application/dto"
	"github.com/jhoicas/tyrex-b2b-api/internal/application/ordering"
)

// OrderHandler maneja las peticiones HTTP de pedidos (protegido).
type OrderHandler struct {
	uc  *ordering.OrderUseCase
	log zerolog.Logger
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *ordering.OrderUseCase, log zerolog.Logger) *OrderHandler {
	return &OrderHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Crear pedido
// @Description  Crea el pedido y descuenta el inventario en una sola transacción. La notificación al mayorista es asíncrona.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "Pedido"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	buyer, ok := GetBuyer(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "comprador no resuelto"})
	}
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.WholesalerID == "" || len(in.Items) == 0 || in.DeliveryAddress == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "wholesaler_id, items y delivery_address son requeridos"})
	}
	out, err := h.uc.CreateOrder(c.UserContext(), buyer, in)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener pedido
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {object}  dto.OrderResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	out, err := h.uc.GetOrder(c.UserContext(), actorFrom(c), id)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar pedidos de la empresa (como minorista o mayorista)
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        status          query  string  false  "Estado"
// @Param        payment_status  query  string  false  "Estado de pago"
// @Param        limit           query  int     false  "Límite"  default(20)
// @Param        offset          query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.OrderListResponse
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	in := dto.ListOrdersRequest{
		PageRequest:   dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)},
		Status:        c.Query("status"),
		PaymentStatus: c.Query("payment_status"),
	}
	in.DefaultPage()
	out, err := h.uc.ListOrders(c.UserContext(), actorFrom(c), in)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(out)
}

// Summary godoc
// @Summary      Resumen de pedidos
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.OrderSummaryResponse
// @Router       /api/orders/summary [get]
func (h *OrderHandler) Summary(c *fiber.Ctx) error {
	out, err := h.uc.Summary(c.UserContext(), actorFrom(c))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(out)
}

// Cancel godoc
// @Summary      Cancelar pedido
// @Description  Devuelve al inventario las unidades de las líneas no canceladas.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true   "ID del pedido"
// @Param        body  body  dto.CancelOrderRequest  false  "Motivo"
// @Success      200   {object}  dto.OrderResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	var in dto.CancelOrderRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	out, err := h.uc.CancelOrder(c.UserContext(), actorFrom(c), c.Params("id"), in.Reason)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(out)
}

// UpdateStatus godoc
// @Summary      Cambiar estado del pedido
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                       true  "ID del pedido"
// @Param        body  body  dto.TransitionStatusRequest  true  "Nuevo estado"
// @Success      200   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "incluye allowed_statuses"
// @Router       /api/orders/{id}/status [post]
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	var in dto.TransitionStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "status es requerido"})
	}
	out, err := h.uc.TransitionStatus(c.UserContext(), actorFrom(c), ordering.TransitionInput{
		OrderID: c.Params("id"),
		Status:  in.Status,
		Notes:   in.Notes,
	})
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(out)
}

// History godoc
// @Summary      Historial de estados (más reciente primero)
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {object}  dto.OrderHistoryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/history [get]
func (h *OrderHandler) History(c *fiber.Ctx) error {
	out, err := h.uc.GetStatusHistory(c.UserContext(), actorFrom(c), c.Params("id"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(out)
}
