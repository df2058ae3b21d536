package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")

	// Motor de pedidos
	ErrInvalidSelection           = errors.New("registro de stock seleccionado inválido")
	ErrDuplicateLineItem          = errors.New("producto repetido en el pedido")
	ErrNotSubscribed              = errors.New("el minorista no tiene una suscripción activa")
	ErrInvalidStatusTransition    = errors.New("transición de estado no permitida")
	ErrNotCancelable              = errors.New("el pedido no se puede cancelar en su estado actual")
	ErrNoBasePrice                = errors.New("el registro de stock no tiene precio de venta")
	ErrNotificationDispatchFailed = errors.New("fallo al notificar al mayorista")
)

// LineItemError identifica la línea del pedido que provocó el fallo.
// Unwrap devuelve el error de dominio original (ErrInsufficientStock, ErrInvalidSelection, ...).
type LineItemError struct {
	Index     int
	ProductID string
	Reason    string
	Err       error
}

func (e *LineItemError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("línea %d (producto %s): %v", e.Index+1, e.ProductID, e.Err)
	}
	return fmt.Sprintf("línea %d (producto %s): %v: %s", e.Index+1, e.ProductID, e.Err, e.Reason)
}

func (e *LineItemError) Unwrap() error { return e.Err }

// NewLineItemError construye el error de una línea.
func NewLineItemError(index int, productID string, err error, reason string) *LineItemError {
	return &LineItemError{Index: index, ProductID: productID, Reason: reason, Err: err}
}

// TransitionError describe una transición rechazada por la máquina de estados.
type TransitionError struct {
	From    string
	To      string
	Allowed []string
}

func (e *TransitionError) Error() string {
	allowed := "ninguno"
	if len(e.Allowed) > 0 {
		allowed = strings.Join(e.Allowed, ", ")
	}
	return fmt.Sprintf("%v: %s -> %s (permitidos: %s)", ErrInvalidStatusTransition, e.From, e.To, allowed)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidStatusTransition }
