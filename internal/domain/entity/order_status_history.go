package entity

import "time"

// OrderStatusHistory registro inmutable de un cambio de estado del pedido.
type OrderStatusHistory struct {
	ID           string
	OrderID      string
	OldStatus    string
	NewStatus    string
	ChangedBy    string // vacío = sistema
	ChangeReason string
	Notes        string
	ChangedAt    time.Time
}
