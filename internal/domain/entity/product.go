package entity

import (
	"encoding/json"
	"time"
)

// Product representa un producto del catálogo (llanta, batería, rin).
// El catálogo es de solo lectura para el motor de pedidos.
type Product struct {
	ID         string
	SKU        string
	Name       string
	Brand      string
	CategoryID string
	Attributes json.RawMessage // medidas, índice de carga, amperaje, etc.
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
