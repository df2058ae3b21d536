package notification

import (
	"context"

	"github.com/jhoicas/tyrex-b2b-api/internal/domain/entity"
)

// Canales de notificación al mayorista.
const (
	ChannelEmail = "email"
	ChannelAPI   = "api"
	ChannelSMS   = "sms"
)

// Message datos que reciben los canales: el pedido con sus líneas y ambas partes.
type Message struct {
	Order          *entity.Order
	Retailer       *entity.Company
	Wholesaler     *entity.Company
	WarehouseNames map[string]string // bodegaID -> nombre
}

// WarehouseName nombre de la bodega o su id si no se conoce.
func (m Message) WarehouseName(id string) string {
	if name, ok := m.WarehouseNames[id]; ok {
		return name
	}
	return id
}

// Result resultado de un canal. Permanent indica que reintentar no cambiaría el resultado
// (por ejemplo, el mayorista no tiene endpoint configurado).
type Result struct {
	Channel   string `json:"channel"`
	Success   bool   `json:"success"`
	Reason    string `json:"reason,omitempty"`
	Permanent bool   `json:"-"`
}

// Channel envía la notificación por un medio concreto. Send no devuelve error:
// cualquier fallo se informa en el Result.
type Channel interface {
	Name() string
	Send(ctx context.Context, msg Message) Result
}
