package entity

import "time"

// Warehouse representa una bodega de un mayorista.
type Warehouse struct {
	ID        string
	CompanyID string // empresa propietaria
	Name      string
	Code      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
