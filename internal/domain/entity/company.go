package entity

import "time"

// Tipos de empresa en el marketplace.
const (
	CompanyTypeRetailer   = "retailer"
	CompanyTypeWholesaler = "wholesaler"
	CompanyTypeBoth       = "both"
)

// Company representa una empresa participante (minorista, mayorista o ambas).
type Company struct {
	ID          string
	Name        string
	Type        string // ver constantes CompanyType*
	Email       string
	Phone       string
	APIEndpoint string // endpoint del mayorista para recibir pedidos (vacío = sin integración)
	APIToken    string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CanSell informa si la empresa puede publicar stock en el marketplace.
func (c *Company) CanSell() bool {
	return c.Type == CompanyTypeWholesaler || c.Type == CompanyTypeBoth
}

// CanBuy informa si la empresa puede realizar pedidos.
func (c *Company) CanBuy() bool {
	return c.Type == CompanyTypeRetailer || c.Type == CompanyTypeBoth
}
