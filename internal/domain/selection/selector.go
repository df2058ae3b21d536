// Package selection elige el registro de stock que atiende una línea de pedido.
//
// Entre los candidatos elegibles se prefieren los mayoristas con relación comercial activa
// ("conocidos"); dentro de cada grupo gana el menor precio de venta y, a igual precio,
// la mayor disponibilidad.
package selection

import (
	"sort"

	"github.com/jhoicas/tyrex-b2b-api/internal/domain"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/entity"
)

// Rejection motivo por el que no se pudo atender una línea. Unwrap devuelve el error de dominio.
type Rejection struct {
	Err    error
	Reason string
}

func (r *Rejection) Error() string { return r.Err.Error() + ": " + r.Reason }
func (r *Rejection) Unwrap() error { return r.Err }

func reject(err error, reason string) *Rejection {
	return &Rejection{Err: err, Reason: reason}
}

// Eligible informa si el candidato puede atender qty unidades.
func Eligible(c *entity.StockCandidate, qty int) bool {
	return ineligibility(c, qty) == nil
}

func ineligibility(c *entity.StockCandidate, qty int) *Rejection {
	switch {
	case !c.Record.IsActive || !c.Record.IsSellable:
		return reject(domain.ErrInvalidSelection, "registro inactivo o no vendible")
	case !c.WarehouseActive:
		return reject(domain.ErrInvalidSelection, "bodega inactiva")
	case c.OwnerType != entity.CompanyTypeWholesaler && c.OwnerType != entity.CompanyTypeBoth:
		return reject(domain.ErrInvalidSelection, "el propietario de la bodega no es mayorista")
	case !c.Record.HasSalePrice():
		return reject(domain.ErrInvalidSelection, "registro sin precio de venta")
	case c.Record.Available() < qty:
		return reject(domain.ErrInsufficientStock, "disponibilidad insuficiente en el registro")
	}
	return nil
}

// Best elige el mejor candidato para qty unidades. knownWholesalers contiene los IDs de
// mayoristas con relación activa con el minorista. Sin candidatos elegibles devuelve
// ErrInsufficientStock.
func Best(candidates []entity.StockCandidate, knownWholesalers map[string]bool, qty int) (*entity.StockCandidate, error) {
	var known, other []entity.StockCandidate
	for i := range candidates {
		c := candidates[i]
		if !Eligible(&c, qty) {
			continue
		}
		if knownWholesalers[c.OwnerID] {
			known = append(known, c)
		} else {
			other = append(other, c)
		}
	}
	pool := known
	if len(pool) == 0 {
		pool = other
	}
	if len(pool) == 0 {
		return nil, reject(domain.ErrInsufficientStock, "ningún registro elegible con disponibilidad suficiente")
	}
	sortCandidates(pool)
	best := pool[0]
	return &best, nil
}

// sortCandidates ordena por precio ascendente, disponibilidad descendente e ID para un resultado estable.
func sortCandidates(cs []entity.StockCandidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		pi, pj := *cs[i].Record.SalePrice, *cs[j].Record.SalePrice
		if !pi.Equal(pj) {
			return pi.LessThan(pj)
		}
		ai, aj := cs[i].Record.Available(), cs[j].Record.Available()
		if ai != aj {
			return ai > aj
		}
		return cs[i].Record.ID < cs[j].Record.ID
	})
}

// ValidatePinned valida un registro elegido explícitamente por el minorista.
// wholesalerID vacío no restringe el propietario.
func ValidatePinned(c *entity.StockCandidate, productID string, qty int, wholesalerID string) error {
	if c == nil {
		return reject(domain.ErrInvalidSelection, "registro de stock no encontrado")
	}
	if c.Record.ProductID != productID {
		return reject(domain.ErrInvalidSelection, "el registro no corresponde al producto")
	}
	if wholesalerID != "" && c.OwnerID != wholesalerID {
		return reject(domain.ErrInvalidSelection, "el registro pertenece a otro mayorista")
	}
	if r := ineligibility(c, qty); r != nil {
		return r
	}
	return nil
}
