package ordering

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/tyrex-b2b-api/internal/application/dto"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/entity"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/pricing"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/selection"
)

// pricedLine línea resuelta: producto, origen de stock elegido y cotización.
type pricedLine struct {
	index        int
	product      *entity.Product
	candidate    entity.StockCandidate
	relationship *entity.Relationship
	quantity     int
	quote        pricing.Quote
}

func (l *pricedLine) lineTotal() decimal.Decimal {
	return entity.LineTotal(l.quantity, l.quote.FinalPrice, decimal.Zero)
}

// resolveLines valida las líneas, elige el stock de cada una y la cotiza. Solo lectura.
// wholesalerID vacío deja la selección abierta a cualquier mayorista.
func (uc *OrderUseCase) resolveLines(ctx context.Context, buyer BuyerContext, wholesalerID string, items []dto.CartLineRequest) ([]*pricedLine, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: el carrito está vacío", domain.ErrInvalidInput)
	}
	seen := make(map[string]bool, len(items))
	for i, it := range items {
		if it.ProductID == "" || it.Quantity <= 0 {
			return nil, domain.NewLineItemError(i, it.ProductID, domain.ErrInvalidInput, "producto y cantidad positiva requeridos")
		}
		if seen[it.ProductID] {
			return nil, domain.NewLineItemError(i, it.ProductID, domain.ErrDuplicateLineItem, "")
		}
		seen[it.ProductID] = true
	}

	known, err := uc.relRepo.ActiveWholesalerIDs(ctx, buyer.RetailerID)
	if err != nil {
		return nil, fmt.Errorf("relaciones del minorista: %w", err)
	}
	rels := make(map[string]*entity.Relationship)
	relationshipFor := func(ownerID string) (*entity.Relationship, error) {
		if rel, ok := rels[ownerID]; ok {
			return rel, nil
		}
		rel, err := uc.relRepo.Get(ctx, buyer.RetailerID, ownerID)
		if err != nil {
			return nil, fmt.Errorf("relación %s/%s: %w", buyer.RetailerID, ownerID, err)
		}
		rels[ownerID] = rel
		return rel, nil
	}

	lines := make([]*pricedLine, 0, len(items))
	for i, it := range items {
		product, err := uc.productRepo.GetByID(ctx, it.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.NewLineItemError(i, it.ProductID, domain.ErrNotFound, "producto no encontrado")
			}
			return nil, err
		}
		if !product.IsActive {
			return nil, domain.NewLineItemError(i, it.ProductID, domain.ErrInvalidInput, "producto inactivo")
		}

		cand, err := uc.selectStock(ctx, it, wholesalerID, known)
		if err != nil {
			return nil, lineError(i, it.ProductID, err)
		}
		rel, err := relationshipFor(cand.OwnerID)
		if err != nil {
			return nil, err
		}
		quote, err := pricing.Resolve(&cand.Record, rel, buyer.CommissionRate)
		if err != nil {
			return nil, domain.NewLineItemError(i, it.ProductID, domain.ErrInvalidSelection, "registro sin precio de venta")
		}
		lines = append(lines, &pricedLine{
			index:        i,
			product:      product,
			candidate:    *cand,
			relationship: rel,
			quantity:     it.Quantity,
			quote:        quote,
		})
	}
	return lines, nil
}

// selectStock valida el registro fijado por el minorista o elige el mejor candidato.
func (uc *OrderUseCase) selectStock(ctx context.Context, it dto.CartLineRequest, wholesalerID string, known map[string]bool) (*entity.StockCandidate, error) {
	if it.StockRecordID != "" {
		cand, err := uc.stockRepo.GetCandidate(ctx, it.StockRecordID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		if err := selection.ValidatePinned(cand, it.ProductID, it.Quantity, wholesalerID); err != nil {
			return nil, err
		}
		return cand, nil
	}
	candidates, err := uc.stockRepo.ListCandidates(ctx, it.ProductID, wholesalerID)
	if err != nil {
		return nil, err
	}
	return selection.Best(candidates, known, it.Quantity)
}

// lineError convierte un rechazo del selector en error de línea; los errores de infraestructura pasan tal cual.
func lineError(index int, productID string, err error) error {
	var rej *selection.Rejection
	if errors.As(err, &rej) {
		return domain.NewLineItemError(index, productID, rej.Err, rej.Reason)
	}
	return err
}
