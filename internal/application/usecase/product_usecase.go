package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jhoicas/tyrex-b2b-api/internal/application/dto"
	"github.com/jhoicas/tyrex-b2b-api/internal/application/ordering"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/entity"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/pricing"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/repository"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/selection"
)

// ProductUseCase lectura del catálogo del marketplace con precios calculados para el minorista.
// El catálogo lo mantiene otro servicio; aquí solo se consulta.
type ProductUseCase struct {
	productRepo repository.ProductRepository
	stockRepo   repository.StockRecordRepository
	relRepo     repository.RelationshipRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(productRepo repository.ProductRepository, stockRepo repository.StockRecordRepository, relRepo repository.RelationshipRepository) *ProductUseCase {
	return &ProductUseCase{productRepo: productRepo, stockRepo: stockRepo, relRepo: relRepo}
}

// List productos activos con al menos una oferta disponible. La paginación se aplica sobre
// el catálogo activo, así que una página puede traer menos de limit productos.
func (uc *ProductUseCase) List(ctx context.Context, buyer ordering.BuyerContext, limit, offset int) (*dto.ProductListResponse, error) {
	if !buyer.CanOrder {
		return nil, domain.ErrNotSubscribed
	}
	products, err := uc.productRepo.ListActive(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	known, err := uc.relRepo.ActiveWholesalerIDs(ctx, buyer.RetailerID)
	if err != nil {
		return nil, fmt.Errorf("known wholesalers: %w", err)
	}
	rels := make(map[string]*entity.Relationship)

	items := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		offers, err := uc.offers(ctx, buyer, p.ID, known, rels)
		if err != nil {
			return nil, err
		}
		if len(offers) == 0 {
			continue
		}
		items = append(items, toProductResponse(p, offers))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset, Total: len(items)},
	}, nil
}

// GetByID producto con todas sus ofertas. ErrNotFound si no existe, está inactivo o no tiene stock.
func (uc *ProductUseCase) GetByID(ctx context.Context, buyer ordering.BuyerContext, id string) (*dto.ProductDetailResponse, error) {
	if !buyer.CanOrder {
		return nil, domain.ErrNotSubscribed
	}
	p, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, domain.ErrNotFound
	}
	known, err := uc.relRepo.ActiveWholesalerIDs(ctx, buyer.RetailerID)
	if err != nil {
		return nil, fmt.Errorf("known wholesalers: %w", err)
	}
	offers, err := uc.offers(ctx, buyer, p.ID, known, make(map[string]*entity.Relationship))
	if err != nil {
		return nil, err
	}
	if len(offers) == 0 {
		return nil, domain.ErrNotFound
	}
	return &dto.ProductDetailResponse{ProductResponse: toProductResponse(p, offers), Offers: offers}, nil
}

// offers cotiza cada registro elegible del producto. La primera oferta es la que elegiría
// el carrito para una unidad (conocidos primero, luego precio).
func (uc *ProductUseCase) offers(
	ctx context.Context,
	buyer ordering.BuyerContext,
	productID string,
	known map[string]bool,
	rels map[string]*entity.Relationship,
) ([]dto.OfferResponse, error) {
	candidates, err := uc.stockRepo.ListCandidates(ctx, productID, "")
	if err != nil {
		return nil, err
	}
	best, err := selection.Best(candidates, known, 1)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			return nil, nil
		}
		return nil, err
	}

	var out []dto.OfferResponse
	for i := range candidates {
		c := &candidates[i]
		if !selection.Eligible(c, 1) {
			continue
		}
		rel, ok := rels[c.OwnerID]
		if !ok {
			if rel, err = uc.relRepo.Get(ctx, buyer.RetailerID, c.OwnerID); err != nil {
				return nil, err
			}
			rels[c.OwnerID] = rel
		}
		quote, err := pricing.Resolve(&c.Record, rel, buyer.CommissionRate)
		if err != nil {
			continue
		}
		out = append(out, dto.OfferResponse{
			StockRecordID:      c.Record.ID,
			WarehouseID:        c.Record.WarehouseID,
			WarehouseName:      c.WarehouseName,
			WholesalerID:       c.OwnerID,
			WholesalerName:     c.OwnerName,
			IsKnownWholesaler:  known[c.OwnerID],
			AvailableStock:     c.Record.Available(),
			StockStatus:        c.Record.StockStatus(),
			BasePrice:          quote.BasePrice,
			DiscountPercentage: quote.DiscountPercentage(),
			FinalPrice:         quote.FinalPrice,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].StockRecordID == best.Record.ID {
			return true
		}
		if out[j].StockRecordID == best.Record.ID {
			return false
		}
		return out[i].FinalPrice.LessThan(out[j].FinalPrice)
	})
	return out, nil
}

func toProductResponse(p *entity.Product, offers []dto.OfferResponse) dto.ProductResponse {
	total := 0
	for _, o := range offers {
		total += o.AvailableStock
	}
	return dto.ProductResponse{
		ID:             p.ID,
		SKU:            p.SKU,
		Name:           p.Name,
		Brand:          p.Brand,
		CategoryID:     p.CategoryID,
		Attributes:     p.Attributes,
		AvailableStock: total,
		OfferCount:     len(offers),
		BestOffer:      offers[0],
	}
}
