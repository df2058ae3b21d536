package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/tyrex-b2b-api/internal/domain"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/entity"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/repository"
)

var (
	_ repository.ProductRepository      = (*ProductRepo)(nil)
	_ repository.CompanyRepository      = (*CompanyRepo)(nil)
	_ repository.RelationshipRepository = (*RelationshipRepo)(nil)
	_ repository.SubscriptionRepository = (*SubscriptionRepo)(nil)
	_ repository.WarehouseRepository    = (*WarehouseRepo)(nil)
)

// ProductRepo catálogo en memoria.
type ProductRepo struct{ s *Store }

func NewProductRepository(s *Store) *ProductRepo { return &ProductRepo{s: s} }

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *ProductRepo) ListActive(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Product
	for _, p := range r.s.products {
		if p.IsActive {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// CompanyRepo empresas en memoria.
type CompanyRepo struct{ s *Store }

func NewCompanyRepository(s *Store) *CompanyRepo { return &CompanyRepo{s: s} }

func (r *CompanyRepo) GetByID(_ context.Context, id string) (*entity.Company, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.companies[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

// RelationshipRepo libro de relaciones en memoria.
type RelationshipRepo struct{ s *Store }

func NewRelationshipRepository(s *Store) *RelationshipRepo { return &RelationshipRepo{s: s} }

func (r *RelationshipRepo) Get(_ context.Context, retailerID, wholesalerID string) (*entity.Relationship, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rel, ok := r.s.relationships[relKey(retailerID, wholesalerID)]
	if !ok {
		return nil, nil
	}
	cp := *rel
	return &cp, nil
}

func (r *RelationshipRepo) ActiveWholesalerIDs(_ context.Context, retailerID string) (map[string]bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[string]bool)
	for _, rel := range r.s.relationships {
		if rel.RetailerID == retailerID && rel.IsActive {
			out[rel.WholesalerID] = true
		}
	}
	return out, nil
}

// SubscriptionRepo suscripciones en memoria.
type SubscriptionRepo struct{ s *Store }

func NewSubscriptionRepository(s *Store) *SubscriptionRepo { return &SubscriptionRepo{s: s} }

func (r *SubscriptionRepo) GetByCompany(_ context.Context, companyID string) (*entity.Subscription, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sub, ok := r.s.subscriptions[companyID]
	if !ok {
		return nil, nil
	}
	cp := *sub
	return &cp, nil
}

// WarehouseRepo bodegas en memoria.
type WarehouseRepo struct{ s *Store }

func NewWarehouseRepository(s *Store) *WarehouseRepo { return &WarehouseRepo{s: s} }

func (r *WarehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	w, ok := r.s.warehouses[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *w
	return &cp, nil
}
