package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/tyrex-b2b-api/internal/domain"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/entity"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/repository"
)

var _ repository.StockRecordRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRecordRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

const stockColumns = `s.id, s.product_id, s.warehouse_id, s.quantity, s.reserved_quantity,
		s.min_stock, s.max_stock, s.cost_price, s.sale_price, s.is_active, s.is_sellable, s.updated_at`

const candidateQuery = `
		SELECT ` + stockColumns + `,
		       w.name, w.is_active, c.id, c.company_type, c.name
		FROM stock_records s
		JOIN warehouses w ON w.id = s.warehouse_id
		JOIN companies c ON c.id = w.company_id`

func scanStock(row pgx.Row, extra ...any) (*entity.StockRecord, error) {
	var s entity.StockRecord
	dest := []any{
		&s.ID, &s.ProductID, &s.WarehouseID, &s.Quantity, &s.ReservedQuantity,
		&s.MinStock, &s.MaxStock, &s.CostPrice, &s.SalePrice, &s.IsActive, &s.IsSellable, &s.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &s, nil
}

func scanCandidate(row pgx.Row) (*entity.StockCandidate, error) {
	var c entity.StockCandidate
	rec, err := scanStock(row, &c.WarehouseName, &c.WarehouseActive, &c.OwnerID, &c.OwnerType, &c.OwnerName)
	if err != nil {
		return nil, err
	}
	c.Record = *rec
	return &c, nil
}

// GetCandidate obtiene un registro con su bodega y su empresa propietaria.
func (r *StockRepo) GetCandidate(ctx context.Context, stockRecordID string) (*entity.StockCandidate, error) {
	c, err := scanCandidate(r.q.QueryRow(ctx, candidateQuery+` WHERE s.id = $1`, stockRecordID))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get stock candidate: %w", err)
	}
	return c, nil
}

// ListCandidates lista los registros de un producto, opcionalmente de un solo mayorista.
func (r *StockRepo) ListCandidates(ctx context.Context, productID, wholesalerID string) ([]entity.StockCandidate, error) {
	query := candidateQuery + `
		WHERE s.product_id = $1 AND ($2 = '' OR c.id::text = $2)
		ORDER BY s.id`
	rows, err := r.q.Query(ctx, query, productID, wholesalerID)
	if err != nil {
		return nil, fmt.Errorf("list stock candidates: %w", err)
	}
	defer rows.Close()

	var out []entity.StockCandidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock candidate: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// GetForUpdate obtiene el registro y bloquea la fila para update (SELECT FOR UPDATE).
func (r *StockRepo) GetForUpdate(ctx context.Context, stockRecordID string) (*entity.StockRecord, error) {
	query := `SELECT ` + stockColumns + ` FROM stock_records s WHERE s.id = $1 FOR UPDATE`
	s, err := scanStock(r.q.QueryRow(ctx, query, stockRecordID))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return s, nil
}

// Decrement resta qty con un UPDATE condicional: nunca deja disponible negativo aunque
// el llamador no haya bloqueado la fila.
func (r *StockRepo) Decrement(ctx context.Context, stockRecordID string, qty int) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE stock_records
		SET quantity = quantity - $2, updated_at = now()
		WHERE id = $1 AND quantity - reserved_quantity >= $2`, stockRecordID, qty)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrInsufficientStock
		}
		return fmt.Errorf("decrement stock: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM stock_records WHERE id = $1)`, stockRecordID).Scan(&exists); err != nil {
		return fmt.Errorf("check stock record: %w", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrInsufficientStock
}

// Increment devuelve qty al registro.
func (r *StockRepo) Increment(ctx context.Context, stockRecordID string, qty int) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE stock_records SET quantity = quantity + $2, updated_at = now()
		WHERE id = $1`, stockRecordID, qty)
	if err != nil {
		return fmt.Errorf("increment stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
