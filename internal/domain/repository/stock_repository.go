package repository

import (
	"context"

	"github.com/jhoicas/tyrex-b2b-api/internal/domain/entity"
)

// StockRecordRepository define el puerto para leer y mover existencias.
// Las operaciones de escritura deben usarse dentro de una transacción.
type StockRecordRepository interface {
	// GetCandidate devuelve un registro con su bodega y propietario (ErrNotFound si no existe).
	GetCandidate(ctx context.Context, stockRecordID string) (*entity.StockCandidate, error)
	// ListCandidates devuelve los registros de un producto; wholesalerID vacío no filtra por propietario.
	ListCandidates(ctx context.Context, productID, wholesalerID string) ([]entity.StockCandidate, error)
	// GetForUpdate bloquea la fila (SELECT ... FOR UPDATE).
	GetForUpdate(ctx context.Context, stockRecordID string) (*entity.StockRecord, error)
	// Decrement resta qty solo si quantity - reserved >= qty; si no, ErrInsufficientStock.
	Decrement(ctx context.Context, stockRecordID string, qty int) error
	// Increment devuelve qty al registro (cancelaciones).
	Increment(ctx context.Context, stockRecordID string, qty int) error
}
