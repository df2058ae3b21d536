package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/tyrex-b2b-api/internal/domain"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/entity"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/repository"
)

var (
	_ repository.OrderRepository        = (*OrderRepo)(nil)
	_ repository.OrderHistoryRepository = (*OrderHistoryRepo)(nil)
)

// OrderRepo persistencia de pedidos y sus líneas.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Las escrituras deben ir dentro de RunOrder.
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

const orderColumns = `
	id, order_number, retailer_id, wholesaler_id, retailer_user_id, status, payment_status,
	subtotal, tax_amount, shipping_cost, discount_amount, total_amount, currency,
	commission_rate, commission_amount, delivery_address, delivery_contact, delivery_phone,
	payment_terms_days, due_date, notes, internal_notes, order_date,
	confirmed_at, shipped_at, delivered_at, canceled_at, created_at, updated_at`

const itemColumns = `
	id, order_id, product_id, warehouse_id, stock_record_id, quantity, unit_price,
	wholesaler_reference_price, discount_percentage, discount_amount, total_price,
	product_name, product_sku, product_brand, is_canceled, canceled_at, cancel_reason,
	created_at, updated_at`

func scanOrder(row pgx.Row) (*entity.Order, error) {
	var o entity.Order
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.RetailerID, &o.WholesalerID, &o.RetailerUserID, &o.Status, &o.PaymentStatus,
		&o.Subtotal, &o.TaxAmount, &o.ShippingCost, &o.DiscountAmount, &o.TotalAmount, &o.Currency,
		&o.CommissionRate, &o.CommissionAmount, &o.DeliveryAddress, &o.DeliveryContact, &o.DeliveryPhone,
		&o.PaymentTermsDays, &o.DueDate, &o.Notes, &o.InternalNotes, &o.OrderDate,
		&o.ConfirmedAt, &o.ShippedAt, &o.DeliveredAt, &o.CanceledAt, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func scanItem(row pgx.Row) (*entity.OrderItem, error) {
	var it entity.OrderItem
	err := row.Scan(
		&it.ID, &it.OrderID, &it.ProductID, &it.WarehouseID, &it.StockRecordID, &it.Quantity, &it.UnitPrice,
		&it.WholesalerReferencePrice, &it.DiscountPercentage, &it.DiscountAmount, &it.TotalPrice,
		&it.ProductName, &it.ProductSKU, &it.ProductBrand, &it.IsCanceled, &it.CanceledAt, &it.CancelReason,
		&it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// Create inserta la cabecera. Un número de pedido repetido devuelve ErrConflict.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	query := `INSERT INTO orders (` + orderColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27,$28,$29)`
	_, err := r.q.Exec(ctx, query,
		o.ID, o.OrderNumber, o.RetailerID, o.WholesalerID, o.RetailerUserID, o.Status, o.PaymentStatus,
		o.Subtotal, o.TaxAmount, o.ShippingCost, o.DiscountAmount, o.TotalAmount, o.Currency,
		o.CommissionRate, o.CommissionAmount, o.DeliveryAddress, o.DeliveryContact, o.DeliveryPhone,
		o.PaymentTermsDays, o.DueDate, o.Notes, o.InternalNotes, o.OrderDate,
		o.ConfirmedAt, o.ShippedAt, o.DeliveredAt, o.CanceledAt, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *OrderRepo) CreateItem(ctx context.Context, it *entity.OrderItem) error {
	query := `INSERT INTO order_items (` + itemColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`
	_, err := r.q.Exec(ctx, query,
		it.ID, it.OrderID, it.ProductID, it.WarehouseID, it.StockRecordID, it.Quantity, it.UnitPrice,
		it.WholesalerReferencePrice, it.DiscountPercentage, it.DiscountAmount, it.TotalPrice,
		it.ProductName, it.ProductSKU, it.ProductBrand, it.IsCanceled, it.CanceledAt, it.CancelReason,
		it.CreatedAt, it.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order item: %w", err)
	}
	return nil
}

func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	return r.get(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

// GetForUpdate bloquea la cabecera; las líneas solo se modifican con la cabecera bloqueada.
func (r *OrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.get(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id)
}

func (r *OrderRepo) get(ctx context.Context, query, id string) (*entity.Order, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	items, err := r.itemsByOrders(ctx, []string{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	return o, nil
}

func (r *OrderRepo) itemsByOrders(ctx context.Context, orderIDs []string) (map[string][]*entity.OrderItem, error) {
	out := make(map[string][]*entity.OrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx, `
		SELECT `+itemColumns+` FROM order_items
		WHERE order_id::text = ANY($1) ORDER BY created_at, id`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		out[it.OrderID] = append(out[it.OrderID], it)
	}
	return out, rows.Err()
}

// Update reescribe los campos mutables de la cabecera.
func (r *OrderRepo) Update(ctx context.Context, o *entity.Order) error {
	query := `
		UPDATE orders SET
			status = $2, payment_status = $3, subtotal = $4, total_amount = $5, commission_amount = $6,
			notes = $7, internal_notes = $8, confirmed_at = $9, shipped_at = $10, delivered_at = $11,
			canceled_at = $12, updated_at = $13
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		o.ID, o.Status, o.PaymentStatus, o.Subtotal, o.TotalAmount, o.CommissionAmount,
		o.Notes, o.InternalNotes, o.ConfirmedAt, o.ShippedAt, o.DeliveredAt,
		o.CanceledAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *OrderRepo) UpdateItem(ctx context.Context, it *entity.OrderItem) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE order_items SET is_canceled = $2, canceled_at = $3, cancel_reason = $4, updated_at = $5
		WHERE id = $1`, it.ID, it.IsCanceled, it.CanceledAt, it.CancelReason, it.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update order item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List pedidos de la empresa como minorista o mayorista, del más reciente al más antiguo.
func (r *OrderRepo) List(ctx context.Context, f entity.OrderFilter) ([]*entity.Order, int, error) {
	where := []string{"(retailer_id::text = $1 OR wholesaler_id::text = $1)"}
	args := []any{f.CompanyID}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.PaymentStatus != "" {
		args = append(args, f.PaymentStatus)
		where = append(where, fmt.Sprintf("payment_status = $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit, f.Offset)
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE %s ORDER BY order_date DESC LIMIT $%d OFFSET $%d`,
		orderColumns, cond, len(args)-1, len(args))
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	out := []*entity.Order{}
	ids := []string{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	rows.Close()

	items, err := r.itemsByOrders(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for _, o := range out {
		o.Items = items[o.ID]
	}
	return out, total, nil
}

// Summary agregados de la empresa; el promedio se calcula sobre los pedidos desde since.
func (r *OrderRepo) Summary(ctx context.Context, companyID string, since time.Time) (*entity.OrderSummary, error) {
	s := &entity.OrderSummary{
		ByStatus:          make(map[string]int),
		AverageOrderValue: decimal.Zero,
	}
	rows, err := r.q.Query(ctx, `
		SELECT status, COUNT(*), COALESCE(SUM(total_amount), 0),
		       COUNT(*) FILTER (WHERE order_date >= $2),
		       COALESCE(SUM(total_amount) FILTER (WHERE order_date >= $2), 0)
		FROM orders
		WHERE retailer_id::text = $1 OR wholesaler_id::text = $1
		GROUP BY status`, companyID, since)
	if err != nil {
		return nil, fmt.Errorf("order summary: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status               string
			count, recent        int
			amount, recentAmount decimal.Decimal
		)
		if err := rows.Scan(&status, &count, &amount, &recent, &recentAmount); err != nil {
			return nil, fmt.Errorf("scan order summary: %w", err)
		}
		s.ByStatus[status] = count
		s.TotalOrders += count
		s.TotalAmount = s.TotalAmount.Add(amount)
		s.RecentOrders += recent
		s.RecentAmount = s.RecentAmount.Add(recentAmount)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if s.RecentOrders > 0 {
		s.AverageOrderValue = s.RecentAmount.Div(decimal.NewFromInt(int64(s.RecentOrders)))
	}
	return s, nil
}

func (r *OrderRepo) FlagStalePending(ctx context.Context, cutoff time.Time, note string) (int, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE orders SET
			internal_notes = CASE WHEN internal_notes = '' THEN $2 ELSE internal_notes || E'\n' || $2 END,
			updated_at = now()
		WHERE status = 'pending' AND order_date < $1 AND position($2 in internal_notes) = 0`, cutoff, note)
	if err != nil {
		return 0, fmt.Errorf("flag stale orders: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// historyByOrderSQL más reciente primero; seq (orden de inserción) desempata filas con el mismo changed_at.
const historyByOrderSQL = `
		SELECT id, order_id, old_status, new_status, changed_by, change_reason, notes, changed_at
		FROM order_status_history WHERE order_id = $1
		ORDER BY changed_at DESC, seq DESC`

// OrderHistoryRepo historial de estados (solo inserción).
type OrderHistoryRepo struct {
	q Querier
}

func NewOrderHistoryRepository(q Querier) *OrderHistoryRepo {
	return &OrderHistoryRepo{q: q}
}

func (r *OrderHistoryRepo) Append(ctx context.Context, h *entity.OrderStatusHistory) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO order_status_history (id, order_id, old_status, new_status, changed_by, change_reason, notes, changed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		h.ID, h.OrderID, h.OldStatus, h.NewStatus, h.ChangedBy, h.ChangeReason, h.Notes, h.ChangedAt)
	if err != nil {
		return fmt.Errorf("insert order history: %w", err)
	}
	return nil
}

func (r *OrderHistoryRepo) ListByOrder(ctx context.Context, orderID string) ([]*entity.OrderStatusHistory, error) {
	rows, err := r.q.Query(ctx, historyByOrderSQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order history: %w", err)
	}
	defer rows.Close()
	var out []*entity.OrderStatusHistory
	for rows.Next() {
		var h entity.OrderStatusHistory
		if err := rows.Scan(&h.ID, &h.OrderID, &h.OldStatus, &h.NewStatus, &h.ChangedBy, &h.ChangeReason, &h.Notes, &h.ChangedAt); err != nil {
			return nil, fmt.Errorf("scan order history: %w", err)
		}
		out = append(out, &h)
	}
	return out, rows.Err()
}
