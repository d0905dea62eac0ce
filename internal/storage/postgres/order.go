package postgres

import (
	"context"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ovenline/bakery-api/internal/domain/order"
	"github.com/ovenline/bakery-api/internal/schedule"
)

const (
	countAtSlotSQL = `SELECT count(*) FROM orders
		WHERE pickup_date = $1 AND pickup_time = $2
		  AND status NOT IN ('cancelled', 'rejected')`

	countByDateSQL = `SELECT pickup_time, count(*) FROM orders
		WHERE pickup_date = $1
		  AND status NOT IN ('cancelled', 'rejected')
		GROUP BY pickup_time`

	insertOrderSQL = `INSERT INTO orders (
			id, status, pickup_date, pickup_time,
			subtotal_pence, tax_pence, bag_fee_pence, total_pence, bag_opt_in,
			customer_name, customer_email, customer_phone
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING order_number, created_at`

	mirrorItemsSQL = `UPDATE orders SET items = $2, updated_at = now() WHERE id = $1`

	getOrderSQL = `SELECT id, order_number, status, pickup_date, pickup_time,
			subtotal_pence, tax_pence, bag_fee_pence, total_pence, bag_opt_in,
			customer_name, customer_email, COALESCE(customer_phone, ''), created_at
		FROM orders WHERE id = $1`

	getItemsSQL = `SELECT order_id, product_id, product_name, product_sku,
			quantity, unit_price_pence, total_price_pence
		FROM order_items WHERE order_id = $1 ORDER BY product_id`

	updateStatusSQL = `UPDATE orders SET status = $2, updated_at = now()
		WHERE id = $1 AND status = $3`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// CountActiveAtSlot counts non-cancelled, non-rejected orders at the exact
// pickup slot.
func (r *OrderRepository) CountActiveAtSlot(ctx context.Context, pickupDate, pickupTime string) (int, error) {
	d, err := schedule.ParseDate(pickupDate)
	if err != nil {
		return 0, err
	}
	var count int
	if err := r.pool.QueryRow(ctx, countAtSlotSQL, d, pickupTime).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "count orders at slot")
	}
	return count, nil
}

// CountActiveByDate returns active order counts per pickup time for one date.
func (r *OrderRepository) CountActiveByDate(ctx context.Context, pickupDate string) (map[string]int, error) {
	d, err := schedule.ParseDate(pickupDate)
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, countByDateSQL, d)
	if err != nil {
		return nil, errors.Wrap(err, "count orders by date")
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var t string
		var n int
		if err := rows.Scan(&t, &n); err != nil {
			return nil, errors.Wrap(err, "scan slot count")
		}
		counts[t] = n
	}
	return counts, rows.Err()
}

// Create inserts the order header and all line items in one transaction and
// enforces the slot capacity ceiling inside it. A transaction-scoped advisory
// lock on the slot key serializes concurrent submissions for the same slot, so
// the count it reads cannot go stale before the insert commits. Returns
// order.ErrSlotFull when the ceiling is already reached.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order, capacity int) error {
	d, err := schedule.ParseDate(o.PickupDate)
	if err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	slotKey := o.PickupDate + "|" + o.PickupTime
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, slotKey); err != nil {
		return errors.Wrap(err, "lock slot")
	}

	var count int
	if err := tx.QueryRow(ctx, countAtSlotSQL, d, o.PickupTime).Scan(&count); err != nil {
		return errors.Wrap(err, "count orders at slot")
	}
	if count >= capacity {
		return order.ErrSlotFull
	}

	err = tx.QueryRow(ctx, insertOrderSQL,
		o.ID, string(o.Status), d, o.PickupTime,
		o.Subtotal, o.TaxPence, o.BagFeePence, o.TotalPence, o.BagOptIn,
		o.CustomerName, o.CustomerEmail, nullable(o.CustomerPhone),
	).Scan(&o.Number, &o.CreatedAt)
	if err != nil {
		return errors.Wrapf(err, "insert order %q", o.ID)
	}

	itemRows := make([][]any, len(o.Items))
	for i, it := range o.Items {
		itemRows[i] = []any{
			o.ID, it.ProductID, it.ProductName, it.ProductSKU,
			it.Quantity, it.UnitPricePence, it.TotalPricePence,
		}
	}
	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"order_items"},
		[]string{"order_id", "product_id", "product_name", "product_sku", "quantity", "unit_price_pence", "total_price_pence"},
		pgx.CopyFromRows(itemRows),
	)
	if err != nil {
		return errors.Wrapf(err, "insert items for order %q", o.ID)
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "commit")
	}
	return nil
}

// MirrorItems writes the line items as a JSONB snapshot on the order header.
// Best-effort redundancy; callers log failures and move on.
func (r *OrderRepository) MirrorItems(ctx context.Context, orderID string, items []order.Item) error {
	e := &jx.Encoder{}
	e.ArrStart()
	for _, it := range items {
		e.ObjStart()
		e.FieldStart("product_id")
		e.Str(it.ProductID)
		e.FieldStart("product_name")
		e.Str(it.ProductName)
		e.FieldStart("product_sku")
		e.Str(it.ProductSKU)
		e.FieldStart("quantity")
		e.Int(it.Quantity)
		e.FieldStart("unit_price_pence")
		e.Int64(it.UnitPricePence)
		e.FieldStart("total_price_pence")
		e.Int64(it.TotalPricePence)
		e.ObjEnd()
	}
	e.ArrEnd()

	if _, err := r.pool.Exec(ctx, mirrorItemsSQL, orderID, e.Bytes()); err != nil {
		return errors.Wrapf(err, "mirror items for order %q", orderID)
	}
	return nil
}

// GetByID returns an order with its items. Returns order.ErrNotFound when the
// id does not exist.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	var (
		o     order.Order
		d     time.Time
		phone string
	)
	err := r.pool.QueryRow(ctx, getOrderSQL, id).Scan(
		&o.ID, &o.Number, &o.Status, &d, &o.PickupTime,
		&o.Subtotal, &o.TaxPence, &o.BagFeePence, &o.TotalPence, &o.BagOptIn,
		&o.CustomerName, &o.CustomerEmail, &phone, &o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get order %q", id)
	}
	o.PickupDate = d.Format(schedule.DateLayout)
	o.CustomerPhone = phone

	rows, err := r.pool.Query(ctx, getItemsSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get items for order %q", id)
	}
	o.Items, err = pgx.CollectRows(rows, scanItem)
	if err != nil {
		return nil, errors.Wrapf(err, "scan items for order %q", id)
	}
	return &o, nil
}

// List returns orders matching the filter, newest first.
func (r *OrderRepository) List(ctx context.Context, f order.ListFilter) ([]order.Order, error) {
	sql := `SELECT id, order_number, status, pickup_date, pickup_time,
			subtotal_pence, tax_pence, bag_fee_pence, total_pence, bag_opt_in,
			customer_name, customer_email, COALESCE(customer_phone, ''), created_at
		FROM orders WHERE 1=1`
	args := []any{}

	if f.Status != "" {
		args = append(args, string(f.Status))
		sql += ` AND status = $` + itoa(len(args))
	}
	if f.PickupDate != "" {
		d, err := schedule.ParseDate(f.PickupDate)
		if err != nil {
			return nil, err
		}
		args = append(args, d)
		sql += ` AND pickup_date = $` + itoa(len(args))
	}
	sql += ` ORDER BY created_at DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		sql += ` LIMIT $` + itoa(len(args))
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return pgx.CollectRows(rows, scanOrder)
}

// UpdateStatus transitions an order's status with a compare-and-swap on the
// expected previous status. Returns order.ErrNotFound when no row matched,
// which covers both a missing order and a lost race.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, from, to order.Status) error {
	tag, err := r.pool.Exec(ctx, updateStatusSQL, id, string(to), string(from))
	if err != nil {
		return errors.Wrapf(err, "update status of order %q", id)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o     order.Order
		d     time.Time
		phone string
	)
	err := row.Scan(
		&o.ID, &o.Number, &o.Status, &d, &o.PickupTime,
		&o.Subtotal, &o.TaxPence, &o.BagFeePence, &o.TotalPence, &o.BagOptIn,
		&o.CustomerName, &o.CustomerEmail, &phone, &o.CreatedAt,
	)
	o.PickupDate = d.Format(schedule.DateLayout)
	o.CustomerPhone = phone
	return o, err
}

func scanItem(row pgx.CollectableRow) (order.Item, error) {
	var it order.Item
	err := row.Scan(
		&it.OrderID, &it.ProductID, &it.ProductName, &it.ProductSKU,
		&it.Quantity, &it.UnitPricePence, &it.TotalPricePence,
	)
	return it, err
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
