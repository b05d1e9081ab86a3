package order

import (
	"context"
	"database/sql"
	"errors"

	"github.com/febrianchrisna/Sweet-Bakery-Project/internal/logger"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	// Create runs the whole checkout inside one transaction: lock product
	// rows, validate stock across the full cart, insert the order and its
	// details, and decrement stock. Any failure rolls everything back.
	Create(ctx context.Context, userID uint, input *CreateInput) (*Order, error)

	GetByID(ctx context.Context, orderID uint) (*Order, error)
	ListAll(ctx context.Context) ([]*Order, error)
	ListByUser(ctx context.Context, userID uint) ([]*Order, error)

	Update(ctx context.Context, orderID uint, input *UpdateInput) (*Order, error)
	UpdateStatus(ctx context.Context, orderID uint, status OrderStatus) error

	// CancelWithRestock restores stock for every line and marks the order
	// cancelled, atomically.
	CancelWithRestock(ctx context.Context, o *Order) error
	// DeleteWithRestock restores stock (unless the order was already
	// cancelled), then removes the details and the order, atomically.
	DeleteWithRestock(ctx context.Context, o *Order) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, userID uint, input *CreateInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
		zap.Uint("user_id", userID),
		zap.Int("item_count", len(input.Items)),
	)

	log.Debug("starting order transaction")

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			} else {
				log.Debug("transaction rolled back")
			}
		}
	}()

	// Pass 1: lock every product row and validate the whole cart. Shortages
	// are collected, not failed on first sight, so the client learns about
	// all of them at once.
	type reservation struct {
		product  ProductSnapshot
		quantity int
	}

	var (
		reservations []reservation
		insufficient []InsufficientStockItem
		totalAmount  float64
	)

	for _, item := range input.Items {
		var (
			snap  ProductSnapshot
			stock int
		)
		err := tx.QueryRowContext(ctx, `
			SELECT id, name, price, image, stock
			FROM products
			WHERE id = $1
			FOR UPDATE
		`, item.ProductID).Scan(&snap.ID, &snap.Name, &snap.Price, &snap.Image, &stock)

		if errors.Is(err, sql.ErrNoRows) {
			log.Warn("product not found", zap.Uint("product_id", item.ProductID))
			return nil, &ProductNotFoundError{ProductID: item.ProductID}
		}
		if err != nil {
			log.Error("failed to lock product row",
				zap.Uint("product_id", item.ProductID),
				zap.Error(err),
			)
			return nil, err
		}

		if stock < item.Quantity {
			insufficient = append(insufficient, InsufficientStockItem{
				ID:        snap.ID,
				Name:      snap.Name,
				Available: stock,
				Requested: item.Quantity,
			})
			continue
		}

		totalAmount += snap.Price * float64(item.Quantity)
		reservations = append(reservations, reservation{product: snap, quantity: item.Quantity})
	}

	if len(insufficient) > 0 {
		log.Info("order rejected, insufficient stock",
			zap.Int("short_items", len(insufficient)),
		)
		return nil, &InsufficientStockError{Items: insufficient}
	}

	// Pass 2: every line cleared the stock check, write the order.
	o := &Order{
		UserID:          userID,
		TotalAmount:     totalAmount,
		Status:          StatusPending,
		ShippingAddress: input.ShippingAddress,
		PaymentMethod:   input.PaymentMethod,
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (user_id, total_amount, status, shipping_address, payment_method)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, o.UserID, o.TotalAmount, string(o.Status), o.ShippingAddress, o.PaymentMethod).
		Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		log.Error("failed to insert order", zap.Error(err))
		return nil, err
	}

	for _, res := range reservations {
		// The stock >= quantity guard is redundant under FOR UPDATE but
		// keeps the decrement safe on its own.
		result, err := tx.ExecContext(ctx, `
			UPDATE products
			SET stock = stock - $1, updated_at = NOW()
			WHERE id = $2 AND stock >= $1
		`, res.quantity, res.product.ID)
		if err != nil {
			log.Error("failed to decrement stock",
				zap.Uint("product_id", res.product.ID),
				zap.Error(err),
			)
			return nil, err
		}
		if affected, _ := result.RowsAffected(); affected == 0 {
			return nil, &InsufficientStockError{Items: []InsufficientStockItem{{
				ID:        res.product.ID,
				Name:      res.product.Name,
				Requested: res.quantity,
			}}}
		}

		subtotal := res.product.Price * float64(res.quantity)
		detail := &OrderDetail{
			OrderID:   o.ID,
			ProductID: res.product.ID,
			Quantity:  res.quantity,
			Price:     res.product.Price,
			Subtotal:  subtotal,
		}
		err = tx.QueryRowContext(ctx, `
			INSERT INTO order_details (order_id, product_id, quantity, price, subtotal)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, detail.OrderID, detail.ProductID, detail.Quantity, detail.Price, detail.Subtotal).
			Scan(&detail.ID)
		if err != nil {
			log.Error("failed to insert order detail",
				zap.Uint("product_id", res.product.ID),
				zap.Error(err),
			)
			return nil, err
		}

		snap := res.product
		detail.Product = &snap
		o.Details = append(o.Details, detail)
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit order transaction", zap.Error(err))
		return nil, err
	}
	committed = true

	log.Info("order created",
		zap.Uint("order_id", o.ID),
		zap.Float64("total_amount", o.TotalAmount),
	)

	return o, nil
}

const orderColumns = `o.id, o.user_id, o.total_amount, o.status, o.shipping_address, o.payment_method, o.created_at, o.updated_at`

func scanOrder(row interface{ Scan(...any) error }) (*Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.UserID, &o.TotalAmount, &o.Status,
		&o.ShippingAddress, &o.PaymentMethod, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repository) GetByID(ctx context.Context, orderID uint) (*Order, error) {
	var (
		o Order
		c Customer
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`, u.id, u.username, u.email
		FROM orders o
		JOIN users u ON u.id = o.user_id
		WHERE o.id = $1
	`, orderID).Scan(
		&o.ID, &o.UserID, &o.TotalAmount, &o.Status,
		&o.ShippingAddress, &o.PaymentMethod, &o.CreatedAt, &o.UpdatedAt,
		&c.ID, &c.Username, &c.Email,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	o.User = &c

	details, err := r.fetchDetails(ctx, []uint{o.ID})
	if err != nil {
		return nil, err
	}
	o.Details = details[o.ID]

	return &o, nil
}

func (r *repository) ListAll(ctx context.Context) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+orderColumns+`, u.id, u.username, u.email
		FROM orders o
		JOIN users u ON u.id = o.user_id
		ORDER BY o.created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		var (
			o Order
			c Customer
		)
		err := rows.Scan(
			&o.ID, &o.UserID, &o.TotalAmount, &o.Status,
			&o.ShippingAddress, &o.PaymentMethod, &o.CreatedAt, &o.UpdatedAt,
			&c.ID, &c.Username, &c.Email,
		)
		if err != nil {
			return nil, err
		}
		o.User = &c
		orders = append(orders, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return r.attachDetails(ctx, orders)
}

func (r *repository) ListByUser(ctx context.Context, userID uint) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders o
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return r.attachDetails(ctx, orders)
}

func (r *repository) attachDetails(ctx context.Context, orders []*Order) ([]*Order, error) {
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]uint, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}

	details, err := r.fetchDetails(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		o.Details = details[o.ID]
	}
	return orders, nil
}

// fetchDetails loads the details for a batch of orders in one query, each
// annotated with the current product row for display.
func (r *repository) fetchDetails(ctx context.Context, orderIDs []uint) (map[uint][]*OrderDetail, error) {
	ids := make([]int64, 0, len(orderIDs))
	for _, id := range orderIDs {
		ids = append(ids, int64(id))
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT od.id, od.order_id, od.product_id, od.quantity, od.price, od.subtotal,
			p.name, p.price, p.image
		FROM order_details od
		LEFT JOIN products p ON p.id = od.product_id
		WHERE od.order_id = ANY($1)
		ORDER BY od.id
	`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := make(map[uint][]*OrderDetail)
	for rows.Next() {
		var (
			d            OrderDetail
			productName  *string
			productPrice *float64
			productImage *string
		)
		err := rows.Scan(
			&d.ID, &d.OrderID, &d.ProductID, &d.Quantity, &d.Price, &d.Subtotal,
			&productName, &productPrice, &productImage,
		)
		if err != nil {
			return nil, err
		}

		// The product may have been removed from the catalog since the
		// order was placed; the frozen detail row still stands on its own.
		if productName != nil && productPrice != nil {
			d.Product = &ProductSnapshot{
				ID:    d.ProductID,
				Name:  *productName,
				Price: *productPrice,
				Image: productImage,
			}
		}
		details[d.OrderID] = append(details[d.OrderID], &d)
	}
	return details, rows.Err()
}

func (r *repository) Update(ctx context.Context, orderID uint, input *UpdateInput) (*Order, error) {
	var status *string
	if input.Status != nil {
		s := string(*input.Status)
		status = &s
	}

	row := r.db.QueryRowContext(ctx, `
		UPDATE orders
		SET shipping_address = COALESCE($1, shipping_address),
			payment_method   = COALESCE($2, payment_method),
			status           = COALESCE($3, status),
			updated_at       = NOW()
		WHERE id = $4
		RETURNING id, user_id, total_amount, status, shipping_address, payment_method, created_at, updated_at
	`, input.ShippingAddress, input.PaymentMethod, status, orderID)

	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *repository) UpdateStatus(ctx context.Context, orderID uint, status OrderStatus) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2
	`, string(status), orderID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *repository) CancelWithRestock(ctx context.Context, o *Order) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CancelWithRestock"),
		zap.Uint("order_id", o.ID),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Stock restoration and the status flip must land together: a crash
	// between them would either sell the same stock twice or lose it.
	for _, d := range o.Details {
		_, err := tx.ExecContext(ctx, `
			UPDATE products SET stock = stock + $1, updated_at = NOW() WHERE id = $2
		`, d.Quantity, d.ProductID)
		if err != nil {
			log.Error("failed to restore stock",
				zap.Uint("product_id", d.ProductID),
				zap.Error(err),
			)
			return err
		}
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2
	`, string(StatusCancelled), o.ID)
	if err != nil {
		log.Error("failed to mark order cancelled", zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	log.Info("order cancelled, stock restored", zap.Int("lines", len(o.Details)))
	return nil
}

func (r *repository) DeleteWithRestock(ctx context.Context, o *Order) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "DeleteWithRestock"),
		zap.Uint("order_id", o.ID),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// A cancelled order already gave its stock back; restoring again here
	// would create inventory out of thin air.
	if o.Status != StatusCancelled {
		for _, d := range o.Details {
			_, err := tx.ExecContext(ctx, `
				UPDATE products SET stock = stock + $1, updated_at = NOW() WHERE id = $2
			`, d.Quantity, d.ProductID)
			if err != nil {
				log.Error("failed to restore stock",
					zap.Uint("product_id", d.ProductID),
					zap.Error(err),
				)
				return err
			}
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM order_details WHERE order_id = $1`, o.ID); err != nil {
		log.Error("failed to delete order details", zap.Error(err))
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, o.ID); err != nil {
		log.Error("failed to delete order", zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	log.Info("order deleted", zap.Int("lines", len(o.Details)))
	return nil
}
