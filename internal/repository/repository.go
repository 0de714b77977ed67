package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/jackrtech/jacks-telebot/internal/domain"
)

var ErrOrderNotFound = errors.New("order not found")

const timeLayout = "2006-01-02 15:04"

type Repository struct {
	db *sql.DB
	// serializes the counter read-increment-write across concurrent
	// confirmations; duplicate order IDs are never acceptable
	counterMu sync.Mutex
}

type RepoInterface interface {
	NextOrderID(ctx context.Context, now time.Time) (string, error)
	AppendOrder(ctx context.Context, order *domain.Order) error
	RecentOrders(ctx context.Context, n int) ([]domain.Order, error)
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
	Stats(ctx context.Context) (int, decimal.Decimal, error)
	MarkPaid(ctx context.Context, orderID string) error
	CustomerChats(ctx context.Context, limit int) ([]domain.ChatID, error)
	ExportCSV(ctx context.Context) ([]byte, error)
	Close() error
	RunMigrations(string) error
}

func NewRepository(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(migrationsPath string) error {
	driver, err := sqlite.WithInstance(r.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"sqlite",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

// NextOrderID mints ORD-YYMMDD-NN. The counter is scoped to the calendar
// day, durable across restarts and monotonic per day.
func (r *Repository) NextOrderID(ctx context.Context, now time.Time) (string, error) {
	r.counterMu.Lock()
	defer r.counterMu.Unlock()

	day := now.Format("060102")
	var n int
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO order_counters (day, n) VALUES ($1, 1)
		ON CONFLICT (day) DO UPDATE SET n = order_counters.n + 1
		RETURNING n
	`, day).Scan(&n)
	if err != nil {
		return "", fmt.Errorf("failed to advance order counter: %w", err)
	}
	return fmt.Sprintf("ORD-%s-%02d", day, n), nil
}

func (r *Repository) AppendOrder(ctx context.Context, order *domain.Order) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO orders
			(order_id, username, chat_id, items, name, house, street, city, postcode,
			 status, created_at, order_total, currency)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		order.ID,
		order.Username,
		int64(order.ChatID),
		order.Items,
		order.Address.Name,
		order.Address.House,
		order.Address.Street,
		order.Address.City,
		order.Address.Postcode,
		string(order.Status),
		order.CreatedAt.Format(timeLayout),
		order.Total.StringFixed(2),
		order.Currency,
	)
	if err != nil {
		return fmt.Errorf("failed to append order: %w", err)
	}
	return nil
}

// RecentOrders returns up to n orders, most recent first.
func (r *Repository) RecentOrders(ctx context.Context, n int) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT order_id, username, chat_id, items, name, house, street, city, postcode,
		       status, created_at, order_total, currency
		FROM orders
		ORDER BY rowid DESC
		LIMIT $1
	`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	return scanOrders(rows)
}

func (r *Repository) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT order_id, username, chat_id, items, name, house, street, city, postcode,
		       status, created_at, order_total, currency
		FROM orders
		WHERE order_id = $1
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order: %w", err)
	}
	defer rows.Close()

	orders, err := scanOrders(rows)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, ErrOrderNotFound
	}
	return &orders[0], nil
}

func (r *Repository) allOrders(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT order_id, username, chat_id, items, name, house, street, city, postcode,
		       status, created_at, order_total, currency
		FROM orders
		ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	return scanOrders(rows)
}

func scanOrders(rows *sql.Rows) ([]domain.Order, error) {
	var orders []domain.Order
	for rows.Next() {
		var (
			o       domain.Order
			chatID  int64
			status  string
			created string
			total   string
		)
		err := rows.Scan(
			&o.ID,
			&o.Username,
			&chatID,
			&o.Items,
			&o.Address.Name,
			&o.Address.House,
			&o.Address.Street,
			&o.Address.City,
			&o.Address.Postcode,
			&status,
			&created,
			&total,
			&o.Currency,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		o.ChatID = domain.ChatID(chatID)
		o.Status = domain.OrderStatus(status)
		if o.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			return nil, fmt.Errorf("failed to parse order timestamp: %w", err)
		}
		if o.Total, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("failed to parse order total: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return orders, nil
}

// Stats returns the aggregate order count and revenue.
func (r *Repository) Stats(ctx context.Context) (int, decimal.Decimal, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT order_total FROM orders`)
	if err != nil {
		return 0, decimal.Zero, fmt.Errorf("failed to query totals: %w", err)
	}
	defer rows.Close()

	count := 0
	revenue := decimal.Zero
	for rows.Next() {
		var total string
		if err := rows.Scan(&total); err != nil {
			return 0, decimal.Zero, fmt.Errorf("failed to scan total: %w", err)
		}
		d, err := decimal.NewFromString(total)
		if err != nil {
			return 0, decimal.Zero, fmt.Errorf("failed to parse total: %w", err)
		}
		revenue = revenue.Add(d)
		count++
	}
	if err := rows.Err(); err != nil {
		return 0, decimal.Zero, fmt.Errorf("row iteration error: %w", err)
	}
	return count, revenue.Round(2), nil
}

// MarkPaid flips an order to paid, driven by the payment callback.
func (r *Repository) MarkPaid(ctx context.Context, orderID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = $1 WHERE order_id = $2`,
		string(domain.OrderStatusPaid), orderID)
	if err != nil {
		return fmt.Errorf("failed to mark order paid: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// CustomerChats returns distinct buyer chats, most recent buyers first.
func (r *Repository) CustomerChats(ctx context.Context, limit int) ([]domain.ChatID, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT chat_id FROM orders
		GROUP BY chat_id
		ORDER BY MAX(rowid) DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query customer chats: %w", err)
	}
	defer rows.Close()

	var chats []domain.ChatID
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan chat id: %w", err)
		}
		chats = append(chats, domain.ChatID(id))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return chats, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}
