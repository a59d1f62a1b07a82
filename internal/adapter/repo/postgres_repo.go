package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/configurator-checkout/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PostgresConfigurationRepo struct {
	Pool *pgxpool.Pool
}

func NewPostgresConfigurationRepo(pool *pgxpool.Pool) *PostgresConfigurationRepo {
	return &PostgresConfigurationRepo{Pool: pool}
}

func (r *PostgresConfigurationRepo) Get(ctx context.Context, id string) (domain.Configuration, error) {
	var c domain.Configuration
	var finish, material string
	err := r.Pool.QueryRow(ctx, `SELECT id, finish, material FROM configurations WHERE id = $1`, id).
		Scan(&c.ID, &finish, &material)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Configuration{}, domain.ErrConfigurationNotFound
		}
		return domain.Configuration{}, fmt.Errorf("%w: get configuration: %w", domain.ErrStoreFailure, err)
	}
	c.Finish = domain.Finish(finish)
	c.Material = domain.Material(material)
	return c, nil
}

// Insert используется инструментами наполнения и тестами.
func (r *PostgresConfigurationRepo) Insert(ctx context.Context, c domain.Configuration) error {
	_, err := r.Pool.Exec(ctx, `INSERT INTO configurations (id, finish, material) VALUES ($1, $2, $3)
        ON CONFLICT (id) DO NOTHING`, c.ID, string(c.Finish), string(c.Material))
	if err != nil {
		return fmt.Errorf("%w: insert configuration: %w", domain.ErrStoreFailure, err)
	}
	return nil
}

var _ domain.ConfigurationStore = (*PostgresConfigurationRepo)(nil)

type PostgresOrderRepo struct {
	Pool *pgxpool.Pool
}

func NewPostgresOrderRepo(pool *pgxpool.Pool) *PostgresOrderRepo {
	return &PostgresOrderRepo{Pool: pool}
}

func (r *PostgresOrderRepo) FindByUserAndConfiguration(ctx context.Context, userID, configurationID string) (domain.Order, bool, error) {
	var o domain.Order
	var amount string
	err := r.Pool.QueryRow(ctx, `
SELECT id, amount::text, user_id, configuration_id, is_paid, created_at
FROM orders
WHERE user_id = $1 AND configuration_id = $2`, userID, configurationID).
		Scan(&o.ID, &amount, &o.UserID, &o.ConfigurationID, &o.IsPaid, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Order{}, false, nil
		}
		return domain.Order{}, false, fmt.Errorf("%w: find order: %w", domain.ErrStoreFailure, err)
	}
	o.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return domain.Order{}, false, fmt.Errorf("%w: order %s amount %q: %w", domain.ErrStoreFailure, o.ID, amount, err)
	}
	return o, true, nil
}

func (r *PostgresOrderRepo) Create(ctx context.Context, o domain.Order) error {
	_, err := r.Pool.Exec(ctx, `
INSERT INTO orders (id, amount, user_id, configuration_id, is_paid, created_at)
VALUES ($1, $2::numeric, $3, $4, $5, $6)`,
		o.ID, o.Amount.StringFixed(2), o.UserID, o.ConfigurationID, o.IsPaid, o.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrOrderExists
		}
		if isForeignKeyViolation(err) {
			return domain.ErrConfigurationNotFound
		}
		return fmt.Errorf("%w: create order: %w", domain.ErrStoreFailure, err)
	}
	return nil
}

var _ domain.OrderRepository = (*PostgresOrderRepo)(nil)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
