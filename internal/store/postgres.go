package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/therealhieu/wee/internal/shortener"
)

const uniqueViolation = "23505"

const createURLsTable = `
	CREATE TABLE IF NOT EXISTS urls (
		short           TEXT PRIMARY KEY,
		long            TEXT NOT NULL,
		alias           TEXT,
		expiration_date DATE,
		created_at      TIMESTAMPTZ NOT NULL,
		updated_at      TIMESTAMPTZ NOT NULL,
		user_id         TEXT NOT NULL
	)
`

const selectURL = `SELECT short, long, alias, expiration_date, created_at, updated_at, user_id FROM urls`

// columns maps URL field names to table columns.
var columns = map[string]string{
	shortener.FieldLong:           "long",
	shortener.FieldShort:          "short",
	shortener.FieldAlias:          "alias",
	shortener.FieldExpirationDate: "expiration_date",
	shortener.FieldCreatedAt:      "created_at",
	shortener.FieldUpdatedAt:      "updated_at",
	shortener.FieldUserID:         "user_id",
}

// PostgresStore is a PostgreSQL implementation of shortener.Repository.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed URL store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the urls table and the indexes of shortener.DefaultIndexes.
// Sparse indexes become partial indexes over non-null values.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, createURLsTable); err != nil {
		return shortener.Transient("create urls table", err)
	}

	for _, index := range shortener.DefaultIndexes() {
		if _, err := p.pool.Exec(ctx, indexStatement(index)); err != nil {
			return shortener.Transient("create index", err)
		}
	}

	return nil
}

func (p *PostgresStore) Get(ctx context.Context, short string) (*shortener.URL, error) {
	return p.queryOne(ctx, selectURL+" WHERE short = $1", short)
}

func (p *PostgresStore) Insert(ctx context.Context, url *shortener.URL) error {
	if url.Short == "" || url.Long == "" {
		return shortener.ErrInvalidURL
	}

	query := `
		INSERT INTO urls (short, long, alias, expiration_date, created_at, updated_at, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := p.pool.Exec(ctx, query,
		url.Short,
		url.Long,
		url.Alias,
		expirationTime(url.ExpirationDate),
		url.CreatedAt,
		url.UpdatedAt,
		url.UserID,
	)

	return classify("postgres insert", err)
}

func (p *PostgresStore) ReplaceIfExists(ctx context.Context, previousShort string, url *shortener.URL) error {
	query := `
		UPDATE urls
		SET short = $2, long = $3, alias = $4, expiration_date = $5,
			created_at = $6, updated_at = $7, user_id = $8
		WHERE short = $1
	`

	tag, err := p.pool.Exec(ctx, query,
		previousShort,
		url.Short,
		url.Long,
		url.Alias,
		expirationTime(url.ExpirationDate),
		url.CreatedAt,
		url.UpdatedAt,
		url.UserID,
	)
	if err != nil {
		return classify("postgres replace", err)
	}

	if tag.RowsAffected() == 0 {
		return errors.Wrapf(shortener.ErrNotFound, "replace %s", previousShort)
	}

	return nil
}

func (p *PostgresStore) Find(ctx context.Context, filter shortener.Filter) (*shortener.URL, error) {
	if filter.IsEmpty() {
		return nil, shortener.ErrNotFound
	}

	var (
		clauses []string
		args    []any
	)

	if filter.Short != "" {
		args = append(args, filter.Short)
		clauses = append(clauses, fmt.Sprintf("short = $%d", len(args)))
	}

	if filter.Alias != "" {
		args = append(args, filter.Alias)
		clauses = append(clauses, fmt.Sprintf("alias = $%d", len(args)))
	}

	if filter.HasOwner() {
		args = append(args, filter.UserID, filter.Long)
		clauses = append(clauses, fmt.Sprintf("(user_id = $%d AND long = $%d)", len(args)-1, len(args)))
	}

	query := selectURL + " WHERE " + strings.Join(clauses, " OR ")

	// A short code wins over an alias that happens to spell the same code.
	if filter.Short != "" {
		query += " ORDER BY short = $1 DESC"
	}

	return p.queryOne(ctx, query+" LIMIT 1", args...)
}

// Ping checks PostgreSQL connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *PostgresStore) queryOne(ctx context.Context, query string, args ...any) (*shortener.URL, error) {
	var (
		url        shortener.URL
		expiration *time.Time
	)

	err := p.pool.QueryRow(ctx, query, args...).Scan(
		&url.Short,
		&url.Long,
		&url.Alias,
		&expiration,
		&url.CreatedAt,
		&url.UpdatedAt,
		&url.UserID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, shortener.Transient("postgres query", err)
	}

	if expiration != nil {
		date := shortener.DateOf(*expiration)
		url.ExpirationDate = &date
	}

	url.CreatedAt = url.CreatedAt.UTC()
	url.UpdatedAt = url.UpdatedAt.UTC()

	return &url, nil
}

func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return shortener.Duplicate(op, err)
	}

	return shortener.Transient(op, err)
}

func expirationTime(date *shortener.Date) *time.Time {
	if date == nil {
		return nil
	}

	t := date.Time()

	return &t
}

func indexStatement(index shortener.Index) string {
	cols := make([]string, 0, len(index.Keys))
	for _, key := range index.Keys {
		cols = append(cols, columns[key])
	}

	name := "urls_" + strings.Join(cols, "_") + "_idx"

	unique := ""
	if index.Unique {
		unique = "UNIQUE "
	}

	stmt := fmt.Sprintf("CREATE %sINDEX IF NOT EXISTS %s ON urls (%s)", unique, name, strings.Join(cols, ", "))

	if index.Sparse {
		stmt += " WHERE " + strings.Join(cols, " IS NOT NULL AND ") + " IS NOT NULL"
	}

	return stmt
}
