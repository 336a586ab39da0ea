// Package postgres stores items in a PostgreSQL table: one row per item,
// one text column per declared storage property, content in a bytea
// column. Multi-valued properties are not representable in this layout;
// only the first value of a sequence is persisted.
package postgres

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-item/pkg/simpleitem"
)

// DBTX is an interface that allows us to use either a database connection
// or a transaction.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Config options for the PostgreSQL access point.
type Config struct {
	Table          string            // table name (default: "items")
	Properties     []string          // storage property column names
	Format         string            // item format tag (default: "binary")
	Encoding       string            // default content encoding (default: "utf-8")
	StorageAliases map[string]string // alias -> canonical storage key
	ParserAliases  map[string]string // alias -> canonical parser key
	Registry       *simpleitem.Registry
}

// AccessPoint is a PostgreSQL implementation of the simpleitem.AccessPoint
// interface.
type AccessPoint struct {
	db       DBTX
	cfg      Config
	table    string // sanitized identifier
	columns  []string
	registry *simpleitem.Registry
}

// reservedColumns are owned by the access point and cannot be declared as
// storage properties.
var reservedColumns = map[string]bool{
	"key":        true,
	"id":         true,
	"content":    true,
	"created_at": true,
	"updated_at": true,
}

// New creates a new PostgreSQL access point over db.
func New(db DBTX, cfg Config) (*AccessPoint, error) {
	if db == nil {
		return nil, errors.New("database connection is required")
	}
	if cfg.Table == "" {
		cfg.Table = "items"
	}
	if cfg.Format == "" {
		cfg.Format = simpleitem.FormatBinary
	}
	if cfg.Encoding == "" {
		cfg.Encoding = "utf-8"
	}

	columns := make([]string, len(cfg.Properties))
	for i, name := range cfg.Properties {
		if reservedColumns[name] {
			return nil, fmt.Errorf("storage property %q collides with a reserved column", name)
		}
		columns[i] = pgx.Identifier{name}.Sanitize()
	}

	registry := cfg.Registry
	if registry == nil {
		registry = simpleitem.DefaultRegistry()
	}

	return &AccessPoint{
		db:       db,
		cfg:      cfg,
		table:    pgx.Identifier{cfg.Table}.Sanitize(),
		columns:  columns,
		registry: registry,
	}, nil
}

// NewWithPool creates a new PostgreSQL access point with a connection
// pool.
func NewWithPool(pool *pgxpool.Pool, cfg Config) (*AccessPoint, error) {
	return New(pool, cfg)
}

// Schema returns the DDL creating the access point's table: key and id
// identify the row, content holds the serialized item, and every declared
// storage property becomes a text column.
func (p *AccessPoint) Schema() string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", p.table)
	b.WriteString("	key text PRIMARY KEY,\n")
	b.WriteString("	id text NOT NULL,\n")
	b.WriteString("	content bytea NOT NULL DEFAULT ''::bytea,\n")
	for _, column := range p.columns {
		fmt.Fprintf(&b, "	%s text,\n", column)
	}
	b.WriteString("	created_at timestamptz NOT NULL DEFAULT now(),\n")
	b.WriteString("	updated_at timestamptz NOT NULL DEFAULT now()\n")
	b.WriteString(")")
	return b.String()
}

// EnsureSchema creates the access point's table if it does not exist.
func (p *AccessPoint) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, p.Schema()); err != nil {
		return &simpleitem.StoreError{Backend: "postgres", Op: "schema", Err: p.describeError("ensure schema", err)}
	}
	return nil
}

// AccessDescriptor implementation

func (p *AccessPoint) FormatTag() string { return p.cfg.Format }

func (p *AccessPoint) StorageAliases() map[string]string { return p.cfg.StorageAliases }

func (p *AccessPoint) ParserAliases() map[string]string { return p.cfg.ParserAliases }

func (p *AccessPoint) DefaultEncoding() string { return p.cfg.Encoding }

// StorageProperties lists the declared property columns plus the
// backend-assigned "id" property.
func (p *AccessPoint) StorageProperties() []string {
	names := make([]string, 0, len(p.cfg.Properties)+1)
	names = append(names, p.cfg.Properties...)
	return append(names, "id")
}

// NewItem builds a new, never-stored item for this access point.
func (p *AccessPoint) NewItem(properties map[string]any) (simpleitem.Item, error) {
	return p.registry.NewFresh(p, properties)
}

// Load materializes the item stored under key. The property columns are
// read eagerly; the content column is only queried when the item first
// parses its content.
func (p *AccessPoint) Load(ctx context.Context, key string) (simpleitem.Item, error) {
	selectCols := append([]string{"id"}, p.columns...)
	query := fmt.Sprintf("SELECT %s FROM %s WHERE key = $1",
		strings.Join(selectCols, ", "), p.table)

	var id string
	values := make([]any, len(p.cfg.Properties))
	dest := make([]any, 0, len(values)+1)
	dest = append(dest, &id)
	for i := range values {
		dest = append(dest, &values[i])
	}

	if err := p.db.QueryRow(ctx, query, key).Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &simpleitem.StoreError{Backend: "postgres", Key: key, Op: "load", Err: simpleitem.ErrItemNotFound}
		}
		return nil, &simpleitem.StoreError{Backend: "postgres", Key: key, Op: "load", Err: p.describeError("load item", err)}
	}

	props := make(map[string]any, len(p.cfg.Properties)+1)
	props["id"] = id
	for i, name := range p.cfg.Properties {
		props[name] = values[i]
	}

	stream := func() (io.ReadCloser, error) {
		query := fmt.Sprintf("SELECT content FROM %s WHERE key = $1", p.table)
		var content []byte
		if err := p.db.QueryRow(ctx, query, key).Scan(&content); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, &simpleitem.StoreError{Backend: "postgres", Key: key, Op: "open", Err: simpleitem.ErrItemNotFound}
			}
			return nil, err
		}
		return io.NopCloser(bytes.NewReader(content)), nil
	}

	item, err := p.registry.New(p, stream, props)
	if err != nil {
		return nil, &simpleitem.StoreError{Backend: "postgres", Key: key, Op: "load", Err: err}
	}
	return item, nil
}

// Save persists item under key. A storage-dirty item updates its property
// columns in place; a parser-dirty or new item is serialized and upserted
// whole. A clean item over an existing row is left untouched.
func (p *AccessPoint) Save(ctx context.Context, key string, item simpleitem.Item) error {
	contentDirty := item.ContentModified()
	parserDirty := item.ParserModified()

	if !contentDirty && !parserDirty && p.exists(ctx, key) {
		return nil
	}

	if contentDirty && !parserDirty {
		// Property columns only; leave the content column alone.
		done, err := p.updateProperties(ctx, key, item)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		// No row yet: fall through to the full upsert.
	}

	data, err := item.Serialize()
	if err != nil {
		return &simpleitem.StoreError{Backend: "postgres", Key: key, Op: "save", Err: err}
	}

	insertCols := []string{"key", "id", "content"}
	insertCols = append(insertCols, p.columns...)
	placeholders := make([]string, len(insertCols))
	for i := range placeholders {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	updates := []string{"content = EXCLUDED.content", "updated_at = now()"}
	for _, column := range p.columns {
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", column, column))
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (key) DO UPDATE SET %s",
		p.table,
		strings.Join(insertCols, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "))

	args := []any{key, uuid.New().String(), data}
	args = append(args, p.propertyValues(item)...)

	if _, err := p.db.Exec(ctx, query, args...); err != nil {
		return &simpleitem.StoreError{Backend: "postgres", Key: key, Op: "save", Err: p.describeError("save item", err)}
	}
	return nil
}

// updateProperties rewrites the declared property columns for an existing
// row, reporting whether a row was found.
func (p *AccessPoint) updateProperties(ctx context.Context, key string, item simpleitem.Item) (bool, error) {
	sets := []string{"updated_at = now()"}
	for i, column := range p.columns {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, i+2))
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE key = $1", p.table, strings.Join(sets, ", "))

	args := append([]any{key}, p.propertyValues(item)...)
	tag, err := p.db.Exec(ctx, query, args...)
	if err != nil {
		return false, &simpleitem.StoreError{Backend: "postgres", Key: key, Op: "save", Err: p.describeError("update properties", err)}
	}
	return tag.RowsAffected() > 0, nil
}

// Delete removes the item stored under key.
func (p *AccessPoint) Delete(ctx context.Context, key string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE key = $1", p.table)
	tag, err := p.db.Exec(ctx, query, key)
	if err != nil {
		return &simpleitem.StoreError{Backend: "postgres", Key: key, Op: "delete", Err: p.describeError("delete item", err)}
	}
	if tag.RowsAffected() == 0 {
		return &simpleitem.StoreError{Backend: "postgres", Key: key, Op: "delete", Err: simpleitem.ErrItemNotFound}
	}
	return nil
}

// List enumerates the keys of every stored item, sorted.
func (p *AccessPoint) List(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf("SELECT key FROM %s ORDER BY key", p.table)
	rows, err := p.db.Query(ctx, query)
	if err != nil {
		return nil, &simpleitem.StoreError{Backend: "postgres", Op: "list", Err: p.describeError("list items", err)}
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, &simpleitem.StoreError{Backend: "postgres", Op: "list", Err: err}
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, &simpleitem.StoreError{Backend: "postgres", Op: "list", Err: err}
	}
	return keys, nil
}

func (p *AccessPoint) exists(ctx context.Context, key string) bool {
	query := fmt.Sprintf("SELECT 1 FROM %s WHERE key = $1", p.table)
	var one int
	return p.db.QueryRow(ctx, query, key).Scan(&one) == nil
}

// propertyValues resolves the declared property columns from the item's
// storage snapshot, in declaration order.
func (p *AccessPoint) propertyValues(item simpleitem.Item) []any {
	snapshot := item.StorageSnapshot()
	values := make([]any, len(p.cfg.Properties))
	for i, name := range p.cfg.Properties {
		values[i] = columnValue(snapshot[name])
	}
	return values
}

// columnValue flattens a property value into something a text column can
// hold. Sequences collapse to their first value.
func columnValue(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		return v
	case []byte:
		return string(v)
	case []any:
		if len(v) == 0 {
			return nil
		}
		return columnValue(v[0])
	default:
		return fmt.Sprintf("%v", v)
	}
}

// describeError translates low-level PostgreSQL errors into something
// actionable.
func (p *AccessPoint) describeError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("duplicate entry")
		case "23502": // not_null_violation
			return fmt.Errorf("required column %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table %s does not exist - run EnsureSchema or migrate", p.table)
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}
	return fmt.Errorf("database error in %s: %w", operation, err)
}
