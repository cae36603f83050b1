package structured

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/hupe1980/querymesh/core"
)

// Compile-time interface checks.
var (
	_ core.QueryExecutor  = (*SQLiteExecutor)(nil)
	_ core.SchemaProvider = (*SQLiteExecutor)(nil)
)

// SQLiteExecutorOptions configures a SQLiteExecutor.
type SQLiteExecutorOptions struct {
	// MaxRows caps the number of rows returned from a single statement.
	// Zero means no cap.
	MaxRows int
}

// SQLiteExecutor runs validated SELECT statements against a SQLite database
// and describes its schema. The zero value is not usable; construct with
// NewSQLiteExecutor or NewSQLiteExecutorFromDB.
type SQLiteExecutor struct {
	db   *sql.DB
	opts SQLiteExecutorOptions
}

// NewSQLiteExecutor opens the SQLite database at path. Use ":memory:" for an
// in-memory database.
func NewSQLiteExecutor(path string, optFns ...func(o *SQLiteExecutorOptions)) (*SQLiteExecutor, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	return NewSQLiteExecutorFromDB(db, optFns...), nil
}

// NewSQLiteExecutorFromDB wraps an existing database handle. The caller
// retains ownership of the handle's lifecycle unless Close is used.
func NewSQLiteExecutorFromDB(db *sql.DB, optFns ...func(o *SQLiteExecutorOptions)) *SQLiteExecutor {
	opts := SQLiteExecutorOptions{}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &SQLiteExecutor{db: db, opts: opts}
}

// Close releases the underlying database handle.
func (e *SQLiteExecutor) Close() error {
	return e.db.Close()
}

// DB exposes the underlying handle, mainly for seeding test fixtures.
func (e *SQLiteExecutor) DB() *sql.DB {
	return e.db
}

// Execute validates the statement and runs it, returning all result rows.
// Statements that fail ValidateStatement are rejected before touching the
// database.
func (e *SQLiteExecutor) Execute(ctx context.Context, query string) (*core.ResultSet, error) {
	if err := ValidateStatement(query); err != nil {
		return nil, err
	}

	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	result := &core.ResultSet{Columns: columns}

	for rows.Next() {
		values := make([]any, len(columns))
		dests := make([]any, len(columns))

		for i := range values {
			dests[i] = &values[i]
		}

		if err := rows.Scan(dests...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		result.Rows = append(result.Rows, values)

		if e.opts.MaxRows > 0 && len(result.Rows) >= e.opts.MaxRows {
			break
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return result, nil
}

// Describe lists all user tables with their columns and declared types,
// ordered by table name. SQLite internal tables are skipped.
func (e *SQLiteExecutor) Describe(ctx context.Context) ([]core.TableInfo, error) {
	rows, err := e.db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var names []string

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}

		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tables: %w", err)
	}

	tables := make([]core.TableInfo, 0, len(names))

	for _, name := range names {
		columns, err := e.describeTable(ctx, name)
		if err != nil {
			return nil, err
		}

		tables = append(tables, core.TableInfo{Name: name, Columns: columns})
	}

	return tables, nil
}

func (e *SQLiteExecutor) describeTable(ctx context.Context, table string) ([]core.ColumnInfo, error) {
	rows, err := e.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%q)", table))
	if err != nil {
		return nil, fmt.Errorf("describe table %s: %w", table, err)
	}
	defer rows.Close()

	var columns []core.ColumnInfo

	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)

		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultVal, &pk); err != nil {
			return nil, fmt.Errorf("scan column of %s: %w", table, err)
		}

		columns = append(columns, core.ColumnInfo{Name: name, Type: typ})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns of %s: %w", table, err)
	}

	return columns, nil
}
