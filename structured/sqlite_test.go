package structured

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExecutor(t *testing.T) *SQLiteExecutor {
	t.Helper()

	exec, err := NewSQLiteExecutor(":memory:")
	require.NoError(t, err)

	t.Cleanup(func() { _ = exec.Close() })

	_, err = exec.DB().Exec(`CREATE TABLE sales (region TEXT, total REAL, month TEXT)`)
	require.NoError(t, err)

	_, err = exec.DB().Exec(`INSERT INTO sales (region, total, month) VALUES
		('north', 1200.5, '2026-06'),
		('south', 800.0, '2026-06'),
		('north', 1500.0, '2026-07')`)
	require.NoError(t, err)

	return exec
}

func TestSQLiteExecutorExecute(t *testing.T) {
	exec := newTestExecutor(t)

	rs, err := exec.Execute(context.Background(), "SELECT region, total FROM sales ORDER BY total")
	require.NoError(t, err)

	assert.Equal(t, []string{"region", "total"}, rs.Columns)
	require.Len(t, rs.Rows, 3)
	assert.Equal(t, "south", rs.Rows[0][0])
}

func TestSQLiteExecutorRejectsMutation(t *testing.T) {
	exec := newTestExecutor(t)

	_, err := exec.Execute(context.Background(), "DELETE FROM sales")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only SELECT queries are allowed")

	_, err = exec.Execute(context.Background(), "SELECT id FROM sales; DELETE FROM sales")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dangerous keyword")

	// Table untouched.
	rs, err := exec.Execute(context.Background(), "SELECT COUNT(*) FROM sales")
	require.NoError(t, err)
	require.Len(t, rs.Rows, 1)
	assert.EqualValues(t, int64(3), rs.Rows[0][0])
}

func TestSQLiteExecutorMaxRows(t *testing.T) {
	exec, err := NewSQLiteExecutor(":memory:", func(o *SQLiteExecutorOptions) {
		o.MaxRows = 2
	})
	require.NoError(t, err)

	t.Cleanup(func() { _ = exec.Close() })

	_, err = exec.DB().Exec(`CREATE TABLE n (v INTEGER)`)
	require.NoError(t, err)

	_, err = exec.DB().Exec(`INSERT INTO n (v) VALUES (1), (2), (3), (4)`)
	require.NoError(t, err)

	rs, err := exec.Execute(context.Background(), "SELECT v FROM n ORDER BY v")
	require.NoError(t, err)
	assert.Len(t, rs.Rows, 2)
}

func TestSQLiteExecutorDescribe(t *testing.T) {
	exec := newTestExecutor(t)

	_, err := exec.DB().Exec(`CREATE TABLE customers (id INTEGER, name TEXT)`)
	require.NoError(t, err)

	tables, err := exec.Describe(context.Background())
	require.NoError(t, err)
	require.Len(t, tables, 2)

	assert.Equal(t, "customers", tables[0].Name)
	assert.Equal(t, "sales", tables[1].Name)

	require.Len(t, tables[1].Columns, 3)
	assert.Equal(t, "region", tables[1].Columns[0].Name)
	assert.Equal(t, "TEXT", tables[1].Columns[0].Type)
	assert.Equal(t, "REAL", tables[1].Columns[1].Type)
}
