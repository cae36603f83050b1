package structured

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateStatement(t *testing.T) {
	tests := []struct {
		name    string
		sql     string
		wantErr bool
	}{
		{"plain select", "SELECT * FROM orders", false},
		{"lowercase select", "select total from sales where region = 'EMEA'", false},
		{"column named created_at allowed", "SELECT created_at FROM orders", false},
		{"column named updated_total allowed", "SELECT updated_total FROM sales", false},
		{"empty", "   ", true},
		{"insert rejected", "INSERT INTO orders VALUES (1)", true},
		{"drop rejected", "DROP TABLE orders", true},
		{"select with nested delete rejected", "SELECT 1; DELETE FROM orders", true},
		{"update rejected", "UPDATE orders SET total = 0", true},
		{"pragma rejected", "PRAGMA table_info(orders)", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStatement(tt.sql)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, "SELECT 1", StripCodeFences("SELECT 1"))
	assert.Equal(t, "SELECT 1", StripCodeFences("```sql\nSELECT 1\n```"))
	assert.Equal(t, "SELECT 1", StripCodeFences("```\nSELECT 1\n```"))
	assert.Equal(t, "SELECT total\nFROM sales", StripCodeFences("```sql\nSELECT total\nFROM sales\n```"))
}
