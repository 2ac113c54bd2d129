package repository

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// The repositories build their SELECT lists from the column constants, so the
// migration must define every column those constants name.

func readSchema(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "migrations", "001_init.sql"))
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	return string(data)
}

func tableDDL(t *testing.T, schema, table string) string {
	t.Helper()
	marker := "CREATE TABLE IF NOT EXISTS " + table + " ("
	start := strings.Index(schema, marker)
	if start < 0 {
		t.Fatalf("migration defines no %s table", table)
	}
	rest := schema[start:]
	end := strings.Index(rest, ");")
	if end < 0 {
		t.Fatalf("unterminated %s table definition", table)
	}
	return rest[:end]
}

func TestSchema_RatingColumnsExist(t *testing.T) {
	ddl := tableDDL(t, readSchema(t), "ratings")

	for _, column := range strings.Split(ratingColumns, ", ") {
		assert.Contains(t, ddl, column, "ratings repository selects %s", column)
	}
}

func TestSchema_PaymentColumnsExist(t *testing.T) {
	ddl := tableDDL(t, readSchema(t), "payments")

	for _, column := range strings.Split(paymentColumns, ", ") {
		assert.Contains(t, ddl, column, "payments repository selects %s", column)
	}
}

func TestSchema_AmountsArePositive(t *testing.T) {
	schema := readSchema(t)

	assert.Contains(t, tableDDL(t, schema, "villas"), "CHECK (price_per_night_paise > 0)")
	assert.Contains(t, tableDDL(t, schema, "bookings"), "CHECK (total_price_paise > 0)")
	assert.Contains(t, tableDDL(t, schema, "payments"), "CHECK (amount_paise > 0)")
}
