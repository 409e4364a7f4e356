package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eslam-allam/cult-beauty/internal/catalog"
)

func TestWriteCSV(t *testing.T) {
	table := catalog.NewTable()

	first := catalog.NewRecord()
	first.Set("product_name", "Serum")
	first.Set("price", "12.50")
	table.Append(first)

	second := catalog.NewRecord()
	second.Set("product_name", "Lipstick")
	second.Set("shade", "Ruby")
	table.Append(second)

	path := filepath.Join(t.TempDir(), "nested", "catalog.csv")
	require.NoError(t, WriteCSV(path, table))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"product_name", "price", "shade"}, rows[0])
	assert.Equal(t, []string{"Serum", "12.50", ""}, rows[1])
	assert.Equal(t, []string{"Lipstick", "", "Ruby"}, rows[2], "absent fields become empty cells")
}

func TestWriteCSVEmptyTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, WriteCSV(path, catalog.NewTable()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "\n", string(data), "header line only")
}
