// Package export persists catalog tables. The run writes the table twice:
// once before deduplication and once after reconciliation.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/eslam-allam/cult-beauty/internal/catalog"
)

// WriteCSV writes the table to path, creating parent directories as needed.
// Absent fields are written as empty cells.
func WriteCSV(path string, t *catalog.Table) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	columns := t.Columns()
	if err := w.Write(columns); err != nil {
		f.Close()
		return fmt.Errorf("write header: %w", err)
	}
	row := make([]string, len(columns))
	for _, rec := range t.Rows() {
		for i, col := range columns {
			row[i] = rec.Value(col)
		}
		if err := w.Write(row); err != nil {
			f.Close()
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}
