package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ErrMalformedRow indicates an extraction-stage contract violation reaching
// the reconciler. Reconciliation runs over already-validated input, so this
// halts the run instead of producing a corrupt catalog.
var ErrMalformedRow = errors.New("catalog: malformed row")

// Reconciler is the pure batch transform over the concatenated raw rows from
// all categories: deduplicate, derive identity relationships, normalize the
// price, prune empty columns and regroup suffixed columns. The steps are
// order-sensitive; each assumes the invariants of the ones before it.
type Reconciler struct {
	logger *slog.Logger
}

func NewReconciler(logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{logger: logger.With("component", "reconciler")}
}

// Reconcile returns a new table; the input is not modified.
func (r *Reconciler) Reconcile(t *Table) (*Table, error) {
	r.logger.Info("deduplicating rows", "rows", t.Len())
	out, err := dedupe(t)
	if err != nil {
		return nil, err
	}

	r.logger.Info("serializing primary SKUs", "rows", out.Len())
	serializeSKUs(out)

	r.logger.Info("normalizing prices")
	if err := normalizePrices(out); err != nil {
		return nil, err
	}

	r.logger.Info("pruning empty columns", "columns", len(out.Columns()))
	pruneEmptyColumns(out)

	r.logger.Info("reordering columns")
	out.SetColumns(OrderColumns(out.Columns()))

	return out, nil
}

// dedupe keeps the first occurrence of each variant SKU in stream order.
func dedupe(t *Table) (*Table, error) {
	out := NewTable()
	out.SetColumns(t.Columns())
	kept := make(map[string]bool)
	for i, rec := range t.Rows() {
		sku, ok := rec.Get(FieldVariantSKU)
		if !ok || sku == "" {
			return nil, fmt.Errorf("%w: row %d has no %s", ErrMalformedRow, i, FieldVariantSKU)
		}
		if _, ok := rec.Get(FieldPrimarySKU); !ok {
			return nil, fmt.Errorf("%w: row %d has no %s", ErrMalformedRow, i, FieldPrimarySKU)
		}
		if kept[sku] {
			continue
		}
		kept[sku] = true
		out.Append(rec.Clone())
	}
	return out, nil
}

// serializeSKUs numbers each primary-SKU group. The canonical row (variant
// SKU equal to the primary SKU) gets suffix -1 and no back-reference; every
// other row gets -2, -3, ... in row order with is_variant_of pointing at the
// group's primary SKU.
func serializeSKUs(t *Table) {
	counts := make(map[string]int)
	for _, rec := range t.Rows() {
		primary := rec.Value(FieldPrimarySKU)
		if rec.Value(FieldVariantSKU) == primary {
			rec.Set(FieldSerializedSKU, primary+"-1")
			rec.Set(FieldIsVariantOf, "")
			continue
		}
		counts[primary]++
		rec.Set(FieldSerializedSKU, fmt.Sprintf("%s-%d", primary, counts[primary]+1))
		rec.Set(FieldIsVariantOf, primary)
	}
	// Appending through Record.Set does not register new columns on the
	// table, so do it explicitly.
	cols := t.Columns()
	for _, c := range []string{FieldSerializedSKU, FieldIsVariantOf} {
		if !t.seen[c] {
			cols = append(cols, c)
		}
	}
	t.SetColumns(cols)
}

var nonPriceChars = regexp.MustCompile(`[^\d.]`)

func normalizePrices(t *Table) error {
	for i, rec := range t.Rows() {
		price, ok := rec.Get(FieldPrice)
		if !ok {
			return fmt.Errorf("%w: row %d has no %s", ErrMalformedRow, i, FieldPrice)
		}
		rec.Set(FieldPrice, nonPriceChars.ReplaceAllString(price, ""))
	}
	return nil
}

// pruneEmptyColumns drops every column that is absent or empty in all rows.
func pruneEmptyColumns(t *Table) {
	populated := make(map[string]bool)
	for _, rec := range t.Rows() {
		for _, k := range rec.Keys() {
			if v, _ := rec.Get(k); v != "" {
				populated[k] = true
			}
		}
	}
	var cols []string
	for _, c := range t.Columns() {
		if populated[c] {
			cols = append(cols, c)
		}
	}
	for _, rec := range t.Rows() {
		for _, k := range rec.Keys() {
			if !populated[k] {
				rec.Delete(k)
			}
		}
	}
	t.SetColumns(cols)
}

var columnSuffix = regexp.MustCompile(`_(\d+)`)

// OrderColumns groups columns that share a base name with a numeric suffix
// (product_image_1..product_image_7) contiguously at the position of the
// group's first-encountered member, in ascending numeric order. Non-suffixed
// columns keep their original relative order. The reorder is idempotent.
func OrderColumns(columns []string) []string {
	type member struct {
		index int
		name  string
	}
	var order []string // group base names prefixed with \x00, or plain columns
	groups := make(map[string][]member)
	for _, col := range columns {
		m := columnSuffix.FindStringSubmatch(col)
		if m == nil {
			order = append(order, col)
			continue
		}
		idx, _ := strconv.Atoi(m[1])
		base := columnSuffix.ReplaceAllString(col, "")
		if _, ok := groups[base]; !ok {
			order = append(order, "\x00"+base)
		}
		groups[base] = append(groups[base], member{index: idx, name: col})
	}

	out := make([]string, 0, len(columns))
	for _, entry := range order {
		if !strings.HasPrefix(entry, "\x00") {
			out = append(out, entry)
			continue
		}
		members := groups[entry[1:]]
		sort.Slice(members, func(i, j int) bool { return members[i].index < members[j].index })
		for _, m := range members {
			out = append(out, m.name)
		}
	}
	return out
}
