package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(fields ...string) *Record {
	rec := NewRecord()
	for i := 0; i+1 < len(fields); i += 2 {
		rec.Set(fields[i], fields[i+1])
	}
	return rec
}

func tableOf(rows ...*Record) *Table {
	t := NewTable()
	for _, r := range rows {
		t.Append(r)
	}
	return t
}

func TestReconcileDeduplicates(t *testing.T) {
	in := tableOf(
		row(FieldPrimarySKU, "p1", FieldVariantSKU, "p1", FieldPrice, "£10.00", "size", "30ml"),
		row(FieldPrimarySKU, "p1", FieldVariantSKU, "v2", FieldPrice, "£12.00", "size", "50ml"),
		row(FieldPrimarySKU, "p1", FieldVariantSKU, "p1", FieldPrice, "£10.00", "size", "30ml"),
	)

	out, err := NewReconciler(nil).Reconcile(in)
	require.NoError(t, err)
	require.Equal(t, 2, out.Len())
	assert.Equal(t, "p1", out.Rows()[0].Value(FieldVariantSKU))
	assert.Equal(t, "v2", out.Rows()[1].Value(FieldVariantSKU))
}

func TestReconcileSerializesSKUGroups(t *testing.T) {
	in := tableOf(
		row(FieldPrimarySKU, "p1", FieldVariantSKU, "p1", FieldPrice, "£10.00"),
		row(FieldPrimarySKU, "p1", FieldVariantSKU, "v2", FieldPrice, "£12.00"),
		row(FieldPrimarySKU, "p1", FieldVariantSKU, "v3", FieldPrice, "£14.00"),
		row(FieldPrimarySKU, "p2", FieldVariantSKU, "p2", FieldPrice, "£8.00"),
	)

	out, err := NewReconciler(nil).Reconcile(in)
	require.NoError(t, err)
	rows := out.Rows()
	require.Len(t, rows, 4)

	assert.Equal(t, "p1-1", rows[0].Value(FieldSerializedSKU))
	assert.Equal(t, "", rows[0].Value(FieldIsVariantOf))
	assert.Equal(t, "p1-2", rows[1].Value(FieldSerializedSKU))
	assert.Equal(t, "p1", rows[1].Value(FieldIsVariantOf))
	assert.Equal(t, "p1-3", rows[2].Value(FieldSerializedSKU))
	assert.Equal(t, "p1", rows[2].Value(FieldIsVariantOf))
	assert.Equal(t, "p2-1", rows[3].Value(FieldSerializedSKU))
}

func TestReconcileNormalizesPrices(t *testing.T) {
	tests := []struct {
		name     string
		price    string
		expected string
	}{
		{name: "pound sign", price: "£12.50", expected: "12.50"},
		{name: "from euro price", price: "from €9", expected: "9"},
		{name: "already numeric", price: "7.99", expected: "7.99"},
		{name: "whitespace and currency", price: " € 15.00 ", expected: "15.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tableOf(row(FieldPrimarySKU, "p1", FieldVariantSKU, "p1", FieldPrice, tt.price))
			out, err := NewReconciler(nil).Reconcile(in)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out.Rows()[0].Value(FieldPrice))
		})
	}
}

func TestReconcilePrunesEmptyColumns(t *testing.T) {
	in := tableOf(
		row(FieldPrimarySKU, "p1", FieldVariantSKU, "p1", FieldPrice, "£10", "shade", "", "size", "30ml"),
		row(FieldPrimarySKU, "p2", FieldVariantSKU, "p2", FieldPrice, "£11", "shade", "", "size", "50ml"),
	)

	out, err := NewReconciler(nil).Reconcile(in)
	require.NoError(t, err)
	assert.NotContains(t, out.Columns(), "shade")
	assert.Contains(t, out.Columns(), "size")
}

func TestReconcileMalformedRows(t *testing.T) {
	tests := []struct {
		name string
		rec  *Record
	}{
		{name: "missing variant SKU", rec: row(FieldPrimarySKU, "p1", FieldPrice, "£10")},
		{name: "empty variant SKU", rec: row(FieldPrimarySKU, "p1", FieldVariantSKU, "", FieldPrice, "£10")},
		{name: "missing primary SKU", rec: row(FieldVariantSKU, "v1", FieldPrice, "£10")},
		{name: "missing price", rec: row(FieldPrimarySKU, "p1", FieldVariantSKU, "p1")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReconciler(nil).Reconcile(tableOf(tt.rec))
			assert.ErrorIs(t, err, ErrMalformedRow)
		})
	}
}

func TestReconcileDoesNotModifyInput(t *testing.T) {
	in := tableOf(row(FieldPrimarySKU, "p1", FieldVariantSKU, "p1", FieldPrice, "£10.00"))

	_, err := NewReconciler(nil).Reconcile(in)
	require.NoError(t, err)
	assert.Equal(t, "£10.00", in.Rows()[0].Value(FieldPrice))
	assert.False(t, in.Rows()[0].Has(FieldSerializedSKU))
}

func TestOrderColumns(t *testing.T) {
	tests := []struct {
		name     string
		in       []string
		expected []string
	}{
		{
			name:     "suffixed group gathered at first member",
			in:       []string{"a", "product_image_2", "b", "product_image_1", "c"},
			expected: []string{"a", "product_image_1", "product_image_2", "b", "c"},
		},
		{
			name:     "numeric not lexicographic order",
			in:       []string{"product_image_10", "product_image_2", "product_image_1"},
			expected: []string{"product_image_1", "product_image_2", "product_image_10"},
		},
		{
			name:     "multiple groups stay separate",
			in:       []string{"product_image_2", "swatch_2", "product_image_1", "swatch_1"},
			expected: []string{"product_image_1", "product_image_2", "swatch_1", "swatch_2"},
		},
		{
			name:     "no suffixed columns",
			in:       []string{"a", "b", "c"},
			expected: []string{"a", "b", "c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := OrderColumns(tt.in)
			assert.Equal(t, tt.expected, out)
			assert.Equal(t, tt.expected, OrderColumns(out), "reorder must be idempotent")
		})
	}
}

func TestReconcileIdempotentRowCount(t *testing.T) {
	in := tableOf(
		row(FieldPrimarySKU, "p1", FieldVariantSKU, "p1", FieldPrice, "£10"),
		row(FieldPrimarySKU, "p1", FieldVariantSKU, "v2", FieldPrice, "£12"),
	)

	once, err := NewReconciler(nil).Reconcile(in)
	require.NoError(t, err)
	twice, err := NewReconciler(nil).Reconcile(once)
	require.NoError(t, err)

	assert.Equal(t, once.Len(), twice.Len())
	assert.Equal(t, once.Columns(), twice.Columns())
}
