// Package catalog holds the tabular data model produced by extraction and the
// batch reconciliation that turns raw rows into the final catalog.
package catalog

// Well-known record fields. Description sections are keyed by their on-page
// heading and image fields carry a 1-based numeric suffix.
const (
	FieldProductURL      = "product_url"
	FieldProductCategory = "product_category"
	FieldBrandName       = "brand_name"
	FieldBrandLogo       = "brand_logo"
	FieldPrimarySKU      = "primary_SKU"
	FieldVariantSKU      = "variant_SKU"
	FieldProductType     = "product_type"
	FieldProductName     = "product_name"
	FieldProductRating   = "product_rating"
	FieldNumberOfReviews = "number_of_reviews"
	FieldPrice           = "price"
	FieldInStock         = "in_stock"
	FieldSerializedSKU   = "serialized_primary_SKU"
	FieldIsVariantOf     = "is_variant_of"

	ImageFieldPrefix = "product_image_"
)

// Record is one (product, variant) row. Fields keep their insertion order so
// that the assembled table has deterministic columns. A field that was never
// set is absent, which is distinct from a field set to the empty string only
// until reconciliation prunes empty columns.
type Record struct {
	keys   []string
	values map[string]string
}

func NewRecord() *Record {
	return &Record{values: make(map[string]string)}
}

// Set adds or replaces a field. First insertion fixes the field's position.
func (r *Record) Set(key, value string) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the field value and whether the field is present.
func (r *Record) Get(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Value returns the field value, or "" when absent.
func (r *Record) Value(key string) string {
	return r.values[key]
}

func (r *Record) Has(key string) bool {
	_, ok := r.values[key]
	return ok
}

func (r *Record) Delete(key string) {
	if _, ok := r.values[key]; !ok {
		return
	}
	delete(r.values, key)
	for i, k := range r.keys {
		if k == key {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the field names in insertion order.
func (r *Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

func (r *Record) Len() int {
	return len(r.keys)
}

// Clone returns an independent copy. Variant extraction branches each variant
// off a clone of the product-level base record; the base is never mutated
// after branching.
func (r *Record) Clone() *Record {
	c := &Record{
		keys:   make([]string, len(r.keys)),
		values: make(map[string]string, len(r.values)),
	}
	copy(c.keys, r.keys)
	for k, v := range r.values {
		c.values[k] = v
	}
	return c
}

// Table is an ordered sequence of records with a stable column order. Columns
// appear in the order they were first seen across appended records.
type Table struct {
	columns []string
	seen    map[string]bool
	rows    []*Record
}

func NewTable() *Table {
	return &Table{seen: make(map[string]bool)}
}

// Append adds a record, extending the column set with any fields not seen
// before, in the record's own field order.
func (t *Table) Append(rec *Record) {
	for _, k := range rec.keys {
		if !t.seen[k] {
			t.seen[k] = true
			t.columns = append(t.columns, k)
		}
	}
	t.rows = append(t.rows, rec)
}

// AppendTable appends every row of other, preserving stream order.
func (t *Table) AppendTable(other *Table) {
	if other == nil {
		return
	}
	for _, rec := range other.rows {
		t.Append(rec)
	}
}

func (t *Table) Rows() []*Record {
	return t.rows
}

func (t *Table) Len() int {
	return len(t.rows)
}

// Columns returns the column names in first-seen order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// SetColumns replaces the column order. Names not present before are added to
// the seen set; callers are expected to pass a permutation or superset of the
// current columns.
func (t *Table) SetColumns(columns []string) {
	t.columns = make([]string, len(columns))
	copy(t.columns, columns)
	t.seen = make(map[string]bool, len(columns))
	for _, c := range columns {
		t.seen[c] = true
	}
}
