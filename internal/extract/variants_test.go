package extract

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eslam-allam/cult-beauty/internal/catalog"
	"github.com/eslam-allam/cult-beauty/internal/session"
)

func productBase() *catalog.Record {
	base := catalog.NewRecord()
	base.Set(catalog.FieldProductURL, "https://www.cultbeauty.com/brand/serum/12954543.html")
	base.Set(catalog.FieldPrimarySKU, "12954543")
	return base
}

func variantSession() *fakeSession {
	sess := detailsSession()
	sess.single[selCarouselRightArrow] = &fakeHandle{}
	sess.lists[selCarouselImage] = []*fakeHandle{imageHandle("12954543-main.jpg")}
	return sess
}

func TestExtractDropdownVariants(t *testing.T) {
	sess := variantSession()
	sess.single[selVariationDropdown] = &fakeHandle{options: []session.Option{
		{Text: "Please choose...", Value: ""},
		{Text: "Red", Value: "r1"},
		{Text: "Blue - Out of stock", Value: "b1"},
	}}
	sess.single[fmt.Sprintf(selSwatchFmt, "r1")] = &fakeHandle{bg: "rgb(255, 0, 0)"}
	sess.single[fmt.Sprintf(selSwatchFmt, "b1")] = &fakeHandle{bg: "rgb(0, 0, 255)"}

	e := New(sess, Options{}, discardLogger())
	variants, err := e.extractDropdownVariants(context.Background(), productBase(), TypeMultiColor)
	require.NoError(t, err)
	require.Len(t, variants, 2, "placeholder entry is not a variant")

	red := variants[0]
	assert.Equal(t, "Red", red.Value("color"))
	assert.Equal(t, "#ff0000", red.Value("color_hex"))
	assert.Equal(t, "yes", red.Value(catalog.FieldInStock))
	assert.Equal(t, "12954543", red.Value(catalog.FieldVariantSKU))

	blue := variants[1]
	assert.Equal(t, "Blue", blue.Value("color"), "out-of-stock suffix is stripped")
	assert.Equal(t, "no", blue.Value(catalog.FieldInStock), "suffix forces stock status")

	dropdown := sess.single[selVariationDropdown]
	assert.Equal(t, []string{"Red", "Blue - Out of stock"}, dropdown.selected,
		"selection uses the original label, suffix included")
}

func TestExtractDropdownVariantsOptionTypeSkipsSwatch(t *testing.T) {
	sess := variantSession()
	sess.single[selVariationDropdown] = &fakeHandle{options: []session.Option{
		{Text: "Please choose...", Value: ""},
		{Text: "With Pump", Value: "o1"},
	}}

	e := New(sess, Options{}, discardLogger())
	variants, err := e.extractDropdownVariants(context.Background(), productBase(), TypeMultiOption)
	require.NoError(t, err)
	require.Len(t, variants, 1)

	assert.Equal(t, "With Pump", variants[0].Value("option"))
	assert.False(t, variants[0].Has("option_hex"))
}

func TestExtractDropdownVariantsMissingSwatchKeepsVariant(t *testing.T) {
	sess := variantSession()
	sess.single[selVariationDropdown] = &fakeHandle{options: []session.Option{
		{Text: "Ruby", Value: "s1"},
	}}

	e := New(sess, Options{}, discardLogger())
	variants, err := e.extractDropdownVariants(context.Background(), productBase(), TypeMultiShade)
	require.NoError(t, err)
	require.Len(t, variants, 1)

	assert.Equal(t, "Ruby", variants[0].Value("shade"))
	assert.False(t, variants[0].Has("shade_hex"))
}

func TestExtractSizeVariants(t *testing.T) {
	sess := variantSession()
	selected := &fakeHandle{
		text:     "30ml",
		children: map[string]*fakeHandle{selBoxSelectedMarker: {}},
	}
	other := &fakeHandle{text: "50ml"}
	sess.lists[selVariationBox] = []*fakeHandle{selected, other}

	e := New(sess, Options{}, discardLogger())
	variants, err := e.extractSizeVariants(context.Background(), productBase())
	require.NoError(t, err)
	require.Len(t, variants, 2)

	assert.Equal(t, "30ml", variants[0].Value("size"))
	assert.Equal(t, "50ml", variants[1].Value("size"))
	assert.Equal(t, 0, selected.clicks, "current selection is not re-clicked")
	assert.Equal(t, 1, other.clicks)
}

func TestExtractSizeVariantsSkipsUnreadableBox(t *testing.T) {
	sess := variantSession()
	good := &fakeHandle{
		text:     "30ml",
		children: map[string]*fakeHandle{selBoxSelectedMarker: {}},
	}
	bad := &fakeHandle{err: fmt.Errorf("detached")}
	sess.lists[selVariationBox] = []*fakeHandle{good, bad}

	e := New(sess, Options{}, discardLogger())
	variants, err := e.extractSizeVariants(context.Background(), productBase())
	require.NoError(t, err)
	require.Len(t, variants, 1)
	assert.Equal(t, "30ml", variants[0].Value("size"))
}

func TestExtractDropdownVariantsCancelledContext(t *testing.T) {
	sess := variantSession()
	sess.single[selVariationDropdown] = &fakeHandle{options: []session.Option{
		{Text: "Red", Value: "r1"},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := New(sess, Options{}, discardLogger())
	_, err := e.extractDropdownVariants(ctx, productBase(), TypeMultiColor)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStripOutOfStock(t *testing.T) {
	tests := []struct {
		in       string
		expected string
		forced   bool
	}{
		{in: "Blue - Out of stock", expected: "Blue", forced: true},
		{in: "Blue - out of Stock", expected: "Blue", forced: true},
		{in: "Blue", expected: "Blue", forced: false},
		{in: "  Red  ", expected: "Red", forced: false},
	}
	for _, tt := range tests {
		value, forced := stripOutOfStock(tt.in)
		assert.Equal(t, tt.expected, value, tt.in)
		assert.Equal(t, tt.forced, forced, tt.in)
	}
}
