package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	classifier := NewClassifier(DefaultVariationTags())

	tests := []struct {
		name     string
		label    string
		expected ProductType
	}{
		{name: "british colour", label: "Colour:", expected: TypeMultiColor},
		{name: "american color", label: "Color:", expected: TypeMultiColor},
		{name: "shade", label: "Shade:", expected: TypeMultiShade},
		{name: "size", label: "Size:", expected: TypeMultiSize},
		{name: "option", label: "Option:", expected: TypeMultiOption},
		{name: "surrounding whitespace", label: "  Size:  ", expected: TypeMultiSize},
		{name: "internal spaces and case", label: "S I Z E :", expected: TypeMultiSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ptype, err := classifier.Classify(tt.label)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ptype)
		})
	}
}

func TestClassifyUnknownLabel(t *testing.T) {
	classifier := NewClassifier(DefaultVariationTags())
	_, err := classifier.Classify("Flavour:")
	assert.ErrorIs(t, err, ErrUnknownVariation)
}

func TestDiscriminator(t *testing.T) {
	assert.Equal(t, "size", TypeMultiSize.Discriminator())
	assert.Equal(t, "color", TypeMultiColor.Discriminator())
	assert.Equal(t, "shade", TypeMultiShade.Discriminator())
	assert.Equal(t, "option", TypeMultiOption.Discriminator())
	assert.Equal(t, "", TypeSingle.Discriminator())
}
