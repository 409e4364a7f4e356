package extract

import (
	"errors"
	"fmt"
	"strings"
)

// ProductType is the closed set of variation structures a product page can
// present. It decides which extractor strategy runs and which discriminator
// field (size/color/shade/option) the variant rows carry.
type ProductType string

const (
	TypeSingle      ProductType = "single"
	TypeMultiSize   ProductType = "multi-size"
	TypeMultiColor  ProductType = "multi-color"
	TypeMultiShade  ProductType = "multi-shade"
	TypeMultiOption ProductType = "multi-option"
)

// Discriminator returns the field name that distinguishes variants of this
// type, or "" for single products.
func (t ProductType) Discriminator() string {
	switch t {
	case TypeMultiSize:
		return "size"
	case TypeMultiColor:
		return "color"
	case TypeMultiShade:
		return "shade"
	case TypeMultiOption:
		return "option"
	}
	return ""
}

// ErrUnknownVariation is returned when a variation control is present but its
// label matches none of the configured tag sets.
var ErrUnknownVariation = errors.New("extract: unknown variation type")

// VariationTags are the label tag sets that map a variation control to a
// product type. Tags are compared after stripping, lowercasing and removing
// internal spaces.
type VariationTags struct {
	Color  []string
	Shade  []string
	Size   []string
	Option []string
}

func DefaultVariationTags() VariationTags {
	return VariationTags{
		Color:  []string{"colour:", "color:"},
		Shade:  []string{"shade:"},
		Size:   []string{"size:"},
		Option: []string{"option:"},
	}
}

// Classifier maps a variation-control label to a ProductType.
type Classifier struct {
	tags map[string]ProductType
}

func NewClassifier(tags VariationTags) *Classifier {
	c := &Classifier{tags: make(map[string]ProductType)}
	add := func(labels []string, t ProductType) {
		for _, l := range labels {
			c.tags[normalizeLabel(l)] = t
		}
	}
	add(tags.Color, TypeMultiColor)
	add(tags.Shade, TypeMultiShade)
	add(tags.Size, TypeMultiSize)
	add(tags.Option, TypeMultiOption)
	return c
}

// Classify maps the label of a present variation control. Absence of the
// control is decided by the caller, which maps it to TypeSingle.
func (c *Classifier) Classify(label string) (ProductType, error) {
	if t, ok := c.tags[normalizeLabel(label)]; ok {
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownVariation, strings.TrimSpace(label))
}

func normalizeLabel(label string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(label), " ", ""))
}
