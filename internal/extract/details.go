package extract

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/eslam-allam/cult-beauty/internal/catalog"
	"github.com/eslam-allam/cult-beauty/internal/session"
)

// ErrNoPrice marks a variant whose page carries no price element at all, a
// missing required anchor.
var ErrNoPrice = errors.New("extract: no price element")

// harvestDetails fills the field set shared by every variant state: variant
// SKU, product name, star rating, review count, price and stock status.
// Rating and review count are optional; their elements being absent leaves
// the fields absent rather than zero. forceOutOfStock overrides the page's
// own stock indicator, used for dropdown options marked out of stock.
func (e *Extractor) harvestDetails(rec *catalog.Record, variantSKU string, forceOutOfStock bool) error {
	rec.Set(catalog.FieldVariantSKU, variantSKU)

	if name, err := e.waitAndReadText(selProductName); err == nil {
		rec.Set(catalog.FieldProductName, name)
	} else {
		e.logger.Warn("product name not found", "url", rec.Value(catalog.FieldProductURL), "error", err)
	}

	if label, err := e.waitAndReadAttribute(selProductRating, "aria-label"); err == nil {
		if rating, ok := leadingFloat(label); ok {
			rec.Set(catalog.FieldProductRating, strconv.FormatFloat(rating, 'g', -1, 64))
		}
	}

	if text, err := e.waitAndReadText(selNumberOfReviews); err == nil {
		if count, ok := leadingInt(text); ok {
			rec.Set(catalog.FieldNumberOfReviews, strconv.Itoa(count))
		}
	}

	price, priceSel, err := e.priceHandle()
	if err != nil {
		return ErrNoPrice
	}
	text, err := ReadText(price, BySelector(e.sess, priceSel), e.retry, e.logger)
	if err != nil {
		return ErrNoPrice
	}
	rec.Set(catalog.FieldPrice, stripCurrency(text))

	inStock := "yes"
	if _, err := e.sess.FindOne(selSoldOut); err == nil {
		inStock = "no"
	} else if forceOutOfStock {
		inStock = "no"
	}
	rec.Set(catalog.FieldInStock, inStock)
	return nil
}

// priceHandle locates the price element, falling back to the "from" price
// shown before any variant is selected.
func (e *Extractor) priceHandle() (session.Handle, string, error) {
	if h, err := e.sess.FindOne(selPrice); err == nil {
		return h, selPrice, nil
	}
	h, err := e.sess.FindOne(selFromPrice)
	return h, selFromPrice, err
}

func (e *Extractor) waitAndReadText(selector string) (string, error) {
	h, err := e.sess.WaitUntilPresent(selector, e.presenceTimeout)
	if err != nil {
		return "", err
	}
	return ReadText(h, BySelector(e.sess, selector), e.retry, e.logger)
}

func (e *Extractor) waitAndReadAttribute(selector, attribute string) (string, error) {
	h, err := e.sess.WaitUntilPresent(selector, e.presenceTimeout)
	if err != nil {
		return "", err
	}
	return ReadAttribute(h, attribute, BySelector(e.sess, selector), e.retry, e.logger)
}

func stripCurrency(price string) string {
	return strings.Trim(price, "£€$ \t\n")
}

// leadingFloat parses the first whitespace-separated token as a decimal,
// e.g. "4.5 Stars" -> 4.5.
func leadingFloat(s string) (float64, bool) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func leadingInt(s string) (int, bool) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) == 0 {
		return 0, false
	}
	v, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, false
	}
	return v, true
}

// normalizeHex converts a rendered CSS color ("rgb(186, 26, 26)",
// "rgba(...)", "#b1a") to a #rrggbb string.
func normalizeHex(css string) (string, error) {
	css = strings.TrimSpace(strings.ToLower(css))
	if strings.HasPrefix(css, "#") {
		hex := css[1:]
		switch len(hex) {
		case 3:
			return fmt.Sprintf("#%c%c%c%c%c%c", hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]), nil
		case 6:
			return "#" + hex, nil
		}
		return "", fmt.Errorf("unsupported hex color %q", css)
	}
	open := strings.IndexByte(css, '(')
	close := strings.IndexByte(css, ')')
	if !strings.HasPrefix(css, "rgb") || open < 0 || close < open {
		return "", fmt.Errorf("unsupported color %q", css)
	}
	parts := strings.Split(css[open+1:close], ",")
	if len(parts) < 3 {
		return "", fmt.Errorf("unsupported color %q", css)
	}
	rgb := make([]int, 3)
	for i := 0; i < 3; i++ {
		v, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			return "", fmt.Errorf("unsupported color %q", css)
		}
		rgb[i] = v
	}
	return fmt.Sprintf("#%02x%02x%02x", rgb[0], rgb[1], rgb[2]), nil
}
