package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/eslam-allam/cult-beauty/internal/catalog"
	"github.com/eslam-allam/cult-beauty/internal/session"
)

// extractSizeVariants walks the size-box control group. Each box that is not
// already selected is clicked, with the previous price element used as a
// staleness sentinel: the page has re-rendered for the new selection once
// that handle goes stale. A sentinel timeout degrades to proceeding against
// the current page state. The box list is reacquired after every click since
// the boxes may reflow.
func (e *Extractor) extractSizeVariants(ctx context.Context, base *catalog.Record) ([]*catalog.Record, error) {
	boxes, err := e.sess.FindAll(selVariationBox)
	if err != nil {
		return nil, fmt.Errorf("list size boxes: %w", err)
	}

	var variants []*catalog.Record
	for i := range boxes {
		if err := ctx.Err(); err != nil {
			return variants, err
		}
		box, err := BySelectorIndex(e.sess, selVariationBox, i)()
		if err != nil {
			e.logger.Error("size box vanished", "index", i, "url", base.Value(catalog.FieldProductURL), "error", err)
			continue
		}

		rec := base.Clone()
		if _, err := box.Find(selBoxSelectedMarker); err != nil {
			// Not the current selection; switch to it.
			sentinel, _, sentinelErr := e.priceHandle()
			if err := Click(box, BySelectorIndex(e.sess, selVariationBox, i), e.retry, e.logger); err != nil {
				e.logger.Error("cannot select size box", "index", i, "url", base.Value(catalog.FieldProductURL), "error", err)
				continue
			}
			e.awaitRerender(sentinel, sentinelErr, base.Value(catalog.FieldProductURL))
			if box, err = BySelectorIndex(e.sess, selVariationBox, i)(); err != nil {
				e.logger.Error("size box vanished after selection", "index", i, "error", err)
				continue
			}
		}

		size, err := ReadText(box, BySelectorIndex(e.sess, selVariationBox, i), e.retry, e.logger)
		if err != nil {
			e.logger.Error("cannot read size label", "index", i, "error", err)
			continue
		}
		rec.Set("size", strings.TrimSpace(size))

		if !e.harvestVariant(rec, false) {
			continue
		}
		variants = append(variants, rec)
		if err := e.pause(ctx); err != nil {
			return variants, err
		}
	}
	return variants, nil
}

// extractDropdownVariants walks a color/shade/option dropdown. Options are
// enumerated once up front, excluding the placeholder; each is re-selected by
// visible text because selection re-renders the control. A trailing out-of-
// stock marker is stripped from the recorded discriminator and forces the
// stock field regardless of the page's own indicator. Color and shade
// variants additionally resolve their swatch to a hex value.
func (e *Extractor) extractDropdownVariants(ctx context.Context, base *catalog.Record, ptype ProductType) ([]*catalog.Record, error) {
	dropdown, err := e.sess.FindOne(selVariationDropdown)
	if err != nil {
		return nil, fmt.Errorf("variation dropdown: %w", err)
	}
	options, err := dropdown.Options()
	if err != nil {
		return nil, fmt.Errorf("enumerate dropdown options: %w", err)
	}

	discriminator := ptype.Discriminator()
	var variants []*catalog.Record
	for _, option := range options {
		if err := ctx.Err(); err != nil {
			return variants, err
		}
		if strings.EqualFold(strings.TrimSpace(option.Text), dropdownPlaceholder) {
			continue
		}

		rec := base.Clone()
		sentinel, _, sentinelErr := e.priceHandle()
		fresh, err := e.sess.FindOne(selVariationDropdown)
		if err != nil {
			e.logger.Error("variation dropdown vanished", "url", base.Value(catalog.FieldProductURL), "error", err)
			continue
		}
		if err := fresh.SelectByVisibleText(option.Text); err != nil {
			e.logger.Error("cannot select dropdown option", "option", option.Text, "error", err)
			continue
		}
		e.awaitRerender(sentinel, sentinelErr, base.Value(catalog.FieldProductURL))

		value, forceOutOfStock := stripOutOfStock(option.Text)
		rec.Set(discriminator, value)

		if !e.harvestVariant(rec, forceOutOfStock) {
			continue
		}

		if ptype != TypeMultiOption {
			if hex, err := e.swatchHex(option.Value); err == nil {
				rec.Set(discriminator+"_hex", hex)
			} else {
				e.logger.Warn("cannot resolve swatch color", "option", option.Text, "error", err)
			}
		}

		variants = append(variants, rec)
		if err := e.pause(ctx); err != nil {
			return variants, err
		}
	}
	return variants, nil
}

// harvestVariant gathers images and shared details into rec and reports
// whether the variant is usable. Failures are logged and skip the variant.
func (e *Extractor) harvestVariant(rec *catalog.Record, forceOutOfStock bool) bool {
	if err := e.harvestImages(rec); err != nil {
		e.logger.Error("no primary image for variant",
			"url", rec.Value(catalog.FieldProductURL),
			"variant", variantName(rec),
			"error", err)
		return false
	}
	id := DeriveID(rec.Value(catalog.ImageFieldPrefix + "1"))
	if err := e.harvestDetails(rec, id, forceOutOfStock); err != nil {
		e.logger.Error("cannot harvest variant details",
			"url", rec.Value(catalog.FieldProductURL),
			"variant", variantName(rec),
			"error", err)
		return false
	}
	return true
}

// awaitRerender waits for the staleness sentinel captured before a variant
// switch. Both a missing sentinel and a timeout are best-effort conditions:
// extraction proceeds optimistically against the current page state.
func (e *Extractor) awaitRerender(sentinel session.Handle, sentinelErr error, url string) {
	if sentinelErr != nil {
		e.logger.Warn("no price sentinel before variant switch", "url", url, "error", sentinelErr)
		return
	}
	if err := e.sess.WaitUntilStale(sentinel, e.stalenessTimeout); err != nil {
		e.logger.Warn("page did not re-render after variant switch", "url", url, "error", err)
	}
}

func (e *Extractor) swatchHex(optionValue string) (string, error) {
	swatch, err := e.sess.FindOne(fmt.Sprintf(selSwatchFmt, optionValue))
	if err != nil {
		return "", err
	}
	css, err := swatch.BackgroundColor()
	if err != nil {
		return "", err
	}
	return normalizeHex(css)
}

// stripOutOfStock removes a trailing out-of-stock marker from a dropdown
// label and reports whether it was present.
func stripOutOfStock(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) >= len(outOfStockSuffix) &&
		strings.EqualFold(trimmed[len(trimmed)-len(outOfStockSuffix):], outOfStockSuffix) {
		return strings.TrimSpace(trimmed[:len(trimmed)-len(outOfStockSuffix)]), true
	}
	return trimmed, false
}

// variantName names the variant for log context, whichever discriminator is
// populated.
func variantName(rec *catalog.Record) string {
	for _, field := range []string{"size", "color", "shade", "option"} {
		if v := rec.Value(field); v != "" {
			return v
		}
	}
	if rec.Value(catalog.FieldProductType) == string(TypeSingle) {
		return "single"
	}
	return ""
}
