package extract

import (
	"errors"
	"fmt"

	"github.com/eslam-allam/cult-beauty/internal/catalog"
	"github.com/eslam-allam/cult-beauty/internal/session"
)

// ErrNoPrimaryImage marks a product or variant whose carousel yielded no
// images. Identity is derived from the first image URL, so the unit cannot
// be extracted.
var ErrNoPrimaryImage = errors.New("extract: no primary image")

// harvestImages walks the image carousel of the currently selected variant
// and writes the ordered product_image_<n> fields. The first image is read in
// place; for every later index the advance arrow is clicked first, and the
// read goes through the recovery layer with positional reacquisition because
// advancing invalidates the in-DOM ordering. The first failed read is the
// normal end of the sequence, not an error.
func (e *Extractor) harvestImages(rec *catalog.Record) error {
	images, err := e.sess.FindAll(selCarouselImage)
	if err != nil {
		return fmt.Errorf("list carousel images: %w", err)
	}

	var arrow session.Handle
	for i, image := range images {
		if i != 0 {
			if arrow == nil {
				arrow, err = e.sess.FindOne(selCarouselRightArrow)
				if err != nil {
					break
				}
			}
			if err := Click(arrow, BySelector(e.sess, selCarouselRightArrow), e.retry, e.logger); err != nil {
				e.logger.Debug("carousel advance failed", "index", i, "error", err)
				break
			}
		}
		src, err := ReadAttribute(image, "src", BySelectorIndex(e.sess, selCarouselImage, i), e.retry, e.logger)
		if err != nil {
			break
		}
		rec.Set(fmt.Sprintf("%s%d", catalog.ImageFieldPrefix, i+1), src)
	}

	if !rec.Has(catalog.ImageFieldPrefix + "1") {
		return ErrNoPrimaryImage
	}
	return nil
}
