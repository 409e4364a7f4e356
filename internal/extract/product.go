// Package extract drives a product page through its variation states and
// harvests one raw catalog record per (product, variant) pair. It tolerates
// the page invalidating element handles mid-extraction: every read of
// externally mutable state goes through a bounded retry-and-reacquire layer.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/eslam-allam/cult-beauty/internal/catalog"
	"github.com/eslam-allam/cult-beauty/internal/ratelimit"
	"github.com/eslam-allam/cult-beauty/internal/session"
)

// Options configures an Extractor. Zero values fall back to defaults.
type Options struct {
	Retry            RetryPolicy
	PresenceTimeout  time.Duration
	StalenessTimeout time.Duration
	Tags             VariationTags
	Limiter          ratelimit.Limiter
}

type Extractor struct {
	sess             session.Session
	classifier       *Classifier
	retry            RetryPolicy
	presenceTimeout  time.Duration
	stalenessTimeout time.Duration
	limiter          ratelimit.Limiter
	logger           *slog.Logger
}

func New(sess session.Session, opts Options, logger *slog.Logger) *Extractor {
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = DefaultRetryPolicy()
	}
	if opts.PresenceTimeout == 0 {
		opts.PresenceTimeout = 2 * time.Second
	}
	if opts.StalenessTimeout == 0 {
		opts.StalenessTimeout = 10 * time.Second
	}
	if opts.Tags.Color == nil && opts.Tags.Shade == nil && opts.Tags.Size == nil && opts.Tags.Option == nil {
		opts.Tags = DefaultVariationTags()
	}
	if opts.Limiter == nil {
		opts.Limiter = ratelimit.None{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		sess:             sess,
		classifier:       NewClassifier(opts.Tags),
		retry:            opts.Retry,
		presenceTimeout:  opts.PresenceTimeout,
		stalenessTimeout: opts.StalenessTimeout,
		limiter:          opts.Limiter,
		logger:           logger.With("component", "extractor"),
	}
}

// Product navigates to a product page and returns one record per variant.
// Product-level fields (URL, category, brand, primary SKU, description
// sections) are gathered first; each variant then branches off a copy of
// that base record. A missing primary image or an unknown variation label
// skips the whole product.
func (e *Extractor) Product(ctx context.Context, url, category string) ([]*catalog.Record, error) {
	if err := e.sess.Navigate(url); err != nil {
		return nil, fmt.Errorf("navigate to product: %w", err)
	}

	base := catalog.NewRecord()
	base.Set(catalog.FieldProductURL, url)
	base.Set(catalog.FieldProductCategory, category)
	e.harvestBrand(base)

	primary, err := e.sess.WaitUntilPresent(selCarouselImage, e.presenceTimeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoPrimaryImage, err)
	}
	src, err := ReadAttribute(primary, "src", BySelector(e.sess, selCarouselImage), e.retry, e.logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoPrimaryImage, err)
	}
	base.Set(catalog.FieldPrimarySKU, DeriveID(src))

	e.harvestDescriptions(ctx, base)

	label, err := e.sess.FindOne(selVariationLabel)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			return nil, fmt.Errorf("variation label: %w", err)
		}
		return e.extractSingle(base)
	}

	text, err := ReadText(label, BySelector(e.sess, selVariationLabel), e.retry, e.logger)
	if err != nil {
		return nil, fmt.Errorf("read variation label: %w", err)
	}
	ptype, err := e.classifier.Classify(text)
	if err != nil {
		return nil, err
	}
	base.Set(catalog.FieldProductType, string(ptype))

	if ptype == TypeMultiSize {
		return e.extractSizeVariants(ctx, base)
	}
	return e.extractDropdownVariants(ctx, base, ptype)
}

// extractSingle harvests a product without a variation control: one row whose
// variant SKU equals the primary SKU by construction.
func (e *Extractor) extractSingle(base *catalog.Record) ([]*catalog.Record, error) {
	base.Set(catalog.FieldProductType, string(TypeSingle))
	if err := e.harvestImages(base); err != nil {
		return nil, err
	}
	id := DeriveID(base.Value(catalog.ImageFieldPrefix + "1"))
	if err := e.harvestDetails(base, id, false); err != nil {
		return nil, err
	}
	return []*catalog.Record{base}, nil
}

func (e *Extractor) harvestBrand(rec *catalog.Record) {
	brand, err := e.sess.FindOne(selBrandLogo)
	if err != nil {
		return
	}
	if title, err := brand.ReadAttribute("title"); err == nil {
		rec.Set(catalog.FieldBrandName, title)
	}
	if logo, err := brand.ReadAttribute("src"); err == nil {
		rec.Set(catalog.FieldBrandLogo, logo)
	}
}

func (e *Extractor) pause(ctx context.Context) error {
	return e.limiter.Wait(ctx)
}
