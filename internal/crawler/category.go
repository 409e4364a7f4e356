// Package crawler iterates the listing pages of each category and runs the
// product extraction pipeline for every product URL it finds. It owns nothing
// extraction-specific beyond wiring the session into the extractor.
package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/eslam-allam/cult-beauty/internal/catalog"
	"github.com/eslam-allam/cult-beauty/internal/extract"
	"github.com/eslam-allam/cult-beauty/internal/parser"
	"github.com/eslam-allam/cult-beauty/internal/ratelimit"
	"github.com/eslam-allam/cult-beauty/internal/session"
)

// WalkerOptions configures a category walk and the extractor it drives.
type WalkerOptions struct {
	Extractor       extract.Options
	Currency        string
	SetupTimeout    time.Duration
	PresenceTimeout time.Duration
	Limiter         ratelimit.Limiter
}

// Walker drives one category on one exclusive session.
type Walker struct {
	sess            session.Session
	extractor       *extract.Extractor
	retry           extract.RetryPolicy
	currency        string
	setupTimeout    time.Duration
	presenceTimeout time.Duration
	limiter         ratelimit.Limiter
	logger          *slog.Logger
}

func NewWalker(sess session.Session, opts WalkerOptions, logger *slog.Logger) *Walker {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.SetupTimeout == 0 {
		opts.SetupTimeout = 10 * time.Second
	}
	if opts.PresenceTimeout == 0 {
		opts.PresenceTimeout = 2 * time.Second
	}
	if opts.Limiter == nil {
		opts.Limiter = ratelimit.None{}
	}
	if opts.Extractor.Limiter == nil {
		opts.Extractor.Limiter = opts.Limiter
	}
	retry := opts.Extractor.Retry
	if retry.MaxAttempts == 0 {
		retry = extract.DefaultRetryPolicy()
	}
	return &Walker{
		sess:            sess,
		extractor:       extract.New(sess, opts.Extractor, logger),
		retry:           retry,
		currency:        opts.Currency,
		setupTimeout:    opts.SetupTimeout,
		presenceTimeout: opts.PresenceTimeout,
		limiter:         opts.Limiter,
		logger:          logger.With("component", "category_walker"),
	}
}

// Walk extracts every product of one category and returns the raw rows in
// encounter order. Product-level failures are logged and skipped; only a
// failed session setup abandons the category.
func (w *Walker) Walk(ctx context.Context, categoryURL string) (*catalog.Table, error) {
	category := extract.CategoryName(categoryURL)
	log := w.logger.With("category", category)

	if err := w.prepareSession(ctx, categoryURL); err != nil {
		return nil, fmt.Errorf("prepare session for category %q: %w", category, err)
	}

	lastPage := w.lastPage(log)
	log.Info("category walk started", "url", categoryURL, "pages", lastPage)

	table := catalog.NewTable()
	for page := 1; page <= lastPage; page++ {
		if err := ctx.Err(); err != nil {
			return table, err
		}
		pageURL := fmt.Sprintf("%s?pageNumber=%d", categoryURL, page)
		if err := w.sess.Navigate(pageURL); err != nil {
			log.Error("cannot open listing page", "page", page, "error", err)
			continue
		}
		html, err := w.sess.Content()
		if err != nil {
			log.Error("cannot read listing page", "page", page, "error", err)
			continue
		}
		links, err := parser.ProductLinks(html)
		if err != nil {
			log.Error("cannot parse listing page", "page", page, "error", err)
			continue
		}
		log.Info("scanning listing page", "page", page, "products", len(links))

		for _, link := range links {
			if err := ctx.Err(); err != nil {
				return table, err
			}
			records, err := w.extractor.Product(ctx, link, category)
			if err != nil {
				// Product-loop boundary: nothing below here is fatal
				// to the category.
				log.Error("product extraction failed", "url", link, "error", err)
				continue
			}
			for _, rec := range records {
				table.Append(rec)
			}
			if err := w.limiter.Wait(ctx); err != nil {
				return table, err
			}
		}
	}

	log.Info("category walk finished", "rows", table.Len())
	return table, nil
}

// lastPage reads the pagination bound from the already-loaded first listing
// page, assuming a single page when the button is missing.
func (w *Walker) lastPage(log *slog.Logger) int {
	html, err := w.sess.Content()
	if err != nil {
		log.Warn("cannot read first listing page, assuming one page", "error", err)
		return 1
	}
	n, err := parser.LastPage(html)
	if err != nil {
		log.Warn("cannot parse pagination, assuming one page", "error", err)
		return 1
	}
	return n
}
