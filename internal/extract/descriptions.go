package extract

import (
	"context"
	"strings"

	"github.com/eslam-allam/cult-beauty/internal/catalog"
)

// harvestDescriptions expands the accordion description sections and records
// each section's text keyed by its heading. Sections are product-level and
// shared by every variant, so they are gathered on the base record before any
// variant is selected. Failures here are soft; a section that cannot be read
// is skipped.
func (e *Extractor) harvestDescriptions(ctx context.Context, rec *catalog.Record) {
	controls, err := e.sess.FindAll(selDescriptionControl)
	if err != nil {
		e.logger.Debug("no description sections", "url", rec.Value(catalog.FieldProductURL), "error", err)
		return
	}
	for i, control := range controls {
		heading, err := ReadText(control, BySelectorIndex(e.sess, selDescriptionControl, i), e.retry, e.logger)
		if err != nil || strings.TrimSpace(heading) == "" {
			continue
		}
		id, err := ReadAttribute(control, "id", BySelectorIndex(e.sess, selDescriptionControl, i), e.retry, e.logger)
		if err != nil || id == "" {
			continue
		}
		expanded, _ := ReadAttribute(control, "aria-expanded", BySelectorIndex(e.sess, selDescriptionControl, i), e.retry, e.logger)
		if expanded == "false" {
			if err := Click(control, BySelectorIndex(e.sess, selDescriptionControl, i), e.retry, e.logger); err != nil {
				e.logger.Debug("cannot expand description section", "id", id, "error", err)
				continue
			}
		}
		content, err := e.sess.FindOne("#" + strings.Replace(id, "heading", "content", 1))
		if err != nil {
			e.logger.Debug("description content missing", "id", id, "error", err)
			continue
		}
		text, err := content.ReadText()
		if err != nil {
			e.logger.Debug("description content unreadable", "id", id, "error", err)
			continue
		}
		rec.Set(strings.TrimSpace(heading), text)
		if err := e.pause(ctx); err != nil {
			return
		}
	}
}
