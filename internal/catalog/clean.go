package catalog

import (
	"log/slog"
	"regexp"
	"strings"
)

const (
	descriptionColumn = "Description"
	whyItsCultColumn  = "Why It's Cult"
)

var (
	discriminatorColumns = []string{"option", "color", "size", "shade"}
	regretPattern        = regexp.MustCompile(`(?is)we regret.+(?:middle east|bahrain)`)
)

// Cleaner applies the storefront-specific cleanup pass that follows
// reconciliation: refill and gift-voucher rows are dropped, the "Why It's
// Cult" section is folded into the description, shipping eligibility is
// derived from the regret notice, and brand prefixes are stripped from
// product names.
type Cleaner struct {
	logger *slog.Logger
}

func NewCleaner(logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{logger: logger.With("component", "cleaner")}
}

func (c *Cleaner) Clean(t *Table) *Table {
	c.logger.Info("removing refill and gift-voucher rows", "rows", t.Len())
	out := NewTable()
	out.SetColumns(t.Columns())
	for _, rec := range t.Rows() {
		d := strings.ToLower(discriminator(rec))
		if strings.Contains(d, "refill") || strings.Contains(d, "€") {
			continue
		}
		out.Append(rec.Clone())
	}

	c.logger.Info("merging description sections")
	mergeCultSection(out)

	c.logger.Info("deriving shipping eligibility")
	for _, rec := range out.Rows() {
		desc, ok := rec.Get(descriptionColumn)
		rec.Set(shipsToBahrainColumn, shipsToBahrain(desc, ok))
		if ok {
			rec.Set(descriptionColumn, regretPattern.ReplaceAllString(desc, ""))
		}
	}
	cols := out.Columns()
	if !out.seen[shipsToBahrainColumn] {
		cols = append(cols, shipsToBahrainColumn)
	}
	out.SetColumns(cols)

	c.logger.Info("stripping brand prefixes and whitespace")
	for _, rec := range out.Rows() {
		rec.Set(FieldProductName, stripBrandPrefix(rec.Value(FieldBrandName), rec.Value(FieldProductName)))
		for _, k := range rec.Keys() {
			rec.Set(k, strings.TrimSpace(rec.Value(k)))
		}
	}
	return out
}

const shipsToBahrainColumn = "ships_to_bahrain"

// discriminator returns the first populated variant-discriminator field.
func discriminator(rec *Record) string {
	for _, col := range discriminatorColumns {
		if v := rec.Value(col); v != "" {
			return v
		}
	}
	return ""
}

func mergeCultSection(t *Table) {
	for _, rec := range t.Rows() {
		cult, hasCult := rec.Get(whyItsCultColumn)
		if !hasCult {
			continue
		}
		desc := rec.Value(descriptionColumn)
		rec.Set(descriptionColumn, "Description:\n"+desc+"\nWhy It's On SIIN:\n"+cult)
		rec.Delete(whyItsCultColumn)
	}
	var cols []string
	for _, c := range t.Columns() {
		if c == whyItsCultColumn {
			continue
		}
		cols = append(cols, c)
	}
	t.SetColumns(cols)
}

// shipsToBahrain reports "no" when the description carries the regret notice
// or is absent entirely.
func shipsToBahrain(description string, present bool) string {
	if !present {
		return "no"
	}
	if regretPattern.MatchString(description) {
		return "no"
	}
	return "yes"
}

func stripBrandPrefix(brand, name string) string {
	if brand == "" || name == "" {
		return name
	}
	if !strings.HasPrefix(strings.ToLower(name), strings.ToLower(brand)) {
		return name
	}
	return strings.TrimSpace(name[len(brand):])
}
