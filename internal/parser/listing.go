// Package parser extracts structure from rendered listing-page HTML. The
// listing grid is static once rendered, so it is parsed off the live session
// instead of being walked element by element.
package parser

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	selProductWrapper = ".productBlock_itemDetails_wrapper"
	selProductLink    = ".productBlock_link"
	selLastPage       = "a.responsivePaginationButton.responsivePageSelector.responsivePaginationButton--last"
)

// ProductLinks returns the unique product URLs of a listing page in document
// order.
func ProductLinks(html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var links []string
	doc.Find(selProductWrapper).Each(func(_ int, block *goquery.Selection) {
		href, ok := block.Find(selProductLink).First().Attr("href")
		if !ok || href == "" || seen[href] {
			return
		}
		seen[href] = true
		links = append(links, href)
	})
	return links, nil
}

// LastPage returns the number on the "last page" pagination button, or 1 when
// the listing has no pagination.
func LastPage(html string) (int, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return 0, err
	}
	text := strings.TrimSpace(doc.Find(selLastPage).First().Text())
	if text == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(text)
	if err != nil || n < 1 {
		return 1, nil
	}
	return n, nil
}
