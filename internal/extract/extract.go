// Package extract pulls product fields out of a retailer's product page.
package extract

import (
	"bytes"
	"log/slog"
	"strings"

	"github.com/FranksOps/shopscout/internal/product"
	"github.com/FranksOps/shopscout/internal/site"
	"github.com/PuerkitoBio/goquery"
	"github.com/dyatlov/go-opengraph/opengraph"
)

// Selectors lists the CSS selectors tried, in order, for each field.
type Selectors struct {
	Title       []string
	Price       []string
	Image       []string
	Description []string
}

// DefaultSelectors returns the selectors for Shopify-style storefront themes.
func DefaultSelectors() Selectors {
	return Selectors{
		Title: []string{"h1.product__title", "h1.product-title", "h1", "title"},
		Price: []string{".price__regular .price-item", ".product__price", ".price", ".product-price"},
		Image: []string{
			"figure.product__media img",
			".product-gallery__image img",
			".product-image-main img",
			"img.product-gallery__image",
			"img.product__image",
		},
		Description: []string{".product__description", ".product-description", ".product__info-content"},
	}
}

// Extractor turns product page HTML into a product.Record.
type Extractor struct {
	site      *site.Site
	selectors Selectors
	logger    *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithSelectors replaces the default selectors. Empty lists keep their defaults.
func WithSelectors(sel Selectors) Option {
	return func(e *Extractor) {
		if len(sel.Title) > 0 {
			e.selectors.Title = sel.Title
		}
		if len(sel.Price) > 0 {
			e.selectors.Price = sel.Price
		}
		if len(sel.Image) > 0 {
			e.selectors.Image = sel.Image
		}
		if len(sel.Description) > 0 {
			e.selectors.Description = sel.Description
		}
	}
}

// New creates an Extractor resolving relative image addresses against s.
func New(s *site.Site, logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Extractor{
		site:      s,
		selectors: DefaultSelectors(),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract reads every field from body. Missing fields fall back to their
// sentinels; the returned source names the tier that produced the image.
func (e *Extractor) Extract(pageURL string, body []byte) (product.Record, product.ImageSource) {
	rec := product.Record{
		Title: product.TitleUnavailable,
		Price: product.PriceUnavailable,
		URL:   pageURL,
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		e.logger.Warn("failed to parse product page", "url", pageURL, "err", err)
		return rec, product.ImageNone
	}

	if title := firstText(doc, e.selectors.Title); title != "" {
		rec.Title = title
	}
	if price := firstText(doc, e.selectors.Price); price != "" {
		rec.Price = price
	}
	rec.Description = firstText(doc, e.selectors.Description)

	src := product.ImageNone
	switch {
	case setImage(&rec, site.AbsoluteImage(e.jsonLDImage(pageURL, doc))):
		src = product.ImageJSONLD
	case setImage(&rec, site.AbsoluteImage(e.openGraphImage(pageURL, body))):
		src = product.ImageOpenGraph
	case setImage(&rec, e.site.ResolveImage(e.selectorImage(doc))):
		src = product.ImageSelector
	}

	if src == product.ImageNone {
		e.logger.Info("no image found for product", "url", pageURL)
	} else {
		e.logger.Debug("found product image", "url", pageURL, "source", src.String(), "image", rec.ImageURL)
	}

	return rec, src
}

func setImage(rec *product.Record, image string) bool {
	if image == "" {
		return false
	}
	rec.ImageURL = image
	return true
}

func (e *Extractor) openGraphImage(pageURL string, body []byte) string {
	og := opengraph.NewOpenGraph()
	if err := og.ProcessHTML(bytes.NewReader(body)); err != nil {
		e.logger.Debug("failed to parse open graph tags", "url", pageURL, "err", err)
		return ""
	}
	for _, img := range og.Images {
		if img != nil && strings.TrimSpace(img.URL) != "" {
			return strings.TrimSpace(img.URL)
		}
	}
	return ""
}

// selectorImage returns the src (or lazy-loaded data-src) of the first gallery
// image that has one.
func (e *Extractor) selectorImage(doc *goquery.Document) string {
	for _, sel := range e.selectors.Image {
		var found string
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			src := strings.TrimSpace(s.AttrOr("src", ""))
			if src == "" {
				src = strings.TrimSpace(s.AttrOr("data-src", ""))
			}
			found = src
			return found == ""
		})
		if found != "" {
			return found
		}
	}
	return ""
}

func firstText(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		var found string
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			found = collapse(s.Text())
			return found == ""
		})
		if found != "" {
			return found
		}
	}
	return ""
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
